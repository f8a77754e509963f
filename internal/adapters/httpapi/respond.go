package httpapi

import (
	"errors"
	"net/http"

	"snippets/internal/core/apperr"
	"snippets/internal/core/feed"
	userapp "snippets/internal/core/user/service"

	"github.com/gin-gonic/gin"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrUnauthenticated),
		errors.Is(err, userapp.ErrInvalidCredentials),
		errors.Is(err, userapp.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrSaveInFlight), errors.Is(err, userapp.ErrEmailTaken):
		return http.StatusConflict
	case apperr.IsTimeout(err):
		return http.StatusGatewayTimeout
	case apperr.IsBackend(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

var publicErrors = []error{
	apperr.ErrUnauthenticated,
	apperr.ErrForbidden,
	apperr.ErrNotFound,
	apperr.ErrSaveInFlight,
	userapp.ErrInvalidCredentials,
	userapp.ErrInvalidToken,
	userapp.ErrEmailTaken,
}

// publicMessage never leaks backend details.
func publicMessage(err error) string {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case apperr.IsTimeout(err):
		return "backend timed out"
	case apperr.IsBackend(err):
		return "backend unavailable"
	}
	for _, public := range publicErrors {
		if errors.Is(err, public) {
			return public.Error()
		}
	}
	return "internal error"
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), gin.H{"error": publicMessage(err)})
}

// respondFailure answers a failed mutation with its notice.
func respondFailure(c *gin.Context, action feed.Action, err error) {
	_ = c.Error(err)
	body := gin.H{"error": publicMessage(err)}
	if n := feed.Failure(action, err); !n.IsZero() {
		body["notice"] = n
	}
	c.JSON(statusFor(err), body)
}
