package httpapi

import (
	"errors"
	"net/http"
	"time"

	"snippets/internal/adapters/httpapi/middleware"
	"snippets/internal/core/apperr"
	"snippets/internal/core/feed"
	userapp "snippets/internal/core/user/service"
	userPort "snippets/internal/ports/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserController struct {
	uc     UserUseCase
	secure bool
	logger *zap.Logger
}

// NewUserController takes the user use case as its input port.
func NewUserController(uc UserUseCase, opts Options, logger *zap.Logger) *UserController {
	return &UserController{uc: uc, secure: opts.SecureCookies, logger: logger}
}

func (ctl *UserController) setSession(c *gin.Context, res *userPort.LoginResponse) {
	maxAge := int(time.Until(time.Unix(res.ExpiresAt, 0)).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, res.Token, maxAge, "/", "", ctl.secure, true)
}

func (ctl *UserController) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", ctl.secure, true)
}

func authNotice(err error) feed.Notice {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		return feed.Notice{Title: "Validation error", Description: ve.Message, Variant: feed.VariantDestructive}
	case errors.Is(err, userapp.ErrEmailTaken):
		return feed.Notice{Title: "Sign up failed", Description: "An account with this email already exists.", Variant: feed.VariantDestructive}
	case errors.Is(err, userapp.ErrInvalidCredentials):
		return feed.Notice{Title: "Sign in failed", Description: "Invalid email or password.", Variant: feed.VariantDestructive}
	}
	return feed.Notice{Title: "Error", Description: "Something went wrong. Please try again.", Variant: feed.VariantDestructive}
}

// LoginUser answers with a bearer token.
func (ctl *UserController) LoginUser(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	res, err := ctl.uc.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// RegisterUser creates the account and its profile.
func (ctl *UserController) RegisterUser(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		Password    string `json:"password" binding:"required"`
		DisplayName string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	u, err := ctl.uc.RegisterUser(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// LogoutUser returns only after the token has been revoked.
func (ctl *UserController) LogoutUser(c *gin.Context) {
	if err := middleware.Session(c).SignOut(c.Request.Context()); err != nil {
		ctl.logger.Error("sign out failed", zap.Error(err))
		respondError(c, err)
		return
	}
	ctl.clearSession(c)
	c.Status(http.StatusNoContent)
}

// CurrentSession reports who the caller is.
func (ctl *UserController) CurrentSession(c *gin.Context) {
	u, ok := middleware.Session(c).User()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user": userPort.UserDTO{
			ID:          u.ID,
			Email:       u.Email,
			DisplayName: u.DisplayName,
			IsAdmin:     u.IsAdmin,
		},
		"expiresAt": u.ExpiresAt.Unix(),
	})
}

// LoginForm signs in and sets the session cookie.
func (ctl *UserController) LoginForm(c *gin.Context) {
	res, err := ctl.uc.LoginUser(c.Request.Context(), c.PostForm("email"), c.PostForm("password"))
	if err != nil {
		setFlash(c, authNotice(err))
		c.Redirect(http.StatusSeeOther, "/auth")
		return
	}
	ctl.setSession(c, res)
	c.Redirect(http.StatusSeeOther, "/")
}

// RegisterForm signs up and then signs straight in.
func (ctl *UserController) RegisterForm(c *gin.Context) {
	ctx := c.Request.Context()
	email, password := c.PostForm("email"), c.PostForm("password")
	if _, err := ctl.uc.RegisterUser(ctx, email, password, c.PostForm("display_name")); err != nil {
		setFlash(c, authNotice(err))
		c.Redirect(http.StatusSeeOther, "/auth?mode=signup")
		return
	}
	res, err := ctl.uc.LoginUser(ctx, email, password)
	if err != nil {
		setFlash(c, authNotice(err))
		c.Redirect(http.StatusSeeOther, "/auth")
		return
	}
	ctl.setSession(c, res)
	setFlash(c, feed.Notice{Title: "Welcome!", Description: "Your account has been created.", Variant: feed.VariantDefault})
	c.Redirect(http.StatusSeeOther, "/")
}

// LogoutForm revokes the token and clears the cookie.
func (ctl *UserController) LogoutForm(c *gin.Context) {
	if err := middleware.Session(c).SignOut(c.Request.Context()); err != nil {
		ctl.logger.Error("sign out failed", zap.Error(err))
		setFlash(c, feed.Notice{Title: "Error", Description: "Failed to sign out. Please try again.", Variant: feed.VariantDestructive})
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	ctl.clearSession(c)
	c.Redirect(http.StatusSeeOther, "/")
}
