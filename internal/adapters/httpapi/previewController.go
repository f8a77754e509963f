package httpapi

import (
	"net/http"

	"snippets/internal/adapters/httpapi/middleware"
	"snippets/internal/core/apperr"
	"snippets/internal/core/feed"
	"snippets/internal/core/submission"
	postPort "snippets/internal/ports/post"

	"github.com/gin-gonic/gin"
)

const previewFailed = "Unable to load image preview"

type PreviewController struct{ prober feed.ImageProber }

// NewPreviewController checks image URLs with prober.
func NewPreviewController(prober feed.ImageProber) *PreviewController {
	return &PreviewController{prober: prober}
}

// Preview reports whether image_url loads. Only signed-in users may ask; the
// prober itself refuses internal addresses.
func (ctl *PreviewController) Preview(c *gin.Context) {
	sc := middleware.Session(c)
	if !sc.Authenticated() {
		respondError(c, apperr.ErrUnauthenticated)
		return
	}

	var req struct {
		ImageURL string `json:"image_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	accepted, err := submission.Validate(submission.Submission{ImageURL: req.ImageURL})
	if err != nil {
		respondError(c, err)
		return
	}

	card := feed.NewCard(&postPort.PostDTO{ImageURL: accepted.ImageURL}, sc, nil, nil, false)
	state := card.ProbeImage(c.Request.Context(), ctl.prober)
	body := gin.H{"image_state": state.String()}
	if state == feed.ImageErrored {
		body["message"] = previewFailed
	}
	c.JSON(http.StatusOK, body)
}
