package httpapi

import (
	"embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"snippets/internal/core/feed"
	"snippets/internal/core/session"
	"snippets/internal/core/submission"
	postPort "snippets/internal/ports/post"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

const flashCookie = "snippets_flash"

type cardView struct {
	*feed.Card
	View string
}

func templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"counter": submission.CaptionCounter,
		"cardData": func(c *feed.Card, view string) cardView {
			return cardView{Card: c, View: view}
		},
		"snippetCount": func(n int) string {
			if n == 1 {
				return "1 snippet saved"
			}
			return fmt.Sprintf("%d snippets saved", n)
		},
	}).ParseFS(templateFS, "templates/*.html"))
}

// pageData is what every page template renders from.
type pageData struct {
	Title    string
	View     string
	Viewer   *session.Context
	Notice   *feed.Notice
	Cards    []*feed.Card
	Empty    string
	Heading  string
	Profiles []*postPort.ProfileDTO
	Signup   bool
}

func setFlash(c *gin.Context, n feed.Notice) {
	if n.IsZero() {
		return
	}
	raw, err := json.Marshal(n)
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(raw), 60, "/", "", false, true)
}

// takeFlash reads the one-shot notice and clears it.
func takeFlash(c *gin.Context) *feed.Notice {
	v, err := c.Cookie(flashCookie)
	if err != nil || v == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	raw, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return nil
	}
	var n feed.Notice
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil
	}
	return &n
}
