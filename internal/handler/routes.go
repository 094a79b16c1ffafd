package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kazerbreaker/murdero-image-studio/internal/image"
	"github.com/kazerbreaker/murdero-image-studio/internal/log"
	"github.com/kazerbreaker/murdero-image-studio/internal/page"
	"github.com/kazerbreaker/murdero-image-studio/internal/session"
)

const cookieName = "studio_session"

func (h *Handler) Routes(logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), log.Middleware(logger))

	r.StaticFS("/static", http.FS(page.Static()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/", h.index)
	r.POST("/generate", h.generate)
	r.POST("/new", h.newImage)
	r.GET("/image.png", h.preview)
	r.GET("/download", h.download)

	return r
}

// state resolves the caller's session and refreshes its cookie.
func (h *Handler) state(c *gin.Context) *session.State {
	id, _ := c.Cookie(cookieName)
	s := h.sessions.Get(id)
	if s.ID != id {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, s.ID, 0, "/", "", false, true)
	}
	return s
}

func (h *Handler) index(c *gin.Context) {
	html, err := h.Render(c.Request.Context(), h.state(c))
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (h *Handler) generate(c *gin.Context) {
	s := h.state(c)

	var form session.Form
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	// failures are recorded on the session and shown after the redirect
	_ = h.Submit(c.Request.Context(), s, form)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) newImage(c *gin.Context) {
	h.NewImage(c.Request.Context(), h.state(c))
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) preview(c *gin.Context) {
	s := h.state(c)
	s.Lock()
	result := s.Image
	s.Unlock()

	if result == nil {
		c.Status(http.StatusNotFound)
		return
	}
	data := result.Data
	if result.Format != "png" {
		var err error
		if data, err = image.EncodePNG(result.Image); err != nil {
			_ = c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", data)
}

func (h *Handler) download(c *gin.Context) {
	name, data, err := h.Download(h.state(c))
	if errors.Is(err, ErrNoImage) {
		c.String(http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "image/png", data)
}
