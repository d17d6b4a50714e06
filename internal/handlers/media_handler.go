package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/yatube/internal/media"
)

// MediaHandler serves stored post images.
type MediaHandler struct {
	storage media.Storage
}

func NewMediaHandler(storage media.Storage) *MediaHandler {
	return &MediaHandler{storage: storage}
}

func (h *MediaHandler) RegisterMediaRoutes(g *echo.Group) {
	g.GET("/media/*", h.Serve)
}

func (h *MediaHandler) Serve(c echo.Context) error {
	key := c.Param("*")
	rc, err := h.storage.Open(c.Request().Context(), key)
	if errors.Is(err, media.ErrNotFound) || errors.Is(err, media.ErrInvalidKey) {
		return echo.NewHTTPError(http.StatusNotFound, "media not found")
	}
	if err != nil {
		return err
	}
	defer rc.Close()

	body, mt, err := media.DetectImage(rc)
	if errors.Is(err, media.ErrNotImage) {
		return echo.NewHTTPError(http.StatusNotFound, "media not found")
	}
	if err != nil {
		return err
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, mt.String(), body)
}
