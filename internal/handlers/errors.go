package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/yatube/internal/services"
	"github.com/anonto42/yatube/pkg/logger"
)

// HTTPErrorHandler renders core/404.html and core/500.html, and JSON for
// clients that ask for it. Server errors are logged.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}

	req := c.Request()
	if code >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.Error(err))
	}

	if req.Method == http.MethodHead {
		err = c.NoContent(code)
	} else if strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		err = c.JSON(code, echo.Map{"message": message})
	} else {
		switch {
		case code == http.StatusNotFound:
			err = c.Render(code, "core/404.html", echo.Map{"path": req.URL.Path})
		case code >= http.StatusInternalServerError:
			err = c.Render(code, "core/500.html", echo.Map{})
		default:
			err = c.String(code, message)
		}
	}
	if err != nil {
		logger.Error("failed to write error response", zap.Error(err))
	}
}

// serviceError maps service sentinels onto HTTP errors.
func serviceError(err error) error {
	if errors.Is(err, services.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
	}
	return err
}

// postID parses the :id path parameter. Anything that is not a positive
// integer cannot name a post, so it is a 404.
func postID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("post %q not found", c.Param("id")))
	}
	return uint(id), nil
}

func postURL(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}
