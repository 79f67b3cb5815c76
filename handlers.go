package showcase

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/showcase/sitedata"
)

// pageHandler renders view with the current content and slides. Both are
// read from storage on every request.
func (a *App) pageHandler(view func(Page) templ.Component) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		doc, err := a.Content.Get(ctx)
		if err != nil {
			return err
		}
		slides, err := a.Slides.List(ctx)
		if err != nil {
			return err
		}
		return Render(c, view(Page{
			Site:    a.Config,
			Path:    c.Request().URL.Path,
			Content: doc,
			Slides:  slides,
		}))
	}
}

// errorResponse is the JSON body of every failed API call.
type errorResponse struct {
	Error string `json:"error"`
}

// errorStatus maps an error to the status code and the message safe to show
// a client. Storage failures never expose their cause.
func errorStatus(err error) (int, string) {
	var he *echo.HTTPError
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, sitedata.ErrInvalidPayload):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, sitedata.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, sitedata.ErrCorruptState):
		return http.StatusInternalServerError, "stored content is corrupt"
	case errors.Is(err, sitedata.ErrStorageUnavailable):
		return http.StatusInternalServerError, "storage unavailable"
	case errors.As(err, &he):
		return he.Code, fmt.Sprint(he.Message)
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}

func isPageRequest(c echo.Context) bool {
	path := c.Request().URL.Path
	return !strings.HasPrefix(path, "/api/") && !strings.HasPrefix(path, "/admin/")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, msg := errorStatus(err)
	if code >= 500 {
		c.Logger().Errorf("server error: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if isPageRequest(c) {
		switch {
		case code == http.StatusNotFound && a.Views.NotFound != nil:
			_ = RenderStatus(c, code, a.Views.NotFound())
			return
		case code >= 500 && a.Views.ServerError != nil:
			_ = RenderStatus(c, code, a.Views.ServerError())
			return
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, errorResponse{Error: msg})
}
