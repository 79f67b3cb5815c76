package showcase

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/showcase/sitedata"
)

func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return nil, he
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", sitedata.ErrInvalidPayload, err)
	}
	return body, nil
}

func adminName(c echo.Context) string {
	if p, ok := CurrentPrincipal(c); ok {
		return p.Name
	}
	return "unknown"
}

func (a *App) handleGetContent(c echo.Context) error {
	doc, err := a.Content.Get(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func (a *App) handlePutContent(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	doc, err := a.Content.Save(c.Request().Context(), body)
	if err != nil {
		return err
	}
	c.Logger().Infof("content replaced by %s", adminName(c))
	return c.JSON(http.StatusOK, doc)
}

func (a *App) handleListSlides(c echo.Context) error {
	slides, err := a.Slides.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, slides)
}

func (a *App) handleCreateSlide(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	slide, err := sitedata.ParseSlide(body)
	if err != nil {
		return err
	}
	created, err := a.Slides.Create(c.Request().Context(), slide)
	if err != nil {
		return err
	}
	c.Logger().Infof("slide %s created by %s", created.ID, adminName(c))
	return c.JSON(http.StatusOK, created)
}

func (a *App) handleUpdateSlide(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	slide, err := sitedata.ParseSlide(body)
	if err != nil {
		return err
	}
	updated, err := a.Slides.Update(c.Request().Context(), slide)
	if err != nil {
		return err
	}
	c.Logger().Infof("slide %s updated by %s", updated.ID, adminName(c))
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handleDeleteSlide(c echo.Context) error {
	id := c.QueryParam("id")
	if id == "" {
		return fmt.Errorf("%w: id query parameter is required", sitedata.ErrInvalidPayload)
	}
	if err := a.Slides.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	c.Logger().Infof("slide %s deleted by %s", id, adminName(c))
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
