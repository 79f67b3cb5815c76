package showcase

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

type sessionStatus struct {
	Admin bool   `json:"admin"`
	CSRF  string `json:"csrf,omitempty"`
}

// handleAdminSession reports whether the caller is an admin and hands out the
// CSRF token the admin UI must send with mutations.
func (a *App) handleAdminSession(c echo.Context) error {
	_, ok := a.gate.CurrentAdmin(c)
	return c.JSON(http.StatusOK, sessionStatus{Admin: ok, CSRF: CsrfToken(c)})
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts, try again later")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) != 1 {
		a.loginLimiter.Record(ip)
		c.Logger().Warnf("admin login failed from %s", ip)
		return ErrUnauthorized
	}
	if err := saveAdminSession(c, true); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionStatus{Admin: true, CSRF: CsrfToken(c)})
}

func handleAdminLogout(c echo.Context) error {
	if err := saveAdminSession(c, false); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionStatus{Admin: false})
}
