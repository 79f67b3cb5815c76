package showcase

import (
	"errors"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

// ErrUnauthorized is returned when a mutation is attempted without an admin.
var ErrUnauthorized = errors.New("unauthorized")

const (
	principalKey    = "admin_principal"
	sessionAdminKey = "authenticated"
)

// Principal identifies an authenticated admin.
type Principal struct {
	Name string
}

// AdminGate yields the admin behind a request, if any.
type AdminGate interface {
	CurrentAdmin(c echo.Context) (Principal, bool)
}

// AdminGateFunc adapts a function to AdminGate.
type AdminGateFunc func(c echo.Context) (Principal, bool)

func (f AdminGateFunc) CurrentAdmin(c echo.Context) (Principal, bool) {
	return f(c)
}

// SessionGate treats the holder of an authenticated admin cookie session as
// the site admin.
type SessionGate struct{}

func (SessionGate) CurrentAdmin(c echo.Context) (Principal, bool) {
	if !IsAdmin(c) {
		return Principal{}, false
	}
	return Principal{Name: "admin"}, true
}

// requireAdmin rejects the request with ErrUnauthorized unless the gate
// yields a principal, which is then stored on the context.
func (a *App) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := a.gate.CurrentAdmin(c)
		if !ok {
			return ErrUnauthorized
		}
		c.Set(principalKey, p)
		return next(c)
	}
}

// CurrentPrincipal returns the admin stored by requireAdmin.
func CurrentPrincipal(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}

// IsAdmin reports whether the request carries an authenticated admin session.
func IsAdmin(c echo.Context) bool {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return false
	}
	auth, _ := sess.Values[sessionAdminKey].(bool)
	return auth
}

// saveAdminSession marks the session as admin, or expires it when admin is false.
func saveAdminSession(c echo.Context, admin bool) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	if admin {
		sess.Values[sessionAdminKey] = true
	} else {
		delete(sess.Values, sessionAdminKey)
		sess.Options.MaxAge = -1
	}
	return sess.Save(c.Request(), c.Response())
}
