package showcase

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	sessionName      = "admin_session"
	sessionMaxAge    = 12 * 60 * 60
	csrfCookieName   = "_csrf"
	maxAPIBody       = "1M"
	maxImageBodySize = "11M"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)
	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())

	e.Use(
		requestLogger(),
		middleware.Recover(),
		middleware.BodyLimit(maxImageBodySize),
		middleware.GzipWithConfig(middleware.GzipConfig{
			Level:   5,
			Skipper: isStaticPath,
		}),
		middleware.SecureWithConfig(securityHeaders),
		session.Middleware(a.newSessionStore()),
		middleware.CSRFWithConfig(a.csrfConfig()),
		middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
			RedirectCode: http.StatusMovedPermanently,
			Skipper: func(c echo.Context) bool {
				return isStaticPath(c) || isAPIPath(c)
			},
		}),
		cacheControlMiddleware,
	)
}

func isStaticPath(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/public/")
}

func isAPIPath(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	})
}

var securityHeaders = middleware.SecureConfig{
	XSSProtection:         "1; mode=block",
	ContentTypeNosniff:    "nosniff",
	XFrameOptions:         "DENY",
	ReferrerPolicy:        "strict-origin-when-cross-origin",
	ContentSecurityPolicy: "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' https: data:; media-src 'self'; font-src 'self'; connect-src 'self'",
	HSTSMaxAge:            31536000,
}

// csrfConfig protects every unsafe method. The admin UI fetches the token
// from GET /admin/session/ and sends it back as X-CSRF-Token. API calls
// without an admin skip the check and are refused by requireAdmin.
func (a *App) csrfConfig() middleware.CSRFConfig {
	return middleware.CSRFConfig{
		Skipper: func(c echo.Context) bool {
			if !isAPIPath(c) {
				return false
			}
			_, ok := a.gate.CurrentAdmin(c)
			return !ok
		},
		ContextKey:     middleware.DefaultCSRFConfig.ContextKey,
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     csrfCookieName,
		CookiePath:     "/",
		CookieSameSite: http.SameSiteLaxMode,
		CookieSecure:   a.Config.CookieSecure,
		ErrorHandler: func(err error, c echo.Context) error {
			return echo.NewHTTPError(http.StatusForbidden, "invalid csrf token")
		},
	}
}

// apiBodyLimit caps JSON request bodies on the content and slide routes.
func apiBodyLimit() echo.MiddlewareFunc {
	return middleware.BodyLimit(maxAPIBody)
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		switch path := c.Request().URL.Path; {
		case strings.HasPrefix(path, "/public/"):
			h.Set("Cache-Control", "public, max-age=31536000, immutable")
		case strings.HasPrefix(path, "/api/"), strings.HasPrefix(path, "/admin"):
			h.Set("Cache-Control", "no-store")
		default:
			// Pages show admin-edited content; keep them short-lived.
			h.Set("Cache-Control", "public, max-age=60")
		}
		return next(c)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   sessionMaxAge,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
