// Package showcase is a marketing site engine built with Go, Echo, and templ.
// It stores an admin-editable site content document and an ordered slide
// collection, and exposes them through a small JSON API.
//
// Users provide their own templ pages via the ViewFuncs struct; showcase
// handles the content storage, admin session, API handlers and middleware.
package showcase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/showcase/sitedata"
)

// Page is what every user-provided page component receives.
type Page struct {
	Site    SiteConfig
	Path    string
	Content sitedata.Document
	Slides  []sitedata.Slide
}

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages. Pages left nil are not routed.
type ViewFuncs struct {
	Home        func(p Page) templ.Component
	About       func(p Page) templ.Component
	Services    func(p Page) templ.Component
	Gallery     func(p Page) templ.Component
	Legal       func(p Page) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central showcase application. It wires together the storage
// backend, stores, admin gate, handlers, middleware, and user-provided pages.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Content *sitedata.ContentStore
	Slides  *sitedata.SlideStore
	Images  *sitedata.ImageStore
	Views   ViewFuncs

	backend      sitedata.Backend
	gate         AdminGate
	loginLimiter *LoginLimiter
	customRoutes []func(*App)
}

// New creates a new showcase App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
		gate:   SessionGate{},
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init opens the storage backend and sets up stores, middleware and routes.
// The backend is chosen once here and shared by every request.
func (a *App) Init(ctx context.Context) error {
	if err := a.Config.validate(); err != nil {
		return err
	}

	if a.backend == nil {
		backend, err := sitedata.Open(ctx, a.Config.BackendOptions())
		if err != nil {
			return fmt.Errorf("showcase: open storage: %w", err)
		}
		a.backend = backend
	}
	a.Content = sitedata.NewContentStore(a.backend)
	a.Slides = sitedata.NewSlideStore(a.backend)
	a.Images = sitedata.NewImageStore(a.backend)

	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the App and serves HTTP until the server stops.
func (a *App) Start() error {
	if err := a.Init(context.Background()); err != nil {
		return err
	}
	backend := "files in " + a.Config.DataDir
	if a.Config.UseDatabase {
		backend = "database"
	}
	a.Echo.Logger.Infof("showcase: serving %s with content stored as %s", a.Config.Name, backend)

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// User's static assets, including uploaded images under /public/uploads/.
	e.Static("/public", a.Config.StaticDir)

	// Pages
	pages := []struct {
		path string
		view func(Page) templ.Component
	}{
		{"/", a.Views.Home},
		{"/about/", a.Views.About},
		{"/services/", a.Views.Services},
		{"/galerie/", a.Views.Gallery},
		{"/legal/", a.Views.Legal},
	}
	for _, p := range pages {
		if p.view != nil {
			e.GET(p.path, a.pageHandler(p.view))
		}
	}

	// Admin session
	e.GET("/admin/session/", a.handleAdminSession)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)

	// JSON API; reads are public, mutations need an admin.
	api := e.Group("/api")
	bodyLimit := apiBodyLimit()
	api.GET("/content", a.handleGetContent)
	api.PUT("/content", a.handlePutContent, a.requireAdmin, bodyLimit)
	api.GET("/slides", a.handleListSlides)
	api.POST("/slides", a.handleCreateSlide, a.requireAdmin, bodyLimit)
	api.PUT("/slides", a.handleUpdateSlide, a.requireAdmin, bodyLimit)
	api.DELETE("/slides", a.handleDeleteSlide, a.requireAdmin)
	api.GET("/images", a.handleImageList)
	api.POST("/images", a.handleImageUpload, a.requireAdmin)
	api.DELETE("/images/:filename", a.handleImageDelete, a.requireAdmin)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.backend != nil {
		return a.backend.Close()
	}
	return nil
}
