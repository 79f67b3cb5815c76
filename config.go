package showcase

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/eringen/showcase/sitedata"
)

// SiteConfig holds all configuration for a showcase site.
type SiteConfig struct {
	Name        string `env:"SITE_NAME"`        // Site name (default "Showcase")
	URL         string `env:"SITE_URL"`         // Canonical URL (default "http://localhost:3000")
	Description string `env:"SITE_DESCRIPTION"` // Site description for meta tags

	Addr      string `env:"ADDR"`       // Listen address (default ":3000")
	StaticDir string `env:"STATIC_DIR"` // User-owned static assets and uploads (default "public")

	UseDatabase bool   `env:"USE_DATABASE"` // Store content in a database instead of files
	DatabaseURL string `env:"DATABASE_URL"` // SQLite path or postgres:// URL (default "data/site.db")
	DataDir     string `env:"DATA_DIR"`     // File backend directory (default "data")

	AdminPassword string `env:"ADMIN_PASSWORD"`       // Required: admin login password
	SessionSecret string `env:"ADMIN_SESSION_SECRET"` // Required: session encryption secret
	CookieSecure  bool   `env:"COOKIE_SECURE"`        // Set true for HTTPS
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Showcase"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = "data/site.db"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
}

func (c SiteConfig) validate() error {
	if c.AdminPassword == "" {
		return fmt.Errorf("showcase: AdminPassword is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("showcase: SessionSecret is required")
	}
	return nil
}

// BackendOptions returns the storage selection described by c.
func (c SiteConfig) BackendOptions() sitedata.Options {
	return sitedata.Options{
		UseDatabase: c.UseDatabase,
		DatabaseURL: c.DatabaseURL,
		DataDir:     c.DataDir,
	}
}

// LoadConfig reads SiteConfig from the process environment and applies defaults.
func LoadConfig() (SiteConfig, error) {
	var cfg SiteConfig
	if err := env.Parse(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithBackend makes the App use b instead of opening the configured backend.
// The App takes ownership and closes b in Close.
func WithBackend(b sitedata.Backend) Option {
	return func(a *App) {
		a.backend = b
	}
}

// WithAdminGate replaces the cookie-session admin check.
func WithAdminGate(g AdminGate) Option {
	return func(a *App) {
		a.gate = g
	}
}
