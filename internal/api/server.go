// Package api serves the camtune HTTP API on huma.
package api

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/smazurov/camtune/internal/api/models"
	"github.com/smazurov/camtune/internal/capture"
	"github.com/smazurov/camtune/internal/devices"
	"github.com/smazurov/camtune/internal/events"
	"github.com/smazurov/camtune/internal/hints"
	"github.com/smazurov/camtune/internal/logging"
	"github.com/smazurov/camtune/internal/media"
	"github.com/smazurov/camtune/internal/version"
)

const authRealm = `Basic realm="camtune API"`

// Controller is the capture controller the API drives.
type Controller interface {
	Negotiate(ctx context.Context, facing media.FacingRequest, platform media.PlatformClass) (capture.StreamInfo, error)
	Release() (capture.StreamInfo, error)
	Snapshot() capture.Snapshot
}

// DeviceSource reports capture device presence.
type DeviceSource interface {
	Current() devices.Presence
	Refresh() (devices.Presence, error)
}

// Options configures the API server.
type Options struct {
	AuthUsername      string
	AuthPassword      string
	Controller        Controller
	Devices           DeviceSource
	Hints             hints.Store
	EventBus          *events.Bus
	PrometheusHandler http.Handler // optional, served at /metrics without auth

	// DefaultPlatform is used when a request names no platform and its
	// User-Agent carries no iOS or Android marker. Defaults to desktop.
	DefaultPlatform media.PlatformClass
}

// Server is the camtune API server.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	controller Controller
	devices    DeviceSource
	hints      hints.Store
	eventBus   *events.Bus
	platform   media.PlatformClass
	logger     *slog.Logger
}

// NewServer creates the API server and registers all routes.
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()
	addCORSHandler(mux)

	config := huma.DefaultConfig("camtune API", version.String())
	config.Info.Description = "Camera stream negotiation with live frame verification"
	config.Servers = []*huma.Server{}
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basicAuth": {
			Type:   "http",
			Scheme: "basic",
		},
	}

	api := humago.New(mux, config)

	s := &Server{
		api:        api,
		mux:        mux,
		controller: opts.Controller,
		devices:    opts.Devices,
		hints:      opts.Hints,
		eventBus:   opts.EventBus,
		platform:   opts.DefaultPlatform,
		logger:     logging.GetLogger("api"),
	}
	if s.platform == "" {
		s.platform = media.PlatformDesktop
	}
	if s.eventBus == nil {
		s.eventBus = events.New()
	}

	api.UseMiddleware(corsMiddleware)
	api.UseMiddleware(HTTPLoggingMiddleware)
	if opts.AuthUsername != "" && opts.AuthPassword != "" {
		api.UseMiddleware(s.basicAuthMiddleware(opts.AuthUsername, opts.AuthPassword))
	}

	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// GetAPI returns the huma API instance.
func (s *Server) GetAPI() huma.API {
	return s.api
}

// Start listens on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting camtune API server", "addr", addr)
	s.logger.Info("OpenAPI documentation available", "url", "http://"+addr+"/docs")

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Stop closes the listener and all connections. SSE streams never finish on
// their own, so there is no graceful drain.
func (s *Server) Stop() error {
	s.logger.Info("Stopping API server")
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health status",
		Tags:        []string{"system"},
		Security:    []map[string][]string{},
	}, func(_ context.Context, _ *struct{}) (*models.HealthResponse, error) {
		return &models.HealthResponse{
			Body: models.HealthData{Status: "ok", Message: "API is healthy"},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
		Security:    []map[string][]string{},
	}, func(_ context.Context, _ *struct{}) (*models.VersionResponse, error) {
		info := version.Get()
		return &models.VersionResponse{
			Body: models.VersionData{
				Version:   info.Version,
				GitCommit: info.GitCommit,
				BuildDate: info.BuildDate,
				GoVersion: info.GoVersion,
				Platform:  info.Platform,
			},
		}, nil
	})

	s.registerCameraRoutes()
	s.registerDeviceRoutes()
	s.registerHintRoutes()
	s.registerEventRoutes()
	s.registerLogRoutes()
}

// basicAuthMiddleware checks HTTP basic credentials on operations that
// declare security. EventSource clients cannot set headers, so the base64
// "user:pass" pair is also accepted in the auth query parameter.
func (s *Server) basicAuthMiddleware(username, password string) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if op := ctx.Operation(); op != nil && len(op.Security) == 0 {
			next(ctx)
			return
		}

		encoded := ""
		if header := ctx.Header("Authorization"); header != "" {
			const prefix = "Basic "
			if !strings.HasPrefix(header, prefix) {
				s.unauthorized(ctx, "Invalid authentication type")
				return
			}
			encoded = header[len(prefix):]
		} else {
			encoded = ctx.Query("auth")
		}
		if encoded == "" {
			s.unauthorized(ctx, "Authentication required")
			return
		}

		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			s.unauthorized(ctx, "Invalid credentials format", err)
			return
		}
		user, pass, ok := strings.Cut(string(decoded), ":")
		if !ok {
			s.unauthorized(ctx, "Invalid credentials format")
			return
		}
		if user != username || pass != password {
			s.unauthorized(ctx, "Invalid credentials")
			return
		}

		next(ctx)
	}
}

func (s *Server) unauthorized(ctx huma.Context, msg string, errs ...error) {
	ctx.SetHeader("WWW-Authenticate", authRealm)
	_ = huma.WriteErr(s.api, ctx, http.StatusUnauthorized, msg, errs...)
}

// withAuth returns the security requirement for basic auth.
func withAuth() []map[string][]string {
	return []map[string][]string{
		{"basicAuth": {}},
	}
}
