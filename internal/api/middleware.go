package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/camtune/internal/logging"
)

var (
	corsAllowMethods = strings.Join([]string{"GET", "POST", "DELETE", "OPTIONS"}, ", ")
	corsAllowHeaders = strings.Join([]string{"Content-Type", "Authorization", "Accept", "Origin"}, ", ")
	corsMaxAge       = strconv.Itoa(86400)
)

func setCORSHeaders(set func(name, value string)) {
	set("Access-Control-Allow-Origin", "*")
	set("Access-Control-Allow-Methods", corsAllowMethods)
	set("Access-Control-Allow-Headers", corsAllowHeaders)
	set("Access-Control-Max-Age", corsMaxAge)
}

// corsMiddleware adds permissive CORS headers to API responses.
func corsMiddleware(ctx huma.Context, next func(huma.Context)) {
	setCORSHeaders(ctx.SetHeader)
	if ctx.Method() == http.MethodOptions {
		ctx.SetStatus(http.StatusNoContent)
		return
	}
	next(ctx)
}

// addCORSHandler answers preflight requests, which never reach huma
// middleware because no operation is registered for OPTIONS.
func addCORSHandler(mux *http.ServeMux) {
	mux.HandleFunc("OPTIONS /", func(w http.ResponseWriter, _ *http.Request) {
		setCORSHeaders(w.Header().Set)
		w.WriteHeader(http.StatusNoContent)
	})
}

// HTTPLoggingMiddleware logs each request at a level chosen by its status.
func HTTPLoggingMiddleware(ctx huma.Context, next func(huma.Context)) {
	start := time.Now()
	next(ctx)

	attrs := []slog.Attr{
		slog.String("method", ctx.Method()),
		slog.String("path", ctx.URL().Path),
		slog.String("remote_addr", ctx.RemoteAddr()),
		slog.Int("status", ctx.Status()),
		slog.Duration("duration", time.Since(start)),
	}
	if q := ctx.URL().RawQuery; q != "" && !strings.Contains(q, "auth=") {
		attrs = append(attrs, slog.String("query", q))
	}
	if ua := ctx.Header("User-Agent"); ua != "" {
		attrs = append(attrs, slog.String("user_agent", ua))
	}

	logging.GetLogger("http").LogAttrs(ctx.Context(), requestLevel(ctx.Method(), ctx.Status()), "HTTP request completed", attrs...)
}

func requestLevel(method string, status int) slog.Level {
	switch {
	case method == http.MethodOptions:
		return slog.LevelDebug
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
