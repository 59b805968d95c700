package api

import (
	"fmt"
	"net/http"

	_ "github.com/sftpflow/sftpflow/docs"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/sftpflow/sftpflow/internal/api/handlers"
	"github.com/sftpflow/sftpflow/internal/api/middleware"
)

// RouterOptions carries everything the router wires together.
type RouterOptions struct {
	Handler *handlers.Handler
	Cors    cors.Options
	// JWTSecret protects the trigger routes when non-empty.
	JWTSecret string
	Registry  *prometheus.Registry
}

func SetupRouter(opts RouterOptions) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(opts.Cors)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	// ---------- TRIGGER ROUTES ----------
	transferMux := http.NewServeMux()
	transferMux.HandleFunc("/retrieve", opts.Handler.Retrieve)
	transferMux.HandleFunc("/retrieve-directory", opts.Handler.RetrieveDirectory)
	transferMux.HandleFunc("/send", opts.Handler.Send)
	transferMux.HandleFunc("/reconcile", opts.Handler.Reconcile)

	eventMux := http.NewServeMux()
	eventMux.HandleFunc("/transfer", opts.Handler.TransferEvent)

	apiMux := http.NewServeMux()
	apiMux.Handle("/transfers/",
		http.StripPrefix("/transfers", transferMux),
	)
	apiMux.Handle("/events/",
		http.StripPrefix("/events", eventMux),
	)

	var protected http.Handler = apiMux
	if opts.JWTSecret != "" {
		protected = middleware.Auth(opts.JWTSecret)(protected)
	}
	mainMux.Handle("/api/v1/",
		http.StripPrefix("/api/v1", protected),
	)

	zap.S().Info("router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(handler)
	return handler
}
