/*
Package server encapsulates the HTTP entry points of the custodian. It maps the
REST routes to the orchestration components of the custodian package and their
error kinds to HTTP status codes.
*/
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/findy-network/findy-custodian/agent/custodian"
	"github.com/findy-network/findy-custodian/agent/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

const shutdownTimeout = 10 * time.Second

// Config is the HTTP level configuration of the server.
type Config struct {
	Port        uint
	RateLimit   int // requests per second, 0 disables
	RateBurst   int
	CORSOrigins []string
	Timeout     time.Duration
	MaxBodySize int64
}

// Server serves the custodian REST API.
type Server struct {
	cust   *custodian.Custodian
	cfg    Config
	router chi.Router
}

func NewServer(cust *custodian.Custodian, cfg Config) *Server {
	if cfg.Timeout == 0 {
		cfg.Timeout = utils.Settings.Timeout()
	}
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = defaultMaxBodySize
	}
	s := &Server{
		cust:   cust,
		cfg:    cfg,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.registerRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logRequest)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Timeout))
	s.router.Use(RateLimit(s.cfg.RateLimit, s.cfg.RateBurst))
	s.router.Use(RequestSizeLimit(s.cfg.MaxBodySize))
}

func (s *Server) registerRoutes() {
	s.router.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		glog.V(5).Infoln("/version requested")
		_, _ = w.Write([]byte(utils.Settings.VersionInfo()))
	})
	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/wallets", func(r chi.Router) {
			r.Get("/", s.handleGetWallets)
			r.Post("/", s.handleCreateWallet)
			r.Route("/{identifier}", func(r chi.Router) {
				r.Get("/", s.handleGetWallet)
				r.Delete("/", s.handleDeleteWallet)
				r.Post("/credentials", s.handleStoreCredential)
				r.Post("/signatures", s.handleSign)
			})
		})
		r.Route("/didDocuments/{identifier}", func(r chi.Router) {
			r.Get("/", s.handleResolve)
			r.Post("/services", s.handleAddService)
			r.Put("/services/{id}", s.handleUpdateService)
			r.Delete("/services/{id}", s.handleRemoveService)
		})
		r.Post("/credentials", s.handleIssueCredential)
		r.Post("/credentials/verify", s.handleVerifyCredential)
		r.Post("/presentations", s.handleCreatePresentation)
		r.Post("/presentations/verify", s.handleVerifyPresentation)
		r.Get("/admin/reconcile", s.handleReconcile)
	})
}

// Handler returns the routes wrapped with the CORS handling.
func (s *Server) Handler() http.Handler {
	if len(s.cfg.CORSOrigins) == 0 {
		return s.router
	}
	return cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
		},
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "Authorization"},
	}).Handler(s.router)
}

// Start serves until the ctx is done and then shuts the server down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		glog.V(1).Infoln(utils.Settings.VersionInfo())
		glog.V(1).Infof("HTTP Server on port: %v", s.cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		glog.V(1).Infoln("shutting down the HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	}
}

// BuildHostAddr builds the address the world sees and writes it to
// utils.Settings.
func BuildHostAddr(scheme, host string, hostPort uint) {
	if hostPort != 80 && hostPort != 443 {
		utils.Settings.SetHostAddr(fmt.Sprintf("%s://%s:%v", scheme, host, hostPort))
		return
	}
	utils.Settings.SetHostAddr(fmt.Sprintf("%s://%s", scheme, host))
}
