// Package api is the loopback JSON front end over the application services.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/medigenie/internal/client/services"
	"github.com/dmitrijs2005/medigenie/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address  string
	svc      *services.Services
	logger   logging.Logger
	sessions *sessionStore
	now      func() time.Time
}

func NewServer(a string, svc *services.Services, l logging.Logger) *Server {
	if l == nil {
		l = logging.Nop()
	}
	return &Server{
		address:  a,
		svc:      svc,
		logger:   l.With("module", "http_api"),
		sessions: newSessionStore(),
		now:      time.Now,
	}
}

// Router returns the handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.requestIDHeader)
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/profile", func(pr chi.Router) {
		pr.Get("/", s.getProfile)
		pr.Post("/", s.register)
		pr.Put("/", s.editProfile)
		pr.Put("/language", s.setLanguage)
	})

	r.Route("/logs", func(lr chi.Router) {
		lr.Get("/", s.listLogs)
		lr.Post("/", s.commitLog)
	})

	r.Route("/twin", func(tr chi.Router) {
		tr.Get("/", s.getTwin)
		tr.Post("/rebuild", s.rebuildTwin)
		tr.Post("/simulate", s.simulate)
	})

	r.Get("/summary", s.getSummary)
	r.Post("/summary", s.refreshSummary)

	r.Route("/chat/sessions", func(cr chi.Router) {
		cr.Post("/", s.startSession)
		cr.Get("/{sessionID}", s.getSession)
		cr.Post("/{sessionID}/messages", s.sendMessage)
	})

	r.Route("/advice", func(ar chi.Router) {
		ar.Post("/triage", s.triage)
		ar.Post("/pathway", s.pathway)
		ar.Post("/prescription", s.prescription)
		ar.Post("/drugs", s.drugs)
		ar.Post("/lab", s.lab)
		ar.Post("/search", s.search)
		ar.Post("/clinics", s.clinics)
	})

	r.Get("/export/workbook", s.exportWorkbook)
	r.Get("/export/report", s.exportReport)

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
