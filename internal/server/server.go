// Package server hosts the browser dashboard: the main filter/chart
// page, the per-file analysis pages, and the export downloads.
//
// The server is request/response only. Each request recomputes its view
// from the listing client's cached documents; selections travel as
// repeated query parameters, so every page is a plain GET and the
// browser's back button behaves.
package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"tuxboard/internal/listing"
	"tuxboard/internal/logging"
	"tuxboard/internal/report"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Title is the dashboard heading, kept from the original deployment.
const Title = "Linux Kernel Build and Test Dashboard"

// Server wires the listing client to the HTTP handlers.
type Server struct {
	client *listing.Client
	logger *slog.Logger
	tmpl   *template.Template
	mux    *http.ServeMux
}

// New builds a Server over the given listing client.
func New(client *listing.Client) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"heatColor":   report.HeatColor,
		"joinComma":   joinComma,
		"hasValue":    hasValue,
		"columnTitle": columnTitle,
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("server: parse templates: %w", err)
	}

	s := &Server{
		client: client,
		logger: logging.New("server"),
		tmpl:   tmpl,
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleDashboard)
	s.mux.HandleFunc("GET /devices", s.handleDeviceAnalysis)
	s.mux.HandleFunc("GET /tests", s.handleTestAnalysis)
	s.mux.HandleFunc("GET /device-tests", s.handleCrossAnalysis)
	s.mux.HandleFunc("GET /refresh", s.handleRefresh)
	s.mux.HandleFunc("GET /download/csv", s.handleDownloadCSV)
	s.mux.HandleFunc("GET /download/xlsx", s.handleDownloadExcel)
	s.mux.HandleFunc("GET /download/report.html", s.handleDownloadHTML)
	s.mux.HandleFunc("GET /download/report.pdf", s.handleDownloadPDF)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	s.logger.Info("dashboard listening", "addr", addr, "base_url", s.client.BaseURL())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// render executes one page template; render failures become a plain
// 500 because the page itself could not be produced.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("render failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func joinComma(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ", "
		}
		out += v
	}
	return out
}

func hasValue(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
