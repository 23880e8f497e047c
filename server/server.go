package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"listing-map/services"
	"listing-map/utils"
)

// PDFRenderer turns a printable HTML document into a PDF.
type PDFRenderer interface {
	Render(ctx context.Context, html []byte) ([]byte, error)
}

// Server exposes the dashboard over JSON.
type Server struct {
	dashboard   *services.Dashboard
	listener    *services.ContextListener
	printer     *services.Printer
	pdf         PDFRenderer
	routeTarget services.RouteTarget
	logger      *utils.Logger
	now         func() time.Time

	httpServer *http.Server
}

// New builds the server. pdf may be nil, in which case /api/print.pdf answers 501.
func New(addr string, d *services.Dashboard, l *services.ContextListener, pdf PDFRenderer, target services.RouteTarget, logger *utils.Logger) *Server {
	s := &Server{
		dashboard:   d,
		listener:    l,
		printer:     services.NewPrinter(),
		pdf:         pdf,
		routeTarget: target,
		logger:      logger,
		now:         time.Now,
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}
	return s
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/boards", s.handleBoards)
	mux.HandleFunc("GET /api/items", s.handleItems)
	mux.HandleFunc("GET /api/neighborhoods", s.handleNeighborhoods)
	mux.HandleFunc("GET /api/markers", s.handleMarkers)
	mux.HandleFunc("GET /api/items/{id}/focus", s.handleFocus)
	mux.HandleFunc("GET /api/items/{id}/images", s.handleImages)

	mux.HandleFunc("PUT /api/filters/boards", s.handleBoardFilter)
	mux.HandleFunc("PUT /api/filters/neighborhoods", s.handleNeighborhoodFilter)

	mux.HandleFunc("POST /api/selection/toggle-all", s.handleToggleAll)
	mux.HandleFunc("POST /api/selection/{id}", s.handleSelect(true))
	mux.HandleFunc("DELETE /api/selection/{id}", s.handleSelect(false))

	mux.HandleFunc("GET /api/route", s.handleRoute)
	mux.HandleFunc("GET /api/print", s.handlePrint)
	mux.HandleFunc("GET /api/print.pdf", s.handlePrintPDF)

	mux.HandleFunc("POST /api/context", s.handleContext)

	return s.withRequestID(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[server] Listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("[server] Shutting down")
	return s.httpServer.Shutdown(shutdownCtx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		log := s.logger.With("request_id", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		log.Debug("[server] %s %s %d %v", r.Method, r.URL.Path, rec.status,
			time.Since(start).Round(time.Microsecond))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrEmptySelection):
		status = http.StatusConflict
	case errors.Is(err, services.ErrUnknownItem), errors.Is(err, services.ErrNotPlotted):
		status = http.StatusNotFound
	default:
		s.logger.Error("[server] %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dashboard.Snapshot())
}

func (s *Server) handleBoards(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dashboard.Snapshot().BoardOptions)
}

func (s *Server) handleItems(w http.ResponseWriter, _ *http.Request) {
	items := s.dashboard.Visible()
	if items == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleNeighborhoods(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dashboard.Snapshot().Neighborhoods)
}

func (s *Server) handleMarkers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dashboard.Markers())
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	cmd, err := s.dashboard.FlyTo(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmd)
}

func (s *Server) handleImages(w http.ResponseWriter, r *http.Request) {
	item, err := s.dashboard.Item(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	images := item.ImageURLs
	if images == nil {
		images = []string{}
	}
	writeJSON(w, http.StatusOK, images)
}

type valuesBody struct {
	Values []string `json:"values"`
}

func (s *Server) handleBoardFilter(w http.ResponseWriter, r *http.Request) {
	var body valuesBody
	if !decodeBody(w, r, &body) {
		return
	}
	if len(body.Values) == 0 {
		body.Values = []string{services.BoardCurrent}
	}
	// A reload is not cancelled when the client goes away.
	if err := s.dashboard.SetBoardFilter(context.WithoutCancel(r.Context()), body.Values); err != nil {
		s.logger.Warn("[server] Reload after board filter change failed: %v", err)
	}
	writeJSON(w, http.StatusOK, s.dashboard.Snapshot())
}

func (s *Server) handleNeighborhoodFilter(w http.ResponseWriter, r *http.Request) {
	var body valuesBody
	if !decodeBody(w, r, &body) {
		return
	}
	s.dashboard.SetNeighborhoodFilter(body.Values)
	writeJSON(w, http.StatusOK, s.dashboard.Snapshot())
}

func (s *Server) handleSelect(selected bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.dashboard.Select(r.PathValue("id"), selected); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]string{"selected": selectedIDs(s.dashboard)})
	}
}

func (s *Server) handleToggleAll(w http.ResponseWriter, _ *http.Request) {
	s.dashboard.ToggleAll()
	writeJSON(w, http.StatusOK, map[string][]string{"selected": selectedIDs(s.dashboard)})
}

func selectedIDs(d *services.Dashboard) []string {
	ids := []string{}
	for _, it := range d.Selected() {
		ids = append(ids, it.ID)
	}
	return ids
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	target := s.routeTarget
	if t := r.URL.Query().Get("target"); t != "" {
		target = services.ParseRouteTarget(t)
	}
	url, err := s.dashboard.Route(target)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handlePrint(w http.ResponseWriter, _ *http.Request) {
	doc, err := s.dashboard.Print(s.printer, s.now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(doc)
}

func (s *Server) handlePrintPDF(w http.ResponseWriter, r *http.Request) {
	if s.pdf == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "pdf rendering is not configured"})
		return
	}
	doc, err := s.dashboard.Print(s.printer, s.now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	pdf, err := s.pdf.Render(r.Context(), doc)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="selected-properties.pdf"`)
	_, _ = w.Write(pdf)
}

type contextBody struct {
	BoardID string `json:"boardId"`
}

// handleContext receives the host platform's context change events.
func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	var body contextBody
	if !decodeBody(w, r, &body) {
		return
	}
	s.listener.Set(body.BoardID)
	w.WriteHeader(http.StatusAccepted)
}
