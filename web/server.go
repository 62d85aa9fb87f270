// Package web serves a localhost-only read-only dashboard over a diagnosed
// master workbook; it has no auth in this mode.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"dgamaster/diagnosis"
	"dgamaster/reading"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	path   string
	logger *zap.Logger
	mux    *http.ServeMux

	mu       sync.Mutex
	snapshot *diagnosis.Snapshot
	modTime  time.Time
}

type summaryPageView struct {
	Title string
	Path  string
	SummaryView
}

type transformerPageView struct {
	Title string
	TransformerView
}

type apiSummaryRow struct {
	Plant       string `json:"plant"`
	Transformer string `json:"transformer"`
	Location    string `json:"location"`
	SampleDate  string `json:"sampleDate"`
	IEEE        string `json:"ieee"`
	Ratios      string `json:"ratios"`
	IEC         string `json:"iec"`
	Duval       string `json:"duval"`
	Final       string `json:"final"`
	Confidence  int    `json:"confidence"`
}

// NewServer serves the workbook at path. The workbook is read again whenever
// its modification time changes.
func NewServer(path string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	server := &Server{path: path, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", server.handleSummary)
	mux.HandleFunc("GET /transformer", server.handleTransformer)
	mux.HandleFunc("GET /api/summary", server.handleAPISummary)
	server.mux = mux

	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.loadSnapshot()
	if err != nil {
		s.writeLoadError(w, err)
		return
	}

	view := summaryPageView{
		Title:       "Resumen general",
		Path:        s.path,
		SummaryView: BuildSummaryView(snapshot, r.URL.Query().Get("plant")),
	}
	if err := renderTemplate(w, "summary.html", view); err != nil {
		s.logger.Error("render summary page", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleTransformer(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	key := reading.Key{
		Plant:       strings.TrimSpace(query.Get("plant")),
		Transformer: strings.TrimSpace(query.Get("transformer")),
		Location:    strings.TrimSpace(query.Get("location")),
	}
	if key.Plant == "" || key.Transformer == "" {
		http.Error(w, "plant and transformer are required", http.StatusBadRequest)
		return
	}

	snapshot, err := s.loadSnapshot()
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	detail, ok := BuildTransformerView(snapshot, key)
	if !ok {
		http.Error(w, "transformer not found", http.StatusNotFound)
		return
	}

	view := transformerPageView{
		Title:           "Diagnóstico detallado",
		TransformerView: detail,
	}
	if err := renderTemplate(w, "transformer.html", view); err != nil {
		s.logger.Error("render transformer page", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.loadSnapshot()
	if err != nil {
		status := http.StatusInternalServerError
		if isMissingResource(err) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	plant := strings.TrimSpace(r.URL.Query().Get("plant"))
	out := make([]apiSummaryRow, 0, len(snapshot.Summary))
	for _, row := range snapshot.Summary {
		if plant != "" && row.Key.Plant != plant {
			continue
		}
		out = append(out, apiSummaryRow{
			Plant:       row.Key.Plant,
			Transformer: row.Key.Transformer,
			Location:    row.Key.Location,
			SampleDate:  row.SampleDate,
			IEEE:        row.IEEE,
			Ratios:      row.Ratios,
			IEC:         row.IEC,
			Duval:       row.Duval,
			Final:       row.Final,
			Confidence:  row.Confidence,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) loadSnapshot() (*diagnosis.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &diagnosis.MissingResourceError{Path: s.path}
		}
		return nil, fmt.Errorf("stat workbook %s: %w", s.path, err)
	}
	if s.snapshot != nil && info.ModTime().Equal(s.modTime) {
		return s.snapshot, nil
	}

	snapshot, err := diagnosis.Load(s.path)
	if err != nil {
		return nil, err
	}
	s.snapshot = snapshot
	s.modTime = info.ModTime()
	s.logger.Debug("workbook loaded", zap.String("path", s.path), zap.Int("transformers", len(snapshot.Summary)))
	return snapshot, nil
}

func (s *Server) writeLoadError(w http.ResponseWriter, err error) {
	if isMissingResource(err) {
		http.Error(w, err.Error()+" (run \"dgamaster build\" and \"dgamaster diagnose\" first)", http.StatusNotFound)
		return
	}
	s.logger.Error("load workbook", zap.String("path", s.path), zap.Error(err))
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func isMissingResource(err error) bool {
	var missing *diagnosis.MissingResourceError
	return errors.As(err, &missing)
}

func transformerLink(key reading.Key) string {
	values := url.Values{}
	values.Set("plant", key.Plant)
	values.Set("transformer", key.Transformer)
	values.Set("location", key.Location)
	return "/transformer?" + values.Encode()
}

func renderTemplate(w http.ResponseWriter, pageTemplate string, data any) error {
	tmpl, err := template.New("base.html").Funcs(template.FuncMap{
		"orDash": func(value string) string {
			if strings.TrimSpace(value) == "" {
				return "-"
			}
			return value
		},
	}).ParseFS(templateFS, "templates/base.html", "templates/"+pageTemplate)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", pageTemplate, err)
	}
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		return fmt.Errorf("render template %s: %w", pageTemplate, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
