// Package server exposes the blade surrogate over HTTP: an input form, a
// prediction endpoint accepting form or JSON input, and a health probe.
//
// The model handle is passed into the Server explicitly and never mutated
// after construction; concurrent requests share it without locking.
package server

import (
	"embed"
	"encoding/json"
	"html/template"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/thesoulseizure/WindTurbineBladeOptimization/blade"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/pkg/errors"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/surrogate"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server handles the web and API boundary around a loaded surrogate model.
type Server struct {
	model  *surrogate.Model
	logger zerolog.Logger
	tmpl   *template.Template
	mux    *http.ServeMux
}

// New builds a Server around a loaded, read-only model.
func New(m *surrogate.Model, logger zerolog.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}

	s := &Server{
		model:  m,
		logger: logger,
		tmpl:   tmpl,
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /", s.handleIndex)
	s.mux.HandleFunc("POST /predict", s.handlePredict)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(sw, r)
	s.logger.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", sw.status).
		Dur("elapsed", time.Since(start)).
		Msg("request")
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.renderTemplate(w, http.StatusOK, "index.html", nil)
}

// predictResponse is the JSON shape of the prediction endpoint.
type predictResponse struct {
	Success     bool                `json:"success"`
	Predictions *blade.TargetVector `json:"predictions,omitempty"`
	Error       string              `json:"error,omitempty"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	isJSON := wantsJSON(r)

	features, err := s.parseFeatures(r, isJSON)
	if err != nil {
		s.replyError(w, http.StatusBadRequest, err, isJSON)
		return
	}

	preds, err := s.model.Predict(features)
	if err != nil {
		status := http.StatusBadRequest
		var vErr *errors.ValidationError
		if !errors.As(err, &vErr) {
			// Anything past validation is a server-side failure.
			status = http.StatusInternalServerError
		}
		s.replyError(w, status, err, isJSON)
		return
	}

	if isJSON {
		s.replyJSON(w, http.StatusOK, predictResponse{Success: true, Predictions: &preds})
		return
	}
	s.renderTemplate(w, http.StatusOK, "result.html", preds)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.replyJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"model_loaded": s.model != nil,
	})
}

// parseFeatures extracts the seven feature values from either the JSON body
// or the posted form. Missing or non-numeric fields yield a ValidationError.
func (s *Server) parseFeatures(r *http.Request, isJSON bool) (blade.FeatureVector, error) {
	if isJSON {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return blade.FeatureVector{}, errors.NewValidationError("body", "invalid JSON payload", err.Error())
		}
		return featuresFrom(func(name string) (any, bool) {
			v, ok := payload[name]
			return v, ok
		})
	}

	if err := r.ParseForm(); err != nil {
		return blade.FeatureVector{}, errors.NewValidationError("body", "invalid form payload", err.Error())
	}
	return featuresFrom(func(name string) (any, bool) {
		if !r.PostForm.Has(name) || r.PostForm.Get(name) == "" {
			return nil, false
		}
		return r.PostForm.Get(name), true
	})
}

func featuresFrom(get func(name string) (any, bool)) (blade.FeatureVector, error) {
	vals := make([]float64, len(blade.FeatureNames))
	for i, name := range blade.FeatureNames {
		raw, ok := get(name)
		if !ok {
			return blade.FeatureVector{}, errors.NewValidationError(name, "missing input", nil)
		}
		v, ok := toFloat(raw)
		if !ok {
			return blade.FeatureVector{}, errors.NewValidationError(name, "invalid numeric value", raw)
		}
		vals[i] = v
	}
	return blade.FeaturesFromValues(vals)
}

// toFloat accepts JSON numbers and numeric strings, matching the tolerant
// parsing of the original service.
func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func wantsJSON(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == "application/json"
}

func (s *Server) replyError(w http.ResponseWriter, status int, err error, isJSON bool) {
	s.logger.Warn().Err(err).Int("status", status).Msg("prediction rejected")
	if isJSON {
		s.replyJSON(w, status, predictResponse{Success: false, Error: err.Error()})
		return
	}
	s.renderTemplate(w, status, "error.html", map[string]string{"Message": err.Error()})
}

func (s *Server) replyJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) renderTemplate(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error().Err(err).Str("template", name).Msg("failed to render template")
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
