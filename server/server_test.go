package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesoulseizure/WindTurbineBladeOptimization/blade"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/train"
)

var baselineForm = url.Values{
	"youngs_modulus": {"70"},
	"density":        {"2700"},
	"poissons_ratio": {"0.33"},
	"thickness":      {"5"},
	"length":         {"1"},
	"pressure":       {"101325"},
	"frequency":      {"300"},
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ds, err := blade.Generate(100, 42)
	require.NoError(t, err)

	cfg := train.DefaultConfig()
	cfg.NEstimators = 10
	m, _, err := train.Fit(ds, cfg)
	require.NoError(t, err)

	srv, err := New(m, zerolog.Nop())
	require.NoError(t, err)
	return srv
}

func TestIndexPage(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "youngs_modulus")
	assert.Contains(t, rec.Body.String(), "form")
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["model_loaded"])
}

func TestPredictForm(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(baselineForm.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Prediction Results")
	assert.Contains(t, rec.Body.String(), "Deformation")
}

func TestPredictJSON(t *testing.T) {
	srv := newTestServer(t)

	payload := map[string]float64{
		"youngs_modulus": 70,
		"density":        2700,
		"poissons_ratio": 0.33,
		"thickness":      5,
		"length":         1,
		"pressure":       101325,
		"frequency":      300,
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success     bool               `json:"success"`
		Predictions blade.TargetVector `json:"predictions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	for j, v := range body.Predictions.Values() {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "target %s is not finite", blade.TargetNames[j])
	}
}

func TestPredictJSONStringValues(t *testing.T) {
	// Numeric strings are accepted, matching the tolerant original service.
	srv := newTestServer(t)

	raw := []byte(`{"youngs_modulus":"70","density":"2700","poissons_ratio":"0.33",` +
		`"thickness":"5","length":"1","pressure":"101325","frequency":"300"}`)
	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPredictJSONMissingField(t *testing.T) {
	srv := newTestServer(t)

	raw := []byte(`{"youngs_modulus":70}`)
	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "density")
}

func TestPredictJSONNonNumeric(t *testing.T) {
	srv := newTestServer(t)

	raw := []byte(`{"youngs_modulus":"abc","density":2700,"poissons_ratio":0.33,` +
		`"thickness":5,"length":1,"pressure":101325,"frequency":300}`)
	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictJSONInvalidBody(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader("{truncated"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictFormMissingField(t *testing.T) {
	srv := newTestServer(t)

	form := url.Values{}
	for k, v := range baselineForm {
		form[k] = v
	}
	form.Del("pressure")

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Prediction Error")
}

func TestPredictFormOutOfRange(t *testing.T) {
	srv := newTestServer(t)

	form := url.Values{}
	for k, v := range baselineForm {
		form[k] = v
	}
	form.Set("poissons_ratio", "1.7")

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictFormNaN(t *testing.T) {
	// ParseFloat accepts "NaN", so the range check has to reject it.
	srv := newTestServer(t)

	form := url.Values{}
	for k, v := range baselineForm {
		form[k] = v
	}
	form.Set("pressure", "NaN")

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "pressure")
}

func TestUnknownPath(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
