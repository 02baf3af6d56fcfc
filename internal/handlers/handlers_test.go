package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/genpersona/api/internal/llm"
	"github.com/genpersona/api/internal/middleware"
	"github.com/genpersona/api/internal/models"
	"github.com/genpersona/api/internal/persona"
	"github.com/genpersona/api/internal/seeds"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	doc  *persona.DocumentResult
	name *persona.NameRecord
	seed string
	err  error
	got  string
}

func (f *fakeService) Submit(_ context.Context, seed string) (*persona.DocumentResult, error) {
	f.got = seed
	return f.doc, f.err
}

func (f *fakeService) SubmitRandom(context.Context) (string, *persona.DocumentResult, error) {
	return f.seed, f.doc, f.err
}

func (f *fakeService) SubmitName(_ context.Context, seed string) (*persona.NameRecord, error) {
	f.got = seed
	return f.name, f.err
}

type fakeHistory struct {
	docs  []models.DocumentRecord
	names []models.NameRecord
	err   error
	limit int
}

func (f *fakeHistory) ListDocuments(_ context.Context, limit int) ([]models.DocumentRecord, error) {
	f.limit = limit
	return f.docs, f.err
}

func (f *fakeHistory) ListNames(_ context.Context, limit int) ([]models.NameRecord, error) {
	return f.names, f.err
}

func newTestRouter(svc PersonaService, hist HistoryStore) *gin.Engine {
	r := gin.New()
	NewPersonaHandler(svc, hist, zap.NewNop()).Register(r.Group("/api/v1"))
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error middleware.APIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestGenerateDocumentValid(t *testing.T) {
	svc := &fakeService{doc: &persona.DocumentResult{
		Document: "{\n  \"name\": \"Dana\"\n}",
		Status:   persona.StatusValid,
		Attempts: 1,
	}}
	r := newTestRouter(svc, nil)

	w := post(r, "/api/v1/personas", `{"persona":"a marketing manager"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a marketing manager", svc.got)

	var resp models.DocumentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "valid", resp.Status)
	assert.Equal(t, 1, resp.Attempts)
	assert.JSONEq(t, `{"name":"Dana"}`, string(resp.Document))
	assert.Empty(t, resp.RawText)
}

func TestGenerateDocumentKeepsDocumentText(t *testing.T) {
	svc := &fakeService{doc: &persona.DocumentResult{
		Document: `{"name":"Dana","employer":"R&D <labs>","employee_id":12345678901234567890}`,
		Status:   persona.StatusValid,
		Attempts: 1,
	}}

	w := post(newTestRouter(svc, nil), "/api/v1/personas", `{"persona":"x"}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"employer":"R&D <labs>"`)
	assert.Contains(t, body, `"employee_id":12345678901234567890`)
	assert.Less(t, strings.Index(body, `"name"`), strings.Index(body, `"employer"`))
}

func TestGenerateDocumentDegradedAndRaw(t *testing.T) {
	t.Run("degraded", func(t *testing.T) {
		svc := &fakeService{doc: &persona.DocumentResult{
			Document: `{"name":"x"}`, Status: persona.StatusDegraded, Attempts: 3, FailurePath: "demographics",
		}}
		w := post(newTestRouter(svc, nil), "/api/v1/personas", `{"persona":"x"}`)

		require.Equal(t, http.StatusOK, w.Code)
		var resp models.DocumentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "demographics", resp.FailurePath)
	})

	t.Run("raw", func(t *testing.T) {
		svc := &fakeService{doc: &persona.DocumentResult{Document: "not json", Status: persona.StatusRaw, Attempts: 3}}
		w := post(newTestRouter(svc, nil), "/api/v1/personas", `{"persona":"x"}`)

		require.Equal(t, http.StatusOK, w.Code)
		var resp models.DocumentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "raw", resp.Status)
		assert.Equal(t, "not json", resp.RawText)
		assert.Empty(t, resp.Document)
	})
}

func TestGenerateDocumentErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		body     string
		wantCode int
		wantAPI  string
	}{
		{"bad body", nil, `{`, http.StatusBadRequest, middleware.ErrCodeBadRequest},
		{"empty seed", persona.ErrEmptySeed, `{"persona":""}`, http.StatusBadRequest, middleware.ErrCodeBadRequest},
		{
			"transport",
			fmt.Errorf("%w: attempt 1: %w", persona.ErrTransport, &llm.TransportError{StatusCode: 503}),
			`{"persona":"x"}`, http.StatusBadGateway, middleware.ErrCodeAIServiceUnavailable,
		},
		{"exhausted", persona.ErrGenerationExhausted, `{"persona":"x"}`, http.StatusInternalServerError, middleware.ErrCodeGenerationExhausted},
		{"other", errors.New("boom"), `{"persona":"x"}`, http.StatusInternalServerError, middleware.ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(newTestRouter(&fakeService{err: tt.err}, nil), "/api/v1/personas", tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantAPI, errorCode(t, w))
		})
	}
}

func TestGenerateRandom(t *testing.T) {
	svc := &fakeService{seed: "a beekeeper", doc: &persona.DocumentResult{Document: `{}`, Status: persona.StatusDegraded, Attempts: 3}}
	w := post(newTestRouter(svc, nil), "/api/v1/personas/random", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.DocumentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "a beekeeper", resp.Seed)

	w = post(newTestRouter(&fakeService{err: seeds.ErrUnavailable}, nil), "/api/v1/personas/random", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, middleware.ErrCodeSeedsUnavailable, errorCode(t, w))
}

func TestGenerateName(t *testing.T) {
	svc := &fakeService{name: &persona.NameRecord{
		FullName: "Kofi Mensah", Title: "Educator", SourcePersona: "teacher", Source: persona.NameFallback, Attempts: 5,
	}}
	w := post(newTestRouter(svc, nil), "/api/v1/names", `{"persona":"teacher"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.NameResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.NameResponse{
		FullName: "Kofi Mensah", Title: "Educator", SourcePersona: "teacher", Source: "fallback", Attempts: 5,
	}, resp)
}

func TestHistory(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		w := get(newTestRouter(&fakeService{}, nil), "/api/v1/history")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("lists", func(t *testing.T) {
		hist := &fakeHistory{names: []models.NameRecord{{ID: uuid.New(), FullName: "Eero Lindqvist", CreatedAt: time.Now()}}}
		w := get(newTestRouter(&fakeService{}, hist), "/api/v1/history?limit=5")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 5, hist.limit)
		var resp models.HistoryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Documents)
		require.Len(t, resp.Names, 1)
		assert.Equal(t, "Eero Lindqvist", resp.Names[0].FullName)
	})

	t.Run("bad limit", func(t *testing.T) {
		w := get(newTestRouter(&fakeService{}, &fakeHistory{}), "/api/v1/history?limit=ten")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store error", func(t *testing.T) {
		w := get(newTestRouter(&fakeService{}, &fakeHistory{err: errors.New("down")}), "/api/v1/history")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, middleware.ErrCodeDatabaseError, errorCode(t, w))
	})
}

type failingClient struct{}

func (failingClient) Generate(context.Context, llm.Request) (string, error) {
	return "", &llm.TransportError{StatusCode: 503}
}

func TestDeepHealth(t *testing.T) {
	t.Run("nothing configured", func(t *testing.T) {
		r := gin.New()
		r.GET("/health/deep", NewHealthHandler(nil, nil, nil, nil).DeepHealth)

		w := get(r, "/health/deep")

		require.Equal(t, http.StatusOK, w.Code)
		var resp models.HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "not configured", resp.Services["database"])
	})

	t.Run("open circuit", func(t *testing.T) {
		breaker := llm.NewBreakerWithConfig(failingClient{}, 1, 1, time.Hour)
		_, _ = breaker.Generate(context.Background(), llm.Request{})

		r := gin.New()
		r.GET("/health/deep", NewHealthHandler(nil, nil, nil, breaker).DeepHealth)

		w := get(r, "/health/deep")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp models.HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "circuit open", resp.Services["generative_service"])
	})
}
