package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Srengnx007/Khmer-AI/internal/application/assistant"
	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
	"github.com/Srengnx007/Khmer-AI/internal/domain"
	"github.com/Srengnx007/Khmer-AI/internal/infrastructure/http/middleware"
)

type fakeGenerator struct {
	calls int
	text  string
	err   error
}

func (g *fakeGenerator) Generate(ctx context.Context, input ports.GenerateInput) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.text, nil
}

type fakeUsageStore struct {
	records []*domain.UsageRecord
}

func (s *fakeUsageStore) Record(ctx context.Context, rec *domain.UsageRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeUsageStore) CountSince(ctx context.Context, userID domain.UserID, tool string, since time.Time) (int, error) {
	n := 0
	for _, r := range s.records {
		if r.UserID == userID && r.Tool == tool && r.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func newToolsRouter(gen *fakeGenerator, usage *fakeUsageStore, protected []string, identity *middleware.Identity) http.Handler {
	registry := assistant.NewRegistry()
	runner := assistant.NewRunTool(gen, assistant.NewQuota(usage, 2, time.Hour))
	h := NewToolsHandler(registry, runner, protected, zerolog.Nop())
	r := chi.NewRouter()
	if identity != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(middleware.WithIdentity(req.Context(), *identity)))
			})
		})
	}
	r.Get("/api/tools/", h.ListTools)
	r.Post("/api/tools/{tool}", h.Run)
	return r
}

func postTool(t *testing.T, router http.Handler, tool, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/tools/"+tool, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestToolsHandler_Success(t *testing.T) {
	gen := &fakeGenerator{text: "bonjour"}
	router := newToolsRouter(gen, &fakeUsageStore{}, nil, nil)

	rec := postTool(t, router, "translator", `{"fields":{"text":"hello","targetLang":"French"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"result":"bonjour"}`, rec.Body.String())
	require.Equal(t, 1, gen.calls)
}

func TestToolsHandler_MarketAdvisorFields(t *testing.T) {
	gen := &fakeGenerator{text: "sell in December"}
	router := newToolsRouter(gen, &fakeUsageStore{}, nil, nil)

	rec := postTool(t, router, "market-advisor", `{"fields":{"crop":"rice","quantity":"2 tonnes","harvestDate":"November"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "sell in December")
}

func TestToolsHandler_MissingRequiredFieldSkipsGenerator(t *testing.T) {
	gen := &fakeGenerator{text: "never"}
	router := newToolsRouter(gen, &fakeUsageStore{}, nil, nil)

	rec := postTool(t, router, "market-advisor", `{"fields":{"quantity":"2 tonnes"}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "crop")
	require.Zero(t, gen.calls)
}

func TestToolsHandler_BlankRequiredFieldIsRejected(t *testing.T) {
	gen := &fakeGenerator{}
	router := newToolsRouter(gen, &fakeUsageStore{}, nil, nil)

	rec := postTool(t, router, "translator", `{"fields":{"text":"   "}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, gen.calls)
}

func TestToolsHandler_UnknownTool(t *testing.T) {
	router := newToolsRouter(&fakeGenerator{}, &fakeUsageStore{}, nil, nil)
	rec := postTool(t, router, "fortune-teller", `{"fields":{"question":"?"}}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToolsHandler_UpstreamFailureIsOpaque(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connect refused to 10.0.0.5:443")}
	router := newToolsRouter(gen, &fakeUsageStore{}, nil, nil)

	rec := postTool(t, router, "translator", `{"fields":{"text":"hello"}}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "Internal Server Error")
	require.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestToolsHandler_ProtectedToolRequiresAuth(t *testing.T) {
	gen := &fakeGenerator{text: "x"}
	router := newToolsRouter(gen, &fakeUsageStore{}, []string{"translator"}, nil)

	rec := postTool(t, router, "translator", `{"fields":{"text":"hello"}}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Zero(t, gen.calls)
}

func TestToolsHandler_ProtectedToolEnforcesQuota(t *testing.T) {
	gen := &fakeGenerator{text: "x"}
	usage := &fakeUsageStore{}
	identity := &middleware.Identity{UserID: domain.NewUserID(uuid.New()), Role: domain.RoleUser}
	// Quota limit is 2 in the fixture.
	router := newToolsRouter(gen, usage, []string{"translator"}, identity)

	for i := 0; i < 2; i++ {
		rec := postTool(t, router, "translator", `{"fields":{"text":"hello"}}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := postTool(t, router, "translator", `{"fields":{"text":"hello"}}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Contains(t, rec.Body.String(), "rate_limited")
	require.Equal(t, 2, gen.calls)
	require.Len(t, usage.records, 2)
}

func TestToolsHandler_UnprotectedToolIsNotMetered(t *testing.T) {
	gen := &fakeGenerator{text: "x"}
	usage := &fakeUsageStore{}
	identity := &middleware.Identity{UserID: domain.NewUserID(uuid.New()), Role: domain.RoleUser}
	router := newToolsRouter(gen, usage, []string{"translator"}, identity)

	for i := 0; i < 5; i++ {
		rec := postTool(t, router, "summarizer", `{"fields":{"text":"some text"}}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	require.Empty(t, usage.records)
}

func TestToolsHandler_ListTools(t *testing.T) {
	router := newToolsRouter(&fakeGenerator{}, &fakeUsageStore{}, []string{"translator"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/tools/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "translator")
	require.Contains(t, rec.Body.String(), "dream-interpreter")
}
