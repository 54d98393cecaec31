package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
	"github.com/Srengnx007/Khmer-AI/internal/domain"
	domerrors "github.com/Srengnx007/Khmer-AI/internal/domain/errors"
)

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

func TestRegistry_ContainsAllTools(t *testing.T) {
	expected := []string{
		"translator", "study-helper", "market-advisor", "grammar-checker",
		"summarizer", "email-writer", "code-explainer", "recipe-generator",
		"travel-planner", "fitness-coach", "story-writer", "math-solver",
		"interview-coach", "resume-reviewer", "product-describer", "dream-interpreter",
	}
	r := NewRegistry()
	require.Len(t, r.Names(), len(expected))
	for _, name := range expected {
		tool, ok := r.Get(name)
		require.True(t, ok, "missing tool %s", name)
		require.NotEmpty(t, tool.Required)
		require.Contains(t, tool.Template, "{"+tool.Required+"}")
		for _, opt := range tool.Optional {
			require.Contains(t, tool.Template, "{"+opt+"}")
		}
	}
}

func TestBuildPrompt_InterpolatesAllFields(t *testing.T) {
	r := NewRegistry()
	tool, ok := r.Get("market-advisor")
	require.True(t, ok)

	prompt := tool.BuildPrompt(map[string]string{
		"crop":        "rice",
		"quantity":    "2 tonnes",
		"harvestDate": "November",
	})
	require.Contains(t, prompt, "rice")
	require.Contains(t, prompt, "2 tonnes")
	require.Contains(t, prompt, "November")
	require.NotContains(t, prompt, "{crop}")
}

func TestBuildPrompt_MissingOptionalRendersEmpty(t *testing.T) {
	r := NewRegistry()
	tool, _ := r.Get("translator")

	prompt := tool.BuildPrompt(map[string]string{"text": "hello"})
	require.Contains(t, prompt, "hello")
	require.NotContains(t, prompt, "{targetLang}")
}

func TestQuota_BlocksAtLimit(t *testing.T) {
	store := &fakeUsageStore{}
	quota := NewQuota(store, 20, time.Hour)
	userID := domain.NewUserID(uuid.New())

	for i := 0; i < 20; i++ {
		require.NoError(t, quota.Check(context.Background(), userID, "translator"))
		require.NoError(t, quota.Consume(context.Background(), userID, "translator", 5))
	}
	err := quota.Check(context.Background(), userID, "translator")
	require.ErrorIs(t, err, domerrors.ErrRateLimited)
}

func TestQuota_WindowSlides(t *testing.T) {
	store := &fakeUsageStore{}
	quota := NewQuota(store, 20, time.Hour)
	userID := domain.NewUserID(uuid.New())

	now := time.Now()
	quota.now = func() time.Time { return now }
	for i := 0; i < 20; i++ {
		require.NoError(t, quota.Consume(context.Background(), userID, "translator", 5))
	}
	require.ErrorIs(t, quota.Check(context.Background(), userID, "translator"), domerrors.ErrRateLimited)

	// 61 minutes later the old records fall out of the window.
	quota.now = func() time.Time { return now.Add(61 * time.Minute) }
	require.NoError(t, quota.Check(context.Background(), userID, "translator"))
}

func TestQuota_IsPerUserPerTool(t *testing.T) {
	store := &fakeUsageStore{}
	quota := NewQuota(store, 1, time.Hour)
	alice := domain.NewUserID(uuid.New())
	bob := domain.NewUserID(uuid.New())

	require.NoError(t, quota.Consume(context.Background(), alice, "translator", 5))
	require.ErrorIs(t, quota.Check(context.Background(), alice, "translator"), domerrors.ErrRateLimited)
	require.NoError(t, quota.Check(context.Background(), alice, "summarizer"))
	require.NoError(t, quota.Check(context.Background(), bob, "translator"))
}

func TestRunTool_MeteredConsumesOnSuccess(t *testing.T) {
	store := &fakeUsageStore{}
	gen := &fakeGenerator{text: "bonjour"}
	uc := NewRunTool(gen, NewQuota(store, 20, time.Hour))
	tool, _ := NewRegistry().Get("translator")

	result, err := uc.Execute(context.Background(), RunToolInput{
		Tool:    tool,
		Fields:  map[string]string{"text": "hello", "targetLang": "French"},
		UserID:  domain.NewUserID(uuid.New()),
		Metered: true,
	})
	require.NoError(t, err)
	require.Equal(t, "bonjour", result.Text)
	require.Len(t, store.records, 1)
	require.Equal(t, "translator", store.records[0].Tool)
	require.Equal(t, len("hello"), store.records[0].InputLength)
}

func TestRunTool_GenerationFailureConsumesNothing(t *testing.T) {
	store := &fakeUsageStore{}
	gen := &fakeGenerator{err: errors.New("upstream down")}
	uc := NewRunTool(gen, NewQuota(store, 20, time.Hour))
	tool, _ := NewRegistry().Get("translator")

	_, err := uc.Execute(context.Background(), RunToolInput{
		Tool:    tool,
		Fields:  map[string]string{"text": "hello"},
		UserID:  domain.NewUserID(uuid.New()),
		Metered: true,
	})
	require.Error(t, err)
	require.Empty(t, store.records)
}

func TestRunTool_RateLimitedSkipsGenerator(t *testing.T) {
	store := &fakeUsageStore{}
	quota := NewQuota(store, 1, time.Hour)
	userID := domain.NewUserID(uuid.New())
	require.NoError(t, quota.Consume(context.Background(), userID, "translator", 1))

	gen := &fakeGenerator{text: "x"}
	uc := NewRunTool(gen, quota)
	tool, _ := NewRegistry().Get("translator")

	_, err := uc.Execute(context.Background(), RunToolInput{
		Tool:    tool,
		Fields:  map[string]string{"text": "hello"},
		UserID:  userID,
		Metered: true,
	})
	require.ErrorIs(t, err, domerrors.ErrRateLimited)
	require.Zero(t, gen.calls)
}

func TestRunTool_UnmeteredBypassesQuota(t *testing.T) {
	store := &fakeUsageStore{}
	gen := &fakeGenerator{text: strings.Repeat("ok ", 3)}
	uc := NewRunTool(gen, NewQuota(store, 1, time.Hour))
	tool, _ := NewRegistry().Get("summarizer")

	for i := 0; i < 5; i++ {
		_, err := uc.Execute(context.Background(), RunToolInput{
			Tool:   tool,
			Fields: map[string]string{"text": "some text"},
		})
		require.NoError(t, err)
	}
	require.Empty(t, store.records)
}
