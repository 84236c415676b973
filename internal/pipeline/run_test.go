package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-curator/internal/llm"
	"github.com/jonathan/resume-curator/internal/selection"
	"github.com/jonathan/resume-curator/internal/types"
)

func testCorpus() *types.Corpus {
	return &types.Corpus{Experience: []types.Company{
		{
			ID: "acme", Name: "Acme", Priority: 8,
			Children: []types.Position{
				{ID: "acme-lead", Priority: 8, Children: []types.Bullet{
					{ID: "a1", Description: "Led the Postgres migration", Priority: 9},
					{ID: "a2", Description: "Mentored four engineers", Priority: 6},
				}},
				{ID: "acme-ic", Priority: 5, Children: []types.Bullet{
					{ID: "a3", Description: "Built the billing service", Priority: 5},
				}},
			},
		},
		{
			ID: "globex", Name: "Globex", Priority: 5,
			Children: []types.Position{
				{ID: "globex-dev", Priority: 5, Children: []types.Bullet{
					{ID: "g1", Description: "Wrote the Go ingestion workers", Priority: 7},
					{ID: "g2", Description: "Ran the on-call rotation", Priority: 3},
				}},
			},
		},
	}}
}

func runConfig() types.SelectionConfig {
	return types.SelectionConfig{MaxBullets: 3, MaxPerCompany: 2, MaxPerPosition: 2, MinPerCompany: 1}
}

type memoryRecorder struct {
	runs []*types.SelectionRun
	err  error
}

func (m *memoryRecorder) SaveSelectionRun(_ context.Context, run *types.SelectionRun) error {
	m.runs = append(m.runs, run)
	return m.err
}

func TestRunSelection_Success(t *testing.T) {
	down := &stubProvider{id: llm.ClaudeSonnet, replies: []stubReply{failWith(llm.ClaudeSonnet, types.CodeProviderDown, "server error (HTTP 502)")}}
	provider := &stubProvider{id: llm.ClaudeHaiku, replies: []stubReply{ok("g1", "a1", "a2", "a3", "g2")}}
	recorder := &memoryRecorder{}

	var events []ProgressEvent
	orch := NewOrchestrator([]llm.Provider{down, provider}, fastPolicy())
	outcome, err := RunSelection(context.Background(), orch, RunOptions{
		JobDescription: "Go and Postgres",
		Corpus:         testCorpus(),
		FallbackOrder:  []llm.ProviderID{llm.ClaudeSonnet, llm.ClaudeHaiku},
		Selection:      runConfig(),
		Recorder:       recorder,
		OnProgress:     func(e ProgressEvent) { events = append(events, e) },
	})
	require.NoError(t, err)

	// g1 .9, a1 .8, a2 .7 admitted; acme first in resume order
	assert.Equal(t, []string{"a1", "a2", "g1"}, bulletIDs(outcome.Bullets))
	assert.Empty(t, outcome.Shortfalls)
	assert.Equal(t, "claude-haiku", outcome.Provider)
	assert.Equal(t, 1, outcome.AttemptCount)
	assert.Equal(t, 100, outcome.TokensUsed)
	assert.Equal(t, "matched", outcome.Reasoning)
	require.Len(t, outcome.Attempts, 1)
	assert.Equal(t, "claude-sonnet", outcome.Attempts[0].Provider)

	_, err = uuid.Parse(outcome.RequestID)
	assert.NoError(t, err)

	// default pool is twice MaxBullets, capped by the corpus size
	require.Len(t, provider.requests, 1)
	assert.Equal(t, 6, provider.requests[0].MaxBullets)
	assert.Equal(t, 5, provider.requests[0].Count())

	require.Len(t, recorder.runs, 1)
	run := recorder.runs[0]
	assert.Equal(t, outcome.RequestID, run.RequestID)
	assert.Equal(t, "success", run.Status)
	assert.Len(t, run.Bullets, 3)

	require.NotEmpty(t, events)
	for _, e := range events {
		assert.Equal(t, outcome.RequestID, e.RequestID)
	}
	assert.Equal(t, StepPersisted, events[len(events)-1].Step)
}

func TestRunSelection_ReportsShortfall(t *testing.T) {
	provider := &stubProvider{id: llm.Heuristic, replies: []stubReply{ok("a1", "a2", "a3", "g1")}}
	orch := NewOrchestrator([]llm.Provider{provider}, fastPolicy())

	// acme fills every slot and sits exactly at its own minimum, so globex cannot displace it
	outcome, err := RunSelection(context.Background(), orch, RunOptions{
		Corpus:        testCorpus(),
		Provider:      "heuristic",
		Selection:     types.SelectionConfig{MaxBullets: 2, MaxPerCompany: 2, MaxPerPosition: 2, MinPerCompany: 2},
		CandidatePool: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, provider.requests[0].MaxBullets)
	assert.Equal(t, []string{"a1", "a2"}, bulletIDs(outcome.Bullets))
	assert.Equal(t, []selection.Shortfall{{CompanyID: "globex", Have: 0, Want: 2}}, outcome.Shortfalls)
}

func TestRunSelection_RejectsBeforeAnyCall(t *testing.T) {
	tests := []struct {
		name  string
		opts  RunOptions
		check func(t *testing.T, err error)
	}{
		{
			name: "invalid limits",
			opts: RunOptions{
				Corpus:        testCorpus(),
				FallbackOrder: []llm.ProviderID{llm.ClaudeHaiku},
				Selection:     types.SelectionConfig{MaxBullets: 3, MaxPerCompany: 4, MaxPerPosition: 2, MinPerCompany: 1},
			},
			check: func(t *testing.T, err error) {
				var cfgErr *selection.ConfigError
				assert.ErrorAs(t, err, &cfgErr)
			},
		},
		{
			name: "unknown provider",
			opts: RunOptions{
				Corpus:        testCorpus(),
				Provider:      "claude-opus-99",
				FallbackOrder: []llm.ProviderID{llm.ClaudeHaiku},
				Selection:     runConfig(),
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnknownProvider)
			},
		},
		{
			name: "empty corpus",
			opts: RunOptions{
				Corpus:        &types.Corpus{},
				FallbackOrder: []llm.ProviderID{llm.ClaudeHaiku},
				Selection:     runConfig(),
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, types.ErrDataUnavailable)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &stubProvider{id: llm.ClaudeHaiku, replies: []stubReply{ok("a1")}}
			orch := NewOrchestrator([]llm.Provider{provider}, fastPolicy())

			_, err := RunSelection(context.Background(), orch, tt.opts)
			require.Error(t, err)
			tt.check(t, err)
			assert.Empty(t, provider.requests)
		})
	}
}

func TestRunSelection_FailureIsRecorded(t *testing.T) {
	provider := &stubProvider{id: llm.GeminiFlash, replies: []stubReply{failWith(llm.GeminiFlash, types.CodeProviderDown, "network failure")}}
	recorder := &memoryRecorder{}
	orch := NewOrchestrator([]llm.Provider{provider}, fastPolicy())

	_, err := RunSelection(context.Background(), orch, RunOptions{
		Corpus:        testCorpus(),
		FallbackOrder: []llm.ProviderID{llm.GeminiFlash},
		Selection:     runConfig(),
		Recorder:      recorder,
	})

	var selErr *SelectionError
	require.ErrorAs(t, err, &selErr)
	assert.Equal(t, "gemini-flash", selErr.Provider)
	assert.Equal(t, 1, selErr.Calls)
	assert.Zero(t, selErr.RetriesAttempted)

	require.Len(t, recorder.runs, 1)
	assert.Equal(t, "failed", recorder.runs[0].Status)
	assert.Len(t, recorder.runs[0].Attempts, 1)
	assert.NotNil(t, recorder.runs[0].Bullets)
}

func TestRunSelection_RecorderErrorIsNotFatal(t *testing.T) {
	provider := &stubProvider{id: llm.ClaudeHaiku, replies: []stubReply{ok("g1", "a1", "a2", "a3", "g2")}}
	recorder := &memoryRecorder{err: errors.New("connection refused")}
	orch := NewOrchestrator([]llm.Provider{provider}, fastPolicy())

	outcome, err := RunSelection(context.Background(), orch, RunOptions{
		Corpus:        testCorpus(),
		FallbackOrder: []llm.ProviderID{llm.ClaudeHaiku},
		Selection:     runConfig(),
		Recorder:      recorder,
	})
	require.NoError(t, err)
	assert.Len(t, outcome.Bullets, 3)
	assert.Len(t, recorder.runs, 1)
}

func TestOutcome_Result(t *testing.T) {
	o := &Outcome{Provider: "claude-haiku", AttemptCount: 2, TokensUsed: 10, JobTitle: "SRE"}
	r := o.Result()
	assert.Equal(t, "claude-haiku", r.Provider)
	assert.Equal(t, 2, r.AttemptCount)
	assert.Equal(t, "SRE", r.JobTitle)
}

func bulletIDs(bullets []types.SelectedBullet) []string {
	ids := make([]string, len(bullets))
	for i, b := range bullets {
		ids[i] = b.Bullet.ID
	}
	return ids
}
