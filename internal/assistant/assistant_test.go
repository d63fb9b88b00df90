package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-curation-service/internal/catalog"
	"fleet-curation-service/internal/models"
)

// fakeProvider records the last call and answers with a canned reply or error
type fakeProvider struct {
	reply    string
	err      error
	system   string
	messages []models.ChatMessage
}

func (f *fakeProvider) Complete(_ context.Context, system string, messages []models.ChatMessage) (string, error) {
	f.system = system
	f.messages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func sampleSnapshot() models.CurationSnapshot {
	return models.CurationSnapshot{
		KPIs: []models.KPICard{
			{ID: "orders-automated", Label: "Orders Automated", Value: "12,480", Momentum: models.MomentumUp, Delta: "+4.2%"},
			{ID: "fleet-uptime", Label: "Fleet Uptime", Value: "96.4%", Momentum: models.MomentumDown, Delta: "-1.3%"},
		},
		Trend: []models.TrendPoint{
			{Week: "2025-W09", Throughput: 12480, Uptime: 96.4, Incidents: 7},
		},
		Alerts: []models.AlertInsight{
			{Facility: "Berlin Depot", Title: "Berlin Depot uptime degraded", Detail: "Mean uptime 82.1%.", Severity: models.SeverityHigh, Owner: "Site Maintenance Lead", ETAHours: 6},
			{Facility: "Seoul", Title: "Seoul uptime collapse", Detail: "Mean uptime 60.0%.", Severity: models.SeverityCritical, Owner: "Fleet Reliability On-call", ETAHours: 2},
		},
	}
}

func TestInsights_FallbackWithoutProvider(t *testing.T) {
	s := NewInsights(nil, time.Second, nil)

	content, mode, err := s.Generate(context.Background(), "How are we doing?", sampleSnapshot())

	require.NoError(t, err)
	assert.Equal(t, ModeFallback, mode)
	assert.True(t, strings.HasPrefix(content, "[Fallback insight"))
	assert.Contains(t, content, "12,480")
	assert.Contains(t, content, "96.4%")
	assert.Contains(t, content, "2 active, 1 critical")
	assert.Contains(t, content, "How are we doing?")
}

func TestInsights_ProviderReceivesSnapshot(t *testing.T) {
	p := &fakeProvider{reply: "Uptime dipped in Berlin."}
	s := NewInsights(p, time.Second, nil)

	content, mode, err := s.Generate(context.Background(), "Summarize", sampleSnapshot())

	require.NoError(t, err)
	assert.Equal(t, ModeProvider, mode)
	assert.Equal(t, "Uptime dipped in Berlin.", content)
	assert.Contains(t, p.system, "Fleet Uptime: 96.4%")
	require.Len(t, p.messages, 1)
	assert.Equal(t, "Summarize", p.messages[0].Content)
}

func TestInsights_ProviderError(t *testing.T) {
	upstream := errors.New("rate limited")
	s := NewInsights(&fakeProvider{err: upstream}, time.Second, nil)

	content, mode, err := s.Generate(context.Background(), "Summarize", sampleSnapshot())

	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, ModeError, mode)
	assert.Empty(t, content)
}

func TestSnapshotSummary_Empty(t *testing.T) {
	out := SnapshotSummary(models.CurationSnapshot{})
	assert.Contains(t, out, "KPIs: no data.")
	assert.Contains(t, out, "Alerts: 0 active, 0 critical.")
}

func TestSnapshotSummary_TruncatesAlerts(t *testing.T) {
	snap := sampleSnapshot()
	for i := 0; i < 3; i++ {
		snap.Alerts = append(snap.Alerts, snap.Alerts[0])
	}
	assert.Contains(t, SnapshotSummary(snap), "and 2 more")
}

func newKnowledge(p Provider) *Knowledge {
	cat := catalog.Default()
	return NewKnowledge(p, cat.FAQ, cat.Knowledge, time.Second, nil)
}

func TestKnowledge_Charging(t *testing.T) {
	k := newKnowledge(nil)

	resp, mode := k.Answer(context.Background(), models.KnowledgeRequest{Query: "charging"})

	assert.Equal(t, ModeFallback, mode)
	assert.NotEmpty(t, resp.Answer)
	require.NotEmpty(t, resp.Sources)
	assert.Equal(t, "FAQ: How does robot charging work?", resp.Sources[0])
	assert.Contains(t, resp.Sources, "Knowledge: Opportunity charging playbook")
	assert.LessOrEqual(t, len(resp.SuggestedQuestions), MaxSuggestions)
	assert.NotContains(t, resp.SuggestedQuestions, "How does robot charging work?")
}

func TestKnowledge_NoMatch(t *testing.T) {
	k := newKnowledge(nil)

	resp, mode := k.Answer(context.Background(), models.KnowledgeRequest{Query: "zebra migration"})

	assert.Equal(t, ModeFallback, mode)
	assert.Equal(t, noMatchAnswer, resp.Answer)
	assert.Equal(t, []string{SourceFAQ}, resp.Sources)
	assert.Len(t, resp.SuggestedQuestions, MaxSuggestions)
}

func TestKnowledge_ProviderAnswer(t *testing.T) {
	p := &fakeProvider{reply: "Robots dock between waves."}
	k := newKnowledge(p)

	history := []models.ChatMessage{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}}
	resp, mode := k.Answer(context.Background(), models.KnowledgeRequest{Query: "battery charging", Messages: history})

	assert.Equal(t, ModeProvider, mode)
	assert.Equal(t, "Robots dock between waves.", resp.Answer)
	assert.Contains(t, resp.Sources, "FAQ: How does robot charging work?")
	require.Len(t, p.messages, 3)
	assert.Equal(t, "battery charging", p.messages[2].Content)
	assert.Contains(t, p.system, "How does robot charging work?")
}

func TestKnowledge_ProviderFailureFallsBack(t *testing.T) {
	k := newKnowledge(&fakeProvider{err: errors.New("timeout")})

	resp, mode := k.Answer(context.Background(), models.KnowledgeRequest{Query: "charging"})

	assert.Equal(t, ModeFallback, mode)
	assert.Equal(t, "FAQ: How does robot charging work?", resp.Sources[0])
}

func TestKnowledge_SearchRanksKeywordsFirst(t *testing.T) {
	k := newKnowledge(nil)

	ranked := k.Search("What uptime is healthy for the SLA?")

	require.NotEmpty(t, ranked)
	assert.Equal(t, "faq-uptime", ranked[0].Entry.ID)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"how", "does", "robot", "charging", "work"}, tokenize("How does robot-charging work?"))
	assert.Empty(t, tokenize("  ?! "))
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider("  ", "", "")
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	p, err := NewOpenAIProvider("sk-test", "", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, p.Model())
}

func TestOpenAIProvider_Complete(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"All sites nominal."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider("sk-test", "gpt-4o-mini", srv.URL+"/v1")
	require.NoError(t, err)

	answer, err := p.Complete(context.Background(), "system prompt", []models.ChatMessage{
		{Role: "user", Content: "status?"},
		{Role: "assistant", Content: "checking"},
		{Role: "tool", Content: "ignored role"},
	})

	require.NoError(t, err)
	assert.Equal(t, "All sites nominal.", answer)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "user", got.Messages[3].Role)
}

func TestOpenAIProvider_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider("sk-test", "", srv.URL+"/v1")
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "system", []models.ChatMessage{{Role: "user", Content: "hi"}})
	assert.Error(t, err)
}
