package curation

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"fleet-curation-service/internal/analytics"
	"fleet-curation-service/internal/catalog"
	"fleet-curation-service/internal/models"
	"fleet-curation-service/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type panicRepo struct{}

func (panicRepo) Records() []models.OperationalRecord {
	panic("dataset unavailable")
}

func newComposer(t *testing.T, repo store.Repository) *Composer {
	t.Helper()
	c, err := New(repo, analytics.DefaultThresholds(), catalog.Default(), zaptest.NewLogger(t))
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadConfiguration(t *testing.T) {
	repo := store.NewMemoryStore(nil)

	_, err := New(nil, analytics.DefaultThresholds(), catalog.Default(), nil)
	assert.Error(t, err)

	bad := analytics.DefaultThresholds()
	bad.WindowBuckets = 0
	_, err = New(repo, bad, catalog.Default(), nil)
	assert.Error(t, err)

	cat := catalog.Default()
	cat.APISurfaces[0].Path = ""
	_, err = New(repo, analytics.DefaultThresholds(), cat, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrIncomplete)
}

func TestCompose_SeededFleet(t *testing.T) {
	c := newComposer(t, store.NewMemoryStore(store.SeedRecords()))

	snap := c.Compose()

	require.NoError(t, ValidateSnapshot(snap))
	assert.Len(t, snap.KPIs, analytics.KPICount())
	assert.Len(t, snap.Trend, 8)
	assert.NotEmpty(t, snap.Heatmap)
	assert.Empty(t, snap.Meta.DegradedSections)
	assert.Zero(t, snap.Meta.SkippedRecords)
	assert.Equal(t, len(store.SeedRecords()), snap.Meta.RecordCount)

	byKey := make(map[string]models.AlertInsight)
	for _, a := range snap.Alerts {
		byKey[a.Facility+"|"+a.Category] = a
	}
	berlin, ok := byKey["Berlin Depot|"+analytics.CategoryUptime]
	require.True(t, ok, "expected an uptime alert for Berlin Depot")
	assert.Equal(t, models.SeverityHigh, berlin.Severity)

	sydney, ok := byKey["Sydney Harbour|"+analytics.CategoryIncidents]
	require.True(t, ok, "expected an incidents alert for Sydney Harbour")
	assert.Equal(t, models.SeverityHigh, sydney.Severity)

	cat := catalog.Default()
	assert.Equal(t, cat.Financials, snap.Financials)
	assert.Equal(t, cat.APISurfaces, snap.APISurfaces)
	assert.Equal(t, cat.Knowledge, snap.Knowledge)
	assert.Equal(t, cat.TrainingPlans, snap.TrainingPlans)
}

func TestCompose_SeoulUptimeCollapse(t *testing.T) {
	week1 := time.Date(2025, time.January, 6, 8, 0, 0, 0, time.UTC)
	base := models.OperationalRecord{
		Facility: "Seoul", Region: models.RegionAPAC, Shift: models.ShiftMorning,
		NPS: 70, AvgTurnTimeSeconds: 28, EnergyKwh: 50,
	}
	first, second := base, base
	first.Timestamp, first.Uptime, first.OrdersServed, first.Incidents = week1, 98, 500, 0
	second.Timestamp, second.Uptime, second.OrdersServed, second.Incidents = week1.AddDate(0, 0, 7), 60, 100, 5

	c := newComposer(t, store.NewMemoryStore([]models.OperationalRecord{second, first}))
	snap := c.Compose()

	require.Len(t, snap.Trend, 2)
	assert.Equal(t, 500, snap.Trend[0].Throughput)
	assert.Equal(t, 100, snap.Trend[1].Throughput)

	var uptime models.KPICard
	for _, k := range snap.KPIs {
		if k.ID == "fleet-uptime" {
			uptime = k
		}
	}
	assert.Equal(t, models.MomentumDown, uptime.Momentum)
	assert.Equal(t, "-38.8%", uptime.Delta)

	require.NotEmpty(t, snap.Alerts)
	top := snap.Alerts[0]
	assert.Equal(t, "Seoul", top.Facility)
	assert.Equal(t, analytics.CategoryUptime, top.Category)
	assert.Equal(t, models.SeverityCritical, top.Severity)
	assert.Equal(t, 1, snap.CriticalAlerts())
}

func TestCompose_Idempotent(t *testing.T) {
	c := newComposer(t, store.NewMemoryStore(store.SeedRecords()))

	first := c.Compose()
	second := c.Compose()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("snapshot changed between calls (-first +second):\n%s", diff)
	}
}

func TestCompose_SnapshotsDoNotShareCatalog(t *testing.T) {
	c := newComposer(t, store.NewMemoryStore(nil))

	first := c.Compose()
	first.Knowledge[0].Tags[0] = "mutated"
	first.TrainingPlans[0].Milestones[0].Title = "mutated"

	second := c.Compose()
	assert.NotEqual(t, "mutated", second.Knowledge[0].Tags[0])
	assert.NotEqual(t, "mutated", second.TrainingPlans[0].Milestones[0].Title)
}

func TestCompose_EmptyStore(t *testing.T) {
	c := newComposer(t, store.NewMemoryStore(nil))

	snap := c.Compose()

	require.NoError(t, ValidateSnapshot(snap))
	require.Len(t, snap.KPIs, analytics.KPICount())
	for _, k := range snap.KPIs {
		assert.Equal(t, models.MomentumSteady, k.Momentum)
		assert.Equal(t, analytics.DeltaUnavailable, k.Delta)
	}
	assert.NotNil(t, snap.Trend)
	assert.Empty(t, snap.Trend)
	assert.NotNil(t, snap.Heatmap)
	assert.Empty(t, snap.Heatmap)
	assert.NotNil(t, snap.Alerts)
	assert.Empty(t, snap.Alerts)
	assert.NotEmpty(t, snap.Financials)
	assert.NotEmpty(t, snap.TrainingPlans)
}

func TestCompose_RepositoryPanicDegrades(t *testing.T) {
	c := newComposer(t, panicRepo{})

	snap := c.Compose()

	assert.Equal(t, []string{SectionRecords}, snap.Meta.DegradedSections)
	assert.Len(t, snap.KPIs, analytics.KPICount())
	assert.Empty(t, snap.Alerts)
	assert.NotEmpty(t, snap.APISurfaces)
	assert.NoError(t, ValidateSnapshot(snap))
}

func TestCompose_SectionPanicDegrades(t *testing.T) {
	c := newComposer(t, store.NewMemoryStore(store.SeedRecords()))
	c.heatmap = func([]models.OperationalRecord, analytics.Thresholds) []models.HeatmapCell {
		panic("heatmap exploded")
	}

	snap := c.Compose()

	assert.Equal(t, []string{SectionHeatmap}, snap.Meta.DegradedSections)
	assert.NotNil(t, snap.Heatmap)
	assert.Empty(t, snap.Heatmap)
	assert.NotEmpty(t, snap.Trend)
	assert.NotEmpty(t, snap.Alerts)
	assert.Len(t, snap.KPIs, analytics.KPICount())
}

func TestValidateSnapshot_RejectsMissingFields(t *testing.T) {
	c := newComposer(t, store.NewMemoryStore(store.SeedRecords()))
	snap := c.Compose()

	snap.Alerts[0].Owner = ""
	assert.Error(t, ValidateSnapshot(snap))

	snap = c.Compose()
	snap.Trend = nil
	assert.Error(t, ValidateSnapshot(snap))
}

func TestDigest(t *testing.T) {
	c := newComposer(t, store.NewMemoryStore(store.SeedRecords()))
	snap := c.Compose()

	d := Digest(snap)

	assert.Equal(t, len(snap.KPIs), d.KPICount)
	assert.Equal(t, len(snap.Alerts), d.AlertCount)
	assert.Equal(t, snap.CriticalAlerts(), d.CriticalAlerts)
	require.NotNil(t, d.LatestKPI)
	assert.Equal(t, snap.KPIs[0], *d.LatestKPI)

	empty := Digest(models.CurationSnapshot{})
	assert.Nil(t, empty.LatestKPI)
	assert.Zero(t, empty.KPICount)
}

func TestComposer_FAQAndKnowledgeAreCopies(t *testing.T) {
	c := newComposer(t, store.NewMemoryStore(nil))

	faq := c.FAQ()
	faq[0].Keywords[0] = "mutated"
	assert.NotEqual(t, "mutated", c.FAQ()[0].Keywords[0])

	kb := c.Knowledge()
	kb[0].Title = "mutated"
	assert.NotEqual(t, "mutated", c.Knowledge()[0].Title)
}

func BenchmarkCompose(b *testing.B) {
	c, err := New(store.NewMemoryStore(store.SeedRecords()), analytics.DefaultThresholds(), catalog.Default(), nil)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Compose()
	}
}
