package live

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-curation-service/internal/models"
)

var fixedNow = time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)

func newTestSource(seed int64) *RandomSource {
	return NewRandomSource(WithSeed(seed), WithClock(func() time.Time { return fixedNow }))
}

func TestGenerateLiveDataPoint_Ranges(t *testing.T) {
	src := newTestSource(1)
	for i := 0; i < 200; i++ {
		p := src.GenerateLiveDataPoint()
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, fixedNow, p.Timestamp)
		assert.Contains(t, src.facilities, p.Facility)
		assert.GreaterOrEqual(t, p.Shift.Rank(), 0)
		assert.GreaterOrEqual(t, p.OrdersServed, 40)
		assert.GreaterOrEqual(t, p.Uptime, 92.0)
		assert.LessOrEqual(t, p.Uptime, 100.0)
		assert.Contains(t, []int{0, 1}, p.Incidents)
	}
}

func TestGenerateLiveMetrics_Ranges(t *testing.T) {
	src := newTestSource(2)
	for i := 0; i < 200; i++ {
		m := src.GenerateLiveMetrics()
		assert.GreaterOrEqual(t, m.FleetUptime, 95.0)
		assert.LessOrEqual(t, m.FleetUptime, 99.5)
		assert.GreaterOrEqual(t, m.QueueDepth, 0)
		assert.Positive(t, m.ActiveRobots)
	}
}

func TestGenerateTrainingUpdate_Ranges(t *testing.T) {
	src := newTestSource(3)
	for i := 0; i < 200; i++ {
		u := src.GenerateTrainingUpdate()
		assert.Contains(t, src.modelNames, u.Model)
		assert.GreaterOrEqual(t, u.Epoch, 1)
		assert.LessOrEqual(t, u.Progress, 100)
		assert.Positive(t, u.Loss)
		assert.LessOrEqual(t, u.Accuracy, 0.99)
	}
}

func TestGenerateAPIMetrics_Ranges(t *testing.T) {
	src := newTestSource(4)
	for i := 0; i < 200; i++ {
		m := src.GenerateAPIMetrics()
		assert.Contains(t, src.endpoints, m.Endpoint)
		assert.GreaterOrEqual(t, m.ErrorRate, 0.0)
		assert.LessOrEqual(t, m.ErrorRate, 0.02)
	}
}

func TestRandomSource_SeedIsReproducible(t *testing.T) {
	a := newTestSource(42).GenerateLiveMetrics()
	b := newTestSource(42).GenerateLiveMetrics()

	// IDs are random UUIDs; everything else follows the seed
	assert.NotEqual(t, a.ID, b.ID)
	a.ID, b.ID = "", ""
	assert.Equal(t, a, b)
}

func TestRandomSource_WithFacilities(t *testing.T) {
	src := NewRandomSource(WithSeed(5), WithFacilities([]string{"Only Site"}))
	for i := 0; i < 20; i++ {
		assert.Equal(t, "Only Site", src.GenerateLiveDataPoint().Facility)
	}

	// an empty list keeps the defaults
	src = NewRandomSource(WithFacilities(nil))
	assert.NotEmpty(t, src.facilities)
}

func TestRandomSource_ConcurrentUse(t *testing.T) {
	src := NewRandomSource()
	ids := make(chan string, 400)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				ids <- src.GenerateLiveDataPoint().ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{})
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 400)
}

func TestGenerate(t *testing.T) {
	src := newTestSource(6)

	for _, kind := range Types() {
		v, ok := Generate(src, kind)
		require.True(t, ok, kind)
		require.NotNil(t, v, kind)
	}

	v, ok := Generate(src, TypeOperations)
	require.True(t, ok)
	_, isPoint := v.(models.LiveOperationPoint)
	assert.True(t, isPoint)

	_, ok = Generate(src, TypeAll)
	assert.False(t, ok)
	_, ok = Generate(src, "weather")
	assert.False(t, ok)
}

func BenchmarkGenerateLiveDataPoint(b *testing.B) {
	src := NewRandomSource(WithSeed(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		src.GenerateLiveDataPoint()
	}
}
