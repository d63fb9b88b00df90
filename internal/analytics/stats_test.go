package analytics

import (
	"math"
	"testing"
)

func TestRunningStats_Add(t *testing.T) {
	var s RunningStats

	values := []float64{10, 20, 30, 40, 50}
	for _, v := range values {
		s.Add(v)
	}

	if s.Count() != 5 {
		t.Errorf("Expected count 5, got %d", s.Count())
	}
	if math.Abs(s.Mean()-30.0) > 0.001 {
		t.Errorf("Expected mean 30, got %.2f", s.Mean())
	}
	if s.Sum() != 150 {
		t.Errorf("Expected sum 150, got %.2f", s.Sum())
	}
	if s.Min() != 10 || s.Max() != 50 {
		t.Errorf("Expected bounds [10,50], got [%.2f,%.2f]", s.Min(), s.Max())
	}
}

func TestRunningStats_IgnoresNonFinite(t *testing.T) {
	var s RunningStats
	s.Add(math.NaN())
	s.Add(math.Inf(1))
	s.Add(7)

	if s.Count() != 1 {
		t.Errorf("Expected count 1, got %d", s.Count())
	}
	if s.Mean() != 7 {
		t.Errorf("Expected mean 7, got %.2f", s.Mean())
	}
}

func TestRunningStats_Empty(t *testing.T) {
	var s RunningStats

	if s.Mean() != 0 {
		t.Errorf("Expected mean 0 for empty stats, got %.2f", s.Mean())
	}
	if s.StdDev() != 0 {
		t.Errorf("Expected stddev 0 for empty stats, got %.2f", s.StdDev())
	}
	if s.Normalize(5, 0.5) != 0.5 {
		t.Errorf("Expected flat value for empty stats, got %.2f", s.Normalize(5, 0.5))
	}
}

func TestRunningStats_StdDev(t *testing.T) {
	var same RunningStats
	for i := 0; i < 5; i++ {
		same.Add(50)
	}
	if same.StdDev() != 0 {
		t.Errorf("Expected stddev 0 for identical values, got %.2f", same.StdDev())
	}

	var s RunningStats
	for _, v := range []float64{2, 4, 4, 4, 5} {
		s.Add(v)
	}
	// Sample stddev for [2,4,4,4,5] ≈ 1.095
	if math.Abs(s.StdDev()-1.0954) > 0.001 {
		t.Errorf("Expected stddev ≈1.095, got %.4f", s.StdDev())
	}
}

func TestRunningStats_ZScore(t *testing.T) {
	var s RunningStats
	for i := 0; i < 50; i++ {
		s.Add(100)
		s.Add(102)
	}

	if z := s.ZScore(101); math.Abs(z) > 0.001 {
		t.Errorf("Expected z-score 0 at the mean, got %.2f", z)
	}
	if z := s.ZScore(120); z < 10 {
		t.Errorf("Expected a large z-score for outlier, got %.2f", z)
	}

	var flat RunningStats
	flat.Add(3)
	flat.Add(3)
	if z := flat.ZScore(10); z != 0 {
		t.Errorf("Expected z-score 0 without spread, got %.2f", z)
	}
}

func TestRunningStats_Normalize(t *testing.T) {
	var s RunningStats
	for _, v := range []float64{10, 15, 20} {
		s.Add(v)
	}

	cases := []struct {
		value float64
		want  float64
	}{
		{10, 0},
		{15, 0.5},
		{20, 1},
		{25, 1},
		{5, 0},
	}
	for _, c := range cases {
		if got := s.Normalize(c.value, 0.5); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Normalize(%.1f) = %.3f, want %.3f", c.value, got, c.want)
		}
	}
}

func BenchmarkRunningStats_Add(b *testing.B) {
	var s RunningStats
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Add(float64(i % 100))
	}
}
