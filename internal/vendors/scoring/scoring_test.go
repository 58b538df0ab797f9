package scoring

import (
	"testing"
)

const million = int64(1_000_000)

func TestScoreRankingExample(t *testing.T) {
	lead := BudgetRange{Min: 2 * million, Max: 5 * million}
	vendorA := BudgetRange{Min: 1 * million, Max: 3 * million}
	vendorB := BudgetRange{Min: 2_500_000, Max: 4_500_000}

	if got := Score(lead, vendorA); got != 10 {
		t.Fatalf("expected vendor A score 10, got %d", got)
	}
	if got := Score(lead, vendorB); got != 50 {
		t.Fatalf("expected vendor B score 50, got %d", got)
	}
}

func TestScoreComponents(t *testing.T) {
	cases := []struct {
		name   string
		lead   BudgetRange
		vendor BudgetRange
		want   int
	}{
		{"identical ranges", BudgetRange{100, 200}, BudgetRange{100, 200}, 60},
		{"vendor covers lead", BudgetRange{100, 200}, BudgetRange{0, 1000}, 60},
		{"disjoint below", BudgetRange{100, 200}, BudgetRange{0, 50}, 0},
		{"disjoint above", BudgetRange{100, 200}, BudgetRange{300, 400}, 0},
		{"touching edge", BudgetRange{100, 200}, BudgetRange{200, 300}, 0},
		{"point inside", Point(150), BudgetRange{100, 200}, 60},
		{"point on bound", Point(200), BudgetRange{100, 200}, 60},
		{"point outside", Point(250), BudgetRange{100, 200}, 0},
		{"half overlap without midpoint", BudgetRange{0, 100}, BudgetRange{0, 49}, 15},
		{"rounds half away from zero", BudgetRange{0, 4}, BudgetRange{0, 1}, 8},
		{"odd midpoint not truncated", BudgetRange{1, 2}, BudgetRange{0, 1}, 0},
		{"inverted lead", BudgetRange{200, 100}, BudgetRange{0, 1000}, 0},
		{"negative vendor", BudgetRange{100, 200}, BudgetRange{-10, 1000}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Score(tc.lead, tc.vendor); got != tc.want {
				t.Fatalf("Score(%v, %v) = %d, want %d", tc.lead, tc.vendor, got, tc.want)
			}
		})
	}
}

func TestScoreBounds(t *testing.T) {
	bounds := []int64{0, 1, 7, 50, 99, 100, 101, 250, 1000}
	for _, lmin := range bounds {
		for _, lmax := range bounds {
			for _, vmin := range bounds {
				for _, vmax := range bounds {
					got := Score(BudgetRange{lmin, lmax}, BudgetRange{vmin, vmax})
					if got < 0 || got > MaxScore {
						t.Fatalf("score %d out of bounds for lead [%d,%d] vendor [%d,%d]", got, lmin, lmax, vmin, vmax)
					}
				}
			}
		}
	}
}

func TestOverlapScoreNeverDecreasesWhenVendorWidens(t *testing.T) {
	lead := BudgetRange{Min: 300, Max: 700}
	steps := []int64{0, 50, 100, 200, 400, 800}

	for _, vmin := range []int64{100, 350, 500, 650, 900} {
		for _, vmax := range []int64{vmin, vmin + 100, vmin + 300} {
			base := OverlapScore(lead, BudgetRange{vmin, vmax})
			for _, grow := range steps {
				lower := vmin - grow
				if lower < 0 {
					lower = 0
				}
				wider := BudgetRange{Min: lower, Max: vmax + grow}
				got := OverlapScore(lead, wider)
				if got.LessThan(base) {
					t.Fatalf("widening [%d,%d] to %v decreased overlap score %s -> %s", vmin, vmax, wider, base, got)
				}
			}
		}
	}
}

func TestScoreLargeBudgetsDoNotOverflow(t *testing.T) {
	lead := BudgetRange{Min: 1 << 61, Max: 1<<62 - 1}
	vendor := BudgetRange{Min: 1 << 61, Max: 1<<62 - 1}
	if got := Score(lead, vendor); got != MaxScore {
		t.Fatalf("expected %d, got %d", MaxScore, got)
	}
}
