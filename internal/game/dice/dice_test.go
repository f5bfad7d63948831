package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"
)

// stubSource returns scripted values, then zero.
type stubSource struct {
	values []int
	idx    int
}

func (s *stubSource) Intn(n int) int {
	if s.idx < len(s.values) {
		v := s.values[s.idx]
		s.idx++
		if v >= n {
			v = n - 1
		}
		return v
	}
	return 0
}

func TestParse(t *testing.T) {
	tests := []struct {
		expr     string
		count    int
		sides    int
		modifier int
	}{
		{"d20", 1, 20, 0},
		{"2d6", 2, 6, 0},
		{"2d6+3", 2, 6, 3},
		{"1d8-2", 1, 8, -2},
		{"1d8+7", 1, 8, 7},
		{"1d26+49", 1, 26, 49},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e, err := Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.count, e.Count)
			assert.Equal(t, tt.sides, e.Sides)
			assert.Equal(t, tt.modifier, e.Modifier)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, expr := range []string{"", "20", "0d6", "-1d6", "1d1", "1dx", "xd6", "1d6+y"} {
		t.Run(expr, func(t *testing.T) {
			_, err := Parse(expr)
			assert.Error(t, err)
		})
	}
}

func TestExpressionBounds(t *testing.T) {
	e := MustParse("1d8+7")
	assert.Equal(t, 8, e.Min())
	assert.Equal(t, 15, e.Max())
}

func TestRoll(t *testing.T) {
	e := MustParse("2d6+3")
	result := Roll(e, &stubSource{values: []int{3, 5}})
	assert.Equal(t, []int{4, 6}, result.Dice)
	assert.Equal(t, 13, result.Total())
}

func TestRollerLogs(t *testing.T) {
	r := NewRoller(&stubSource{}, zap.NewNop())
	result, err := r.RollExpr("1d8+7")
	require.NoError(t, err)
	assert.Equal(t, 8, result.Total())
}

func TestRollerBadExpr(t *testing.T) {
	r := NewRoller(&stubSource{}, zap.NewNop())
	_, err := r.RollExpr("bogus")
	assert.Error(t, err)
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("nope") })
}

// Property: every roll total stays within the expression bounds.
func TestPropertyRollWithinBounds(t *testing.T) {
	src := NewCryptoSource()
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 5).Draw(t, "count")
		sides := rapid.IntRange(2, 30).Draw(t, "sides")
		modifier := rapid.IntRange(-10, 50).Draw(t, "modifier")
		e := Expression{Raw: "gen", Count: count, Sides: sides, Modifier: modifier}

		result := Roll(e, src)
		total := result.Total()
		if total < e.Min() || total > e.Max() {
			t.Fatalf("total %d outside [%d, %d]", total, e.Min(), e.Max())
		}
	})
}

// Property: uniform-range expressions of the form 1dN+M cover exactly [1+M, N+M].
func TestPropertyUniformRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sides := rapid.IntRange(2, 20).Draw(t, "sides")
		modifier := rapid.IntRange(0, 40).Draw(t, "modifier")
		face := rapid.IntRange(0, sides-1).Draw(t, "face")

		e := Expression{Raw: "gen", Count: 1, Sides: sides, Modifier: modifier}
		result := Roll(e, &stubSource{values: []int{face}})
		if got := result.Total(); got != face+1+modifier {
			t.Fatalf("got %d, want %d", got, face+1+modifier)
		}
	})
}
