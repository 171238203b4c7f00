package immunization

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMilestonesDue(t *testing.T) {
	cases := []struct {
		ageWeeks int
		want     int
	}{
		{0, 1},
		{5, 1},
		{6, 2},
		{10, 3},
		{14, 4},
		{35, 4},
		{36, 5},
		{72, 6},
		{200, 6},
		{-3, 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MilestonesDue(tc.ageWeeks), "age %d weeks", tc.ageWeeks)
	}
}

func TestParseAgeInWeeks(t *testing.T) {
	today := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 10, ParseAgeInWeeks("2026-06-23", today))
	assert.Equal(t, 10, ParseAgeInWeeks("2026-06-23T00:00:00", today))
	assert.Equal(t, DefaultAgeWeeks, ParseAgeInWeeks("", today))
	assert.Equal(t, DefaultAgeWeeks, ParseAgeInWeeks("not-a-date-at-all", today))
	// Future dates clamp to a newborn, not a negative age.
	assert.Equal(t, 0, ParseAgeInWeeks("2027-01-01", today))
}

func TestComplianceProbability(t *testing.T) {
	assert.InDelta(t, 0.72, ComplianceProbability(false, "Secondary", true), 1e-9)
	assert.InDelta(t, 0.60, ComplianceProbability(true, "Secondary", true), 1e-9)
	assert.InDelta(t, 0.57, ComplianceProbability(false, "Illiterate", true), 1e-9)
	assert.InDelta(t, 0.67, ComplianceProbability(false, "Primary School", true), 1e-9)
	assert.InDelta(t, 0.82, ComplianceProbability(false, "Graduate", true), 1e-9)
	assert.InDelta(t, 0.42, ComplianceProbability(false, "Secondary", false), 1e-9)
	// Fully stacked penalties clamp at the floor.
	assert.InDelta(t, 0.15, ComplianceProbability(true, "Illiterate", false), 1e-9)
}

func TestComplianceProbability_Clamped(t *testing.T) {
	for _, edu := range []string{"", "Illiterate", "Primary", "Graduate", "Higher Secondary"} {
		for _, bpl := range []bool{true, false} {
			for _, dose := range []bool{true, false} {
				p := ComplianceProbability(bpl, edu, dose)
				assert.GreaterOrEqual(t, p, 0.05)
				assert.LessOrEqual(t, p, 0.97)
			}
		}
	}
}

func TestSimulate_Deterministic(t *testing.T) {
	a := Simulate(40, true, "Primary", true, NewRand("child-1"))
	b := Simulate(40, true, "Primary", true, NewRand("child-1"))
	assert.Equal(t, a, b, "same key must reproduce the same simulation")
}

func TestSimulate_BirthDoseDeterministic(t *testing.T) {
	// A newborn has exactly the birth dose due; no randomness is involved.
	done := Simulate(0, false, "Graduate", true, NewRand("k"))
	assert.Equal(t, Simulation{Completed: 1, Expected: 1, Offtrack: false}, done)

	missed := Simulate(0, false, "Graduate", false, NewRand("k"))
	assert.Equal(t, Simulation{Completed: 0, Expected: 1, Offtrack: true}, missed)
}

func TestSimulate_Invariants(t *testing.T) {
	for _, age := range []int{0, 6, 14, 52, 100} {
		for i := 0; i < 20; i++ {
			s := Simulate(age, i%2 == 0, "Primary", i%3 == 0, NewRand(string(rune('a'+i))))
			assert.GreaterOrEqual(t, s.Completed, 0)
			assert.LessOrEqual(t, s.Completed, s.Expected)
			assert.Equal(t, MilestonesDue(age), s.Expected)
			wantOfftrack := float64(s.Completed)/float64(s.Expected) < 0.60
			assert.Equal(t, wantOfftrack, s.Offtrack)
		}
	}
}
