package dependency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRank(t *testing.T) {
	edge := func(source, target string, p Priority, impact, mttr int) Edge {
		return Edge{Source: source, Target: target, Type: EdgeRequired, Priority: p, FailureImpact: impact, MTTREstimateMinutes: mttr}
	}

	tests := []struct {
		name     string
		input    []Edge
		expected []Edge
	}{
		{
			name:     "priority dominates impact",
			input:    []Edge{edge("a", "b", PriorityP2, 5, 600), edge("c", "d", PriorityP0, 1, 0)},
			expected: []Edge{edge("c", "d", PriorityP0, 1, 0), edge("a", "b", PriorityP2, 5, 600)},
		},
		{
			name:     "impact before mttr",
			input:    []Edge{edge("a", "b", PriorityP1, 2, 900), edge("c", "d", PriorityP1, 4, 5)},
			expected: []Edge{edge("c", "d", PriorityP1, 4, 5), edge("a", "b", PriorityP1, 2, 900)},
		},
		{
			name:     "slower recovery ranks higher",
			input:    []Edge{edge("a", "b", PriorityP1, 3, 10), edge("c", "d", PriorityP1, 3, 120)},
			expected: []Edge{edge("c", "d", PriorityP1, 3, 120), edge("a", "b", PriorityP1, 3, 10)},
		},
		{
			name:     "ties broken by source then target",
			input:    []Edge{edge("b", "a", PriorityP3, 1, 0), edge("a", "z", PriorityP3, 1, 0), edge("a", "c", PriorityP3, 1, 0)},
			expected: []Edge{edge("a", "c", PriorityP3, 1, 0), edge("a", "z", PriorityP3, 1, 0), edge("b", "a", PriorityP3, 1, 0)},
		},
		{
			name:     "unknown priority ranks last",
			input:    []Edge{edge("a", "b", "P9", 5, 100), edge("c", "d", PriorityP3, 1, 0)},
			expected: []Edge{edge("c", "d", PriorityP3, 1, 0), edge("a", "b", "P9", 5, 100)},
		},
		{
			name:     "empty input",
			input:    nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Rank(tt.input))
		})
	}
}

func TestRank_DoesNotModifyInput(t *testing.T) {
	input := []Edge{
		{Source: "a", Target: "b", Priority: PriorityP3},
		{Source: "c", Target: "d", Priority: PriorityP0},
	}

	ranked := Rank(input)

	assert.Equal(t, "a", input[0].Source)
	assert.Equal(t, "c", ranked[0].Source)
}

func TestRiskScore_AgreesWithRank(t *testing.T) {
	edges := []Edge{
		{Source: "a", Target: "b", Priority: PriorityP0, FailureImpact: 1, MTTREstimateMinutes: 0},
		{Source: "c", Target: "d", Priority: PriorityP1, FailureImpact: 5, MTTREstimateMinutes: 50000},
		{Source: "e", Target: "f", Priority: PriorityP1, FailureImpact: 5, MTTREstimateMinutes: 30},
		{Source: "g", Target: "h", Priority: PriorityP2, FailureImpact: 2, MTTREstimateMinutes: 9},
		{Source: "i", Target: "j", Priority: PriorityP3, FailureImpact: 5, MTTREstimateMinutes: 1},
	}

	ranked := Rank(edges)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, RiskScore(ranked[i-1]), RiskScore(ranked[i]),
			"%s should not score below %s", ranked[i-1], ranked[i])
	}
}
