// ABOUTME: Canonical pipeline stage names and their default close probabilities
// ABOUTME: Single lookup table shared by the store, CLI, MCP, and HTTP surfaces
package models

const (
	StageLead        = "Lead"
	StageQualified   = "Qualified"
	StageProposal    = "Proposal"
	StageNegotiation = "Negotiation"
	StageClosedWon   = "Closed Won"
	StageClosedLost  = "Closed Lost"
)

var stageProbability = map[string]int{
	StageLead:        20,
	StageQualified:   40,
	StageProposal:    60,
	StageNegotiation: 75,
	StageClosedWon:   100,
	StageClosedLost:  0,
}

// DefaultStages lists the built-in stages in pipeline order.
var DefaultStages = []string{
	StageLead,
	StageQualified,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

// ProbabilityForStage returns the default probability for a stage name.
// The second result is false for stage names outside the table.
func ProbabilityForStage(stage string) (int, bool) {
	p, ok := stageProbability[stage]
	return p, ok
}

// IsClosedStage reports whether a deal in this stage has left the active pipeline.
func IsClosedStage(stage string) bool {
	return stage == StageClosedWon || stage == StageClosedLost
}
