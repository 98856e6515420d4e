// ABOUTME: Tests for CRM data models
// ABOUTME: Validates patches, cloning, activity types, and the stage probability table
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestContactCloneDoesNotShareTags(t *testing.T) {
	c := Contact{ID: 1, Name: "Ada", Tags: []string{"vip"}}
	clone := c.Clone()
	clone.Tags[0] = "changed"

	assert.Equal(t, "vip", c.Tags[0])
}

func TestContactCloneNilTags(t *testing.T) {
	c := Contact{ID: 1}
	assert.NotNil(t, c.Clone().Tags)
}

func TestDealCloneCopiesCloseDate(t *testing.T) {
	closeDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d := Deal{ID: 1, ExpectedCloseDate: &closeDate}
	clone := d.Clone()
	*clone.ExpectedCloseDate = closeDate.AddDate(0, 1, 0)

	assert.Equal(t, closeDate, *d.ExpectedCloseDate)
}

func TestContactPatchApply(t *testing.T) {
	c := Contact{Name: "Ada", Email: "ada@example.com", Tags: []string{"a"}}

	ContactPatch{Email: strPtr("ada@lovelace.dev")}.Apply(&c)
	assert.Equal(t, "Ada", c.Name)
	assert.Equal(t, "ada@lovelace.dev", c.Email)
	assert.Equal(t, []string{"a"}, c.Tags)

	ContactPatch{Tags: []string{}}.Apply(&c)
	assert.Empty(t, c.Tags)
}

func TestDealPatchExplicitZero(t *testing.T) {
	zero := 0.0
	prob := 0
	d := Deal{Value: 5000, Probability: 60}

	DealPatch{Value: &zero, Probability: &prob}.Apply(&d)

	assert.Equal(t, 0.0, d.Value)
	assert.Equal(t, 0, d.Probability)
}

func TestActivityPatchKeepsTimestamp(t *testing.T) {
	ts := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	a := Activity{Type: ActivityCall, Timestamp: ts, ContactID: Ref(3)}
	kind := ActivityEmail

	ActivityPatch{Type: &kind, DealID: Ref(7)}.Apply(&a)

	assert.Equal(t, ActivityEmail, a.Type)
	assert.Equal(t, ts, a.Timestamp)
	require.NotNil(t, a.ContactID)
	assert.Equal(t, 3, *a.ContactID)
	require.NotNil(t, a.DealID)
	assert.Equal(t, 7, *a.DealID)
}

func TestActivityTypeValid(t *testing.T) {
	for _, kind := range ActivityTypes {
		assert.True(t, kind.Valid(), kind)
	}
	assert.False(t, ActivityType("fax").Valid())
}

func TestProbabilityForStage(t *testing.T) {
	expected := map[string]int{
		StageLead:        20,
		StageQualified:   40,
		StageProposal:    60,
		StageNegotiation: 75,
		StageClosedWon:   100,
		StageClosedLost:  0,
	}
	for stage, want := range expected {
		got, ok := ProbabilityForStage(stage)
		assert.True(t, ok, stage)
		assert.Equal(t, want, got, stage)
	}

	_, ok := ProbabilityForStage("Discovery")
	assert.False(t, ok)
}

func TestIsClosedStage(t *testing.T) {
	assert.True(t, IsClosedStage(StageClosedWon))
	assert.True(t, IsClosedStage(StageClosedLost))
	assert.False(t, IsClosedStage(StageNegotiation))
	assert.False(t, IsClosedStage("closed won"))
}
