// ABOUTME: Pipeline board actions that span the deal and activity services
// ABOUTME: Moving a deal between stages and deleting it both leave a note in the feed
package db

import (
	"context"
	"fmt"

	"github.com/harperreed/dealdesk/models"
)

// StageMove is the outcome of MoveDeal.
type StageMove struct {
	Deal     *models.Deal
	From     string
	Activity *models.Activity
	Moved    bool
}

// MoveDeal moves a deal to stage and logs a note about it. Moving a deal to
// the stage it is already in does nothing. The stage change and the note are
// separate calls: if logging the note fails, the returned move still carries
// the updated deal alongside the error.
func (s *Store) MoveDeal(ctx context.Context, dealID int, stage string) (StageMove, error) {
	current, err := s.Deals.GetByID(ctx, dealID)
	if err != nil {
		return StageMove{}, err
	}

	move := StageMove{Deal: current, From: current.Stage}
	if current.Stage == stage {
		return move, nil
	}

	updated, err := s.Deals.UpdateStage(ctx, dealID, stage)
	if err != nil {
		return move, fmt.Errorf("failed to update deal stage: %w", err)
	}
	move.Deal = updated
	move.Moved = true

	note, err := s.Activities.Create(ctx, models.ActivityFields{
		Type:        models.ActivityNote,
		ContactID:   models.Ref(current.ContactID),
		DealID:      models.Ref(dealID),
		Description: fmt.Sprintf("Deal moved from %s to %s", move.From, stage),
	})
	if err != nil {
		return move, fmt.Errorf("failed to log stage change: %w", err)
	}
	move.Activity = note

	return move, nil
}

// RemoveDeal deletes a deal and logs a note against its contact. The note
// carries no deal reference since the deal no longer exists.
func (s *Store) RemoveDeal(ctx context.Context, dealID int) (*models.Deal, *models.Activity, error) {
	deal, err := s.Deals.Delete(ctx, dealID)
	if err != nil {
		return nil, nil, err
	}

	note, err := s.Activities.Create(ctx, models.ActivityFields{
		Type:        models.ActivityNote,
		ContactID:   models.Ref(deal.ContactID),
		Description: fmt.Sprintf("Deal \"%s\" was deleted", deal.Title),
	})
	if err != nil {
		return deal, nil, fmt.Errorf("failed to log deal deletion: %w", err)
	}

	return deal, note, nil
}
