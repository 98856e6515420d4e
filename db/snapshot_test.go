// ABOUTME: Tests for saving the store to SQLite and seeding a new store from it
// ABOUTME: Round trips every entity type, including optional references and tags
package db

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/harperreed/dealdesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	s := seededStore(t)
	_, err := s.MoveDeal(bg, 3, models.StageProposal)
	require.NoError(t, err)
	_, err = s.Contacts.Create(bg, models.ContactFields{Name: "No Tags"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "crm.db")
	info, err := SaveSnapshot(bg, s, path)
	require.NoError(t, err)
	assert.Equal(t, s.SessionID(), info.SessionID)
	assert.Equal(t, 7, info.Contacts)

	f, err := LoadSnapshot(bg, path)
	require.NoError(t, err)

	want := s.Export()
	require.Len(t, f.Contacts, len(want.Contacts))
	require.Len(t, f.Deals, len(want.Deals))
	require.Len(t, f.Activities, len(want.Activities))
	assert.Equal(t, want.Stages, f.Stages)

	for i, c := range want.Contacts {
		assert.Equal(t, c.Name, f.Contacts[i].Name)
		assert.Equal(t, c.Tags, f.Contacts[i].Tags)
		assert.True(t, c.UpdatedAt.Equal(f.Contacts[i].UpdatedAt))
	}
	for i, d := range want.Deals {
		assert.Equal(t, d.Stage, f.Deals[i].Stage)
		assert.Equal(t, d.Probability, f.Deals[i].Probability)
		assert.Equal(t, d.ExpectedCloseDate == nil, f.Deals[i].ExpectedCloseDate == nil, d.Title)
	}
	for i, a := range want.Activities {
		assert.Equal(t, a.Description, f.Activities[i].Description)
		assert.Equal(t, a.DealID, f.Activities[i].DealID)
		assert.Equal(t, a.ContactID, f.Activities[i].ContactID)
		assert.True(t, a.Timestamp.Equal(f.Activities[i].Timestamp))
	}

	restored, err := New(WithFixtures(f))
	require.NoError(t, err)
	d, err := restored.Deals.GetByID(bg, 3)
	require.NoError(t, err)
	assert.Equal(t, models.StageProposal, d.Stage)
}

func TestSnapshotSaveReplacesPreviousContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crm.db")

	s := seededStore(t)
	_, err := SaveSnapshot(bg, s, path)
	require.NoError(t, err)

	_, err = s.Contacts.Delete(bg, 6)
	require.NoError(t, err)
	second, err := SaveSnapshot(bg, s, path)
	require.NoError(t, err)

	f, err := LoadSnapshot(bg, path)
	require.NoError(t, err)
	assert.Len(t, f.Contacts, 5)

	latest, err := LatestSnapshot(bg, path)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	_, err := LoadSnapshot(bg, filepath.Join(t.TempDir(), "absent.db"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadSnapshotNeverSaved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	db, err := OpenDatabase(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = LoadSnapshot(bg, path)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}
