// ABOUTME: Tests for the contact service
// ABOUTME: Covers CRUD round trips, NotFound errors, search, and tag lookup
package db

import (
	"errors"
	"testing"

	"github.com/harperreed/dealdesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactCreateAndGet(t *testing.T) {
	s := newTestStore(t, Fixtures{})

	created, err := s.Contacts.Create(bg, models.ContactFields{
		Name:    "Ada Lovelace",
		Email:   "ada@analytical.engine",
		Company: "Analytical Engines",
		Tags:    []string{"vip"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := s.Contacts.GetByID(bg, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestContactCreateAssignsMaxPlusOne(t *testing.T) {
	s := newTestStore(t, Fixtures{Contacts: []models.Contact{{ID: 3, Name: "Three"}, {ID: 9, Name: "Nine"}}})

	c, err := s.Contacts.Create(bg, models.ContactFields{Name: "Ten"})
	require.NoError(t, err)
	assert.Equal(t, 10, c.ID)
	assert.Equal(t, []string{}, c.Tags)
}

func TestContactCreateReusesFreedMaxID(t *testing.T) {
	s := newTestStore(t, Fixtures{Contacts: []models.Contact{{ID: 1, Name: "One"}, {ID: 2, Name: "Two"}}})

	_, err := s.Contacts.Delete(bg, 2)
	require.NoError(t, err)

	c, err := s.Contacts.Create(bg, models.ContactFields{Name: "Again"})
	require.NoError(t, err)
	assert.Equal(t, 2, c.ID)
}

func TestContactReturnedCopiesAreIndependent(t *testing.T) {
	s := newTestStore(t, Fixtures{Contacts: []models.Contact{{ID: 1, Name: "Ada", Tags: []string{"vip"}}}})

	c, err := s.Contacts.GetByID(bg, 1)
	require.NoError(t, err)
	c.Name = "Mutated"
	c.Tags[0] = "mutated"

	again, err := s.Contacts.GetByID(bg, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada", again.Name)
	assert.Equal(t, []string{"vip"}, again.Tags)
}

func TestContactUpdateEmptyPatchOnlyBumpsUpdatedAt(t *testing.T) {
	s := seededStore(t)

	before, err := s.Contacts.GetByID(bg, 1)
	require.NoError(t, err)

	after, err := s.Contacts.Update(bg, 1, models.ContactPatch{})
	require.NoError(t, err)

	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
	after.UpdatedAt = before.UpdatedAt
	assert.Equal(t, before, after)
}

func TestContactUpdateMergesFields(t *testing.T) {
	s := seededStore(t)
	email := "sarah@newco.com"

	updated, err := s.Contacts.Update(bg, 1, models.ContactPatch{Email: &email, Tags: []string{}})
	require.NoError(t, err)

	assert.Equal(t, 1, updated.ID)
	assert.Equal(t, "Sarah Johnson", updated.Name)
	assert.Equal(t, email, updated.Email)
	assert.Empty(t, updated.Tags)
}

func TestContactUpdateNotFound(t *testing.T) {
	s := newTestStore(t, Fixtures{})

	_, err := s.Contacts.Update(bg, 42, models.ContactPatch{})
	assert.True(t, IsNotFound(err))
}

func TestContactDeleteMissingMentionsID(t *testing.T) {
	s := newTestStore(t, Fixtures{})

	_, err := s.Contacts.Delete(bg, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "5")

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "contact", nf.Entity)
}

func TestContactDeleteDoesNotCascade(t *testing.T) {
	s := seededStore(t)

	deals, err := s.Deals.GetByContactID(bg, 1)
	require.NoError(t, err)
	require.NotEmpty(t, deals)

	removed, err := s.Contacts.Delete(bg, 1)
	require.NoError(t, err)
	assert.Equal(t, "Sarah Johnson", removed.Name)

	_, err = s.Contacts.GetByID(bg, 1)
	assert.True(t, IsNotFound(err))

	still, err := s.Deals.GetByContactID(bg, 1)
	require.NoError(t, err)
	assert.Len(t, still, len(deals))
}

func TestContactSearch(t *testing.T) {
	s := seededStore(t)

	tests := []struct {
		query string
		want  []int
	}{
		{"sarah", []int{1}},
		{"TECHCORP", []int{1}},
		{"innovate", []int{2}},
		{"enterprise", []int{1, 3}},
		{"@healthfirst", []int{5}},
		{"no-such-person", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			results, err := s.Contacts.Search(bg, tt.query)
			require.NoError(t, err)

			var ids []int
			for _, c := range results {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestContactSearchBlankReturnsAll(t *testing.T) {
	s := seededStore(t)

	all, err := s.Contacts.GetAll(bg)
	require.NoError(t, err)

	results, err := s.Contacts.Search(bg, "   ")
	require.NoError(t, err)
	assert.Equal(t, all, results)
}

func TestContactGetByTag(t *testing.T) {
	s := seededStore(t)

	results, err := s.Contacts.GetByTag(bg, "Technical")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].ID)
	assert.Equal(t, 5, results[1].ID)
}
