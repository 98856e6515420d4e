// ABOUTME: Tests for contact MCP tool handlers
// ABOUTME: Validates tool input/output and error handling against the seeded store
package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/harperreed/dealdesk/db"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var bg = context.Background()

// setupTestStore returns a store seeded from the embedded fixtures whose clock
// advances one second per call, starting 2024-06-01.
func setupTestStore(t *testing.T) *db.Store {
	t.Helper()
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	store, err := db.New(db.WithClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	}))
	require.NoError(t, err)
	return store
}

func strPtr(s string) *string { return &s }

func TestListContactsHandler(t *testing.T) {
	h := NewContactHandlers(setupTestStore(t), zap.NewNop())

	_, out, err := h.ListContacts(bg, &mcp.CallToolRequest{}, ListContactsInput{})
	require.NoError(t, err)
	assert.Equal(t, 6, out.Count)
	assert.Equal(t, "Sarah Johnson", out.Contacts[0].Name)

	_, out, err = h.ListContacts(bg, &mcp.CallToolRequest{}, ListContactsInput{Tag: "Enterprise"})
	require.NoError(t, err)
	require.Equal(t, 2, out.Count)
	assert.Equal(t, 1, out.Contacts[0].ID)
	assert.Equal(t, 3, out.Contacts[1].ID)
}

func TestSearchContactsHandler(t *testing.T) {
	h := NewContactHandlers(setupTestStore(t), zap.NewNop())

	_, out, err := h.SearchContacts(bg, &mcp.CallToolRequest{}, SearchContactsInput{Query: "innovate"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "Michael Chen", out.Contacts[0].Name)

	_, out, err = h.SearchContacts(bg, &mcp.CallToolRequest{}, SearchContactsInput{Query: "nobody-matches-this"})
	require.NoError(t, err)
	assert.Zero(t, out.Count)
	assert.NotNil(t, out.Contacts)
}

func TestGetContactHandler(t *testing.T) {
	h := NewContactHandlers(setupTestStore(t), zap.NewNop())

	_, out, err := h.GetContact(bg, &mcp.CallToolRequest{}, GetContactInput{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Sarah Johnson", out.Contact.Name)
	assert.Len(t, out.Deals, 2)
	require.Len(t, out.Activities, 2)
	assert.Equal(t, 4, out.Activities[0].ID, "newest activity first")
	assert.Equal(t, "2024-01-18T16:00:00Z", out.Activities[0].Timestamp)
}

func TestGetContactHandlerNotFound(t *testing.T) {
	h := NewContactHandlers(setupTestStore(t), zap.NewNop())

	_, _, err := h.GetContact(bg, &mcp.CallToolRequest{}, GetContactInput{ID: 42})
	require.Error(t, err)
	assert.True(t, db.IsNotFound(err))
	assert.Contains(t, err.Error(), "42")
}

func TestAddContactHandler(t *testing.T) {
	store := setupTestStore(t)
	h := NewContactHandlers(store, zap.NewNop())

	_, out, err := h.AddContact(bg, &mcp.CallToolRequest{}, AddContactInput{
		Name:  "John Doe",
		Email: "john@example.com",
		Phone: "555-1234",
		Tags:  []string{"partner"},
		Notes: "Test contact",
	})
	require.NoError(t, err)

	assert.Equal(t, 7, out.ID)
	assert.Equal(t, "John Doe", out.Name)
	assert.Equal(t, []string{"partner"}, out.Tags)
	assert.Equal(t, out.CreatedAt, out.UpdatedAt)

	got, err := store.Contacts.GetByID(bg, out.ID)
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", got.Email)
}

func TestAddContactHandlerValidation(t *testing.T) {
	h := NewContactHandlers(setupTestStore(t), zap.NewNop())

	_, _, err := h.AddContact(bg, &mcp.CallToolRequest{}, AddContactInput{Email: "anon@example.com"})
	assert.EqualError(t, err, "name is required")
}

func TestAddContactHandlerEmptyTags(t *testing.T) {
	h := NewContactHandlers(setupTestStore(t), zap.NewNop())

	_, out, err := h.AddContact(bg, &mcp.CallToolRequest{}, AddContactInput{Name: "No Tags"})
	require.NoError(t, err)
	assert.Equal(t, []string{}, out.Tags)
}

func TestUpdateContactHandler(t *testing.T) {
	h := NewContactHandlers(setupTestStore(t), zap.NewNop())

	_, out, err := h.UpdateContact(bg, &mcp.CallToolRequest{}, UpdateContactInput{
		ID:      2,
		Company: strPtr("Innovate Labs Inc"),
		Notes:   strPtr(""),
	})
	require.NoError(t, err)

	assert.Equal(t, "Michael Chen", out.Name)
	assert.Equal(t, "Innovate Labs Inc", out.Company)
	assert.Empty(t, out.Notes)
	assert.NotEqual(t, out.CreatedAt, out.UpdatedAt)
}

func TestUpdateContactHandlerErrors(t *testing.T) {
	h := NewContactHandlers(setupTestStore(t), zap.NewNop())

	_, _, err := h.UpdateContact(bg, &mcp.CallToolRequest{}, UpdateContactInput{ID: 1, Name: strPtr("")})
	assert.EqualError(t, err, "name cannot be empty")

	_, _, err = h.UpdateContact(bg, &mcp.CallToolRequest{}, UpdateContactInput{ID: 99, Company: strPtr("x")})
	require.Error(t, err)
	assert.True(t, db.IsNotFound(err))
}

func TestDeleteContactHandlerLeavesDeals(t *testing.T) {
	store := setupTestStore(t)
	h := NewContactHandlers(store, zap.NewNop())

	_, out, err := h.DeleteContact(bg, &mcp.CallToolRequest{}, DeleteContactInput{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, `Deleted contact "Sarah Johnson"`, out.Message)

	_, err = store.Contacts.GetByID(bg, 1)
	assert.True(t, db.IsNotFound(err))

	deals, err := store.Deals.GetByContactID(bg, 1)
	require.NoError(t, err)
	assert.Len(t, deals, 2, "deals keep their dangling contact reference")
}

func TestDeleteContactHandlerNotFound(t *testing.T) {
	h := NewContactHandlers(setupTestStore(t), zap.NewNop())

	_, _, err := h.DeleteContact(bg, &mcp.CallToolRequest{}, DeleteContactInput{ID: 5000})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contact with ID 5000 not found")
}
