// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements list, search, get, add, update, and delete contact tools
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

type ContactHandlers struct {
	store  *db.Store
	logger *zap.Logger
}

func NewContactHandlers(store *db.Store, logger *zap.Logger) *ContactHandlers {
	return &ContactHandlers{store: store, logger: logger}
}

type ListContactsInput struct {
	Tag string `json:"tag,omitempty" jsonschema:"Only contacts carrying this tag (case-insensitive)"`
}

type ContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
	Count    int             `json:"count"`
}

func (h *ContactHandlers) ListContacts(ctx context.Context, _ *mcp.CallToolRequest, input ListContactsInput) (*mcp.CallToolResult, ContactsOutput, error) {
	var contacts []models.Contact
	var err error
	if input.Tag != "" {
		contacts, err = h.store.Contacts.GetByTag(ctx, input.Tag)
	} else {
		contacts, err = h.store.Contacts.GetAll(ctx)
	}
	if err != nil {
		return nil, ContactsOutput{}, wrap(h.logger, "list contacts", err)
	}

	return nil, ContactsOutput{Contacts: contactsToOutput(contacts), Count: len(contacts)}, nil
}

type SearchContactsInput struct {
	Query string `json:"query" jsonschema:"Text matched against name, email, company, position, and tags"`
}

func (h *ContactHandlers) SearchContacts(ctx context.Context, _ *mcp.CallToolRequest, input SearchContactsInput) (*mcp.CallToolResult, ContactsOutput, error) {
	contacts, err := h.store.Contacts.Search(ctx, input.Query)
	if err != nil {
		return nil, ContactsOutput{}, wrap(h.logger, "search contacts", err)
	}

	return nil, ContactsOutput{Contacts: contactsToOutput(contacts), Count: len(contacts)}, nil
}

type GetContactInput struct {
	ID int `json:"id" jsonschema:"Contact ID (required)"`
}

type ContactDetailOutput struct {
	Contact    ContactOutput    `json:"contact"`
	Deals      []DealOutput     `json:"deals"`
	Activities []ActivityOutput `json:"activities"`
}

// GetContact returns a contact with its deals and activity history, the same
// view the contact detail panel shows.
func (h *ContactHandlers) GetContact(ctx context.Context, _ *mcp.CallToolRequest, input GetContactInput) (*mcp.CallToolResult, ContactDetailOutput, error) {
	contact, err := h.store.Contacts.GetByID(ctx, input.ID)
	if err != nil {
		return nil, ContactDetailOutput{}, wrap(h.logger, "get contact", err)
	}
	deals, err := h.store.Deals.GetByContactID(ctx, input.ID)
	if err != nil {
		return nil, ContactDetailOutput{}, wrap(h.logger, "get contact deals", err)
	}
	activities, err := h.store.Activities.GetByContactID(ctx, input.ID)
	if err != nil {
		return nil, ContactDetailOutput{}, wrap(h.logger, "get contact activities", err)
	}

	return nil, ContactDetailOutput{
		Contact:    contactToOutput(contact),
		Deals:      dealsToOutput(deals),
		Activities: activitiesToOutput(activities),
	}, nil
}

type AddContactInput struct {
	Name     string   `json:"name" jsonschema:"Contact name (required)"`
	Email    string   `json:"email,omitempty" jsonschema:"Contact email address"`
	Phone    string   `json:"phone,omitempty" jsonschema:"Contact phone number"`
	Company  string   `json:"company,omitempty" jsonschema:"Company name"`
	Position string   `json:"position,omitempty" jsonschema:"Job title"`
	Tags     []string `json:"tags,omitempty" jsonschema:"Tags for grouping contacts"`
	Notes    string   `json:"notes,omitempty" jsonschema:"Additional notes about the contact"`
}

func (h *ContactHandlers) AddContact(ctx context.Context, _ *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.Name == "" {
		return nil, ContactOutput{}, fmt.Errorf("name is required")
	}

	contact, err := h.store.Contacts.Create(ctx, models.ContactFields{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Company:  input.Company,
		Position: input.Position,
		Tags:     input.Tags,
		Notes:    input.Notes,
	})
	if err != nil {
		return nil, ContactOutput{}, wrap(h.logger, "create contact", err)
	}

	return nil, contactToOutput(contact), nil
}

type UpdateContactInput struct {
	ID       int      `json:"id" jsonschema:"Contact ID (required)"`
	Name     *string  `json:"name,omitempty" jsonschema:"Updated name"`
	Email    *string  `json:"email,omitempty" jsonschema:"Updated email address"`
	Phone    *string  `json:"phone,omitempty" jsonschema:"Updated phone number"`
	Company  *string  `json:"company,omitempty" jsonschema:"Updated company"`
	Position *string  `json:"position,omitempty" jsonschema:"Updated job title"`
	Tags     []string `json:"tags,omitempty" jsonschema:"Replacement tag list"`
	Notes    *string  `json:"notes,omitempty" jsonschema:"Updated notes"`
}

func (h *ContactHandlers) UpdateContact(ctx context.Context, _ *mcp.CallToolRequest, input UpdateContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.Name != nil && *input.Name == "" {
		return nil, ContactOutput{}, fmt.Errorf("name cannot be empty")
	}

	contact, err := h.store.Contacts.Update(ctx, input.ID, models.ContactPatch{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Company:  input.Company,
		Position: input.Position,
		Tags:     input.Tags,
		Notes:    input.Notes,
	})
	if err != nil {
		return nil, ContactOutput{}, wrap(h.logger, "update contact", err)
	}

	return nil, contactToOutput(contact), nil
}

type DeleteContactInput struct {
	ID int `json:"id" jsonschema:"Contact ID (required)"`
}

type DeleteContactOutput struct {
	Message string        `json:"message"`
	Contact ContactOutput `json:"contact"`
}

// DeleteContact removes only the contact; its deals and activities stay.
func (h *ContactHandlers) DeleteContact(ctx context.Context, _ *mcp.CallToolRequest, input DeleteContactInput) (*mcp.CallToolResult, DeleteContactOutput, error) {
	contact, err := h.store.Contacts.Delete(ctx, input.ID)
	if err != nil {
		return nil, DeleteContactOutput{}, wrap(h.logger, "delete contact", err)
	}

	return nil, DeleteContactOutput{
		Message: fmt.Sprintf("Deleted contact %q", contact.Name),
		Contact: contactToOutput(contact),
	}, nil
}
