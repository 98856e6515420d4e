// ABOUTME: Tool output shapes shared by the MCP handlers
// ABOUTME: Converts store records into JSON-friendly structs with RFC 3339 timestamps
package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/models"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type ContactOutput struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Company   string   `json:"company,omitempty"`
	Position  string   `json:"position,omitempty"`
	Tags      []string `json:"tags"`
	Notes     string   `json:"notes,omitempty"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

type DealOutput struct {
	ID                int     `json:"id"`
	Title             string  `json:"title"`
	ContactID         int     `json:"contact_id"`
	Value             float64 `json:"value"`
	Stage             string  `json:"stage"`
	Probability       int     `json:"probability"`
	ExpectedCloseDate string  `json:"expected_close_date,omitempty"`
	Notes             string  `json:"notes,omitempty"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

type ActivityOutput struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	ContactID   *int   `json:"contact_id,omitempty"`
	DealID      *int   `json:"deal_id,omitempty"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

type StageOutput struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Order int    `json:"order"`
}

func contactToOutput(c *models.Contact) ContactOutput {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return ContactOutput{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Company:   c.Company,
		Position:  c.Position,
		Tags:      tags,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

func contactsToOutput(list []models.Contact) []ContactOutput {
	out := make([]ContactOutput, len(list))
	for i := range list {
		out[i] = contactToOutput(&list[i])
	}
	return out
}

func dealToOutput(d *models.Deal) DealOutput {
	out := DealOutput{
		ID:          d.ID,
		Title:       d.Title,
		ContactID:   d.ContactID,
		Value:       d.Value,
		Stage:       d.Stage,
		Probability: d.Probability,
		Notes:       d.Notes,
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   d.UpdatedAt.Format(time.RFC3339),
	}
	if d.ExpectedCloseDate != nil {
		out.ExpectedCloseDate = d.ExpectedCloseDate.Format(dateLayout)
	}
	return out
}

func dealsToOutput(list []models.Deal) []DealOutput {
	out := make([]DealOutput, len(list))
	for i := range list {
		out[i] = dealToOutput(&list[i])
	}
	return out
}

func activityToOutput(a *models.Activity) ActivityOutput {
	return ActivityOutput{
		ID:          a.ID,
		Type:        string(a.Type),
		ContactID:   a.ContactID,
		DealID:      a.DealID,
		Description: a.Description,
		Timestamp:   a.Timestamp.Format(time.RFC3339),
	}
}

func activitiesToOutput(list []models.Activity) []ActivityOutput {
	out := make([]ActivityOutput, len(list))
	for i := range list {
		out[i] = activityToOutput(&list[i])
	}
	return out
}

func stagesToOutput(list []models.Stage) []StageOutput {
	out := make([]StageOutput, len(list))
	for i, st := range list {
		out[i] = StageOutput{ID: st.ID, Name: st.Name, Color: st.Color, Order: st.Order}
	}
	return out
}

// parseDate accepts a bare date or a full RFC 3339 timestamp.
func parseDate(s string) (*time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return &t, nil
}

func validateDealNumbers(value *float64, probability *int) error {
	if value != nil && *value < 0 {
		return errors.New("value must not be negative")
	}
	if probability != nil && (*probability < 0 || *probability > 100) {
		return errors.New("probability must be between 0 and 100")
	}
	return nil
}

// wrap adds operation context to store errors and logs misses at debug.
func wrap(logger *zap.Logger, op string, err error) error {
	if db.IsNotFound(err) {
		logger.Debug("lookup missed", zap.String("op", op), zap.Error(err))
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
