// ABOUTME: Data models for CRM entities
// ABOUTME: Defines Contact, Deal, Activity, and Stage plus their create/patch inputs
package models

import (
	"time"
)

type Contact struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Position  string    `json:"position,omitempty"`
	Tags      []string  `json:"tags"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy that shares no mutable state with c.
func (c Contact) Clone() Contact {
	c.Tags = cloneTags(c.Tags)
	return c
}

type Deal struct {
	ID                int        `json:"id"`
	Title             string     `json:"title"`
	ContactID         int        `json:"contact_id"`
	Value             float64    `json:"value"`
	Stage             string     `json:"stage"`
	Probability       int        `json:"probability"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (d Deal) Clone() Deal {
	if d.ExpectedCloseDate != nil {
		t := *d.ExpectedCloseDate
		d.ExpectedCloseDate = &t
	}
	return d
}

type Activity struct {
	ID          int          `json:"id"`
	Type        ActivityType `json:"type"`
	ContactID   *int         `json:"contact_id,omitempty"`
	DealID      *int         `json:"deal_id,omitempty"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
}

func (a Activity) Clone() Activity {
	a.ContactID = cloneRef(a.ContactID)
	a.DealID = cloneRef(a.DealID)
	return a
}

type Stage struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Order int    `json:"order"`
}

// Clone exists so every entity satisfies the same snapshot contract.
func (s Stage) Clone() Stage {
	return s
}

// ActivityType is the kind of logged interaction.
type ActivityType string

const (
	ActivityCall    ActivityType = "call"
	ActivityEmail   ActivityType = "email"
	ActivityMeeting ActivityType = "meeting"
	ActivityNote    ActivityType = "note"
	ActivityTask    ActivityType = "task"
	ActivityDemo    ActivityType = "demo"
)

// ActivityTypes lists every activity type in display order.
var ActivityTypes = []ActivityType{
	ActivityCall,
	ActivityEmail,
	ActivityMeeting,
	ActivityNote,
	ActivityTask,
	ActivityDemo,
}

func (t ActivityType) Valid() bool {
	for _, known := range ActivityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ContactFields is a contact minus the fields the store assigns.
type ContactFields struct {
	Name     string   `json:"name"`
	Email    string   `json:"email,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Company  string   `json:"company,omitempty"`
	Position string   `json:"position,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// DealFields is a deal minus the fields the store assigns.
// A nil Probability is derived from Stage.
type DealFields struct {
	Title             string     `json:"title"`
	ContactID         int        `json:"contact_id"`
	Value             float64    `json:"value"`
	Stage             string     `json:"stage"`
	Probability       *int       `json:"probability,omitempty"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

type ActivityFields struct {
	Type        ActivityType `json:"type"`
	ContactID   *int         `json:"contact_id,omitempty"`
	DealID      *int         `json:"deal_id,omitempty"`
	Description string       `json:"description"`
}

type StageFields struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ContactPatch holds a partial contact update. Nil fields are left unchanged;
// a non-nil Tags slice (even empty) replaces the existing tags.
type ContactPatch struct {
	Name     *string  `json:"name,omitempty"`
	Email    *string  `json:"email,omitempty"`
	Phone    *string  `json:"phone,omitempty"`
	Company  *string  `json:"company,omitempty"`
	Position *string  `json:"position,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
}

// Apply merges the patch over c.
func (p ContactPatch) Apply(c *Contact) {
	setIf(&c.Name, p.Name)
	setIf(&c.Email, p.Email)
	setIf(&c.Phone, p.Phone)
	setIf(&c.Company, p.Company)
	setIf(&c.Position, p.Position)
	setIf(&c.Notes, p.Notes)
	if p.Tags != nil {
		c.Tags = cloneTags(p.Tags)
	}
}

type DealPatch struct {
	Title             *string    `json:"title,omitempty"`
	ContactID         *int       `json:"contact_id,omitempty"`
	Value             *float64   `json:"value,omitempty"`
	Stage             *string    `json:"stage,omitempty"`
	Probability       *int       `json:"probability,omitempty"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
}

// Apply merges the patch over d. Changing Stage through a patch does not
// touch Probability; use the stage transition for that.
func (p DealPatch) Apply(d *Deal) {
	setIf(&d.Title, p.Title)
	setIf(&d.ContactID, p.ContactID)
	setIf(&d.Value, p.Value)
	setIf(&d.Stage, p.Stage)
	setIf(&d.Probability, p.Probability)
	setIf(&d.Notes, p.Notes)
	if p.ExpectedCloseDate != nil {
		t := *p.ExpectedCloseDate
		d.ExpectedCloseDate = &t
	}
}

// ActivityPatch has no timestamp: an activity's timestamp never changes.
type ActivityPatch struct {
	Type        *ActivityType `json:"type,omitempty"`
	ContactID   *int          `json:"contact_id,omitempty"`
	DealID      *int          `json:"deal_id,omitempty"`
	Description *string       `json:"description,omitempty"`
}

func (p ActivityPatch) Apply(a *Activity) {
	setIf(&a.Type, p.Type)
	setIf(&a.Description, p.Description)
	if p.ContactID != nil {
		a.ContactID = cloneRef(p.ContactID)
	}
	if p.DealID != nil {
		a.DealID = cloneRef(p.DealID)
	}
}

type StagePatch struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
	Order *int    `json:"order,omitempty"`
}

func (p StagePatch) Apply(s *Stage) {
	setIf(&s.Name, p.Name)
	setIf(&s.Color, p.Color)
	setIf(&s.Order, p.Order)
}

// StageOrder pairs a stage ID with its new column position.
type StageOrder struct {
	ID    int `json:"id"`
	Order int `json:"order"`
}

// PipelineMetrics summarizes the deal collection.
type PipelineMetrics struct {
	TotalValue      float64               `json:"total_value"`
	TotalDeals      int                   `json:"total_deals"`
	ActiveDeals     int                   `json:"active_deals"`
	WonDeals        int                   `json:"won_deals"`
	LostDeals       int                   `json:"lost_deals"`
	WinRate         float64               `json:"win_rate"`
	AverageDealSize float64               `json:"average_deal_size"`
	StageBreakdown  map[string]StageStats `json:"stage_breakdown"`
}

type StageStats struct {
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

// Ref returns a pointer to a copy of id, for optional references.
func Ref(id int) *int {
	return &id
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func cloneRef(id *int) *int {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
