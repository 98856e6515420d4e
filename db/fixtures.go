// ABOUTME: Embedded seed data for a fresh store
// ABOUTME: Contacts, deals, activities, and stages loaded from JSON at startup
package db

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/harperreed/dealdesk/models"
)

//go:embed fixtures/*.json
var fixturesFS embed.FS

// Fixtures is the full contents of a store.
type Fixtures struct {
	Contacts   []models.Contact  `json:"contacts"`
	Deals      []models.Deal     `json:"deals"`
	Activities []models.Activity `json:"activities"`
	Stages     []models.Stage    `json:"stages"`
}

// DefaultFixtures parses the embedded seed data.
func DefaultFixtures() (Fixtures, error) {
	var f Fixtures

	files := []struct {
		name string
		dst  any
	}{
		{"fixtures/contacts.json", &f.Contacts},
		{"fixtures/deals.json", &f.Deals},
		{"fixtures/activities.json", &f.Activities},
		{"fixtures/stages.json", &f.Stages},
	}

	for _, file := range files {
		data, err := fixturesFS.ReadFile(file.name)
		if err != nil {
			return Fixtures{}, fmt.Errorf("failed to read %s: %w", file.name, err)
		}
		if err := json.Unmarshal(data, file.dst); err != nil {
			return Fixtures{}, fmt.Errorf("failed to parse %s: %w", file.name, err)
		}
	}

	return f, nil
}
