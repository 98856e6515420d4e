// ABOUTME: Saves store contents to a SQLite file and loads them back as fixtures
// ABOUTME: Lets a session pick up where the previous process left off
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/dealdesk/models"
	"go.uber.org/zap"
)

// ErrNoSnapshot is returned by LoadSnapshot when the file holds no saved state.
var ErrNoSnapshot = errors.New("no snapshot saved")

// SnapshotInfo describes one save.
type SnapshotInfo struct {
	ID         uuid.UUID `json:"id"`
	SessionID  string    `json:"session_id"`
	Contacts   int       `json:"contacts"`
	Deals      int       `json:"deals"`
	Activities int       `json:"activities"`
	Stages     int       `json:"stages"`
	CreatedAt  time.Time `json:"created_at"`
}

// SaveSnapshot replaces the entity tables at path with the store's current
// contents and records the save in the snapshots table.
func SaveSnapshot(ctx context.Context, s *Store, path string) (*SnapshotInfo, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	f := s.Export()
	info := &SnapshotInfo{
		ID:         uuid.New(),
		SessionID:  s.SessionID(),
		Contacts:   len(f.Contacts),
		Deals:      len(f.Deals),
		Activities: len(f.Activities),
		Stages:     len(f.Stages),
		CreatedAt:  s.now().UTC(),
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"contacts", "deals", "activities", "stages"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return nil, fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := writeContacts(ctx, tx, f.Contacts); err != nil {
		return nil, err
	}
	if err := writeDeals(ctx, tx, f.Deals); err != nil {
		return nil, err
	}
	if err := writeActivities(ctx, tx, f.Activities); err != nil {
		return nil, err
	}
	if err := writeStages(ctx, tx, f.Stages); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, session_id, contacts, deals, activities, stages, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, info.ID.String(), info.SessionID, info.Contacts, info.Deals, info.Activities, info.Stages, info.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}

	s.logger.Info("snapshot saved",
		zap.String("snapshot_id", info.ID.String()),
		zap.String("path", path),
		zap.Int("contacts", info.Contacts),
		zap.Int("deals", info.Deals),
	)
	return info, nil
}

// LoadSnapshot reads the entity tables at path into Fixtures for New. A
// missing file yields an error wrapping os.ErrNotExist; a file that was never
// saved to yields ErrNoSnapshot.
func LoadSnapshot(ctx context.Context, path string) (Fixtures, error) {
	if _, err := os.Stat(path); err != nil {
		return Fixtures{}, fmt.Errorf("failed to open snapshot: %w", err)
	}

	db, err := OpenDatabase(path)
	if err != nil {
		return Fixtures{}, err
	}
	defer func() { _ = db.Close() }()

	if _, err := latestSnapshot(ctx, db); err != nil {
		return Fixtures{}, err
	}

	var f Fixtures
	if f.Contacts, err = readContacts(ctx, db); err != nil {
		return Fixtures{}, err
	}
	if f.Deals, err = readDeals(ctx, db); err != nil {
		return Fixtures{}, err
	}
	if f.Activities, err = readActivities(ctx, db); err != nil {
		return Fixtures{}, err
	}
	if f.Stages, err = readStages(ctx, db); err != nil {
		return Fixtures{}, err
	}

	return f, nil
}

// LatestSnapshot returns the most recent save recorded at path.
func LatestSnapshot(ctx context.Context, path string) (*SnapshotInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}

	db, err := OpenDatabase(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	return latestSnapshot(ctx, db)
}

func latestSnapshot(ctx context.Context, db *sql.DB) (*SnapshotInfo, error) {
	info := &SnapshotInfo{}
	var id string

	err := db.QueryRowContext(ctx, `
		SELECT id, session_id, contacts, deals, activities, stages, created_at
		FROM snapshots ORDER BY created_at DESC LIMIT 1
	`).Scan(&id, &info.SessionID, &info.Contacts, &info.Deals, &info.Activities, &info.Stages, &info.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot record: %w", err)
	}

	info.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot id %q: %w", id, err)
	}
	return info, nil
}

func writeContacts(ctx context.Context, tx *sql.Tx, contacts []models.Contact) error {
	for _, c := range contacts {
		tags, err := json.Marshal(c.Tags)
		if err != nil {
			return fmt.Errorf("failed to encode tags for contact %d: %w", c.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO contacts (id, name, email, phone, company, position, tags, notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, c.ID, c.Name, c.Email, c.Phone, c.Company, c.Position, string(tags), c.Notes, c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to save contact %d: %w", c.ID, err)
		}
	}
	return nil
}

func writeDeals(ctx context.Context, tx *sql.Tx, deals []models.Deal) error {
	for _, d := range deals {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO deals (id, title, contact_id, value, stage, probability, expected_close_date, notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, d.ID, d.Title, d.ContactID, d.Value, d.Stage, d.Probability, d.ExpectedCloseDate, d.Notes, d.CreatedAt, d.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to save deal %d: %w", d.ID, err)
		}
	}
	return nil
}

func writeActivities(ctx context.Context, tx *sql.Tx, activities []models.Activity) error {
	for _, a := range activities {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO activities (id, type, contact_id, deal_id, description, timestamp)
			VALUES (?, ?, ?, ?, ?, ?)
		`, a.ID, string(a.Type), a.ContactID, a.DealID, a.Description, a.Timestamp)
		if err != nil {
			return fmt.Errorf("failed to save activity %d: %w", a.ID, err)
		}
	}
	return nil
}

func writeStages(ctx context.Context, tx *sql.Tx, stages []models.Stage) error {
	for _, st := range stages {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stages (id, name, color, sort_order) VALUES (?, ?, ?, ?)
		`, st.ID, st.Name, st.Color, st.Order)
		if err != nil {
			return fmt.Errorf("failed to save stage %d: %w", st.ID, err)
		}
	}
	return nil
}

func readContacts(ctx context.Context, db *sql.DB) ([]models.Contact, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, email, phone, company, position, tags, notes, created_at, updated_at
		FROM contacts ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read contacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var contacts []models.Contact
	for rows.Next() {
		var c models.Contact
		var tags string
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Position, &tags, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &c.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags for contact %d: %w", c.ID, err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func readDeals(ctx context.Context, db *sql.DB) ([]models.Deal, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, title, contact_id, value, stage, probability, expected_close_date, notes, created_at, updated_at
		FROM deals ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read deals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var deals []models.Deal
	for rows.Next() {
		var d models.Deal
		var closeDate sql.NullTime
		if err := rows.Scan(&d.ID, &d.Title, &d.ContactID, &d.Value, &d.Stage, &d.Probability, &closeDate, &d.Notes, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}
		if closeDate.Valid {
			d.ExpectedCloseDate = &closeDate.Time
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

func readActivities(ctx context.Context, db *sql.DB) ([]models.Activity, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, type, contact_id, deal_id, description, timestamp
		FROM activities ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read activities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var activities []models.Activity
	for rows.Next() {
		var a models.Activity
		var kind string
		var contactID, dealID sql.NullInt64
		if err := rows.Scan(&a.ID, &kind, &contactID, &dealID, &a.Description, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Type = models.ActivityType(kind)
		if contactID.Valid {
			a.ContactID = models.Ref(int(contactID.Int64))
		}
		if dealID.Valid {
			a.DealID = models.Ref(int(dealID.Int64))
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func readStages(ctx context.Context, db *sql.DB) ([]models.Stage, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, color, sort_order FROM stages ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read stages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stages []models.Stage
	for rows.Next() {
		var st models.Stage
		if err := rows.Scan(&st.ID, &st.Name, &st.Color, &st.Order); err != nil {
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}
		stages = append(stages, st)
	}
	return stages, rows.Err()
}
