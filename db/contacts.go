// ABOUTME: Contact service over the in-memory store
// ABOUTME: Handles CRUD operations and free-text contact search
package db

import (
	"context"
	"strings"

	"github.com/harperreed/dealdesk/models"
	"go.uber.org/zap"
)

type ContactService struct {
	s *Store
}

func (cs *ContactService) GetAll(ctx context.Context) ([]models.Contact, error) {
	if err := cs.s.wait(ctx, OpList); err != nil {
		return nil, err
	}

	cs.s.mu.RLock()
	defer cs.s.mu.RUnlock()

	return cs.s.contacts.list(), nil
}

func (cs *ContactService) GetByID(ctx context.Context, id int) (*models.Contact, error) {
	if err := cs.s.wait(ctx, OpGet); err != nil {
		return nil, err
	}

	cs.s.mu.RLock()
	defer cs.s.mu.RUnlock()

	c, err := cs.s.contacts.get(id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create stores a new contact. Fields are not validated.
func (cs *ContactService) Create(ctx context.Context, f models.ContactFields) (*models.Contact, error) {
	if err := cs.s.wait(ctx, OpCreate); err != nil {
		return nil, err
	}

	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()

	now := cs.s.now()
	c := models.Contact{
		ID:        cs.s.contacts.nextID(),
		Name:      f.Name,
		Email:     f.Email,
		Phone:     f.Phone,
		Company:   f.Company,
		Position:  f.Position,
		Tags:      f.Tags,
		Notes:     f.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	cs.s.contacts.set(c.ID, c)

	cs.s.logger.Info("contact created", zap.Int("contact_id", c.ID), zap.String("name", c.Name))
	return ptr(c.Clone()), nil
}

func (cs *ContactService) Update(ctx context.Context, id int, p models.ContactPatch) (*models.Contact, error) {
	if err := cs.s.wait(ctx, OpUpdate); err != nil {
		return nil, err
	}

	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()

	c, err := cs.s.contacts.get(id)
	if err != nil {
		return nil, err
	}

	p.Apply(&c)
	c.ID = id
	c.UpdatedAt = cs.s.stamp(c.UpdatedAt)
	cs.s.contacts.set(id, c)

	cs.s.logger.Info("contact updated", zap.Int("contact_id", id))
	return &c, nil
}

// Delete removes the contact and returns it. Deals and activities that
// reference it are left alone.
func (cs *ContactService) Delete(ctx context.Context, id int) (*models.Contact, error) {
	if err := cs.s.wait(ctx, OpDelete); err != nil {
		return nil, err
	}

	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()

	c, err := cs.s.contacts.remove(id)
	if err != nil {
		return nil, err
	}

	cs.s.logger.Info("contact deleted", zap.Int("contact_id", id))
	return &c, nil
}

// Search matches query case-insensitively against name, email, company,
// position, and tags. A blank query returns every contact.
func (cs *ContactService) Search(ctx context.Context, query string) ([]models.Contact, error) {
	if err := cs.s.wait(ctx, OpSearch); err != nil {
		return nil, err
	}

	cs.s.mu.RLock()
	defer cs.s.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return cs.s.contacts.list(), nil
	}

	return cs.s.contacts.filter(func(c models.Contact) bool {
		return matchContact(c, term)
	}), nil
}

// GetByTag returns contacts carrying tag, compared case-insensitively.
func (cs *ContactService) GetByTag(ctx context.Context, tag string) ([]models.Contact, error) {
	if err := cs.s.wait(ctx, OpQuery); err != nil {
		return nil, err
	}

	cs.s.mu.RLock()
	defer cs.s.mu.RUnlock()

	return cs.s.contacts.filter(func(c models.Contact) bool {
		for _, t := range c.Tags {
			if strings.EqualFold(t, tag) {
				return true
			}
		}
		return false
	}), nil
}

func matchContact(c models.Contact, term string) bool {
	fields := []string{c.Name, c.Email, c.Company, c.Position}
	fields = append(fields, c.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func ptr[T any](v T) *T {
	return &v
}
