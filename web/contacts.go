// ABOUTME: Contact endpoints for the HTTP API
// ABOUTME: CRUD, search, and per-contact deal and activity listings
package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/dealdesk/models"
)

type contactRequest struct {
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email" binding:"omitempty,email"`
	Phone    string   `json:"phone"`
	Company  string   `json:"company"`
	Position string   `json:"position"`
	Tags     []string `json:"tags"`
	Notes    string   `json:"notes"`
}

type contactPatchRequest struct {
	Name     *string  `json:"name" binding:"omitempty,min=1"`
	Email    *string  `json:"email" binding:"omitempty,email"`
	Phone    *string  `json:"phone"`
	Company  *string  `json:"company"`
	Position *string  `json:"position"`
	Tags     []string `json:"tags"`
	Notes    *string  `json:"notes"`
}

func (s *Server) listContacts(c *gin.Context) {
	ctx := c.Request.Context()

	var contacts []models.Contact
	var err error
	if tag := c.Query("tag"); tag != "" {
		contacts, err = s.store.Contacts.GetByTag(ctx, tag)
	} else {
		contacts, err = s.store.Contacts.GetAll(ctx)
	}
	if err != nil {
		s.storeError(c, "failed to list contacts", err)
		return
	}

	success(c, http.StatusOK, "contacts retrieved", contacts)
}

func (s *Server) searchContacts(c *gin.Context) {
	contacts, err := s.store.Contacts.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.storeError(c, "failed to search contacts", err)
		return
	}

	success(c, http.StatusOK, "contacts retrieved", contacts)
}

func (s *Server) getContact(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	contact, err := s.store.Contacts.GetByID(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, "contact not found", err)
		return
	}

	success(c, http.StatusOK, "contact retrieved", contact)
}

func (s *Server) createContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	contact, err := s.store.Contacts.Create(c.Request.Context(), models.ContactFields(req))
	if err != nil {
		s.storeError(c, "failed to create contact", err)
		return
	}

	success(c, http.StatusCreated, "contact created", contact)
}

func (s *Server) updateContact(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req contactPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	contact, err := s.store.Contacts.Update(c.Request.Context(), id, models.ContactPatch(req))
	if err != nil {
		s.storeError(c, "failed to update contact", err)
		return
	}

	success(c, http.StatusOK, "contact updated", contact)
}

func (s *Server) deleteContact(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	contact, err := s.store.Contacts.Delete(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, "failed to delete contact", err)
		return
	}

	success(c, http.StatusOK, "contact deleted", contact)
}

func (s *Server) contactDeals(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	deals, err := s.store.Deals.GetByContactID(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, "failed to list deals", err)
		return
	}

	success(c, http.StatusOK, "deals retrieved", deals)
}

func (s *Server) contactActivities(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	activities, err := s.store.Activities.GetByContactID(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, "failed to list activities", err)
		return
	}

	success(c, http.StatusOK, "activities retrieved", activities)
}
