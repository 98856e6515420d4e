// ABOUTME: Activity endpoints for the HTTP API
// ABOUTME: CRUD, the recent list, and the filtered day-grouped feed
package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/viz"
)

type activityRequest struct {
	Type        models.ActivityType `json:"type" binding:"required"`
	Description string              `json:"description" binding:"required"`
	ContactID   *int                `json:"contact_id" binding:"omitempty,gt=0"`
	DealID      *int                `json:"deal_id" binding:"omitempty,gt=0"`
}

type activityPatchRequest struct {
	Type        *models.ActivityType `json:"type"`
	Description *string              `json:"description" binding:"omitempty,min=1"`
	ContactID   *int                 `json:"contact_id" binding:"omitempty,gt=0"`
	DealID      *int                 `json:"deal_id" binding:"omitempty,gt=0"`
}

type feedResponse struct {
	Groups []viz.ActivityGroup         `json:"groups"`
	Total  int                         `json:"total"`
	ByType map[models.ActivityType]int `json:"by_type"`
	Recent viz.RecentStats             `json:"recent"`
}

func (s *Server) listActivities(c *gin.Context) {
	ctx := c.Request.Context()

	contactID, ok := queryInt(c, "contact_id")
	if !ok {
		return
	}
	dealID, ok := queryInt(c, "deal_id")
	if !ok {
		return
	}

	var activities []models.Activity
	var err error
	switch {
	case contactID > 0:
		activities, err = s.store.Activities.GetByContactID(ctx, contactID)
	case dealID > 0:
		activities, err = s.store.Activities.GetByDealID(ctx, dealID)
	default:
		activities, err = s.store.Activities.GetAll(ctx)
	}
	if err != nil {
		s.storeError(c, "failed to list activities", err)
		return
	}

	success(c, http.StatusOK, "activities retrieved", activities)
}

func (s *Server) recentActivities(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	if limit <= 0 {
		limit = db.DefaultRecentLimit
	}

	activities, err := s.store.Activities.GetRecent(c.Request.Context(), limit)
	if err != nil {
		s.storeError(c, "failed to list activities", err)
		return
	}

	success(c, http.StatusOK, "activities retrieved", activities)
}

// activityFeed mirrors the activity page: filter by type and day, sort, and
// group by calendar day relative to now.
func (s *Server) activityFeed(c *gin.Context) {
	sortOrder, ok := viz.ParseSortOrder(c.Query("sort"))
	if !ok {
		badRequest(c, "invalid sort", fmt.Errorf("unknown sort %q (valid: recent, oldest, type)", c.Query("sort")))
		return
	}

	filter := viz.ActivityFilter{Sort: sortOrder}
	if raw := c.Query("type"); raw != "" {
		kind := models.ActivityType(raw)
		if !kind.Valid() {
			badRequest(c, "invalid type", fmt.Errorf("invalid activity type %q", raw))
			return
		}
		filter.Type = kind
	}

	now := s.now()
	if raw := c.Query("date"); raw != "" {
		day, err := time.ParseInLocation(dateLayout, raw, now.Location())
		if err != nil {
			badRequest(c, "invalid date", fmt.Errorf("invalid date %q: use YYYY-MM-DD", raw))
			return
		}
		filter.Day = &day
	}

	all, err := s.store.Activities.GetAll(c.Request.Context())
	if err != nil {
		s.storeError(c, "failed to load activity feed", err)
		return
	}

	filtered := viz.FilterActivities(all, filter)
	success(c, http.StatusOK, "activity feed", feedResponse{
		Groups: viz.GroupActivitiesByDate(filtered, now),
		Total:  len(filtered),
		ByType: viz.ActivityTypeStats(all),
		Recent: viz.RecentActivityStats(all, now),
	})
}

func (s *Server) getActivity(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	activity, err := s.store.Activities.GetByID(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, "activity not found", err)
		return
	}

	success(c, http.StatusOK, "activity retrieved", activity)
}

func (s *Server) createActivity(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}
	if !req.Type.Valid() {
		badRequest(c, "invalid request", fmt.Errorf("invalid activity type %q", req.Type))
		return
	}

	activity, err := s.store.Activities.Create(c.Request.Context(), models.ActivityFields{
		Type:        req.Type,
		ContactID:   req.ContactID,
		DealID:      req.DealID,
		Description: req.Description,
	})
	if err != nil {
		s.storeError(c, "failed to log activity", err)
		return
	}

	success(c, http.StatusCreated, "activity logged", activity)
}

func (s *Server) updateActivity(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req activityPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}
	if req.Type != nil && !req.Type.Valid() {
		badRequest(c, "invalid request", fmt.Errorf("invalid activity type %q", *req.Type))
		return
	}

	activity, err := s.store.Activities.Update(c.Request.Context(), id, models.ActivityPatch{
		Type:        req.Type,
		ContactID:   req.ContactID,
		DealID:      req.DealID,
		Description: req.Description,
	})
	if err != nil {
		s.storeError(c, "failed to update activity", err)
		return
	}

	success(c, http.StatusOK, "activity updated", activity)
}

func (s *Server) deleteActivity(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	activity, err := s.store.Activities.Delete(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, "failed to delete activity", err)
		return
	}

	success(c, http.StatusOK, "activity deleted", activity)
}
