package organizations

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orgcatalog/backend/internal/models"
	"github.com/orgcatalog/backend/pkg/response"
)

// ActivityNameResolver resolves an activity name to its node for the
// by-activity endpoints. Satisfied by the activities hierarchy service.
type ActivityNameResolver interface {
	FindByName(ctx context.Context, name string) (*models.Activity, error)
}

// Handler handles organization HTTP endpoints.
type Handler struct {
	svc      *Service
	resolver ActivityNameResolver
}

// NewHandler creates an organizations handler.
func NewHandler(svc *Service, resolver ActivityNameResolver) *Handler {
	return &Handler{svc: svc, resolver: resolver}
}

// GetByID handles GET /organizations/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	org, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, org)
}

// SearchByName handles GET /organizations/search/by-name?query=.
func (h *Handler) SearchByName(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if len(query) < 2 || len(query) > 100 {
		response.BadRequest(c, "query must be 2-100 characters")
		return
	}
	list, err := h.svc.SearchByName(c.Request.Context(), query)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, list)
}

// ByBuilding handles GET /organizations/by-building/:buildingID.
func (h *Handler) ByBuilding(c *gin.Context) {
	buildingID, err := strconv.ParseInt(c.Param("buildingID"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid building id")
		return
	}
	list, err := h.svc.ByBuilding(c.Request.Context(), buildingID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, list)
}

// ByActivity handles GET /organizations/by-activity?query=. The query
// is an activity name resolved to a single node; only direct tags match.
func (h *Handler) ByActivity(c *gin.Context) {
	activity, ok := h.resolveActivity(c)
	if !ok {
		return
	}
	list, err := h.svc.ByActivityDirect(c.Request.Context(), activity.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, list)
}

// ByActivityTree handles GET /organizations/by-activity-tree?query=.
// Matches the named activity and all of its sub-categories.
func (h *Handler) ByActivityTree(c *gin.Context) {
	activity, ok := h.resolveActivity(c)
	if !ok {
		return
	}
	list, err := h.svc.ByActivitySubtree(c.Request.Context(), activity.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, list)
}

// NearbyRadius handles GET /organizations/nearby/radius?latitude&longitude&radius.
func (h *Handler) NearbyRadius(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("latitude"), 64)
	if err != nil {
		response.BadRequest(c, "invalid latitude")
		return
	}
	lon, err := strconv.ParseFloat(c.Query("longitude"), 64)
	if err != nil {
		response.BadRequest(c, "invalid longitude")
		return
	}
	radius, err := strconv.ParseFloat(c.Query("radius"), 64)
	if err != nil {
		response.BadRequest(c, "invalid radius")
		return
	}
	list, err := h.svc.Near(c.Request.Context(), lat, lon, radius)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, list)
}

// CreateOrganizationRequest is the body for POST /organizations.
type CreateOrganizationRequest struct {
	Name        string   `json:"name" binding:"required"`
	BuildingID  int64    `json:"building_id" binding:"required"`
	Phones      []string `json:"phones"`
	ActivityIDs []int64  `json:"activity_ids"`
}

// Create handles POST /organizations.
func (h *Handler) Create(c *gin.Context) {
	var body CreateOrganizationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name and building_id required")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if len(body.Name) < 1 || len(body.Name) > 255 {
		response.BadRequest(c, "name must be 1-255 characters")
		return
	}
	res, err := h.svc.Create(c.Request.Context(), CreateInput{
		Name:         body.Name,
		BuildingID:   body.BuildingID,
		PhoneNumbers: body.Phones,
		ActivityIDs:  body.ActivityIDs,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, gin.H{
		"organization":         res.Organization,
		"skipped_activity_ids": res.SkippedActivityIDs,
	})
}

func (h *Handler) resolveActivity(c *gin.Context) (*models.Activity, bool) {
	query := strings.TrimSpace(c.Query("query"))
	if len(query) < 2 || len(query) > 50 {
		response.BadRequest(c, "query must be 2-50 characters")
		return nil, false
	}
	activity, err := h.resolver.FindByName(c.Request.Context(), query)
	if err != nil {
		response.FromError(c, err)
		return nil, false
	}
	if activity == nil {
		response.NotFound(c, "Activity not found")
		return nil, false
	}
	return activity, true
}
