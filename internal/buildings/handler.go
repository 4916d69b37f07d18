package buildings

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orgcatalog/backend/internal/models"
	"github.com/orgcatalog/backend/pkg/response"
)

// OrganizationLister supplies the organizations housed in a building
// for the building detail endpoint.
type OrganizationLister interface {
	ByBuilding(ctx context.Context, buildingID int64) ([]models.Organization, error)
}

// Handler handles building HTTP endpoints.
type Handler struct {
	svc  *Service
	orgs OrganizationLister
}

// NewHandler creates a buildings handler.
func NewHandler(svc *Service, orgs OrganizationLister) *Handler {
	return &Handler{svc: svc, orgs: orgs}
}

// CreateBuildingRequest is the body for POST /buildings. The coordinates
// are pointers so that 0 (equator, prime meridian) still counts as
// present for the required binding.
type CreateBuildingRequest struct {
	Address   string   `json:"address" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// Create handles POST /buildings.
func (h *Handler) Create(c *gin.Context) {
	var body CreateBuildingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "address, latitude and longitude required")
		return
	}
	b, err := h.svc.Create(c.Request.Context(), body.Address, *body.Latitude, *body.Longitude)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, b)
}

// Nearby handles GET /buildings/nearby?latitude&longitude&radius&limit.
func (h *Handler) Nearby(c *gin.Context) {
	lat, lon, radius, ok := parsePoint(c)
	if !ok {
		return
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = n
	}
	list, err := h.svc.FindNear(c.Request.Context(), lat, lon, radius, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /buildings/:id. Returns the building together
// with the organizations housed in it.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid building id")
		return
	}
	b, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if b == nil {
		response.NotFound(c, "Building not found")
		return
	}
	orgs, err := h.orgs.ByBuilding(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"building": b, "organizations": orgs})
}

// Delete handles DELETE /buildings/:id. 409 while organizations
// reference the building.
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid building id")
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

// parsePoint reads latitude/longitude/radius query params. Range checks
// live in the service; only syntax is rejected here.
func parsePoint(c *gin.Context) (lat, lon, radius float64, ok bool) {
	var err error
	if lat, err = strconv.ParseFloat(c.Query("latitude"), 64); err != nil {
		response.BadRequest(c, "invalid latitude")
		return 0, 0, 0, false
	}
	if lon, err = strconv.ParseFloat(c.Query("longitude"), 64); err != nil {
		response.BadRequest(c, "invalid longitude")
		return 0, 0, 0, false
	}
	if radius, err = strconv.ParseFloat(c.Query("radius"), 64); err != nil {
		response.BadRequest(c, "invalid radius")
		return 0, 0, 0, false
	}
	return lat, lon, radius, true
}
