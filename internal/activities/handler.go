package activities

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orgcatalog/backend/pkg/response"
)

// Handler handles activity HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates an activities handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// CreateActivityRequest is the body for POST /activities.
type CreateActivityRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID *int64 `json:"parent_id"`
}

// Create handles POST /activities.
func (h *Handler) Create(c *gin.Context) {
	var body CreateActivityRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	a, err := h.svc.Create(c.Request.Context(), body.Name, body.ParentID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, a)
}

// Tree handles GET /activities/tree. Returns the full forest.
func (h *Handler) Tree(c *gin.Context) {
	tree, err := h.svc.Tree(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, tree)
}

// ByLevel handles GET /activities/by-level/:level.
func (h *Handler) ByLevel(c *gin.Context) {
	level, err := strconv.Atoi(c.Param("level"))
	if err != nil {
		response.BadRequest(c, "invalid level")
		return
	}
	list, err := h.svc.ByLevel(c.Request.Context(), level)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, list)
}

// OrganizationCount handles GET /activities/:id/organizations/count.
func (h *Handler) OrganizationCount(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid activity id")
		return
	}
	a, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if a == nil {
		response.NotFound(c, "Activity not found")
		return
	}
	n, err := h.svc.CountOrganizations(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"activity_id": id, "organization_count": n})
}
