package jobs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"enhancehub-backend/internal/shared/server/middleware"
	"enhancehub-backend/internal/shared/server/respond"
	"enhancehub-backend/internal/shared/telemetry"
	"enhancehub-backend/internal/workspace"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches job routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs", h.create)
	rg.GET("/jobs", h.list)
	rg.GET("/jobs/:id", h.get)
	rg.DELETE("/jobs/:id", h.remove)
}

type createJobRequest struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	j, err := h.Svc.Create(c.Request.Context(), userID, req.Title, req.Company, req.Description)
	if err != nil {
		respondJobError(c, err, "failed to create job")
		return
	}
	respond.Created(c, toDetailResponse(j))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	list, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondJobError(c, err, "failed to list jobs")
		return
	}

	resp := make([]JobResponse, 0, len(list))
	for _, j := range list {
		resp = append(resp, toResponse(j))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	j, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondJobError(c, err, "failed to fetch job")
		return
	}
	respond.JSON(c, http.StatusOK, toDetailResponse(j))
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondJobError(c, err, "failed to delete job")
		return
	}
	c.Status(http.StatusNoContent)
}

func respondJobError(c *gin.Context, err error, fallback string) {
	var storageErr *workspace.StorageError
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "job belongs to another user", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, workspace.ErrPathEscapesRoot):
		telemetry.Error("path containment violation", map[string]any{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"error":  err.Error(),
		})
		respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
	case errors.As(err, &storageErr):
		respond.Error(c, http.StatusInternalServerError, "storage_error", "workspace operation failed", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
