package enhancements

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"enhancehub-backend/internal/shared/server/middleware"
	"enhancehub-backend/internal/shared/server/respond"
	"enhancehub-backend/internal/shared/telemetry"
	"enhancehub-backend/internal/usage"
	"enhancehub-backend/internal/workspace"
)

// Handler wires enhancement endpoints to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches enhancement routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/enhancements", h.create)
	rg.GET("/enhancements", h.list)
	rg.GET("/enhancements/:id", h.get)
	rg.POST("/enhancements/:id/finalize", h.finalize)
	rg.GET("/enhancements/:id/download", h.download)
	rg.DELETE("/enhancements/:id", h.remove)
}

type createEnhancementRequest struct {
	ResumeID    string `json:"resumeId"`
	JobID       string `json:"jobId"`
	Kind        string `json:"kind"`
	Industry    string `json:"industry"`
	CoverLetter bool   `json:"coverLetter"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createEnhancementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	e, err := h.Svc.Create(c.Request.Context(), userID, CreateInput{
		ResumeID:    req.ResumeID,
		JobID:       req.JobID,
		Kind:        req.Kind,
		Industry:    req.Industry,
		CoverLetter: req.CoverLetter,
	})
	if err != nil {
		respondEnhancementError(c, err, "failed to create enhancement")
		return
	}
	c.Set("enhancementId", e.ID)
	respond.Created(c, toResponse(e))
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
		respondEnhancementError(c, err, "failed to list enhancements")
		return
	}
	respond.JSON(c, http.StatusOK, toResponses(list))
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Set("enhancementId", c.Param("id"))

	e, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondEnhancementError(c, err, "failed to fetch enhancement")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(e))
}

type finalizeRequest struct {
	Format string `json:"format"`
}

func (h *Handler) finalize(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Set("enhancementId", c.Param("id"))

	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	e, key, err := h.Svc.Finalize(c.Request.Context(), userID, c.Param("id"), req.Format)
	if err != nil {
		respondEnhancementError(c, err, "failed to finalize enhancement")
		return
	}
	resp := toResponse(e)
	if resp.Files == nil {
		resp.Files = map[string]string{}
	}
	resp.Files[req.Format] = key
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Set("enhancementId", c.Param("id"))

	art, err := h.Svc.Download(
		c.Request.Context(),
		userID,
		c.Param("id"),
		c.Query("artifact"),
		c.Query("format"),
	)
	if err != nil {
		respondEnhancementError(c, err, "failed to download enhancement")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.FileName))
	c.Data(http.StatusOK, art.ContentType, art.Data)
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Set("enhancementId", c.Param("id"))

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondEnhancementError(c, err, "failed to delete enhancement")
		return
	}
	c.Status(http.StatusNoContent)
}

func respondEnhancementError(c *gin.Context, err error, fallback string) {
	var storageErr *workspace.StorageError
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, usage.ErrLimitReached):
		respond.Error(c, http.StatusTooManyRequests, "limit_reached", "enhancement limit reached", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "enhancement not found", nil)
	case errors.Is(err, ErrNotReady):
		respond.Error(c, http.StatusConflict, "not_ready", "enhancement is not ready yet", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "enhancement belongs to another user", nil)
	case errors.Is(err, workspace.ErrPathEscapesRoot):
		telemetry.Error("path containment violation", map[string]any{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"error":  err.Error(),
		})
		respond.Error(c, http.StatusForbidden, "forbidden", "invalid artifact path", nil)
	case errors.Is(err, ErrRendererUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, "renderer_unavailable", "pdf rendering is temporarily unavailable", nil)
	case errors.As(err, &storageErr):
		respond.Error(c, http.StatusInternalServerError, "storage_error", "workspace operation failed", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
