package resumes

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"enhancehub-backend/internal/shared/server/middleware"
	"enhancehub-backend/internal/shared/server/respond"
	"enhancehub-backend/internal/shared/telemetry"
	"enhancehub-backend/internal/workspace"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.upload)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id", h.get)
	rg.GET("/resumes/:id/file", h.downloadOriginal)
	rg.PATCH("/resumes/:id/style", h.setStyle)
	rg.DELETE("/resumes/:id", h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	res, err := h.Svc.Upload(c.Request.Context(), userID, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		respondResumeError(c, err, "failed to upload resume")
		return
	}
	c.Set("resumeId", res.ID)
	respond.Created(c, toResponse(res))
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
		respondResumeError(c, err, "failed to list resumes")
		return
	}

	resp := make([]ResumeResponse, 0, len(list))
	for _, res := range list {
		resp = append(resp, toResponse(res))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Set("resumeId", c.Param("id"))

	res, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondResumeError(c, err, "failed to fetch resume")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(res))
}

func (h *Handler) downloadOriginal(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Set("resumeId", c.Param("id"))

	res, rc, err := h.Svc.OpenOriginal(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondResumeError(c, err, "failed to download resume")
		return
	}
	defer rc.Close()

	contentType := res.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.OriginalFilename))
	c.DataFromReader(http.StatusOK, res.SizeBytes, contentType, rc, nil)
}

type setStyleRequest struct {
	Style string `json:"style"`
}

func (h *Handler) setStyle(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Set("resumeId", c.Param("id"))

	var req setStyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	res, err := h.Svc.SetStyle(c.Request.Context(), userID, c.Param("id"), req.Style)
	if err != nil {
		respondResumeError(c, err, "failed to update style")
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(res))
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Set("resumeId", c.Param("id"))

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondResumeError(c, err, "failed to delete resume")
		return
	}
	c.Status(http.StatusNoContent)
}

func respondResumeError(c *gin.Context, err error, fallback string) {
	var storageErr *workspace.StorageError
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "resume belongs to another user", nil)
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
