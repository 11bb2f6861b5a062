package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"medicare_backend/internal/assistant/service"
	"medicare_backend/internal/assistant/transport"
	"medicare_backend/platform/httpkit"
	"medicare_backend/platform/validator"
)

// Handler handles HTTP requests for the assistant.
type Handler struct {
	svc           *service.Service
	val           *validator.Validator
	maxFileSize   int64
	keyConfigured bool
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgOnlyImages       = "Only image files are allowed!"
)

// allowedImageExtensions mirrors the upload filter the web client expects.
var allowedImageExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// New creates a new assistant handler.
func New(svc *service.Service, val *validator.Validator, maxFileSize int64, keyConfigured bool) *Handler {
	return &Handler{svc: svc, val: val, maxFileSize: maxFileSize, keyConfigured: keyConfigured}
}

// Health reports service status and whether the AI key is configured.
// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	keyStatus := "configured"
	if !h.keyConfigured {
		keyStatus = "missing"
	}
	httpkit.OK(c, transport.HealthResponse{
		Status:       "ok",
		Message:      "Medical Assistant API is running",
		GeminiAPIKey: keyStatus,
	})
}

// TestAI runs a liveness prompt through the completion pipeline.
// GET /api/test-ai
func (h *Handler) TestAI(c *gin.Context) {
	response, err := h.svc.TestAI(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.TestAIResponse{
		Success:  true,
		Message:  "AI API is working!",
		Response: response,
	})
}

// AnalyzeSymptoms analyzes patient symptoms, with emergency triage first.
// POST /api/analyze-symptoms
func (h *Handler) AnalyzeSymptoms(c *gin.Context) {
	var req transport.AnalyzeSymptomsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.AnalyzeSymptoms(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// MedicineInfo looks up a medicine by name.
// POST /api/medicine-info
func (h *Handler) MedicineInfo(c *gin.Context) {
	var req transport.MedicineInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	response, err := h.svc.MedicineInfo(c.Request.Context(), req.MedicineName)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.GuidanceResponse{Response: response})
}

// MedicineInfoImage identifies a medicine from an uploaded photo.
// POST /api/medicine-info-image
func (h *Handler) MedicineInfoImage(c *gin.Context) {
	image, mimeType, fileName, ok := h.readImage(c, "medicineImage")
	if !ok {
		return
	}

	response, archivedKey, err := h.svc.MedicineInfoImage(c.Request.Context(), image, mimeType, fileName)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ImageGuidanceResponse{Response: response, ArchivedKey: archivedKey})
}

// SuggestMedicines suggests safe OTC medicines for symptoms.
// POST /api/suggest-medicines
func (h *Handler) SuggestMedicines(c *gin.Context) {
	var req transport.SuggestMedicinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	response, err := h.svc.SuggestMedicines(c.Request.Context(), req.Symptoms)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.GuidanceResponse{Response: response})
}

// CheckSideEffects classifies reported side effects for a medicine.
// POST /api/check-side-effects
func (h *Handler) CheckSideEffects(c *gin.Context) {
	var req transport.CheckSideEffectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	response, err := h.svc.CheckSideEffects(c.Request.Context(), req.MedicineName, req.SideEffects)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.GuidanceResponse{Response: response})
}

// AnalyzeSkin analyzes an uploaded skin photo.
// POST /api/analyze-skin
func (h *Handler) AnalyzeSkin(c *gin.Context) {
	image, mimeType, fileName, ok := h.readImage(c, "skinImage")
	if !ok {
		return
	}
	description := c.PostForm("description")

	response, archivedKey, err := h.svc.AnalyzeSkin(c.Request.Context(), image, mimeType, fileName, description)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ImageGuidanceResponse{Response: response, ArchivedKey: archivedKey})
}

// ArchivedImageURL returns a presigned download link for an archived upload.
// GET /api/archive/*fileKey
func (h *Handler) ArchivedImageURL(c *gin.Context) {
	fileKey, ok := archiveFileKey(c)
	if !ok {
		return
	}

	link, err := h.svc.ArchivedImageURL(c.Request.Context(), fileKey)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, link)
}

// DeleteArchivedImage removes an archived upload.
// DELETE /api/archive/*fileKey
func (h *Handler) DeleteArchivedImage(c *gin.Context) {
	fileKey, ok := archiveFileKey(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteArchivedImage(c.Request.Context(), fileKey); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"deleted": fileKey})
}

// archiveFileKey extracts the object key from the wildcard route segment.
// Keys are folder-qualified (e.g. medicines/tablet_ab12cd34.jpg), so the
// route uses a catch-all parameter.
func archiveFileKey(c *gin.Context) (string, bool) {
	fileKey := strings.TrimPrefix(c.Param("fileKey"), "/")
	if fileKey == "" || strings.Contains(fileKey, "..") {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return "", false
	}
	return fileKey, true
}

// readImage extracts and validates an uploaded image file. It writes the
// error response itself and reports ok=false when the upload is rejected.
func (h *Handler) readImage(c *gin.Context, field string) (data []byte, mimeType, fileName string, ok bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, fmt.Sprintf("%s is required", field), nil)
		return nil, "", "", false
	}

	if fileHeader.Size > h.maxFileSize {
		httpkit.Error(c, http.StatusBadRequest, "File too large. Maximum size is 5MB.", nil)
		return nil, "", "", false
	}

	mimeType = fileHeader.Header.Get("Content-Type")
	if !validImageUpload(fileHeader, mimeType) {
		httpkit.Error(c, http.StatusBadRequest, msgOnlyImages, nil)
		return nil, "", "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return nil, "", "", false
	}
	defer file.Close()

	data, err = io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return nil, "", "", false
	}
	if int64(len(data)) > h.maxFileSize {
		httpkit.Error(c, http.StatusBadRequest, "File too large. Maximum size is 5MB.", nil)
		return nil, "", "", false
	}

	return data, mimeType, fileHeader.Filename, true
}

// validImageUpload requires both the extension and the declared content type
// to look like an allowed image format.
func validImageUpload(fileHeader *multipart.FileHeader, mimeType string) bool {
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImageExtensions[ext] {
		return false
	}
	normalized := strings.TrimSpace(strings.ToLower(strings.Split(mimeType, ";")[0]))
	switch normalized {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
