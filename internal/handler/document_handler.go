package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docanalyzer/internal/service"
)

// maxMultipartMemory bounds the form data buffered in memory; larger parts
// spill to temporary files.
const maxMultipartMemory = 32 << 20

// DocumentHandler handles document upload endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload handles POST /api/v1/orders/:id/upload
// @Summary Upload documents
// @Description Upload one or more files to a paid order (pdf, docx, txt, xlsx, csv, jpg, png)
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Order ID (UUID)"
// @Param files formData file true "Files to upload (repeat the field for several files)"
// @Success 201 {object} Response{data=[]domain.Document} "Documents stored"
// @Failure 400 {object} ErrorResponseBody "No files or unsupported type"
// @Failure 402 {object} ErrorResponseBody "Order not paid"
// @Failure 404 {object} ErrorResponseBody "Order not found"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 500 {object} ErrorResponseBody "Upload failed"
// @Security BearerAuth
// @Router /orders/{id}/upload [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "expected multipart form data")
		return
	}
	files := c.Request.MultipartForm.File["files"]

	docs, err := h.documentService.Upload(c.Request.Context(), caller, orderID, files)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, docs)
}

// ListByOrder handles GET /api/v1/orders/:id/documents
// @Summary List order documents
// @Tags documents
// @Produce json
// @Param id path string true "Order ID (UUID)"
// @Success 200 {object} Response{data=[]domain.Document} "Documents"
// @Failure 404 {object} ErrorResponseBody "Order not found"
// @Security BearerAuth
// @Router /orders/{id}/documents [get]
func (h *DocumentHandler) ListByOrder(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	docs, err := h.documentService.ListByOrder(c.Request.Context(), caller, orderID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, docs)
}

// GetByID handles GET /api/v1/documents/:id
// @Summary Get a document
// @Description Document metadata with a short-lived download URL
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=service.DocumentWithURL} "Document"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Security BearerAuth
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	docID, ok := parseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.documentService.Get(c.Request.Context(), caller, docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// Delete handles DELETE /api/v1/documents/:id
// @Summary Delete a document
// @Description Only allowed before analysis has started
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response "Deleted"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Failure 409 {object} ErrorResponseBody "Order no longer editable"
// @Security BearerAuth
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	docID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), caller, docID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "document deleted"})
}
