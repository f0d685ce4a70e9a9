package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mrhexvel/ezgu/internal/service"
)

type UploadHandler struct {
	uploadService *service.UploadService
}

func NewUploadHandler(uploadService *service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// POST /upload
func (h *UploadHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, service.ErrInvalidInput.Code, "file is required")
		return
	}
	url, err := h.uploadService.SaveImage(c.Request.Context(), fh)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "file uploaded", "url": url})
}
