package handler

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/lexigrade/api/internal/service"
	"github.com/lexigrade/api/pkg/response"
)

const maxUploadSize = 10 * 1024 * 1024 // 10MB

type UploadHandler struct {
	service *service.UploadService
}

func NewUploadHandler(svc *service.UploadService) *UploadHandler {
	return &UploadHandler{
		service: svc,
	}
}

// PDF handles POST /api/articles/pdf
// @Summary      Upload PDF source
// @Description  Upload a PDF document to translate; the returned key is used as the sourceRef of a pdf submission
// @Tags         Articles
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "PDF document (max 10MB)"
// @Success      201 {object} model.UploadResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      502 {object} response.ErrorResponse
// @Router       /api/articles/pdf [post]
func (h *UploadHandler) PDF(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.ValidationError(c, "File is required", nil)
	}

	if file.Size > maxUploadSize {
		return response.ValidationError(c, "File size exceeds 10MB limit", map[string]interface{}{
			"maxSize":  maxUploadSize,
			"fileSize": file.Size,
		})
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "" && contentType != "application/pdf" && contentType != "application/x-pdf" {
		return response.ValidationError(c, "Only PDF files are accepted", map[string]interface{}{
			"contentType": contentType,
		})
	}

	src, err := file.Open()
	if err != nil {
		return response.ValidationError(c, "Could not read uploaded file", nil)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return response.ValidationError(c, "Could not read uploaded file", nil)
	}

	result, err := h.service.UploadPDF(c.Context(), data)
	if err != nil {
		return response.UploadError(c, err.Error())
	}

	return response.Created(c, result)
}
