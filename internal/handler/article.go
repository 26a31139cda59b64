package handler

import (
	"errors"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/lexigrade/api/internal/model"
	"github.com/lexigrade/api/internal/service"
	"github.com/lexigrade/api/pkg/response"
)

type ArticleHandler struct {
	service   *service.ArticleService
	validator *validator.Validate
}

func NewArticleHandler(svc *service.ArticleService, v *validator.Validate) *ArticleHandler {
	return &ArticleHandler{
		service:   svc,
		validator: v,
	}
}

// Submit handles POST /api/articles
// @Summary      Submit translation job
// @Description  Queue an article for leveled translation from a URL, pasted text or an uploaded PDF
// @Tags         Articles
// @Accept       json
// @Produce      json
// @Param        request body model.SubmitRequest true "Translation request"
// @Success      202 {object} model.SubmitResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/articles [post]
func (h *ArticleHandler) Submit(c *fiber.Ctx) error {
	var req model.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	if req.SourceKind == model.SourceURL {
		parsed, err := url.Parse(req.SourceRef)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return response.ValidationError(c, "sourceRef must be an absolute http or https URL", nil)
		}
	}

	result, err := h.service.Submit(c.Context(), &req)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, result)
}

// Status handles GET /api/articles/:articleId/status
// @Summary      Get translation job status
// @Description  Get the current phase, chunk progress and error state of a translation job
// @Tags         Articles
// @Produce      json
// @Param        articleId path string true "Article ID"
// @Success      200 {object} model.StatusResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/articles/{articleId}/status [get]
func (h *ArticleHandler) Status(c *fiber.Ctx) error {
	articleID := c.Params("articleId")
	if articleID == "" {
		return response.ValidationError(c, "Article ID is required", nil)
	}

	result, err := h.service.GetStatus(c.Context(), articleID)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			return response.NotFound(c, "Article not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// Result handles GET /api/articles/:articleId
// @Summary      Get translation result
// @Description  Get the aligned original and translated chunks of a completed job
// @Tags         Articles
// @Produce      json
// @Param        articleId path string true "Article ID"
// @Success      200 {object} model.ResultResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/articles/{articleId} [get]
func (h *ArticleHandler) Result(c *fiber.Ctx) error {
	articleID := c.Params("articleId")
	if articleID == "" {
		return response.ValidationError(c, "Article ID is required", nil)
	}

	result, err := h.service.GetResult(c.Context(), articleID)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			return response.NotFound(c, "Article not found")
		}
		if errors.Is(err, service.ErrArticleNotReady) {
			return response.ValidationError(c, "Article not completed yet", nil)
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// formatValidationErrors formats validator errors for response
func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}
