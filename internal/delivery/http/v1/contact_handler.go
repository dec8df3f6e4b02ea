package v1

import (
	"errors"
	"net/http"

	"kondax-backend/internal/delivery/http/middleware"
	"kondax-backend/internal/delivery/http/response"
	"kondax-backend/internal/domain"
	"kondax-backend/pkg/apperror"
	"kondax-backend/pkg/security"
	"kondax-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

// Contact payloads are a handful of short fields
const maxContactBodyBytes = 64 << 10

const contactAcceptedMessage = "お問い合わせを受け付けました。ありがとうございます。"

type ContactHandler struct {
	contactUC domain.ContactUsecase
	audit     *security.SecurityLogger
}

// ContactResult is the data returned for an accepted submission.
type ContactResult struct {
	ID string `json:"id,omitempty"`
}

// NewContactHandler registers the contact routes (public, no auth required)
func NewContactHandler(public *gin.RouterGroup, contactUC domain.ContactUsecase, audit *security.SecurityLogger, limiter gin.HandlerFunc) {
	handler := &ContactHandler{
		contactUC: contactUC,
		audit:     audit,
	}

	handlers := []gin.HandlerFunc{handler.SubmitContact}
	if limiter != nil {
		handlers = append([]gin.HandlerFunc{limiter}, handlers...)
	}
	public.POST("/contact", handlers...)
}

// SubmitContact godoc
// @Summary      Submit Contact Form
// @Description  Validates the inquiry and emails it to the operator and the submitter.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        contact  body      domain.ContactRequest  true  "Contact Form Data"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /contact [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxContactBodyBytes)

	var req domain.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.reject(c, validation.Errors{{Field: "body", Message: "リクエストの形式が正しくありません"}})
		return
	}

	sub, err := h.contactUC.Validate(&req)
	if err != nil {
		var fields validation.Errors
		if errors.As(err, &fields) {
			h.reject(c, fields)
			return
		}
		_ = c.Error(err)
		return
	}

	result := h.contactUC.Dispatch(c.Request.Context(), sub)
	if !result.Success {
		_ = c.Error(apperror.New(http.StatusInternalServerError, result.Error, errors.New("contact dispatch failed")))
		return
	}

	response.Success(c, http.StatusOK, contactAcceptedMessage, ContactResult{ID: result.ID})
}

func (h *ContactHandler) reject(c *gin.Context, fields validation.Errors) {
	if h.audit != nil {
		names := make([]string, 0, len(fields))
		for _, f := range fields {
			names = append(names, f.Field)
		}
		h.audit.LogContactRejected(c.Request.Context(), c.ClientIP(), response.RequestID(c), names)
	}
	_ = c.Error(apperror.Validation(middleware.ValidationFailedMessage, fields))
}
