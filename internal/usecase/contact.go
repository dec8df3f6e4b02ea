package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kondax-backend/internal/domain"
	"kondax-backend/pkg/email"
	"kondax-backend/pkg/logger"
	"kondax-backend/pkg/security"
	"kondax-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// Client-facing failure message for any dispatch problem
const dispatchFailedMessage = "メール送信に失敗しました。"

// ContactConfig carries the addresses and limits used for dispatch.
type ContactConfig struct {
	From        string
	OperatorTo  string
	SendTimeout time.Duration
}

type contactUsecase struct {
	sender   email.Sender
	validate *validator.Validate
	cfg      ContactConfig
	audit    *security.SecurityLogger
}

// NewContactUsecase creates a new contact usecase. sender may be nil when no
// provider is configured; dispatch then fails without panicking.
func NewContactUsecase(sender email.Sender, validate *validator.Validate, cfg ContactConfig, audit *security.SecurityLogger) domain.ContactUsecase {
	if validate == nil {
		validate = validation.New()
	}
	return &contactUsecase{
		sender:   sender,
		validate: validate,
		cfg:      cfg,
		audit:    audit,
	}
}

// Validate checks the request against the form rules and returns a trimmed
// submission, or validation.Errors listing every bad field.
func (uc *contactUsecase) Validate(req *domain.ContactRequest) (*domain.ContactSubmission, error) {
	if req == nil {
		return nil, validation.Errors{{Field: "body", Message: "入力内容に不備があります。"}}
	}

	normalized := *req
	normalized.Email = strings.TrimSpace(normalized.Email)

	if err := uc.validate.Struct(&normalized); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return nil, fmt.Errorf("contact validation misconfigured: %w", err)
		}
		return nil, validation.FormatValidationErrors(err)
	}

	return &domain.ContactSubmission{
		Name:     strings.TrimSpace(normalized.Name),
		Email:    normalized.Email,
		Company:  strings.TrimSpace(normalized.Company),
		Phone:    strings.TrimSpace(normalized.Phone),
		Message:  strings.TrimSpace(normalized.Message),
		Budget:   strings.TrimSpace(normalized.Budget),
		Category: strings.TrimSpace(normalized.Category),
	}, nil
}

// Dispatch renders the notification and hands it to the provider. Nothing
// is retried; the caller may resubmit.
func (uc *contactUsecase) Dispatch(ctx context.Context, sub *domain.ContactSubmission) (result domain.DispatchResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("Contact dispatch panicked", "panic", fmt.Sprint(r))
			result = domain.DispatchResult{Success: false, Error: dispatchFailedMessage}
		}
	}()

	if sub == nil {
		return domain.DispatchResult{Success: false, Error: dispatchFailedMessage}
	}

	id, err := uc.send(ctx, sub)
	if uc.audit != nil {
		uc.audit.LogContactDispatch(ctx, sub.Email, sub.Category, err)
	}
	if err != nil {
		logger.Log.Error("Failed to send contact email", "error", err, "category", sub.Category)
		return domain.DispatchResult{Success: false, Error: dispatchFailedMessage}
	}

	logger.Log.Info("Contact email sent", "id", id, "category", sub.Category)
	return domain.DispatchResult{Success: true, ID: id}
}

func (uc *contactUsecase) send(ctx context.Context, sub *domain.ContactSubmission) (string, error) {
	if uc.sender == nil {
		return "", email.ErrNotConfigured
	}

	label := domain.CategoryLabel(sub.Category)
	html, err := email.RenderContactEmail(email.ContactEmailData{
		Name:     sub.Name,
		Email:    sub.Email,
		Company:  sub.Company,
		Phone:    sub.Phone,
		Category: categoryDisplay(sub.Category),
		Budget:   sub.Budget,
		Message:  sub.Message,
	})
	if err != nil {
		return "", err
	}

	msg := &email.Message{
		From:    uc.cfg.From,
		To:      recipients(uc.cfg.OperatorTo, sub.Email),
		ReplyTo: sub.Email,
		Subject: Subject(label),
		HTML:    html,
	}

	if uc.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.cfg.SendTimeout)
		defer cancel()
	}
	return uc.sender.Send(ctx, msg)
}

// Subject builds the notification subject for a category label.
func Subject(label string) string {
	return fmt.Sprintf("[%s] お問い合わせを受け付けました。", label)
}

// categoryDisplay shows the label for known keys and the raw value otherwise.
func categoryDisplay(key string) string {
	if key == "" {
		return ""
	}
	label := domain.CategoryLabel(key)
	if label == domain.CategoryLabel(domain.CategoryContact) && key != domain.CategoryContact {
		return key
	}
	return label
}

func recipients(operator, submitter string) []string {
	out := make([]string, 0, 2)
	if operator != "" {
		out = append(out, operator)
	}
	if submitter != "" && !strings.EqualFold(submitter, operator) {
		out = append(out, submitter)
	}
	return out
}
