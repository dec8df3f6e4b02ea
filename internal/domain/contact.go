package domain

import "context"

// ContactRequest represents a contact form submission as posted by the
// browser. Validation tags are applied by the contact usecase.
type ContactRequest struct {
	Name     string `json:"name" validate:"required,not_blank,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Company  string `json:"company,omitempty" validate:"max=200"`
	Phone    string `json:"phone,omitempty" validate:"max=50"`
	Message  string `json:"message" validate:"required,not_blank,max=5000"`
	Budget   string `json:"budget,omitempty" validate:"max=100"`
	Category string `json:"category,omitempty" validate:"max=50"`
}

// ContactSubmission is a validated, trimmed ContactRequest. It only lives for
// the duration of one request and is never stored.
type ContactSubmission struct {
	Name     string
	Email    string
	Company  string
	Phone    string
	Message  string
	Budget   string
	Category string
}

// DispatchResult is the uniform outcome of sending a submission.
type DispatchResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Contact topic keys offered by the form
const (
	CategoryContact  = "contact"
	CategoryPartner  = "partner"
	CategoryEstimate = "estimate"
	CategoryMonitor  = "monitor"
	CategoryOther    = "other"
)

var categoryLabels = map[string]string{
	CategoryContact:  "一般的なお問い合わせ",
	CategoryPartner:  "パートナー募集",
	CategoryEstimate: "見積もり依頼",
	CategoryMonitor:  "モニタリング",
	CategoryOther:    "その他",
}

// CategoryLabel returns the human-readable label for a topic key. Unknown and
// empty keys map to the general inquiry label.
func CategoryLabel(key string) string {
	if label, ok := categoryLabels[key]; ok {
		return label
	}
	return categoryLabels[CategoryContact]
}

// ContactUsecase defines the interface for contact form operations
type ContactUsecase interface {
	// Validate checks a raw request. A failed check returns validation.Errors.
	Validate(req *ContactRequest) (*ContactSubmission, error)
	// Dispatch renders and sends the notification. It never returns an error:
	// every failure is folded into the result.
	Dispatch(ctx context.Context, sub *ContactSubmission) DispatchResult
}
