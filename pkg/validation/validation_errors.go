package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps JSON field names to the labels shown to site visitors
var FieldLabels = map[string]string{
	"name":     "名前",
	"email":    "メールアドレス",
	"company":  "会社名",
	"phone":    "電話番号",
	"message":  "メッセージ",
	"budget":   "ご予算",
	"category": "お問い合わせ種別",
}

// FieldError is one (field path, message) pair reported to the client.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is an ordered list of field errors. It is a recoverable outcome,
// not a failure of the request pipeline.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field has at least one error.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly
// field errors, in struct field order. One error per field.
func FormatValidationErrors(err error) Errors {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return Errors{{Field: "body", Message: err.Error()}}
	}

	out := make(Errors, 0, len(validationErrors))
	seen := make(map[string]bool, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Field()
		if seen[field] {
			continue
		}
		seen[field] = true
		out = append(out, FieldError{Field: field, Message: formatSingleError(e)})
	}
	return out
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required", "not_blank":
		return fmt.Sprintf("%sを入力してください", label)
	case "email":
		return fmt.Sprintf("正しい%sを入力してください", label)
	case "max":
		return fmt.Sprintf("%sは%s文字以内で入力してください", label, param)
	case "min":
		return fmt.Sprintf("%sは%s文字以上で入力してください", label, param)
	case "oneof":
		return fmt.Sprintf("%sは次のいずれかを選択してください: %s", label, strings.Join(strings.Fields(param), ", "))
	default:
		return fmt.Sprintf("%sの形式が正しくありません (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(field string) string {
	if label, ok := FieldLabels[field]; ok {
		return label
	}
	return field
}
