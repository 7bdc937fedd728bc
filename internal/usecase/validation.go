package usecase

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/xavierca1/leadhub/internal/entity"
)

// FieldError é um erro de validação de um campo do payload de captura.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateCaptureLeadInput(input CaptureLeadInput) []FieldError {
	var errors []FieldError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, FieldError{"name", "is required"})
	} else if len([]rune(input.Name)) > 255 {
		errors = append(errors, FieldError{"name", "must not exceed 255 characters"})
	}

	if strings.TrimSpace(input.Email) == "" {
		errors = append(errors, FieldError{"email", "is required"})
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		errors = append(errors, FieldError{"email", "is invalid"})
	}

	if strings.TrimSpace(input.Phone) == "" {
		errors = append(errors, FieldError{"phone", "is required"})
	} else if !isValidPhone(strings.TrimSpace(input.Phone)) {
		errors = append(errors, FieldError{"phone", "must be a valid phone number"})
	}

	if input.Priority != "" && !entity.IsValidPriority(strings.ToLower(input.Priority)) {
		errors = append(errors, FieldError{"priority", "must be one of low, medium, high, urgent"})
	}

	return errors
}
