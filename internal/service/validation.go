package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/media-catalog-api/pkg/errors"
)

const (
	maxInputLength = 10000
	maxEmailLength = 255
)

var (
	controlChars = regexp.MustCompile(`[\x{0000}-\x{001F}\x{007F}-\x{009F}]`)
	scriptBlocks = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
)

// NewValidator returns a validator that reports json field names and knows
// the strongpassword tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return isStrongPassword(fl.Field().String())
	})
	return v
}

func isStrongPassword(pw string) bool {
	var lower, upper, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

// validateInput runs struct validation and folds every field failure into a
// single "validation failed: field: msg, field: msg" error.
func validateInput(v *validator.Validate, payload interface{}) error {
	err := v.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fe.Field()+": "+fieldMessage(fe))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "validation failed: "+strings.Join(parts, ", "))
}

func validationFailed(field, message string) error {
	return appErrors.Clonef(appErrors.ErrValidation, "validation failed: %s: %s", field, message)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be less than %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gt":
		return "must be positive"
	case "email":
		return "invalid email address"
	case "url":
		return "invalid url"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "strongpassword":
		return "must contain at least one lowercase letter, one uppercase letter, and one number"
	default:
		return "is invalid"
	}
}

// SanitizeString trims input, strips control characters and script blocks
// and caps the length.
func SanitizeString(input string) string {
	out := strings.TrimSpace(input)
	out = controlChars.ReplaceAllString(out, "")
	out = scriptBlocks.ReplaceAllString(out, "")
	return truncateRunes(out, maxInputLength)
}

// SanitizeEmail lower-cases and trims an email address.
func SanitizeEmail(email string) string {
	return truncateRunes(strings.ToLower(strings.TrimSpace(email)), maxEmailLength)
}

func sanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	clean := SanitizeString(*s)
	if clean == "" {
		return nil
	}
	return &clean
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// parseDate accepts YYYY-MM-DD or RFC3339.
func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", raw)
}
