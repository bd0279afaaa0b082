package request

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var nationalIDRegex = regexp.MustCompile(`^[0-9]{14}$`)

func init() {
	// Surrounding whitespace is forgiven here and trimmed again before the
	// value is used, so "  29501011234567 " validates like the bare ID.
	validate.RegisterValidation("natid", func(fl validator.FieldLevel) bool {
		return nationalIDRegex.MatchString(strings.TrimSpace(fl.Field().String()))
	})
}

func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

func RequireID(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("missing required ID")
	}
	return s, nil
}
