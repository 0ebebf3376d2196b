// Package forms contains the conversational form-filling core: the per-field
// validation rules engine, the per-user session state machine, and the
// in-memory session store. The package is transport-agnostic; both the
// Telegram bot and the HTTP layer drive it through the FormService.
package forms

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/moydoc/go-docgen-backend/internal/domain"
)

// RejectionError reports a user-input validation failure. It is always
// recoverable: the caller re-prompts the same field with the Reason and the
// session state stays untouched.
type RejectionError struct {
	Reason string
}

// Error implements the error interface.
func (e *RejectionError) Error() string { return e.Reason }

// Reject builds a RejectionError with a formatted human-readable reason.
func Reject(format string, args ...any) error {
	return &RejectionError{Reason: fmt.Sprintf(format, args...)}
}

// Rules carries the optional per-field validation constraints parsed from the
// FormField.ValidationRules JSON payload.
type Rules struct {
	MinLength int      `json:"minLength"`
	Pattern   string   `json:"pattern"`
	Min       *float64 `json:"min"`
	Max       *float64 `json:"max"`
}

// parseRules unmarshals the constraint payload; an empty payload yields the
// zero Rules. A malformed payload is a data error, not a user error.
func parseRules(raw string) (Rules, error) {
	var r Rules
	if strings.TrimSpace(raw) == "" {
		return r, nil
	}
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return r, fmt.Errorf("parse validation rules: %w", err)
	}
	return r, nil
}

// datePattern is the literal DD.MM.YYYY shape check. Calendar validity is
// deliberately not verified (31.02.2024 passes), matching the established
// template contract; tightening it would reject documents users could file.
var datePattern = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)

// Validate checks rawInput against the field definition and returns the value
// to record. It is a pure function of (field, input): no side effects.
//
// Outcomes:
//   - accepted: (value, nil), where value is the normalized input to store.
//   - rejected: ("", *RejectionError) carrying a reason to re-prompt with.
//   - broken definition: ("", err) for a malformed constraint payload or regex.
//
// The type switch below is exhaustive over domain.FieldType; an unknown type
// is a data error.
func Validate(field domain.FormField, rawInput string) (string, error) {
	input := strings.TrimSpace(rawInput)

	if field.IsRequired && input == "" {
		return "", Reject("Это поле обязательно для заполнения")
	}
	if input == "" {
		// Optional field left blank: record an empty answer.
		return "", nil
	}

	rules, err := parseRules(field.ValidationRules)
	if err != nil {
		return "", err
	}

	switch field.Type {
	case domain.FieldNumber:
		return validateNumber(input, rules)

	case domain.FieldDate:
		if !datePattern.MatchString(input) {
			return "", Reject("Пожалуйста, введите дату в формате ДД.ММ.ГГГГ")
		}
		return input, nil

	case domain.FieldSelect:
		for _, opt := range field.OptionList() {
			if input == opt {
				return opt, nil
			}
		}
		return "", Reject("Пожалуйста, выберите один из предложенных вариантов")

	case domain.FieldText, domain.FieldTextarea:
		return validateText(input, rules)

	default:
		return "", fmt.Errorf("unknown field type %q", field.Type)
	}
}

// validateNumber requires a finite number within the optional inclusive
// [min, max] range. The stored value is the canonical decimal form of the
// parsed number, so "007" records as "7".
func validateNumber(input string, rules Rules) (string, error) {
	v, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return "", Reject("Пожалуйста, введите число")
	}
	if rules.Min != nil && v < *rules.Min {
		return "", Reject("Значение должно быть не меньше %s", formatNumber(*rules.Min))
	}
	if rules.Max != nil && v > *rules.Max {
		return "", Reject("Значение должно быть не больше %s", formatNumber(*rules.Max))
	}
	return formatNumber(v), nil
}

// validateText enforces the optional minimum length (in runes) and regex
// pattern for text and textarea fields.
func validateText(input string, rules Rules) (string, error) {
	if rules.MinLength > 0 && utf8.RuneCountInString(input) < rules.MinLength {
		return "", Reject("Минимальная длина — %d символов", rules.MinLength)
	}
	if rules.Pattern != "" {
		re, err := regexp.Compile(rules.Pattern)
		if err != nil {
			return "", fmt.Errorf("compile field pattern: %w", err)
		}
		if !re.MatchString(input) {
			return "", Reject("Значение не соответствует требуемому формату")
		}
	}
	return input, nil
}

// formatNumber renders a float in its shortest exact decimal form.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// IsRejection reports whether err is a user-input rejection (as opposed to a
// broken field definition or infrastructure failure).
func IsRejection(err error) bool {
	var r *RejectionError
	return errors.As(err, &r)
}
