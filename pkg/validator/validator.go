package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/andressep95/auth-portal/internal/domain"
)

// PasswordSymbols is the punctuation set a strong password must draw from.
const PasswordSymbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	// Use JSON tag names instead of struct field names for error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("username", validateUsername)
	_ = v.RegisterValidation("strongpassword", validateStrongPassword)

	return &Validator{
		validate: v,
	}
}

// Validate checks i against its struct tags. Rule violations are returned as
// a *domain.Error of kind Validation carrying one entry per failing rule. A
// missing required value is reported alone.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	details := make([]domain.FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		details = append(details, fieldError(fe.Field(), fe.Tag(), fe.Param()))
		details = append(details, v.remainingRules(i, fe)...)
	}
	return domain.NewValidationError(details)
}

// remainingRules runs the single-field rules declared after the one fe failed
// on, since go-playground stops at the first failure on a field. Only
// top-level fields are revisited.
func (v *Validator) remainingRules(i interface{}, fe validator.FieldError) []domain.FieldError {
	if fe.Tag() == "required" || strings.Count(fe.StructNamespace(), ".") != 1 {
		return nil
	}

	t := reflect.TypeOf(i)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	sf, ok := t.FieldByName(fe.StructField())
	if !ok {
		return nil
	}

	var out []domain.FieldError
	reached := false
	for _, rule := range strings.Split(sf.Tag.Get("validate"), ",") {
		name, param, _ := strings.Cut(rule, "=")
		if !reached {
			reached = name == fe.Tag()
			continue
		}
		if name == "dive" {
			break
		}
		// Cross-field and alternative rules need the struct, not the value.
		if strings.HasSuffix(name, "field") || strings.Contains(rule, "|") {
			continue
		}

		var errs validator.ValidationErrors
		if err := v.validate.Var(fe.Value(), rule); errors.As(err, &errs) {
			out = append(out, fieldError(fe.Field(), name, param))
		}
	}
	return out
}

// IsStrongPassword reports whether s holds an uppercase letter, a digit and a
// symbol from PasswordSymbols, in any position.
func IsStrongPassword(s string) bool {
	var upper, digit, symbol bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	return upper && digit && symbol
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	return IsStrongPassword(fl.Field().String())
}

func fieldError(field, tag, param string) domain.FieldError {
	label := capitalize(field)

	var message string
	switch tag {
	case "required":
		message = fmt.Sprintf("%s is required", label)
	case "email":
		message = "Invalid email format"
	case "min":
		message = fmt.Sprintf("%s must be at least %s characters", label, param)
	case "max":
		message = fmt.Sprintf("%s must be at most %s characters", label, param)
	case "username":
		message = "Username can only contain letters, numbers and underscores"
	case "strongpassword":
		message = "Password must contain at least one uppercase letter, one number and one special character"
	case "eqfield":
		message = "Passwords do not match"
	default:
		message = fmt.Sprintf("%s failed validation for %s", label, tag)
	}
	return domain.FieldError{Field: field, Message: message}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
