package validator

import (
	"errors"
	"testing"

	"github.com/andressep95/auth-portal/internal/domain"
	"github.com/andressep95/auth-portal/internal/service"
)

func validForm() service.SignupRequest {
	return service.SignupRequest{
		Email:           "a@b.com",
		Username:        "abc",
		Name:            "Ann",
		Password:        "Aa1!aa",
		ConfirmPassword: "Aa1!aa",
	}
}

// details flattens err to the first message reported for each field.
func details(t *testing.T, err error) map[string]string {
	t.Helper()
	out := map[string]string{}
	for _, d := range fieldErrors(t, err) {
		if _, ok := out[d.Field]; !ok {
			out[d.Field] = d.Message
		}
	}
	return out
}

func fieldErrors(t *testing.T, err error) []domain.FieldError {
	t.Helper()
	var derr *domain.Error
	if !errors.As(err, &derr) {
		t.Fatalf("expected *domain.Error, got %T (%v)", err, err)
	}
	if derr.Kind != domain.KindValidation {
		t.Fatalf("Kind = %v, want validation", derr.Kind)
	}
	return derr.Details
}

func TestValidate_ValidForm(t *testing.T) {
	if err := NewValidator().Validate(validForm()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_FieldRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*service.SignupRequest)
		field   string
		message string
	}{
		{"empty email", func(f *service.SignupRequest) { f.Email = "" }, "email", "Email is required"},
		{"malformed email", func(f *service.SignupRequest) { f.Email = "not-an-email" }, "email", "Invalid email format"},
		{"short username", func(f *service.SignupRequest) { f.Username = "ab" }, "username", "Username must be at least 3 characters"},
		{"long username", func(f *service.SignupRequest) { f.Username = "abcdefghijklmnopqrstu" }, "username", "Username must be at most 20 characters"},
		{"username charset", func(f *service.SignupRequest) { f.Username = "ab-c" }, "username", "Username can only contain letters, numbers and underscores"},
		{"short name", func(f *service.SignupRequest) { f.Name = "A" }, "name", "Name must be at least 2 characters"},
		{"short password", func(f *service.SignupRequest) { f.Password, f.ConfirmPassword = "Aa1!", "Aa1!" }, "password", "Password must be at least 6 characters"},
		{"password without digit", func(f *service.SignupRequest) { f.Password, f.ConfirmPassword = "Aaaa!aa", "Aaaa!aa" }, "password", "Password must contain at least one uppercase letter, one number and one special character"},
		{"password without uppercase", func(f *service.SignupRequest) { f.Password, f.ConfirmPassword = "aa1!aa", "aa1!aa" }, "password", "Password must contain at least one uppercase letter, one number and one special character"},
		{"password without symbol", func(f *service.SignupRequest) { f.Password, f.ConfirmPassword = "Aa1aaa", "Aa1aaa" }, "password", "Password must contain at least one uppercase letter, one number and one special character"},
		{"confirm mismatch", func(f *service.SignupRequest) { f.ConfirmPassword = "Aa1!ab" }, "confirmPassword", "Passwords do not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)

			got := details(t, NewValidator().Validate(f))
			if got[tt.field] != tt.message {
				t.Errorf("details[%q] = %q, want %q (all: %v)", tt.field, got[tt.field], tt.message, got)
			}
		})
	}
}

func TestValidate_ConfirmMismatchReportedWithOtherFailures(t *testing.T) {
	f := service.SignupRequest{Email: "bad", Username: "!", Name: "", Password: "weak", ConfirmPassword: "other"}

	got := details(t, NewValidator().Validate(f))
	if got["confirmPassword"] != "Passwords do not match" {
		t.Errorf("confirmPassword violation missing: %v", got)
	}
	for _, field := range []string{"email", "username", "name", "password"} {
		if _, ok := got[field]; !ok {
			t.Errorf("expected violation for %q, got %v", field, got)
		}
	}
}

func TestValidate_ReportsEveryFailingPasswordRule(t *testing.T) {
	f := validForm()
	f.Password, f.ConfirmPassword = "abc", "abc"

	var got []string
	for _, d := range fieldErrors(t, NewValidator().Validate(f)) {
		if d.Field == "password" {
			got = append(got, d.Message)
		}
	}

	want := []string{
		"Password must be at least 6 characters",
		"Password must contain at least one uppercase letter, one number and one special character",
	}
	if len(got) != len(want) {
		t.Fatalf("password details = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("password details[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestValidate_RequiredReportedAlone(t *testing.T) {
	f := validForm()
	f.Email = ""

	errs := fieldErrors(t, NewValidator().Validate(f))
	if len(errs) != 1 || errs[0].Message != "Email is required" {
		t.Errorf("details = %+v, want only the required violation", errs)
	}
}

func TestIsStrongPassword(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Aa1!aa", true},
		{"aa1!aA", true}, // uppercase need not lead
		{"!1aaaB", true},
		{`a1"Bxx`, true},
		{`a1\Bxx`, true},
		{"a1~Bxx", false}, // tilde is outside the symbol set
		{"AAAAAA", false},
		{"Ä1!aaa", false}, // only ASCII uppercase counts
		{"", false},
	}

	for _, tt := range tests {
		if got := IsStrongPassword(tt.in); got != tt.want {
			t.Errorf("IsStrongPassword(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
