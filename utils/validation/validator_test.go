package validation

import (
	"errors"
	"testing"

	"github.com/sahilchouksey/scholarhub/utils/apperr"
)

type submitInput struct {
	Title     string `validate:"required,max=200"`
	SubjectID uint   `validate:"required"`
}

func TestCheckReportsFirstFieldInSnakeCase(t *testing.T) {
	v := NewValidator()

	err := v.Check(submitInput{Title: "Calc Notes"})
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "subject_id" {
		t.Fatalf("field = %q, want subject_id", verr.Field)
	}
	if verr.Message != "subject_id is required" {
		t.Fatalf("message = %q", verr.Message)
	}

	if err := v.Check(submitInput{Title: "ok", SubjectID: 1}); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
}

func TestValidatePassword(t *testing.T) {
	if ok, _ := ValidatePassword("short"); ok {
		t.Fatal("short password accepted")
	}
	if ok, _ := ValidatePassword("12345678"); ok {
		t.Fatal("password without letters accepted")
	}
	if ok, problems := ValidatePassword("correct horse"); !ok {
		t.Fatalf("valid password rejected: %v", problems)
	}
}

func TestValidateEmail(t *testing.T) {
	if !ValidateEmail("ada@example.com") {
		t.Fatal("valid email rejected")
	}
	if ValidateEmail("not-an-email") {
		t.Fatal("invalid email accepted")
	}
}
