package apperr

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"
)

func TestFromDB(t *testing.T) {
	var nf *NotFoundError
	if err := FromDB(gorm.ErrRecordNotFound, "lesson", "fetch lesson"); !errors.As(err, &nf) || nf.Error() != "lesson not found" {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	var conflict *ConflictError
	if err := FromDB(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), "subject", "create subject"); !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	var up *UpstreamError
	boom := errors.New("connection reset")
	err := FromDB(boom, "user", "fetch user")
	if !errors.As(err, &up) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped UpstreamError, got %v", err)
	}

	if FromDB(nil, "x", "y") != nil {
		t.Fatal("nil error must stay nil")
	}
}
