package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusIsTotal(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validationf("item.name", "item.name is required"), http.StatusBadRequest},
		{Duplicate("items", "An item with that name already exists."), http.StatusConflict},
		{NotFound("user", "665f1c0d9b1e8a3f4c2d7e01"), http.StatusNotFound},
		{Unavailable(), http.StatusServiceUnavailable},
		{errors.New("connection reset"), http.StatusInternalServerError},
		{fmt.Errorf("inserting item: %w", Duplicate("items", "duplicate")), http.StatusConflict},
		{fmt.Errorf("outer: %w", Validationf("lot.qtyOnHand", "must be >= 0")), http.StatusBadRequest},
	}

	for _, tt := range tests {
		if got := Status(tt.err); got != tt.want {
			t.Errorf("Status(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestStatusDeterministic(t *testing.T) {
	err := Duplicate("users", "A user with that email already exists.")
	for i := 0; i < 3; i++ {
		if got := Status(err); got != http.StatusConflict {
			t.Fatalf("Status changed between calls: %d", got)
		}
	}
}

func TestIssues(t *testing.T) {
	issues := Issues(Validationf("location.type", "location.type must be one of freezer, fridge, or pantry"))
	if issues["kind"] != "validation" || issues["field"] != "location.type" {
		t.Errorf("unexpected validation issues: %v", issues)
	}

	issues = Issues(Duplicate("items", "duplicate"))
	if issues["kind"] != "duplicate" || issues["resource"] != "items" {
		t.Errorf("unexpected duplicate issues: %v", issues)
	}

	if issues := Issues(errors.New("boom")); issues != nil {
		t.Errorf("expected nil issues for plain error, got %v", issues)
	}
}

func TestMessageHidesInternalText(t *testing.T) {
	if got := Message(errors.New("dial tcp: connection refused"), "Failed to create item."); got != "Failed to create item." {
		t.Errorf("internal error text leaked: %q", got)
	}
	if got := Message(Validationf("item.name", "item.name is required"), "fallback"); got != "item.name is required" {
		t.Errorf("validation message replaced: %q", got)
	}
}
