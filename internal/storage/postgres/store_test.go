package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestOpenRequiresURL(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), "  ", Options{}); err == nil {
		t.Fatal("expected empty url error")
	}
}

func TestOpenRejectsMalformedURL(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), "mysql://nope", Options{}); err == nil {
		t.Fatal("expected url parse error")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})
	if !isUniqueViolation(wrapped) {
		t.Fatal("expected wrapped 23505 to be a unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "23502"}) {
		t.Fatal("not-null violation must not be a unique violation")
	}
	if isUniqueViolation(errors.New("boom")) {
		t.Fatal("plain error must not be a unique violation")
	}
}

func TestNilStoreIsNotConfigured(t *testing.T) {
	t.Parallel()

	var s *Store
	if err := s.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
	if _, err := s.GetArticle(context.Background(), "x"); err == nil {
		t.Fatal("expected not configured error")
	}
}
