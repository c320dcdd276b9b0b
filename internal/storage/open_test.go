package storage

import (
	"context"
	"testing"

	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage/memory"
)

func TestOpenMemory(t *testing.T) {
	s, closeFn, err := Open(context.Background(), shared.Config{Storage: "memory"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeFn()
	if _, ok := s.(*memory.Store); !ok {
		t.Fatalf("got %T", s)
	}
}

func TestOpenUnknown(t *testing.T) {
	if _, _, err := Open(context.Background(), shared.Config{Storage: "sqlite"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
