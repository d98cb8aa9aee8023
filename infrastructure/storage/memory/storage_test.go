package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/anhbatoichoi/content-capture-universe/core/interfaces"
)

func TestStorage_SetGet(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()

	if err := s.Set(ctx, "extractions", []byte(`[{"id":"req_1"}]`)); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	got, err := s.Get(ctx, "extractions")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(got) != `[{"id":"req_1"}]` {
		t.Errorf("Get returned %s", got)
	}
}

func TestStorage_GetMissingKey(t *testing.T) {
	s := NewStorage()

	got, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, interfaces.ErrKeyNotFound) {
		t.Errorf("Get error = %v, want ErrKeyNotFound", err)
	}
	if got != nil {
		t.Error("Get should return nil value for missing key")
	}
}

func TestStorage_ValuesAreCopied(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()

	value := []byte("original")
	_ = s.Set(ctx, "k", value)
	value[0] = 'X'

	got, _ := s.Get(ctx, "k")
	if string(got) != "original" {
		t.Errorf("stored value changed through caller slice: %s", got)
	}

	got[0] = 'Y'
	again, _ := s.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("stored value changed through returned slice: %s", again)
	}
}

func TestStorage_Delete(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()

	_ = s.Set(ctx, "k", []byte("v"))
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Errorf("deleting a missing key returned error: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestStorage_CancelledContext(t *testing.T) {
	s := NewStorage()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Set(ctx, "k", []byte("v")); !errors.Is(err, context.Canceled) {
		t.Errorf("Set error = %v, want context.Canceled", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get error = %v, want context.Canceled", err)
	}
}
