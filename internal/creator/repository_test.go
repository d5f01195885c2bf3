package creator

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInMemoryRepository_CreateAndGet(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	c := &Creator{Name: "Deborah M.", Bio: "Documentary filmmaker"}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("failed to create creator: %v", err)
	}
	if c.ID == "" {
		t.Fatal("expected an assigned creator ID")
	}

	got, err := repo.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("failed to get creator: %v", err)
	}
	if got.Name != "Deborah M." {
		t.Errorf("expected name Deborah M., got %q", got.Name)
	}
}

func TestInMemoryRepository_GetMissing(t *testing.T) {
	repo := NewInMemoryRepository()
	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, ErrCreatorNotFound) {
		t.Errorf("expected ErrCreatorNotFound, got %v", err)
	}
}

func TestInMemoryRepository_ListNewestFirst(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	older := &Creator{Name: "Older", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &Creator{Name: "Newer", CreatedAt: time.Now()}
	for _, c := range []*Creator{older, newer} {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("failed to create creator: %v", err)
		}
	}

	creators, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("failed to list creators: %v", err)
	}
	if len(creators) != 2 {
		t.Fatalf("expected 2 creators, got %d", len(creators))
	}
	if creators[0].Name != "Newer" {
		t.Errorf("expected newest-first order, got %q first", creators[0].Name)
	}
}

func TestCreatorValidate(t *testing.T) {
	if err := (&Creator{Name: "A"}).Validate(); err != nil {
		t.Errorf("unexpected error for valid creator: %v", err)
	}
	if err := (&Creator{Name: "  "}).Validate(); err == nil {
		t.Error("expected error for blank name")
	}
}
