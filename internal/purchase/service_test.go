package purchase

import (
	"context"
	"errors"
	"testing"

	"github.com/pmsstreaming/storefront/internal/catalog"
)

func newTestService(t *testing.T) (*Service, *catalog.InMemoryRepository) {
	t.Helper()
	cat := catalog.NewInMemoryRepository()
	svc := NewService(NewInMemoryRepository(), cat, nil)
	return svc, cat
}

func seedMovie(t *testing.T, cat *catalog.InMemoryRepository) *catalog.Movie {
	t.Helper()
	movie := &catalog.Movie{Title: "Kinshasa Nights", Price: 12.50, Currency: "USD", Published: true}
	if err := cat.Create(context.Background(), movie); err != nil {
		t.Fatalf("failed to seed movie: %v", err)
	}
	return movie
}

func TestService_Record(t *testing.T) {
	svc, cat := newTestService(t)
	movie := seedMovie(t, cat)

	p, err := svc.Record(context.Background(), &Purchase{
		Reference: "REF100",
		MovieID:   movie.ID,
		Method:    MethodMobile,
		Amount:    12.50,
	})
	if err != nil {
		t.Fatalf("failed to record purchase: %v", err)
	}
	if p.ID == "" {
		t.Error("expected an assigned purchase ID")
	}
	if p.Currency != DefaultCurrency {
		t.Errorf("expected default currency %s, got %s", DefaultCurrency, p.Currency)
	}
}

func TestService_RecordRetryIsIdempotent(t *testing.T) {
	svc, cat := newTestService(t)
	movie := seedMovie(t, cat)
	ctx := context.Background()

	first, err := svc.Record(ctx, &Purchase{
		Reference: "REF100", MovieID: movie.ID, Method: MethodMobile, Amount: 12.50,
	})
	if err != nil {
		t.Fatalf("failed to record purchase: %v", err)
	}

	// A fulfillment retry for the same reference must not create a second
	// order or fail.
	second, err := svc.Record(ctx, &Purchase{
		Reference: "REF100", MovieID: movie.ID, Method: MethodMobile, Amount: 12.50,
	})
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("retry created a second purchase: %s vs %s", second.ID, first.ID)
	}
}

func TestService_RecordUnknownMovie(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Record(context.Background(), &Purchase{
		Reference: "REF100", MovieID: "missing", Method: MethodCard, Amount: 5,
	})
	if !errors.Is(err, catalog.ErrMovieNotFound) {
		t.Errorf("expected ErrMovieNotFound, got %v", err)
	}
}

func TestService_ByReferenceAndForUser(t *testing.T) {
	svc, cat := newTestService(t)
	movie := seedMovie(t, cat)
	ctx := context.Background()

	if _, err := svc.Record(ctx, &Purchase{
		Reference: "REF200", MovieID: movie.ID, UserID: "user-1", Method: MethodCard, Amount: 12.50,
	}); err != nil {
		t.Fatalf("failed to record purchase: %v", err)
	}

	got, err := svc.ByReference(ctx, "REF200")
	if err != nil {
		t.Fatalf("failed to look up by reference: %v", err)
	}
	if got.UserID != "user-1" {
		t.Errorf("expected user-1, got %q", got.UserID)
	}

	list, err := svc.ForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("failed to list for user: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 purchase, got %d", len(list))
	}

	if _, err := svc.ByReference(ctx, "REF999"); !errors.Is(err, ErrPurchaseNotFound) {
		t.Errorf("expected ErrPurchaseNotFound, got %v", err)
	}
}

func TestPurchaseValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Purchase
		wantErr bool
	}{
		{"valid mobile", Purchase{Reference: "R", MovieID: "M", Method: MethodMobile, Amount: 1}, false},
		{"valid card", Purchase{Reference: "R", MovieID: "M", Method: MethodCard, Amount: 1}, false},
		{"missing reference", Purchase{MovieID: "M", Method: MethodMobile, Amount: 1}, true},
		{"missing movie", Purchase{Reference: "R", Method: MethodMobile, Amount: 1}, true},
		{"bad method", Purchase{Reference: "R", MovieID: "M", Method: "cash", Amount: 1}, true},
		{"zero amount", Purchase{Reference: "R", MovieID: "M", Method: MethodCard}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
