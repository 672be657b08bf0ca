package token

import (
	"context"
	"sync"
	"testing"
	"time"

	"bookline/models"
	"bookline/utils"
)

// fakeTokenRepo mimics the Mongo repository, including the atomic
// check-and-consume semantics of ConsumeValid.
type fakeTokenRepo struct {
	mu      sync.Mutex
	records map[string]*models.ActionToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{records: make(map[string]*models.ActionToken)}
}

func (f *fakeTokenRepo) Insert(_ context.Context, t *models.ActionToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.records[t.Token] = &cp
	return nil
}

func (f *fakeTokenRepo) GetByToken(_ context.Context, token string) (*models.ActionToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[token]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeTokenRepo) ConsumeValid(_ context.Context, token string, now time.Time) (*models.ActionToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[token]
	if !ok || r.IsUsed || !r.ExpiresAt.After(now) {
		return nil, nil
	}
	r.IsUsed = true
	cp := *r
	return &cp, nil
}

func newRegistry(now time.Time) (*DefaultRegistry, *fakeTokenRepo) {
	repo := newFakeTokenRepo()
	return NewDefaultRegistry(repo, utils.FixedClock{Instant: now}, 72*time.Hour), repo
}

func TestVerifyAndConsumeIsSingleUse(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	reg, _ := newRegistry(now)
	ctx := context.Background()

	secret, err := reg.Create(ctx, models.EntityAppointment, "appt-1", models.ActionAccept)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	first, err := reg.VerifyAndConsume(ctx, secret)
	if err != nil {
		t.Fatalf("first consume failed: %v", err)
	}
	if first == nil {
		t.Fatal("fresh token should be valid")
	}
	if first.EntityID != "appt-1" || first.Action != models.ActionAccept {
		t.Fatalf("unexpected token payload: %+v", first)
	}

	second, err := reg.VerifyAndConsume(ctx, secret)
	if err != nil {
		t.Fatalf("second consume errored: %v", err)
	}
	if second != nil {
		t.Fatal("spent token must not be honored twice")
	}
}

func TestExpiredTokenIsNeverHonored(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	reg, repo := newRegistry(now)
	ctx := context.Background()

	secret, err := reg.Create(ctx, models.EntityQuote, "quote-1", models.ActionReject)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// Age the token past its expiry without using it.
	repo.records[secret].ExpiresAt = now.Add(-time.Minute)

	res, err := reg.Verify(ctx, secret)
	if err != nil {
		t.Fatalf("Verify errored: %v", err)
	}
	if res.Valid {
		t.Fatal("expired token should be invalid")
	}
	if consumed, _ := reg.VerifyAndConsume(ctx, secret); consumed != nil {
		t.Fatal("expired token must not be consumable")
	}
}

func TestVerifyDoesNotConsume(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	reg, _ := newRegistry(now)
	ctx := context.Background()

	secret, _ := reg.Create(ctx, models.EntityAppointment, "appt-1", models.ActionReschedule)

	for i := 0; i < 3; i++ {
		res, err := reg.Verify(ctx, secret)
		if err != nil {
			t.Fatalf("Verify errored: %v", err)
		}
		if !res.Valid {
			t.Fatalf("Verify pass %d should not invalidate the token", i)
		}
	}
}

func TestUnknownTokenIsInvalid(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	reg, _ := newRegistry(now)

	res, err := reg.Verify(context.Background(), "no-such-token")
	if err != nil {
		t.Fatalf("Verify errored: %v", err)
	}
	if res.Valid {
		t.Fatal("unknown token should be invalid")
	}
}

func TestConcurrentConsumersSingleWinner(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	reg, _ := newRegistry(now)
	ctx := context.Background()

	secret, _ := reg.Create(ctx, models.EntityAppointment, "appt-1", models.ActionAccept)

	const racers = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if record, _ := reg.VerifyAndConsume(ctx, secret); record != nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	var winners int
	for range wins {
		winners++
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}
