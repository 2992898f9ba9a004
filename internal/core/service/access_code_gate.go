package service

import (
	"context"
	"time"

	"github.com/parkingapp/auth-service/internal/core/domain"
	"github.com/parkingapp/auth-service/internal/core/ports"
)

// AccessCodeGate validates single-use registration codes. Redeem only checks;
// the caller consumes the returned code by persisting it used in the same
// unit of work that creates the user.
type AccessCodeGate struct {
	store ports.CredentialStore
	now   func() time.Time
}

func NewAccessCodeGate(store ports.CredentialStore) *AccessCodeGate {
	return &AccessCodeGate{store: store, now: time.Now}
}

// WithClock overrides the gate's clock. Intended for tests.
func (g *AccessCodeGate) WithClock(now func() time.Time) *AccessCodeGate {
	g.now = now
	return g
}

// Redeem returns the access code record when it is known, unused and
// unexpired. Failures: domain.ErrCodeNotFound, domain.ErrCodeAlreadyUsed,
// domain.ErrCodeExpired.
func (g *AccessCodeGate) Redeem(ctx context.Context, code string) (*domain.AccessCode, error) {
	record, err := g.store.FindAccessCodeByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if record.Used {
		return nil, domain.ErrCodeAlreadyUsed
	}
	if record.Expired(g.now().UTC()) {
		return nil, domain.ErrCodeExpired
	}
	return record, nil
}
