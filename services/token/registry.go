// Package token implements the registry of short-lived, single-use action
// tokens that authorize unauthenticated email-link actions.
package token

import (
	"context"
	"fmt"
	"time"

	actionTokenRepo "bookline/database/repository/actiontoken"
	"bookline/models"
	"bookline/utils"
)

// VerifyResult is the read-only answer to a token check. Invalid covers
// unknown, expired and already-used tokens alike; the reason is not
// disclosed to the caller.
type VerifyResult struct {
	Valid      bool   `json:"valid"`
	EntityType string `json:"entityType,omitempty"`
	EntityID   string `json:"entityId,omitempty"`
	Action     string `json:"action,omitempty"`
}

// Registry mints and checks action tokens.
type Registry interface {
	Create(ctx context.Context, entityType, entityID, action string) (string, error)
	Verify(ctx context.Context, token string) (VerifyResult, error)
	VerifyAndConsume(ctx context.Context, token string) (*models.ActionToken, error)
}

// DefaultRegistry is the production Registry.
type DefaultRegistry struct {
	Repo  actionTokenRepo.ActionTokenRepository
	Clock utils.Clock
	TTL   time.Duration
}

func NewDefaultRegistry(repo actionTokenRepo.ActionTokenRepository, clock utils.Clock, ttl time.Duration) *DefaultRegistry {
	return &DefaultRegistry{Repo: repo, Clock: clock, TTL: ttl}
}

// Create mints an opaque token bound to one {entity, action} pair and
// persists it with the registry's TTL.
func (r *DefaultRegistry) Create(ctx context.Context, entityType, entityID, action string) (string, error) {
	secret, err := utils.GenerateSecureToken()
	if err != nil {
		return "", fmt.Errorf("failed to mint action token: %w", err)
	}

	now := r.Clock.Now()
	record := &models.ActionToken{
		Token:      secret,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		ExpiresAt:  now.Add(r.TTL),
		IsUsed:     false,
		CreatedAt:  now,
	}
	if err := r.Repo.Insert(ctx, record); err != nil {
		return "", err
	}
	return secret, nil
}

// Verify checks a token without consuming it.
func (r *DefaultRegistry) Verify(ctx context.Context, token string) (VerifyResult, error) {
	record, err := r.Repo.GetByToken(ctx, token)
	if err != nil {
		return VerifyResult{}, err
	}
	if record == nil || record.IsUsed || !record.ExpiresAt.After(r.Clock.Now()) {
		return VerifyResult{Valid: false}, nil
	}
	return VerifyResult{
		Valid:      true,
		EntityType: record.EntityType,
		EntityID:   record.EntityID,
		Action:     record.Action,
	}, nil
}

// VerifyAndConsume atomically marks a valid token used and returns it.
// Returns (nil, nil) for any token that is unknown, expired or spent;
// two concurrent calls can never both receive the record.
func (r *DefaultRegistry) VerifyAndConsume(ctx context.Context, token string) (*models.ActionToken, error) {
	return r.Repo.ConsumeValid(ctx, token, r.Clock.Now())
}
