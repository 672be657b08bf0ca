package actionTokenRepo

import (
	"context"
	"time"

	"bookline/models"
)

// ActionTokenRepository persists the single-use email action tokens.
type ActionTokenRepository interface {
	Insert(ctx context.Context, token *models.ActionToken) error
	GetByToken(ctx context.Context, token string) (*models.ActionToken, error)
	// ConsumeValid atomically marks the token used if and only if it
	// exists, is unused and unexpired at now. Returns (nil, nil) when no
	// such token qualifies, so two racing consumers can never both win.
	ConsumeValid(ctx context.Context, token string, now time.Time) (*models.ActionToken, error)
}
