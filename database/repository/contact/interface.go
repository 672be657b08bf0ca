package contactRepo

import (
	"context"

	"bookline/models"
)

// ContactRepository defines persistence operations for contacts.
type ContactRepository interface {
	UpsertByEmail(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	GetByID(ctx context.Context, id string) (*models.Contact, error)
}
