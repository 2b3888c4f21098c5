package repository

import (
	"context"
	"errors"

	"gorm.io/datatypes"

	"github.com/handvault/backend/internal/models"
)

// ErrNotFound is returned by lookups and updates targeting an unknown id.
var ErrNotFound = errors.New("record not found")

// ErrStaleStatus is returned by UpdateHand when FromStatus is set and the
// stored record is no longer in that status.
var ErrStaleStatus = errors.New("hand status changed")

// HandUpdate is a partial update of a stored hand. Nil fields are left
// untouched; supplied fields are merged into the record. When FromStatus
// is set the update applies only if the stored status still matches it,
// so a lifecycle transition observed by the caller cannot be applied over
// a concurrent one.
type HandUpdate struct {
	FromStatus  *models.HandStatus
	Status      *models.HandStatus
	TextHistory *string
	GuiData     datatypes.JSON
}

// Store is the persistence contract shared by the relational and the
// JSON-file backend. Every mutating call persists durably before returning.
type Store interface {
	CreateEvent(ctx context.Context, name string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)

	CreateHand(ctx context.Context, eventID, filename, path string) (*models.Hand, error)
	ListHands(ctx context.Context, eventID string) ([]models.Hand, error)
	GetHand(ctx context.Context, id string) (*models.Hand, error)
	UpdateHand(ctx context.Context, id string, update HandUpdate) (*models.Hand, error)
}
