package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/handvault/backend/internal/models"
)

// GormStore is the relational Store backend. Row-level atomicity makes
// concurrent updates to the same record safe, unlike the JSON-file backend.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateEvent(ctx context.Context, name string) (*models.Event, error) {
	event := &models.Event{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (s *GormStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	events := make([]models.Event, 0)
	err := s.db.WithContext(ctx).
		Order("created_at DESC, id").
		Find(&events).Error
	return events, err
}

func (s *GormStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *GormStore) CreateHand(ctx context.Context, eventID, filename, path string) (*models.Hand, error) {
	hand := &models.Hand{
		ID:        uuid.NewString(),
		EventID:   eventID,
		Filename:  filename,
		Path:      path,
		Status:    models.StatusUploaded,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(hand).Error; err != nil {
		return nil, err
	}
	return hand, nil
}

func (s *GormStore) ListHands(ctx context.Context, eventID string) ([]models.Hand, error) {
	hands := make([]models.Hand, 0)
	err := s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC, id").
		Find(&hands).Error
	return hands, err
}

func (s *GormStore) GetHand(ctx context.Context, id string) (*models.Hand, error) {
	var hand models.Hand
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&hand).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &hand, nil
}

func (s *GormStore) UpdateHand(ctx context.Context, id string, update HandUpdate) (*models.Hand, error) {
	fields := map[string]interface{}{}
	if update.Status != nil {
		fields["status"] = *update.Status
	}
	if update.TextHistory != nil {
		fields["text_history"] = *update.TextHistory
	}
	if update.GuiData != nil {
		fields["gui_data"] = update.GuiData
	}

	if len(fields) > 0 {
		query := s.db.WithContext(ctx).
			Model(&models.Hand{}).
			Where("id = ?", id)
		if update.FromStatus != nil {
			query = query.Where("status = ?", *update.FromStatus)
		}
		res := query.Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			if update.FromStatus == nil {
				return nil, ErrNotFound
			}
			// Zero rows with a precondition is either a missing hand or a
			// status that moved on; look once to tell them apart.
			if _, err := s.GetHand(ctx, id); err != nil {
				return nil, err
			}
			return nil, ErrStaleStatus
		}
	}

	return s.GetHand(ctx, id)
}
