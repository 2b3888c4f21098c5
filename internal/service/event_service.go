package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/handvault/backend/internal/models"
	"github.com/handvault/backend/internal/monitoring"
	"github.com/handvault/backend/internal/repository"
)

// EventService handles event creation and lookup. Events are immutable
// after creation.
type EventService struct {
	store repository.Store
	log   *logrus.Logger
}

func NewEventService(store repository.Store, log *logrus.Logger) *EventService {
	return &EventService{store: store, log: log}
}

// Create validates and stores a new event.
func (s *EventService) Create(ctx context.Context, name string) (*models.Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Message: "Event name is required."}
	}

	event, err := s.store.CreateEvent(ctx, name)
	if err != nil {
		s.log.WithError(err).Error("Failed to create event")
		return nil, &StorageError{Op: "create event", Err: err}
	}

	monitoring.EventsCreatedTotal.Inc()
	s.log.WithFields(logrus.Fields{"event_id": event.ID, "name": event.Name}).Info("Event created")
	return event, nil
}

// List returns all events, newest first.
func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	events, err := s.store.ListEvents(ctx)
	if err != nil {
		s.log.WithError(err).Error("Failed to list events")
		return nil, &StorageError{Op: "list events", Err: err}
	}
	return events, nil
}

// Get returns one event by id.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.store.GetEvent(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "Event"}
	}
	if err != nil {
		s.log.WithError(err).WithField("event_id", id).Error("Failed to read event")
		return nil, &StorageError{Op: "get event", Err: err}
	}
	return event, nil
}
