// One-shot migration from the JSON-file store into PostgreSQL. Record ids
// are preserved so stored upload paths and hand/event links stay valid.
package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/handvault/backend/internal/models"
	"github.com/handvault/backend/internal/repository"
	"github.com/handvault/backend/internal/repository/jsonfile"
	"github.com/handvault/backend/pkg/config"
	"github.com/handvault/backend/pkg/logger"
)

// recordWriter is the destination side of the migration. Records are
// inserted with their source ids intact; the Store contract cannot be the
// destination because its create calls allocate fresh ids.
type recordWriter interface {
	WriteEvent(ctx context.Context, event *models.Event) error
	WriteHand(ctx context.Context, hand *models.Hand) error
}

type gormWriter struct {
	db *gorm.DB
}

func (w gormWriter) WriteEvent(ctx context.Context, event *models.Event) error {
	return w.db.WithContext(ctx).Create(event).Error
}

func (w gormWriter) WriteHand(ctx context.Context, hand *models.Hand) error {
	return w.db.WithContext(ctx).Create(hand).Error
}

// copyRecords walks the source event by event and writes every event and
// its hands to the destination. Hands whose event is missing from the
// source are never visited, so orphans the file store allows (and the FK
// would reject) stay behind.
func copyRecords(ctx context.Context, src repository.Store, dst recordWriter, log *logrus.Logger) (int, int, error) {
	events, err := src.ListEvents(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read events: %w", err)
	}

	migratedEvents, migratedHands := 0, 0
	for _, event := range events {
		copied := models.Event{
			ID:        event.ID,
			Name:      event.Name,
			CreatedAt: event.CreatedAt,
		}
		if err := dst.WriteEvent(ctx, &copied); err != nil {
			return migratedEvents, migratedHands, fmt.Errorf("failed to migrate event %s: %w", event.ID, err)
		}
		migratedEvents++

		hands, err := src.ListHands(ctx, event.ID)
		if err != nil {
			return migratedEvents, migratedHands, fmt.Errorf("failed to read hands of event %s: %w", event.ID, err)
		}
		for i := range hands {
			if err := dst.WriteHand(ctx, &hands[i]); err != nil {
				return migratedEvents, migratedHands, fmt.Errorf("failed to migrate hand %s: %w", hands[i].ID, err)
			}
			migratedHands++
		}
		log.WithFields(logrus.Fields{
			"event_id": event.ID,
			"name":     event.Name,
			"hands":    len(hands),
		}).Info("Migrated event")
	}
	return migratedEvents, migratedHands, nil
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogJSON)
	ctx := context.Background()

	fileStore, err := jsonfile.New(cfg.DataDir)
	if err != nil {
		log.WithError(err).Fatal("Failed to open JSON-file store")
	}

	db, err := repository.NewDatabase(cfg.DatabaseURL, cfg.Debug, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}

	events, hands, err := copyRecords(ctx, fileStore, gormWriter{db: db}, log)
	if err != nil {
		log.WithError(err).Fatal("Migration failed")
	}
	log.WithFields(logrus.Fields{
		"events": events,
		"hands":  hands,
	}).Info("Migration complete")
}
