package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/handvault/backend/internal/models"
	"github.com/handvault/backend/internal/repository"
)

const (
	eventsFile = "events.db.json"
	handsFile  = "hands.db.json"
)

// Store is the flat-file Store backend: two independent JSON arrays, each
// rewritten whole on every mutation. The mutex serializes writers within
// this process only; concurrent processes sharing the data directory can
// lose writes (whole-collection read-modify-write). It also does not
// enforce that a hand's event exists, so orphaned hands are possible.
type Store struct {
	mu  sync.Mutex
	dir string
}

// New creates the data directory if needed and returns a file-backed store.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) CreateEvent(ctx context.Context, name string) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []models.Event
	if err := s.load(eventsFile, &events); err != nil {
		return nil, err
	}

	event := models.Event{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	events = append(events, event)

	if err := s.save(eventsFile, events); err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *Store) ListEvents(ctx context.Context) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []models.Event
	if err := s.load(eventsFile, &events); err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].ID < events[j].ID
		}
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	if events == nil {
		events = make([]models.Event, 0)
	}
	return events, nil
}

func (s *Store) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []models.Event
	if err := s.load(eventsFile, &events); err != nil {
		return nil, err
	}
	for i := range events {
		if events[i].ID == id {
			return &events[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) CreateHand(ctx context.Context, eventID, filename, path string) (*models.Hand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hands []models.Hand
	if err := s.load(handsFile, &hands); err != nil {
		return nil, err
	}

	hand := models.Hand{
		ID:        uuid.NewString(),
		EventID:   eventID,
		Filename:  filename,
		Path:      path,
		Status:    models.StatusUploaded,
		CreatedAt: time.Now().UTC(),
	}
	hands = append(hands, hand)

	if err := s.save(handsFile, hands); err != nil {
		return nil, err
	}
	return &hand, nil
}

func (s *Store) ListHands(ctx context.Context, eventID string) ([]models.Hand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hands []models.Hand
	if err := s.load(handsFile, &hands); err != nil {
		return nil, err
	}

	// Insertion order is creation order; no re-sort needed.
	matched := make([]models.Hand, 0)
	for _, h := range hands {
		if h.EventID == eventID {
			matched = append(matched, h)
		}
	}
	return matched, nil
}

func (s *Store) GetHand(ctx context.Context, id string) (*models.Hand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hands []models.Hand
	if err := s.load(handsFile, &hands); err != nil {
		return nil, err
	}
	for i := range hands {
		if hands[i].ID == id {
			return &hands[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) UpdateHand(ctx context.Context, id string, update repository.HandUpdate) (*models.Hand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hands []models.Hand
	if err := s.load(handsFile, &hands); err != nil {
		return nil, err
	}

	for i := range hands {
		if hands[i].ID != id {
			continue
		}
		if update.FromStatus != nil && hands[i].Status != *update.FromStatus {
			return nil, repository.ErrStaleStatus
		}
		if update.Status != nil {
			hands[i].Status = *update.Status
		}
		if update.TextHistory != nil {
			hands[i].TextHistory = update.TextHistory
		}
		if update.GuiData != nil {
			hands[i].GuiData = update.GuiData
		}
		if err := s.save(handsFile, hands); err != nil {
			return nil, err
		}
		return &hands[i], nil
	}
	return nil, repository.ErrNotFound
}

func (s *Store) load(name string, out interface{}) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// save writes the collection to a sibling temp file and renames it into
// place, so a crash mid-write never leaves a torn file behind.
func (s *Store) save(name string, records interface{}) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	target := filepath.Join(s.dir, name)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
