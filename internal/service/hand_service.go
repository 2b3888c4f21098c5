package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/handvault/backend/internal/analysis"
	"github.com/handvault/backend/internal/models"
	"github.com/handvault/backend/internal/monitoring"
	"github.com/handvault/backend/internal/repository"
)

// unsafeFilenameChars matches everything outside the allowed filename set.
var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeFilename strips the directory portion and every character outside
// [a-zA-Z0-9._-]. An empty result means the name is unusable. Names that
// reduce to "." or ".." are unusable as files and also come back empty.
func SanitizeFilename(name string) string {
	safe := unsafeFilenameChars.ReplaceAllString(path.Base(name), "")
	if safe == "." || safe == ".." {
		return ""
	}
	return safe
}

// HandService owns the hand lifecycle: upload, analysis, review edits.
type HandService struct {
	store          repository.Store
	invoker        analysis.Invoker
	log            *logrus.Logger
	uploadsDir     string
	analyzeTimeout time.Duration
}

func NewHandService(
	store repository.Store,
	invoker analysis.Invoker,
	log *logrus.Logger,
	uploadsDir string,
	analyzeTimeout time.Duration,
) *HandService {
	return &HandService{
		store:          store,
		invoker:        invoker,
		log:            log,
		uploadsDir:     uploadsDir,
		analyzeTimeout: analyzeTimeout,
	}
}

// Upload stores the video under uploads/{eventId}/{sanitizedFilename} and
// creates the hand record with status uploaded. Nothing is written when the
// filename sanitizes to empty.
func (s *HandService) Upload(ctx context.Context, eventID string, file multipart.File, header *multipart.FileHeader) (*models.Hand, error) {
	safeName := SanitizeFilename(header.Filename)
	if safeName == "" {
		return nil, &ValidationError{Message: "Invalid filename"}
	}

	eventDir := filepath.Join(s.uploadsDir, eventID)
	if err := os.MkdirAll(eventDir, 0o755); err != nil {
		return nil, &StorageError{Op: "create upload directory", Err: err}
	}

	dest, err := os.Create(filepath.Join(eventDir, safeName))
	if err != nil {
		return nil, &StorageError{Op: "create upload file", Err: err}
	}
	defer dest.Close()

	written, err := io.Copy(dest, file)
	if err != nil {
		return nil, &StorageError{Op: "write upload file", Err: err}
	}

	urlPath := fmt.Sprintf("/uploads/%s/%s", eventID, safeName)
	hand, err := s.store.CreateHand(ctx, eventID, safeName, urlPath)
	if err != nil {
		s.log.WithError(err).WithField("event_id", eventID).Error("Failed to create hand record")
		return nil, &StorageError{Op: "create hand", Err: err}
	}

	monitoring.UploadsTotal.Inc()
	monitoring.UploadBytesTotal.Add(float64(written))
	s.log.WithFields(logrus.Fields{
		"hand_id":  hand.ID,
		"event_id": eventID,
		"filename": safeName,
		"bytes":    written,
	}).Info("Hand video uploaded")
	return hand, nil
}

// ListByEvent returns the event's hands in creation order.
func (s *HandService) ListByEvent(ctx context.Context, eventID string) ([]models.Hand, error) {
	hands, err := s.store.ListHands(ctx, eventID)
	if err != nil {
		s.log.WithError(err).WithField("event_id", eventID).Error("Failed to list hands")
		return nil, &StorageError{Op: "list hands", Err: err}
	}
	return hands, nil
}

// Get returns one hand by id.
func (s *HandService) Get(ctx context.Context, id string) (*models.Hand, error) {
	hand, err := s.store.GetHand(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "Hand"}
	}
	if err != nil {
		s.log.WithError(err).WithField("hand_id", id).Error("Failed to read hand")
		return nil, &StorageError{Op: "get hand", Err: err}
	}
	return hand, nil
}

// Analyze runs the external analyzer against an uploaded hand. The status
// is persisted as processing before the analyzer starts; on success the
// hand moves to needs_review with textHistory and guiData populated, on any
// failure it reverts to uploaded with prior results untouched.
func (s *HandService) Analyze(ctx context.Context, id string) (*models.Hand, error) {
	hand, err := s.store.GetHand(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "Hand"}
	}
	if err != nil {
		return nil, &StorageError{Op: "get hand", Err: err}
	}

	if !hand.Status.CanTransition(models.StatusProcessing) {
		return nil, &ConflictError{
			Message: fmt.Sprintf("Hand cannot be analyzed in status %q", hand.Status),
		}
	}

	// The FromStatus precondition makes the claim atomic: of two racing
	// analyze requests that both observed the hand as analyzable, only one
	// moves it to processing and runs the analyzer.
	processing := models.StatusProcessing
	observed := hand.Status
	if _, err := s.store.UpdateHand(ctx, id, repository.HandUpdate{
		FromStatus: &observed,
		Status:     &processing,
	}); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, &ConflictError{Message: "Hand is already being analyzed"}
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "Hand"}
		}
		return nil, &StorageError{Op: "mark hand processing", Err: err}
	}

	// A client disconnect must not abort an in-flight analysis, so the
	// analyzer and the follow-up persistence run on a detached context
	// bounded only by the configured timeout.
	runCtx, cancel := context.WithTimeout(context.Background(), s.analyzeTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.invoker.Analyze(runCtx, filepath.Join(s.uploadsDir, hand.EventID, hand.Filename))
	monitoring.AnalysisDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		monitoring.AnalysesTotal.WithLabelValues("failure").Inc()
		s.revertToUploaded(id)
		s.log.WithError(err).WithField("hand_id", id).Error("Analysis failed")
		return nil, &AnalysisError{Err: err}
	}

	guiData, err := json.Marshal(result.GuiData)
	if err != nil {
		monitoring.AnalysesTotal.WithLabelValues("failure").Inc()
		s.revertToUploaded(id)
		return nil, &AnalysisError{Err: fmt.Errorf("failed to encode analyzer result: %w", err)}
	}

	needsReview := models.StatusNeedsReview
	updated, err := s.store.UpdateHand(context.Background(), id, repository.HandUpdate{
		Status:      &needsReview,
		TextHistory: &result.TextHistory,
		GuiData:     datatypes.JSON(guiData),
	})
	if err != nil {
		monitoring.AnalysesTotal.WithLabelValues("failure").Inc()
		s.revertToUploaded(id)
		return nil, &StorageError{Op: "save analysis result", Err: err}
	}

	monitoring.AnalysesTotal.WithLabelValues("success").Inc()
	s.log.WithField("hand_id", id).Info("Analysis completed, hand needs review")
	return updated, nil
}

// revertToUploaded takes the failure edge processing -> uploaded so a
// failed run stays retry-eligible. Best effort: a revert failure is logged
// and the original error still surfaces to the caller.
func (s *HandService) revertToUploaded(id string) {
	uploaded := models.StatusUploaded
	if _, err := s.store.UpdateHand(context.Background(), id, repository.HandUpdate{Status: &uploaded}); err != nil {
		s.log.WithError(err).WithField("hand_id", id).Error("Failed to revert hand status after analysis failure")
	}
}

// UpdateText stores the human-edited hand history and marks the hand
// completed. Hands that are completed or mid-analysis reject the edit.
func (s *HandService) UpdateText(ctx context.Context, id string, textHistory string) (*models.Hand, error) {
	hand, err := s.store.GetHand(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "Hand"}
	}
	if err != nil {
		return nil, &StorageError{Op: "get hand", Err: err}
	}

	if !hand.Status.CanTransition(models.StatusCompleted) {
		message := "Hand is already completed"
		if hand.Status == models.StatusProcessing {
			message = "Hand is being analyzed"
		}
		return nil, &ConflictError{Message: message}
	}

	completed := models.StatusCompleted
	observed := hand.Status
	updated, err := s.store.UpdateHand(ctx, id, repository.HandUpdate{
		FromStatus:  &observed,
		Status:      &completed,
		TextHistory: &textHistory,
	})
	if errors.Is(err, repository.ErrStaleStatus) {
		return nil, &ConflictError{Message: "Hand status changed, reload and retry"}
	}
	if err != nil {
		s.log.WithError(err).WithField("hand_id", id).Error("Failed to update hand")
		return nil, &StorageError{Op: "update hand", Err: err}
	}

	s.log.WithField("hand_id", id).Info("Hand history confirmed")
	return updated, nil
}
