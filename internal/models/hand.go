package models

import (
	"time"

	"gorm.io/datatypes"
)

// HandStatus represents where a hand is in its review lifecycle
type HandStatus string

const (
	StatusUploaded    HandStatus = "uploaded"
	StatusProcessing  HandStatus = "processing"
	StatusNeedsReview HandStatus = "needs_review"
	StatusCompleted   HandStatus = "completed"
)

// handTransitions encodes the allowed forward edges of the lifecycle.
// processing -> uploaded is the failure edge, uploaded -> completed is the
// manual-entry path that skips analysis, and completed is terminal.
var handTransitions = map[HandStatus][]HandStatus{
	StatusUploaded:    {StatusProcessing, StatusCompleted},
	StatusProcessing:  {StatusNeedsReview, StatusUploaded},
	StatusNeedsReview: {StatusCompleted},
	StatusCompleted:   {},
}

// Valid reports whether s is a known status value.
func (s HandStatus) Valid() bool {
	_, ok := handTransitions[s]
	return ok
}

// CanTransition reports whether the lifecycle allows moving from s to target.
func (s HandStatus) CanTransition(target HandStatus) bool {
	for _, next := range handTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Hand is one uploaded video plus its derived and edited hand-history data.
// Hands are never deleted.
type Hand struct {
	ID          string         `gorm:"column:id;primaryKey;size:64" json:"id"`
	EventID     string         `gorm:"column:event_id;size:64;not null;index" json:"eventId"`
	Filename    string         `gorm:"column:filename;size:256;not null" json:"filename"`
	Path        string         `gorm:"column:path;size:512;not null" json:"path"`
	Status      HandStatus     `gorm:"column:status;size:16;not null;default:uploaded" json:"status"`
	TextHistory *string        `gorm:"column:text_history;type:text" json:"textHistory,omitempty"`
	GuiData     datatypes.JSON `gorm:"column:gui_data;type:jsonb" json:"guiData,omitempty"`
	CreatedAt   time.Time      `gorm:"column:created_at;not null" json:"createdAt"`

	// FK enforced on the relational backend only; the JSON-file backend
	// ignores the relation and can hold orphaned hands.
	Event *Event `gorm:"foreignKey:EventID" json:"-"`
}

func (Hand) TableName() string { return "hands" }
