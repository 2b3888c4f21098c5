package models

import (
	"time"
)

// Event is a tournament grouping under which hand videos are uploaded.
// Events are immutable after creation; there is no update or delete.
type Event struct {
	ID        string    `gorm:"column:id;primaryKey;size:64" json:"id"`
	Name      string    `gorm:"column:name;size:256;not null" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"createdAt"`
}

func (Event) TableName() string { return "events" }
