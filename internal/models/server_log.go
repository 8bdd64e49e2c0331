package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ServerLog stores structured ERROR+ records for offline querying.
type ServerLog struct {
	ID        string         `gorm:"size:40;primaryKey" json:"id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Level     string         `gorm:"size:10;not null;index" json:"level"`
	Message   string         `gorm:"type:text" json:"message"`
	TraceID   string         `gorm:"size:36;index" json:"trace_id"`
	UserKey   *string        `gorm:"size:24" json:"user_key"`
	Action    string         `gorm:"size:100" json:"action"`
	Error     string         `gorm:"type:text" json:"error"`
	LatencyMs int            `json:"latency_ms"`
	Extra     datatypes.JSON `json:"extra"`
	CreatedAt time.Time      `json:"created_at"`
}

func (ServerLog) TableName() string { return "server_logs" }

func (l *ServerLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = NewKey(RowKeySize)
	}
	return nil
}
