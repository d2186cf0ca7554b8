package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Analysis struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Category  string
	Result    json.RawMessage
	CreatedAt time.Time
}

type AnalysisRequest struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Category       string
	JobDescription string
	ObjectKey      string
	Mime           string
	Status         string
	AnalysisID     uuid.NullUUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
