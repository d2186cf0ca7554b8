package main

import (
	"encoding/json"
	"time"

	"github.com/VirajsNexus/HireVoid/internal/analysis"
	"github.com/VirajsNexus/HireVoid/internal/database"
	"github.com/VirajsNexus/HireVoid/internal/jobsearch"
	"github.com/VirajsNexus/HireVoid/internal/llm"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type R2Config struct {
	AccountID string
	Bucket    string
	AccessKey string
	SecretKey string
}

// ApiConfig holds every client built at startup. Optional collaborators are
// nil when their environment is not configured and the routes that need
// them answer 503.
type ApiConfig struct {
	Analyzer  *analysis.Analyzer
	Generator llm.Generator
	Jobs      *jobsearch.Finder
	DB        *database.Queries
	Store     objectStore
	Publisher updatePublisher
	Agent     agentRunner
	Log       zerolog.Logger

	RABBITMQUrl string
}

type analyzeRequest struct {
	Resume   string `json:"resume"`
	JD       string `json:"jd"`
	Location string `json:"location"`
}

type findJobsResponse struct {
	Summary string          `json:"summary"`
	Jobs    []jobsearch.Job `json:"jobs"`
}

type analysisResponse struct {
	ID        uuid.UUID       `json:"id"`
	Category  string          `json:"category"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"createdAt"`
}

type uploadResponse struct {
	ID         uuid.UUID  `json:"id"`
	Status     string     `json:"status"`
	Category   string     `json:"category"`
	AnalysisID *uuid.UUID `json:"analysisId,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// RequestMessage is the body of a message on the analysis_requests queue.
type RequestMessage struct {
	RequestID uuid.UUID `json:"request_id"`
}

const (
	statusQueued     = "queued"
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
)

func toAnalysisResponse(a database.Analysis) analysisResponse {
	return analysisResponse{
		ID:        a.ID,
		Category:  a.Category,
		Result:    a.Result,
		CreatedAt: a.CreatedAt,
	}
}

func toUploadResponse(r database.AnalysisRequest) uploadResponse {
	resp := uploadResponse{
		ID:        r.ID,
		Status:    r.Status,
		Category:  r.Category,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.AnalysisID.Valid {
		id := r.AnalysisID.UUID
		resp.AnalysisID = &id
	}
	return resp
}
