package database

import (
	"context"

	"github.com/google/uuid"
)

const createAnalysisRequest = `-- name: CreateAnalysisRequest :one
INSERT INTO analysis_requests (
user_id, category, job_description, object_key, mime)
VALUES ( $1, $2, $3, $4, $5)
RETURNING id, user_id, category, job_description, object_key, mime, status, analysis_id, created_at, updated_at
`

type CreateAnalysisRequestParams struct {
	UserID         uuid.UUID
	Category       string
	JobDescription string
	ObjectKey      string
	Mime           string
}

func (q *Queries) CreateAnalysisRequest(ctx context.Context, arg CreateAnalysisRequestParams) (AnalysisRequest, error) {
	row := q.db.QueryRowContext(ctx, createAnalysisRequest,
		arg.UserID,
		arg.Category,
		arg.JobDescription,
		arg.ObjectKey,
		arg.Mime,
	)
	var i AnalysisRequest
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Category,
		&i.JobDescription,
		&i.ObjectKey,
		&i.Mime,
		&i.Status,
		&i.AnalysisID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAnalysisRequest = `-- name: GetAnalysisRequest :one
SELECT id, user_id, category, job_description, object_key, mime, status, analysis_id, created_at, updated_at FROM analysis_requests
WHERE id=$1
`

func (q *Queries) GetAnalysisRequest(ctx context.Context, id uuid.UUID) (AnalysisRequest, error) {
	row := q.db.QueryRowContext(ctx, getAnalysisRequest, id)
	var i AnalysisRequest
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Category,
		&i.JobDescription,
		&i.ObjectKey,
		&i.Mime,
		&i.Status,
		&i.AnalysisID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateAnalysisRequestStatus = `-- name: UpdateAnalysisRequestStatus :exec
UPDATE analysis_requests
SET status=$1, analysis_id=$2, updated_at=CURRENT_TIMESTAMP
WHERE id=$3
`

type UpdateAnalysisRequestStatusParams struct {
	Status     string
	AnalysisID uuid.NullUUID
	ID         uuid.UUID
}

func (q *Queries) UpdateAnalysisRequestStatus(ctx context.Context, arg UpdateAnalysisRequestStatusParams) error {
	_, err := q.db.ExecContext(ctx, updateAnalysisRequestStatus, arg.Status, arg.AnalysisID, arg.ID)
	return err
}
