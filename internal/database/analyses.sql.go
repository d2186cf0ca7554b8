package database

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

const createAnalysis = `-- name: CreateAnalysis :one
INSERT INTO analyses (
user_id, category, result)
VALUES ( $1, $2, $3)
RETURNING id, user_id, category, result, created_at
`

type CreateAnalysisParams struct {
	UserID   uuid.UUID
	Category string
	Result   json.RawMessage
}

func (q *Queries) CreateAnalysis(ctx context.Context, arg CreateAnalysisParams) (Analysis, error) {
	row := q.db.QueryRowContext(ctx, createAnalysis, arg.UserID, arg.Category, arg.Result)
	var i Analysis
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Category,
		&i.Result,
		&i.CreatedAt,
	)
	return i, err
}

const getAnalysis = `-- name: GetAnalysis :one
SELECT id, user_id, category, result, created_at FROM analyses
WHERE id=$1 AND user_id=$2
`

type GetAnalysisParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) GetAnalysis(ctx context.Context, arg GetAnalysisParams) (Analysis, error) {
	row := q.db.QueryRowContext(ctx, getAnalysis, arg.ID, arg.UserID)
	var i Analysis
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Category,
		&i.Result,
		&i.CreatedAt,
	)
	return i, err
}

const listAnalysesByUser = `-- name: ListAnalysesByUser :many
SELECT id, user_id, category, result, created_at FROM analyses
WHERE user_id=$1
ORDER BY created_at DESC
LIMIT $2
`

type ListAnalysesByUserParams struct {
	UserID uuid.UUID
	Limit  int32
}

func (q *Queries) ListAnalysesByUser(ctx context.Context, arg ListAnalysesByUserParams) ([]Analysis, error) {
	rows, err := q.db.QueryContext(ctx, listAnalysesByUser, arg.UserID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Analysis
	for rows.Next() {
		var i Analysis
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Category,
			&i.Result,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteAnalysis = `-- name: DeleteAnalysis :execrows
DELETE FROM analyses
WHERE id=$1 AND user_id=$2
`

type DeleteAnalysisParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) DeleteAnalysis(ctx context.Context, arg DeleteAnalysisParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAnalysis, arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
