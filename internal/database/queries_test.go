package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var analysisColumns = []string{"id", "user_id", "category", "result", "created_at"}

func newMock(t *testing.T) (*Queries, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return New(db), mock
}

func TestCreateAnalysis(t *testing.T) {
	q, mock := newMock(t)
	id, userID := uuid.New(), uuid.New()
	created := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	result := json.RawMessage(`{"score":85}`)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO analyses")).
		WithArgs(userID, "match", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(analysisColumns).
			AddRow(id.String(), userID.String(), "match", []byte(result), created))

	a, err := q.CreateAnalysis(context.Background(), CreateAnalysisParams{
		UserID:   userID,
		Category: "match",
		Result:   result,
	})
	require.NoError(t, err)
	assert.Equal(t, id, a.ID)
	assert.Equal(t, userID, a.UserID)
	assert.JSONEq(t, `{"score":85}`, string(a.Result))
	assert.Equal(t, created, a.CreatedAt)
}

func TestListAnalysesByUser(t *testing.T) {
	q, mock := newMock(t)
	userID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM analyses\nWHERE user_id=$1\nORDER BY created_at DESC")).
		WithArgs(userID, int32(20)).
		WillReturnRows(sqlmock.NewRows(analysisColumns).
			AddRow(uuid.NewString(), userID.String(), "resume", []byte(`{"rating":8}`), now).
			AddRow(uuid.NewString(), userID.String(), "jd", []byte(`{"overview":"x"}`), now.Add(-time.Hour)))

	items, err := q.ListAnalysesByUser(context.Background(), ListAnalysesByUserParams{UserID: userID, Limit: 20})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "resume", items[0].Category)
	assert.Equal(t, "jd", items[1].Category)
}

func TestGetAnalysis_NotFound(t *testing.T) {
	q, mock := newMock(t)
	id, userID := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id=$1 AND user_id=$2")).
		WithArgs(id, userID).
		WillReturnRows(sqlmock.NewRows(analysisColumns))

	_, err := q.GetAnalysis(context.Background(), GetAnalysisParams{ID: id, UserID: userID})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDeleteAnalysis(t *testing.T) {
	q, mock := newMock(t)
	id, userID := uuid.New(), uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM analyses")).
		WithArgs(id, userID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := q.DeleteAnalysis(context.Background(), DeleteAnalysisParams{ID: id, UserID: userID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAnalysisRequestLifecycle(t *testing.T) {
	q, mock := newMock(t)
	ctx := context.Background()
	id, userID, analysisID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now().UTC()
	cols := []string{"id", "user_id", "category", "job_description", "object_key", "mime", "status", "analysis_id", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO analysis_requests")).
		WithArgs(userID, "match", "Backend role", "resumes/a.pdf", "application/pdf").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(id.String(), userID.String(), "match", "Backend role", "resumes/a.pdf", "application/pdf", "queued", nil, now, now))

	req, err := q.CreateAnalysisRequest(ctx, CreateAnalysisRequestParams{
		UserID:         userID,
		Category:       "match",
		JobDescription: "Backend role",
		ObjectKey:      "resumes/a.pdf",
		Mime:           "application/pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "queued", req.Status)
	assert.False(t, req.AnalysisID.Valid)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE analysis_requests")).
		WithArgs("completed", uuid.NullUUID{UUID: analysisID, Valid: true}, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, q.UpdateAnalysisRequestStatus(ctx, UpdateAnalysisRequestStatusParams{
		Status:     "completed",
		AnalysisID: uuid.NullUUID{UUID: analysisID, Valid: true},
		ID:         id,
	}))

	mock.ExpectQuery(regexp.QuoteMeta("FROM analysis_requests")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(id.String(), userID.String(), "match", "Backend role", "resumes/a.pdf", "application/pdf", "completed", analysisID.String(), now, now))

	got, err := q.GetAnalysisRequest(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, uuid.NullUUID{UUID: analysisID, Valid: true}, got.AnalysisID)
}
