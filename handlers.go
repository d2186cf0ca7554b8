package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/VirajsNexus/HireVoid/internal/analysis"
	"github.com/VirajsNexus/HireVoid/internal/database"
	"github.com/VirajsNexus/HireVoid/internal/extract"
	"github.com/VirajsNexus/HireVoid/internal/jobsearch"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
)

const (
	userIDHeader = "X-User-ID"

	msgAnalysisFailed = "Analysis failed, please retry"
	msgJobsFailed     = "Failed to fetch jobs from API"

	defaultListLimit = 20
	maxListLimit     = 100
	maxUploadBytes   = 10 << 20
)

func respondWithError(c *app.RequestContext, code int, msg string) {
	c.JSON(code, utils.H{"error": msg})
}

func bindAnalyzeRequest(c *app.RequestContext) (analyzeRequest, error) {
	var req analyzeRequest
	body := c.Request.Body()
	if len(body) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, err
	}
	return req, nil
}

// userID returns the caller's id from the X-User-ID header, if it is a valid UUID.
func userID(c *app.RequestContext) (uuid.UUID, bool) {
	raw := strings.TrimSpace(string(c.GetHeader(userIDHeader)))
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// handleAnalyze serves one analysis category. All three analyze routes go
// through it.
func (cfg *ApiConfig) handleAnalyze(category analysis.Category) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		req, err := bindAnalyzeRequest(c)
		if err != nil {
			respondWithError(c, consts.StatusBadRequest, "Invalid request body")
			return
		}

		result, err := cfg.Analyzer.Analyze(ctx, category, analysis.Inputs{
			Resume:         req.Resume,
			JobDescription: req.JD,
		})
		if err != nil {
			var missing *analysis.MissingInputError
			if errors.As(err, &missing) {
				respondWithError(c, consts.StatusBadRequest, missing.Message)
				return
			}
			respondWithError(c, consts.StatusInternalServerError, msgAnalysisFailed)
			return
		}

		cfg.saveAnalysis(ctx, c, category, result)
		c.JSON(consts.StatusOK, result)
	}
}

// saveAnalysis persists a result for identified callers. Persistence
// failures are logged and do not change the response.
func (cfg *ApiConfig) saveAnalysis(ctx context.Context, c *app.RequestContext, category analysis.Category, result extract.Result) {
	if cfg.DB == nil {
		return
	}
	uid, ok := userID(c)
	if !ok {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		cfg.Log.Error().Err(err).Msg("failed to marshal analysis result")
		return
	}
	saved, err := cfg.DB.CreateAnalysis(ctx, database.CreateAnalysisParams{
		UserID:   uid,
		Category: string(category),
		Result:   data,
	})
	if err != nil {
		cfg.Log.Error().Err(err).Str("user_id", uid.String()).Str("category", string(category)).Msg("failed to save analysis")
		return
	}
	c.Header("X-Analysis-ID", saved.ID.String())
}

func (cfg *ApiConfig) handleFindJobs(ctx context.Context, c *app.RequestContext) {
	req, err := bindAnalyzeRequest(c)
	if err != nil {
		respondWithError(c, consts.StatusBadRequest, "Invalid request body")
		return
	}
	resume := strings.TrimSpace(req.Resume)
	if resume == "" {
		respondWithError(c, consts.StatusBadRequest, "Resume is required")
		return
	}
	if cfg.Jobs == nil {
		respondWithError(c, consts.StatusServiceUnavailable, "Job search is not configured")
		return
	}

	jobs, err := cfg.Jobs.Find(ctx, req.Location)
	if err != nil {
		cfg.Log.Error().Err(err).Str("location", req.Location).Msg("job search failed")
		respondWithError(c, consts.StatusInternalServerError, msgJobsFailed)
		return
	}

	summary := ""
	if len(jobs) > 0 {
		text, err := cfg.Generator.Generate(ctx, jobsearch.SummaryPrompt(resume, jobs))
		if err != nil {
			cfg.Log.Warn().Err(err).Msg("job summary generation failed")
		} else {
			summary = strings.TrimSpace(text)
		}
	}

	c.JSON(consts.StatusOK, findJobsResponse{Summary: summary, Jobs: jobs})
}

// requireUserStore checks the caller identity and that persistence is configured.
func (cfg *ApiConfig) requireUserStore(c *app.RequestContext) (uuid.UUID, bool) {
	if cfg.DB == nil {
		respondWithError(c, consts.StatusServiceUnavailable, "Saved analyses are not configured")
		return uuid.Nil, false
	}
	uid, ok := userID(c)
	if !ok {
		respondWithError(c, consts.StatusUnauthorized, "X-User-ID header is required")
		return uuid.Nil, false
	}
	return uid, true
}

func (cfg *ApiConfig) handleListAnalyses(ctx context.Context, c *app.RequestContext) {
	uid, ok := cfg.requireUserStore(c)
	if !ok {
		return
	}

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondWithError(c, consts.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxListLimit)
	}

	items, err := cfg.DB.ListAnalysesByUser(ctx, database.ListAnalysesByUserParams{
		UserID: uid,
		Limit:  int32(limit),
	})
	if err != nil {
		cfg.Log.Error().Err(err).Str("user_id", uid.String()).Msg("failed to list analyses")
		respondWithError(c, consts.StatusInternalServerError, "Failed to load analyses")
		return
	}

	resp := make([]analysisResponse, 0, len(items))
	for _, a := range items {
		resp = append(resp, toAnalysisResponse(a))
	}
	c.JSON(consts.StatusOK, resp)
}

func (cfg *ApiConfig) handleGetAnalysis(ctx context.Context, c *app.RequestContext) {
	uid, ok := cfg.requireUserStore(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondWithError(c, consts.StatusBadRequest, "Invalid analysis id")
		return
	}

	a, err := cfg.DB.GetAnalysis(ctx, database.GetAnalysisParams{ID: id, UserID: uid})
	if errors.Is(err, sql.ErrNoRows) {
		respondWithError(c, consts.StatusNotFound, "Analysis not found")
		return
	}
	if err != nil {
		cfg.Log.Error().Err(err).Str("analysis_id", id.String()).Msg("failed to load analysis")
		respondWithError(c, consts.StatusInternalServerError, "Failed to load analysis")
		return
	}
	c.JSON(consts.StatusOK, toAnalysisResponse(a))
}

func (cfg *ApiConfig) handleDeleteAnalysis(ctx context.Context, c *app.RequestContext) {
	uid, ok := cfg.requireUserStore(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondWithError(c, consts.StatusBadRequest, "Invalid analysis id")
		return
	}

	n, err := cfg.DB.DeleteAnalysis(ctx, database.DeleteAnalysisParams{ID: id, UserID: uid})
	if err != nil {
		cfg.Log.Error().Err(err).Str("analysis_id", id.String()).Msg("failed to delete analysis")
		respondWithError(c, consts.StatusInternalServerError, "Failed to delete analysis")
		return
	}
	if n == 0 {
		respondWithError(c, consts.StatusNotFound, "Analysis not found")
		return
	}
	c.Status(consts.StatusNoContent)
}

func (cfg *ApiConfig) handleUpload(ctx context.Context, c *app.RequestContext) {
	uid, ok := cfg.requireUserStore(c)
	if !ok {
		return
	}
	if cfg.Store == nil || cfg.Publisher == nil {
		respondWithError(c, consts.StatusServiceUnavailable, "Uploads are not configured")
		return
	}

	category, err := analysis.ParseCategory(c.PostForm("category"))
	if err != nil || category == analysis.CategoryJobDescription {
		respondWithError(c, consts.StatusBadRequest, "category must be match or resume")
		return
	}
	jd := strings.TrimSpace(c.PostForm("jd"))
	if category == analysis.CategoryMatch && jd == "" {
		respondWithError(c, consts.StatusBadRequest, "Job description is required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondWithError(c, consts.StatusBadRequest, "Resume file is required")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		respondWithError(c, consts.StatusRequestEntityTooLarge, "Resume file is too large")
		return
	}
	mime := detectMime(fileHeader.Header.Get("Content-Type"), fileHeader.Filename)
	if mime == "" {
		respondWithError(c, consts.StatusBadRequest, "Unsupported file type")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondWithError(c, consts.StatusBadRequest, "Failed to open file")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respondWithError(c, consts.StatusBadRequest, "Failed to read file")
		return
	}

	key := fmt.Sprintf("resumes/%s/%s%s", uid, uuid.New(), strings.ToLower(filepath.Ext(fileHeader.Filename)))
	if err := cfg.Store.Put(ctx, key, mime, data); err != nil {
		cfg.Log.Error().Err(err).Str("key", key).Msg("failed to store resume")
		respondWithError(c, consts.StatusInternalServerError, "Failed to store resume")
		return
	}

	req, err := cfg.DB.CreateAnalysisRequest(ctx, database.CreateAnalysisRequestParams{
		UserID:         uid,
		Category:       string(category),
		JobDescription: jd,
		ObjectKey:      key,
		Mime:           mime,
	})
	if err != nil {
		cfg.Log.Error().Err(err).Msg("failed to create analysis request")
		respondWithError(c, consts.StatusInternalServerError, "Failed to queue analysis")
		return
	}

	if err := cfg.Publisher.Enqueue(req.ID.String()); err != nil {
		cfg.Log.Error().Err(err).Str("request_id", req.ID.String()).Msg("failed to enqueue request")
		cfg.setStatus(ctx, req.ID, statusFailed, "analysis could not be queued", uuid.NullUUID{})
		respondWithError(c, consts.StatusInternalServerError, "Failed to queue analysis")
		return
	}

	c.JSON(consts.StatusAccepted, toUploadResponse(req))
}

func (cfg *ApiConfig) handleGetUpload(ctx context.Context, c *app.RequestContext) {
	uid, ok := cfg.requireUserStore(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondWithError(c, consts.StatusBadRequest, "Invalid upload id")
		return
	}

	req, err := cfg.DB.GetAnalysisRequest(ctx, id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && req.UserID != uid) {
		respondWithError(c, consts.StatusNotFound, "Upload not found")
		return
	}
	if err != nil {
		cfg.Log.Error().Err(err).Str("request_id", id.String()).Msg("failed to load upload")
		respondWithError(c, consts.StatusInternalServerError, "Failed to load upload")
		return
	}
	c.JSON(consts.StatusOK, toUploadResponse(req))
}

func handleHealth(_ context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{"status": "healthy", "api": "configured", "version": "2.0"})
}
