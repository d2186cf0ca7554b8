package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/VirajsNexus/HireVoid/internal/analysis"
	"github.com/VirajsNexus/HireVoid/internal/database"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/streadway/amqp"
)

// processRequest runs one queued upload through download, text extraction,
// the agent and the extractor, then stores the analysis.
// Network and DB steps are retried; the agent is retried once.
func (cfg *ApiConfig) processRequest(ctx context.Context, req database.AnalysisRequest) (uuid.UUID, error) {
	category, err := analysis.ParseCategory(req.Category)
	if err != nil {
		return uuid.Nil, err
	}

	fileBytes, err := retry(3, func() ([]byte, error) {
		return cfg.Store.Get(ctx, req.ObjectKey)
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("file download error: %w", err)
	}

	resumeText, err := ExtractResumeText(req.Mime, fileBytes)
	if err != nil {
		return uuid.Nil, fmt.Errorf("text extraction error: %w", err)
	}

	prompt, err := analysis.Prompt(category, analysis.Inputs{
		Resume:         resumeText,
		JobDescription: req.JobDescription,
	})
	if err != nil {
		return uuid.Nil, err
	}

	output, err := retry(2, func() (string, error) {
		return cfg.Agent.Run(ctx, req.UserID.String(), req.ID.String(), prompt)
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("agent error: %w", err)
	}

	result, err := cfg.Analyzer.Extract(category, output)
	if err != nil {
		return uuid.Nil, err
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	saved, err := retry(3, func() (database.Analysis, error) {
		return cfg.DB.CreateAnalysis(ctx, database.CreateAnalysisParams{
			UserID:   req.UserID,
			Category: string(category),
			Result:   resultJSON,
		})
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save analysis after retries: %w", err)
	}
	return saved.ID, nil
}

var (
	statusWriteTimeout = 10 * time.Second
	requeueWait        = 2 * time.Second
	reconnectWait      = 5 * time.Second

	errDeliveriesClosed = errors.New("delivery channel closed")
)

// setStatus records the request status and publishes it. The write is
// detached from ctx cancellation so a shutdown never leaves a row in
// processing.
func (cfg *ApiConfig) setStatus(ctx context.Context, requestID uuid.UUID, status, message string, analysisID uuid.NullUUID) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusWriteTimeout)
	defer cancel()

	err := cfg.DB.UpdateAnalysisRequestStatus(ctx, database.UpdateAnalysisRequestStatusParams{
		Status:     status,
		AnalysisID: analysisID,
		ID:         requestID,
	})
	if err != nil {
		cfg.Log.Error().Err(err).Str("request_id", requestID.String()).Str("status", status).Msg("failed to update request status")
	}

	update := statusUpdate(requestID.String(), status, message)
	if analysisID.Valid {
		update["analysis_id"] = analysisID.UUID
	}
	if err := cfg.Publisher.PublishUpdate(requestID.String(), update); err != nil {
		cfg.Log.Warn().Err(err).Str("request_id", requestID.String()).Msg("failed to publish update")
	}
}

// handleMessage processes one queue delivery body and reports whether the
// delivery should go back on the queue. Undecodable bodies and unknown
// requests are dropped; load errors and shutdown interruptions are requeued.
func (cfg *ApiConfig) handleMessage(ctx context.Context, workerID int, body []byte) (requeue bool) {
	msg := RequestMessage{}
	if err := json.Unmarshal(body, &msg); err != nil || msg.RequestID == uuid.Nil {
		cfg.Log.Error().Err(err).Bytes("body", body).Msg("invalid request message")
		return false
	}
	log := cfg.Log.With().Int("worker", workerID).Str("request_id", msg.RequestID.String()).Logger()

	if ctx.Err() != nil {
		log.Warn().Msg("shutting down, leaving request on the queue")
		return true
	}

	req, err := cfg.DB.GetAnalysisRequest(ctx, msg.RequestID)
	if errors.Is(err, sql.ErrNoRows) {
		log.Warn().Msg("request not found")
		return false
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to load request")
		return true
	}
	if req.Status == statusCompleted {
		log.Info().Msg("request already completed")
		return false
	}

	log.Info().Str("category", req.Category).Msg("processing request")
	cfg.setStatus(ctx, req.ID, statusProcessing, "analysis started", uuid.NullUUID{})

	analysisID, err := cfg.processRequest(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			log.Warn().Err(err).Msg("request interrupted by shutdown")
			cfg.setStatus(ctx, req.ID, statusQueued, "analysis interrupted, will retry", uuid.NullUUID{})
			return true
		}
		log.Error().Err(err).Msg("analysis failed")
		cfg.setStatus(ctx, req.ID, statusFailed, "analysis failed", uuid.NullUUID{})
		return false
	}

	log.Info().Str("analysis_id", analysisID.String()).Msg("request analyzed")
	cfg.setStatus(ctx, req.ID, statusCompleted, "analysis completed", uuid.NullUUID{UUID: analysisID, Valid: true})
	return false
}

// deliver handles one delivery and settles it with the broker.
func (cfg *ApiConfig) deliver(ctx context.Context, workerID int, msg amqp.Delivery) {
	if !cfg.handleMessage(ctx, workerID, msg.Body) {
		if err := msg.Ack(false); err != nil {
			cfg.Log.Warn().Err(err).Msg("failed to ack message")
		}
		return
	}

	if ctx.Err() == nil {
		select {
		case <-ctx.Done():
		case <-time.After(requeueWait):
		}
	}
	if err := msg.Nack(false, true); err != nil {
		cfg.Log.Warn().Err(err).Msg("failed to requeue message")
	}
}

// consume runs one broker session. It returns nil only when ctx is done.
func (cfg *ApiConfig) consume(ctx context.Context, id int) error {
	conn, err := amqp.Dial(cfg.RABBITMQUrl)
	if err != nil {
		return fmt.Errorf("error dialling rabbitmq: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("error opening rabbitmq channel: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		requestsQueue, // queue name
		true,          // durable (survives broker restarts)
		false,         // auto-delete when unused
		false,         // exclusive
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	msgs, err := ch.Consume(
		requestsQueue, // queue name
		"",            // consumer tag
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		return fmt.Errorf("error consuming rabbitmq messages: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errDeliveriesClosed
			}
			cfg.deliver(ctx, id, msg)
		}
	}
}

// worker keeps a consumer session alive until ctx is done, reconnecting
// after broker failures.
func worker(ctx context.Context, id int, cfg *ApiConfig, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		err := cfg.consume(ctx, id)
		if ctx.Err() != nil {
			return
		}
		cfg.Log.Error().Err(err).Int("worker", id).Dur("retry_in", reconnectWait).Msg("consumer stopped, reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectWait):
		}
	}
}

// StartConsumerWorkerPool blocks until every worker has returned.
func (cfg *ApiConfig) StartConsumerWorkerPool(ctx context.Context, numWorkers int) {
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for i := range numWorkers {
		cfg.Log.Info().Int("worker", i+1).Msg("worker started")
		go worker(ctx, i+1, cfg, &wg)
	}
	wg.Wait()
}
