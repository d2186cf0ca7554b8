package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/streadway/amqp"
)

const (
	mimeText = "text/plain"
	mimePDF  = "application/pdf"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	requestsQueue   = "analysis_requests"
	updatesExchange = "analysis_updates"
)

// retry retries a function up to `attempts` times with a linearly growing wait
func retry[T any](attempts int, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i < attempts-1 {
			time.Sleep(retryWait(i))
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

var retryWait = func(attempt int) time.Duration {
	return time.Duration(500*(attempt+1)) * time.Millisecond
}

// --- Object storage ---

type objectStore interface {
	Put(ctx context.Context, key, mime string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

type r2Store struct {
	client *s3.Client
	bucket string
}

func newR2Store(cfg aws.Config, r2 R2Config) *r2Store {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2.AccountID))
	})
	return &r2Store{client: client, bucket: r2.Bucket}
}

func (s *r2Store) Put(ctx context.Context, key, mime string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(mime),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

func (s *r2Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	_, err = io.Copy(buf, out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return buf.Bytes(), nil
}

// --- Resume text ---

// detectMime prefers the declared content type and falls back to the file
// extension. It returns "" for unsupported files.
func detectMime(declared, filename string) string {
	declared = strings.TrimSpace(strings.Split(declared, ";")[0])
	switch declared {
	case mimeText, mimePDF, mimeDocx:
		return declared
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return mimeText
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDocx
	}
	return ""
}

func ExtractResumeText(mime string, data []byte) (string, error) {
	switch mime {
	case mimeText:
		return string(data), nil

	case mimePDF:
		return extractPDFText(bytes.NewReader(data), int64(len(data)))

	case mimeDocx:
		return extractDocxText(data)

	default:
		return "", fmt.Errorf("unsupported file type: %s", mime)
	}
}

func extractPDFText(reader io.ReaderAt, size int64) (string, error) {
	pdfReader, err := pdf.NewReader(reader, size)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, _ := page.GetPlainText(nil)
		textBuilder.WriteString(text)
	}
	return textBuilder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return doc.Editable().GetContent(), nil
}

// --- Queue ---

type updatePublisher interface {
	Enqueue(requestID string) error
	PublishUpdate(requestID string, update map[string]any) error
}

type rabbitPublisher struct {
	conn *amqp.Connection
}

// newRabbitPublisher declares the request queue and the updates exchange.
func newRabbitPublisher(conn *amqp.Connection) (*rabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(requestsQueue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.ExchangeDeclare(updatesExchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return &rabbitPublisher{conn: conn}, nil
}

func (p *rabbitPublisher) publish(exchange, routingKey string, body any) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return ch.Publish(
		exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         data,
		},
	)
}

func (p *rabbitPublisher) Enqueue(requestID string) error {
	return p.publish("", requestsQueue, map[string]string{"request_id": requestID})
}

func (p *rabbitPublisher) PublishUpdate(requestID string, update map[string]any) error {
	return p.publish(updatesExchange, fmt.Sprintf("request.%s", requestID), update)
}

func statusUpdate(requestID, status, message string) map[string]any {
	return map[string]any{
		"request_id": requestID,
		"status":     status,
		"message":    message,
		"timestamp":  time.Now(),
	}
}
