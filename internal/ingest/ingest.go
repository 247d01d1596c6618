// Package ingest turns free-text health entries into categorised pending logs.
package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/life-tracker/internal/apperr"
	"github.com/benvon/life-tracker/internal/database"
	"github.com/benvon/life-tracker/internal/logger"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/benvon/life-tracker/internal/nutrition"
	"github.com/benvon/life-tracker/internal/services/ai"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TxRunner runs a function inside a database transaction
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// Request is one free-text submission
type Request struct {
	Text string
	Date time.Time
	// Now is the wall-clock fallback for logged_at; zero means time.Now()
	Now time.Time
}

// segment is a run of adjacent clauses sharing a category
type segment struct {
	category models.Category
	text     string
}

// Ingestor classifies, parses and stores pending entries
type Ingestor struct {
	provider  ai.Provider
	estimator *nutrition.Estimator
	db        TxRunner
	pending   *database.PendingLogRepository
	logger    *zap.Logger
}

// NewIngestor creates an ingestor
func NewIngestor(provider ai.Provider, estimator *nutrition.Estimator, db TxRunner, pending *database.PendingLogRepository, log *zap.Logger) *Ingestor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingestor{
		provider:  provider,
		estimator: estimator,
		db:        db,
		pending:   pending,
		logger:    log,
	}
}

// Ingest classifies req.Text, splitting it into one entry per distinct category run,
// parses each entry's details and stores all of them in one transaction.
// Classification failures reject the whole request; detail parse failures keep the
// entry with a nil payload.
func (i *Ingestor) Ingest(ctx context.Context, req Request) ([]*models.PendingLog, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperr.Validation("input is required")
	}
	if req.Date.IsZero() {
		return nil, apperr.Validation("date is required")
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	segments, err := i.classify(ctx, text)
	if err != nil {
		return nil, err
	}

	wholeTextTime, hasWholeTextTime := ParseClockTime(text, req.Date)
	logs := make([]*models.PendingLog, 0, len(segments))
	for _, seg := range segments {
		loggedAt, ok := ParseClockTime(seg.text, req.Date)
		switch {
		case ok:
		case hasWholeTextTime:
			loggedAt = wholeTextTime
		default:
			loggedAt = now
		}

		logs = append(logs, &models.PendingLog{
			ID:       uuid.New(),
			Date:     req.Date,
			Category: seg.category,
			RawInput: seg.text,
			Payload:  i.parse(ctx, seg),
			LoggedAt: loggedAt,
		})
	}

	err = i.db.WithTx(ctx, func(tx *sql.Tx) error {
		repo := i.pending.WithTx(tx)
		for _, log := range logs {
			if err := repo.Create(ctx, log); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		i.logger.Error("pending_entry_store_failed", zap.Error(err))
		return nil, fmt.Errorf("store pending entries: %w", err)
	}

	for _, log := range logs {
		i.logger.Info("pending_entry_ingested",
			zap.String("pending_id", log.ID.String()),
			zap.String("date", models.FormatDate(log.Date)),
			zap.String("category", string(log.Category)),
			zap.Bool("parsed", log.Payload != nil),
		)
	}
	return logs, nil
}

// classify assigns a category to every clause and merges adjacent clauses of the same category
func (i *Ingestor) classify(ctx context.Context, text string) ([]segment, error) {
	clauses := SplitClauses(text)
	if len(clauses) <= 1 {
		clauses = []string{text}
	}

	var segments []segment
	for _, clause := range clauses {
		category, err := i.classifyClause(ctx, clause)
		if err != nil {
			return nil, err
		}
		if n := len(segments); n > 0 && segments[n-1].category == category {
			segments[n-1].text = joinClauses(text, segments[n-1].text, clause)
			continue
		}
		segments = append(segments, segment{category: category, text: clause})
	}
	return segments, nil
}

func (i *Ingestor) classifyClause(ctx context.Context, clause string) (models.Category, error) {
	resp, err := i.provider.Complete(ctx, ai.ClassifyRequest(clause))
	if err != nil {
		i.logger.Warn("pending_entry_classify_failed",
			zap.String("input_preview", logger.PreviewInput(clause)),
			zap.Error(err),
		)
		return "", apperr.External("AI categorization failed", err)
	}
	category, ok := ai.NormalizeCategory(resp)
	if !ok {
		i.logger.Warn("pending_entry_invalid_category",
			zap.String("input_preview", logger.PreviewInput(clause)),
			zap.String("category", logger.SanitizeString(resp, logger.MaxInputPreviewLength)),
		)
		return "", apperr.External(fmt.Sprintf("AI returned invalid category %q", category), nil)
	}
	return category, nil
}

// parse extracts structured details for seg. Any failure yields nil so the entry can be corrected later.
func (i *Ingestor) parse(ctx context.Context, seg segment) models.Payload {
	req, err := ai.ParseRequest(seg.category, seg.text)
	if err != nil {
		i.logger.Warn("pending_entry_parse_failed", zap.String("category", string(seg.category)), zap.Error(err))
		return nil
	}

	payload, err := i.completePayload(ctx, seg.category, req)
	if err != nil {
		i.logger.Warn("pending_entry_parse_failed",
			zap.String("category", string(seg.category)),
			zap.String("input_preview", logger.PreviewInput(seg.text)),
			zap.Error(err),
		)
		return nil
	}

	if food, ok := payload.(models.FoodPayload); ok && i.estimator != nil {
		i.estimator.EstimatePayload(&food)
		payload = food
	}
	return payload
}

func (i *Ingestor) completePayload(ctx context.Context, category models.Category, req ai.CompletionRequest) (models.Payload, error) {
	resp, err := i.provider.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	raw, err := ai.ExtractJSON(resp)
	if err != nil {
		return nil, err
	}
	payload, err := models.DecodePayload(category, []byte(raw))
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.New("parser returned an empty document")
	}
	return payload, nil
}

// joinClauses returns the span of text from the start of first to the end of next,
// keeping the original separators. It falls back to "first and next" when the span is not found.
func joinClauses(text, first, next string) string {
	start := strings.Index(text, first)
	if start != -1 {
		if rel := strings.Index(text[start+len(first):], next); rel != -1 {
			return text[start : start+len(first)+rel+len(next)]
		}
	}
	return first + " and " + next
}
