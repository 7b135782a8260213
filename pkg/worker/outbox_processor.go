package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

const eventsChannel = "registration-events"

type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	Retention    time.Duration
}

// OutboxProcessor drains pending outbox events to the broker. Events are
// written in the same transaction as the state change they describe, so
// publishing them here is at-least-once and never loses a change.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}

	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.processEvents(ctx); err != nil {
				p.logger.Error(err, "failed to process outbox events")
			}
			p.cleanup(ctx)
		}
	}
}

func (p *OutboxProcessor) processEvents(ctx context.Context) error {
	var timer *prometheus.Timer
	if p.metrics != nil {
		timer = prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
		defer timer.ObserveDuration()
	}

	events, err := p.repo.GetPendingEvents(ctx, p.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending events: %w", err)
	}

	for _, evt := range events {
		msg := messaging.Message{
			Type:    evt.EventType,
			Payload: evt.Payload,
		}
		if err := p.broker.Publish(ctx, eventsChannel, msg); err != nil {
			errMsg := err.Error()
			if updateErr := p.repo.UpdateStatus(ctx, evt.ID, model.OutboxStatusFailed, &errMsg); updateErr != nil {
				p.logger.Error(updateErr, "failed to mark event failed", "event_id", evt.ID)
			}
			if p.metrics != nil {
				p.metrics.OutboxEventsFailed.Inc()
			}
			continue
		}

		if err := p.repo.UpdateStatus(ctx, evt.ID, model.OutboxStatusProcessed, nil); err != nil {
			p.logger.Error(err, "failed to mark event processed", "event_id", evt.ID)
			continue
		}
		if p.metrics != nil {
			p.metrics.OutboxEventsProcessed.Inc()
		}
	}

	return nil
}

func (p *OutboxProcessor) cleanup(ctx context.Context) {
	if p.config.Retention <= 0 {
		return
	}
	removed, err := p.repo.DeleteProcessedBefore(ctx, time.Now().Add(-p.config.Retention))
	if err != nil {
		p.logger.Error(err, "failed to prune processed events")
		return
	}
	if removed > 0 {
		p.logger.Debug("pruned processed outbox events", "count", removed)
	}
}
