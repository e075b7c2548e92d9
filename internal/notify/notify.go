// Package notify delivers promotion events to configured sinks.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelyard/modelyard/pkg/types"
)

// Sink is a promotion-event destination.
type Sink interface {
	Publish(ctx context.Context, event types.PromotionEvent) error
	Name() string
}

// Dispatcher routes promotion events to configured sinks. Delivery is
// best-effort: a sink failure is logged and never blocks a promotion.
type Dispatcher struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher from notification configs.
func NewDispatcher(configs []types.NotifyConfig, logger *slog.Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{logger: logger}
	for _, cfg := range configs {
		sink, err := newSink(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating %s sink: %w", cfg.Type, err)
		}
		d.sinks = append(d.sinks, sink)
	}
	return d, nil
}

// Dispatch sends a promotion event for rec to all configured sinks.
func (d *Dispatcher) Dispatch(ctx context.Context, rec types.ProductionRecord) {
	event := types.PromotionEvent{
		Event:      "promotion",
		Production: rec,
		OccurredAt: time.Now().UTC().Truncate(time.Second).Format(time.RFC3339),
	}
	for _, sink := range d.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			d.logger.Error("notification delivery failed",
				"sink", sink.Name(), "run_id", rec.RunID, "error", err)
		}
	}
}

// NotifyFunc returns a function suitable for use as the promoter's
// notification callback.
func (d *Dispatcher) NotifyFunc() func(context.Context, types.ProductionRecord) {
	return d.Dispatch
}

func newSink(cfg types.NotifyConfig) (Sink, error) {
	switch cfg.Type {
	case types.NotifyConsole:
		return NewConsoleSink(), nil
	case types.NotifyFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file path required")
		}
		return NewFileSink(cfg.Path)
	case types.NotifyWebhook:
		if cfg.URL == "" {
			return nil, fmt.Errorf("webhook URL required")
		}
		return NewWebhookSink(cfg.URL), nil
	case types.NotifySNS:
		return NewSNSSink(cfg.TopicARN)
	case types.NotifyS3:
		return NewS3Sink(cfg.Bucket, cfg.Prefix)
	case types.NotifyPubSub:
		return NewPubSubSink(cfg.ProjectID, cfg.TopicID)
	default:
		return nil, fmt.Errorf("unknown notification type %q", cfg.Type)
	}
}
