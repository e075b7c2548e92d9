package notify

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"github.com/modelyard/modelyard/pkg/types"
)

// ConsoleSink writes promotion events to the terminal with color.
type ConsoleSink struct{}

// NewConsoleSink creates a new console notification sink.
func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{}
}

// Name returns the sink identifier.
func (s *ConsoleSink) Name() string { return "console" }

// Publish writes the promotion to the terminal.
func (s *ConsoleSink) Publish(_ context.Context, event types.PromotionEvent) error {
	prefix := color.GreenString("[PROMOTED]")
	rec := event.Production
	fmt.Printf("%s %s model by %s (run %s, %d rows)\n",
		prefix, rec.ModelType, rec.Trainer, rec.RunID, rec.NRows)
	return nil
}
