// Package natspub mirrors ledger events onto a NATS subject per event type.
package natspub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/dojosmash/dojo-smash/internal/events"
	"github.com/dojosmash/dojo-smash/internal/model"
)

// DefaultSubjectPrefix is used when Config.SubjectPrefix is empty
const DefaultSubjectPrefix = "dojo.eventos"

// Config holds NATS connection settings
type Config struct {
	URL           string
	SubjectPrefix string
}

// conn is the part of *nats.Conn the publisher needs
type conn interface {
	Publish(subj string, data []byte) error
	Drain() error
}

// Publisher publishes each event as JSON on <prefix>.<type>
type Publisher struct {
	nc     conn
	prefix string
	logger *slog.Logger
}

var _ events.Publisher = (*Publisher)(nil)

// Connect dials NATS and returns a Publisher
func Connect(cfg Config, logger *slog.Logger) (*Publisher, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("dojo-smash"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return newPublisher(nc, cfg.SubjectPrefix, logger), nil
}

func newPublisher(nc conn, prefix string, logger *slog.Logger) *Publisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Publisher{
		nc:     nc,
		prefix: prefix,
		logger: logger.With(slog.String("component", "nats")),
	}
}

// Subject returns the subject an event type is published on
func (p *Publisher) Subject(t model.EventType) string {
	return p.prefix + "." + string(t)
}

// Publish sends the event. Failures are logged, never returned.
func (p *Publisher) Publish(_ context.Context, event model.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("nats failed to encode event",
			slog.String("type", string(event.Type)),
			slog.Any("error", err))
		return
	}
	if err := p.nc.Publish(p.Subject(event.Type), data); err != nil {
		p.logger.Warn("nats publish failed",
			slog.String("subject", p.Subject(event.Type)),
			slog.Any("error", err))
	}
}

// Close flushes pending messages and closes the connection
func (p *Publisher) Close() error {
	return p.nc.Drain()
}
