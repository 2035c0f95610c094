// Package nats forwards reminder requests to a device agent over NATS
// JetStream. Each schedule or cancel becomes one JSON command on the
// HUDDLE_REMINDERS stream.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
	"github.com/xraph/huddle/notify"
	"github.com/xraph/huddle/signature"
)

var _ notify.Scheduler = (*Publisher)(nil)

const (
	// StreamName is the JetStream stream holding reminder commands.
	StreamName = "HUDDLE_REMINDERS"
	// SubjectPrefix is the root of every reminder subject.
	SubjectPrefix = "huddle.reminders"
)

// Command is the payload published for each scheduler call.
type Command struct {
	Action   notify.Op        `json:"action"`
	EventID  id.ID            `json:"event_id"`
	Reminder *notify.Reminder `json:"reminder,omitempty"`
	SentAt   time.Time        `json:"sent_at"`
}

// Config configures a Publisher.
type Config struct {
	// Lead is how long before the start the reminder should fire.
	Lead time.Duration
	// MaxAge bounds how long commands are retained (default 7 days).
	MaxAge time.Duration
	// PublishTimeout bounds a single publish (default 5s).
	PublishTimeout time.Duration
	// SigningSecret signs every command when set. Agents verify the
	// Huddle-Signature and Huddle-Timestamp headers.
	SigningSecret string
}

// Publisher implements notify.Scheduler on top of JetStream.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config Config
	logger *slog.Logger
}

// Connect dials url and ensures the reminder stream exists.
func Connect(ctx context.Context, url string, cfg Config, logger *slog.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url, nats.Name("huddle"))
	if err != nil {
		return nil, fmt.Errorf("huddle/nats: connect: %w", err)
	}
	p, err := New(ctx, nc, cfg, logger)
	if err != nil {
		nc.Close()
		return nil, err
	}
	return p, nil
}

// New wraps an existing connection and ensures the reminder stream exists.
func New(ctx context.Context, nc *nats.Conn, cfg Config, logger *slog.Logger) (*Publisher, error) {
	if cfg.SigningSecret != "" {
		if err := signature.ValidateSecret(cfg.SigningSecret); err != nil {
			return nil, fmt.Errorf("huddle/nats: %w", err)
		}
	}
	if cfg.Lead <= 0 {
		cfg.Lead = notify.DefaultLead
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 7 * 24 * time.Hour
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("huddle/nats: create jetstream: %w", err)
	}

	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(sctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectPrefix + ".>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    cfg.MaxAge,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		logger.Warn("failed to create reminder stream (may already exist)", "error", err)
	}

	return &Publisher{nc: nc, js: js, config: cfg, logger: logger}, nil
}

// Schedule publishes a schedule command addressed to the event owner.
func (p *Publisher) Schedule(ctx context.Context, evt *event.Event) error {
	r := notify.NewReminder(evt, p.config.Lead)
	return p.publish(ctx, ScheduleSubject(evt.OwnerID), Command{
		Action:   notify.OpSchedule,
		EventID:  evt.ID,
		Reminder: &r,
		SentAt:   time.Now().UTC(),
	})
}

// Cancel publishes a cancel command for evtID.
func (p *Publisher) Cancel(ctx context.Context, evtID id.ID) error {
	return p.publish(ctx, CancelSubject(evtID), Command{
		Action:  notify.OpCancel,
		EventID: evtID,
		SentAt:  time.Now().UTC(),
	})
}

// Ping reports whether the connection is up.
func (p *Publisher) Ping(context.Context) error {
	if !p.nc.IsConnected() {
		return fmt.Errorf("huddle/nats: not connected (%s)", p.nc.Status())
	}
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() error {
	return p.nc.Drain()
}

func (p *Publisher) publish(ctx context.Context, subject string, cmd Command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("huddle/nats: marshal command: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, p.config.PublishTimeout)
	defer cancel()
	if _, err := p.js.PublishMsg(pctx, message(subject, data, p.config.SigningSecret, cmd.SentAt)); err != nil {
		return fmt.Errorf("huddle/nats: publish %s: %w", subject, err)
	}
	p.logger.Debug("reminder command published", "subject", subject, "event_id", cmd.EventID)
	return nil
}

// message builds the outgoing message, signed when secret is set.
func message(subject string, data []byte, secret string, now time.Time) *nats.Msg {
	msg := nats.NewMsg(subject)
	msg.Data = data
	if secret != "" {
		for k, v := range signature.Headers(data, secret, now) {
			msg.Header.Set(k, v)
		}
	}
	return msg
}

// ScheduleSubject is the subject schedule commands for owner are sent on.
func ScheduleSubject(owner string) string {
	return SubjectPrefix + ".schedule." + token(owner)
}

// CancelSubject is the subject cancel commands for evtID are sent on.
func CancelSubject(evtID id.ID) string {
	return SubjectPrefix + ".cancel." + token(evtID.String())
}

// token makes s safe to use as a single subject token.
func token(s string) string {
	if s == "" {
		return "_"
	}
	return strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(s)
}
