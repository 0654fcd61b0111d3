package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/ogurasousui/recruitment-api/internal/core/posting"
	"github.com/ogurasousui/recruitment-api/internal/platform/config"
	"github.com/ogurasousui/recruitment-api/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/ogurasousui/recruitment-api/internal/adapters/messaging"

// ErrNotConnected は接続が確立されていない状態で配信しようとした場合に返却されます。
var ErrNotConnected = errors.New("messaging: publisher is not connected")

type conn interface {
	Publish(subject string, data []byte) error
}

// Publisher は求人イベントを NATS へ JSON で配信します。
type Publisher struct {
	conn   conn
	nc     *nats.Conn
	prefix string
	log    *logger.Logger
}

var _ posting.EventPublisher = (*Publisher)(nil)

// Connect は NATS へ接続し Publisher を生成します。
func Connect(cfg config.NATSConfig, log *logger.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name("recruitment-api"),
		nats.Timeout(cfg.ConnTimeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	p := newPublisher(nc, cfg.SubjectPrefix, log)
	p.nc = nc
	return p, nil
}

func newPublisher(c conn, prefix string, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{conn: c, prefix: prefix, log: log.With("component", "nats_publisher")}
}

// Subject はイベント種別に対応する配信先です (例: recruitment.posting.created)。
func (p *Publisher) Subject(t posting.EventType) string {
	if p.prefix == "" {
		return string(t)
	}
	return p.prefix + "." + string(t)
}

// Publish はイベントを配信します。
func (p *Publisher) Publish(ctx context.Context, event posting.Event) (err error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "nats.Publish")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if p == nil || p.conn == nil {
		return ErrNotConnected
	}
	subject := p.Subject(event.Type)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal posting event: %w", err)
	}

	span.SetAttributes(
		attribute.String("messaging.system", "nats"),
		attribute.String("messaging.destination.name", subject),
		attribute.Int("messaging.message.body.size", len(data)),
		attribute.String("posting.id", event.PostingID),
	)

	if err := p.conn.Publish(subject, data); err != nil {
		p.log.Error("failed to publish posting event", "subject", subject, "posting_id", event.PostingID, "error", err)
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	p.log.Debug("published posting event", "subject", subject, "posting_id", event.PostingID)
	return nil
}

// Close は未送信のメッセージを送り切ってから接続を閉じます。
func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.log.Warn("failed to drain nats connection", "error", err)
		p.nc.Close()
	}
}
