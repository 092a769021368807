// Package service runs the asynchronous notification worker.
package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/faktur/internal/notification/domain"
	obsmetrics "github.com/smallbiznis/faktur/internal/observability/metrics"
	"github.com/smallbiznis/faktur/internal/providers/email"
)

const (
	defaultQueueSize = 64
	sendTimeout      = 15 * time.Second
)

type Params struct {
	fx.In

	LC       fx.Lifecycle
	Log      *zap.Logger
	Provider email.Provider
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

// Dispatcher buffers messages on a channel and delivers them from a
// single worker goroutine. A full queue rejects instead of blocking the
// request path.
type Dispatcher struct {
	log      *zap.Logger
	provider email.Provider
	metrics  *obsmetrics.Metrics
	queue    chan domain.Message
	done     chan struct{}
}

func New(p Params) domain.Dispatcher {
	d := newDispatcher(p.Log, p.Provider, p.Metrics, defaultQueueSize)

	p.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go d.run()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return d.stop(ctx)
		},
	})
	return d
}

func newDispatcher(log *zap.Logger, provider email.Provider, metrics *obsmetrics.Metrics, queueSize int) *Dispatcher {
	return &Dispatcher{
		log:      log.Named("notification.dispatcher"),
		provider: provider,
		metrics:  metrics,
		queue:    make(chan domain.Message, queueSize),
		done:     make(chan struct{}),
	}
}

// Dispatch enqueues a message. It never waits on delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, msg domain.Message) error {
	if !strings.Contains(msg.To, "@") {
		return domain.ErrInvalidRecipient
	}
	if msg.Template != domain.TemplateInvoiceNew && msg.Template != domain.TemplateInvoiceReminder {
		return domain.ErrUnknownTemplate
	}

	select {
	case d.queue <- msg:
		d.metrics.RecordEmailQueued(ctx, string(msg.Template))
		return nil
	default:
		d.log.Warn("notification queue full, dropping message",
			zap.String("template", string(msg.Template)),
		)
		return domain.ErrQueueFull
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for msg := range d.queue {
		d.deliver(msg)
	}
}

// stop closes the queue and drains what is already buffered, bounded by
// the shutdown context.
func (d *Dispatcher) stop(ctx context.Context) error {
	close(d.queue)
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) deliver(msg domain.Message) {
	subject, body, err := render(msg)
	if err != nil {
		d.log.Error("render notification failed",
			zap.String("template", string(msg.Template)),
			zap.Error(err),
		)
		d.metrics.RecordEmailFailed(context.Background(), string(msg.Template))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.provider.Send(ctx, []string{msg.To}, subject, body); err != nil {
		// fire and forget: a failed delivery is logged, never retried
		d.log.Error("send notification failed",
			zap.String("template", string(msg.Template)),
			zap.String("to", msg.To),
			zap.Error(err),
		)
		d.metrics.RecordEmailFailed(context.Background(), string(msg.Template))
		return
	}

	d.log.Info("notification delivered",
		zap.String("template", string(msg.Template)),
		zap.String("to", msg.To),
	)
}
