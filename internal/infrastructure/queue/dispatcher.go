package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/staffdesk/auth-service/internal/api/metrics"
	"github.com/staffdesk/auth-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
	sendTimeout    = 15 * time.Second
)

// Suppressor abstracts the duplicate-notification check (Redis).
type Suppressor interface {
	AlreadySent(ctx context.Context, to, subject, body string) (bool, error)
	Mark(ctx context.Context, to, subject, body string) error
}

// Dispatcher delivers notifications asynchronously through a fixed set of
// workers, sharding on the recipient so messages to the same address keep
// their order. Delivery is best-effort: failures are logged as warnings and
// never surface to the lifecycle operation that enqueued the message.
type Dispatcher struct {
	workers    []chan ports.Notification
	mailer     ports.Mailer
	suppressor Suppressor
	log        zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used. suppressor may be nil.
func NewDispatcher(numWorkers int, mailer ports.Mailer, suppressor Suppressor, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:    make([]chan ports.Notification, numWorkers),
		mailer:     mailer,
		suppressor: suppressor,
		log:        log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Notification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a notification to the worker responsible for its recipient.
// Non-blocking up to channelBuffer capacity; a full shard drops the message
// with a warning rather than stalling the lifecycle operation.
func (d *Dispatcher) Enqueue(n ports.Notification) {
	idx := d.shardIndex(n.To)
	select {
	case d.workers[idx] <- n:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		d.log.Warn().Str("to", n.To).Str("subject", n.Subject).Msg("notification queue full, message dropped")
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(to string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(to))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Notification) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
			d.deliver(ctx, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n ports.Notification) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if d.suppressor != nil {
		dup, err := d.suppressor.AlreadySent(sendCtx, n.To, n.Subject, n.Body)
		if err != nil {
			d.log.Warn().Err(err).Str("to", n.To).Msg("suppressor check failed, sending anyway")
		} else if dup {
			metrics.NotificationsTotal.WithLabelValues("suppressed").Inc()
			d.log.Debug().Str("to", n.To).Str("subject", n.Subject).Msg("duplicate notification suppressed")
			return
		}
	}

	if err := d.mailer.Send(sendCtx, n.To, n.Subject, n.Body, n.HTML); err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		d.log.Warn().Err(err).Str("to", n.To).Str("subject", n.Subject).Msg("notification send failed")
		return
	}

	if d.suppressor != nil {
		if err := d.suppressor.Mark(sendCtx, n.To, n.Subject, n.Body); err != nil {
			d.log.Warn().Err(err).Str("to", n.To).Msg("failed to set suppressor key")
		}
	}

	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	d.log.Info().Str("to", n.To).Str("subject", n.Subject).Msg("notification sent")
}
