package queue

import (
	"context"
	"errors"
	"time"

	"restaurant-pos/internal/core/domain"
	"restaurant-pos/pkg/apperror"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const taskTimeout = 2 * time.Minute

// Enqueuer is the subset of *asynq.Client the dispatcher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher implements ports.EffectDispatcher on top of asynq. Each effect
// is enqueued independently; a failure is logged and the rest still run.
type Dispatcher struct {
	client   Enqueuer
	queue    string
	maxRetry int
	effects  *prometheus.CounterVec
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher. reg may be nil to skip metrics.
func NewDispatcher(client Enqueuer, queue string, maxRetry int, reg prometheus.Registerer, log zerolog.Logger) *Dispatcher {
	d := &Dispatcher{
		client:   client,
		queue:    queue,
		maxRetry: maxRetry,
		log:      log,
	}
	if reg != nil {
		d.effects = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Subsystem: "payfast",
			Name:      "effects_total",
			Help:      "Post-payment effect dispatches by effect and result.",
		}, []string{"effect", "result"})
		reg.MustRegister(d.effects)
	}
	return d
}

// PaymentCompleted enqueues receipt, inventory, kitchen and analytics tasks.
func (d *Dispatcher) PaymentCompleted(ctx context.Context, event domain.PaymentEvent) {
	for _, taskType := range PaymentEffects {
		result := "enqueued"
		if err := d.enqueue(ctx, taskType, event); err != nil {
			result = "failed"
			d.log.Error().
				Err(apperror.ErrDownstreamEffectFailed(taskType, err)).
				Str("effect", taskType).
				Str("order_id", event.OrderID.String()).
				Msg("post-payment effect not scheduled")
		}
		if d.effects != nil {
			d.effects.WithLabelValues(taskType, result).Inc()
		}
	}
}

func (d *Dispatcher) enqueue(ctx context.Context, taskType string, event domain.PaymentEvent) error {
	task, err := NewPaymentTask(taskType, event)
	if err != nil {
		return err
	}

	info, err := d.client.EnqueueContext(ctx, task,
		asynq.Queue(d.queue),
		asynq.MaxRetry(d.maxRetry),
		asynq.Timeout(taskTimeout),
		asynq.TaskID(TaskID(taskType, event)),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		d.log.Debug().Str("effect", taskType).Str("order_id", event.OrderID.String()).Msg("effect already scheduled")
		return nil
	}
	if err != nil {
		return err
	}

	d.log.Debug().Str("effect", taskType).Str("task_id", info.ID).Msg("effect scheduled")
	return nil
}
