package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"restaurant-pos/internal/core/domain"
	"restaurant-pos/internal/core/ports"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory Order Repo ---

type inMemoryOrderRepo struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*domain.Order
}

func newInMemoryOrderRepo() *inMemoryOrderRepo {
	return &inMemoryOrderRepo{orders: make(map[uuid.UUID]*domain.Order)}
}

func (r *inMemoryOrderRepo) add(o *domain.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
}

func (r *inMemoryOrderRepo) snapshot(id uuid.UUID) domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *r.orders[id]
}

func (r *inMemoryOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *inMemoryOrderRepo) GetByPaymentReference(ctx context.Context, reference string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.PaymentReference == reference {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByPaymentReferenceForUpdate relies on the transactor's lock for row
// locking semantics.
func (r *inMemoryOrderRepo) GetByPaymentReferenceForUpdate(ctx context.Context, tx pgx.Tx, reference string) (*domain.Order, error) {
	return r.GetByPaymentReference(ctx, reference)
}

func (r *inMemoryOrderRepo) MarkAwaitingPayment(ctx context.Context, id uuid.UUID) error {
	return r.update(id, func(o *domain.Order) {
		if o.Status == domain.OrderStatusOpen {
			o.Status = domain.OrderStatusAwaitingPayment
		}
	})
}

func (r *inMemoryOrderRepo) MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID, paidAt time.Time) error {
	return r.update(id, func(o *domain.Order) {
		o.Status = domain.OrderStatusPaid
		o.PaidAt = &paidAt
	})
}

func (r *inMemoryOrderRepo) MarkCancelled(ctx context.Context, tx pgx.Tx, id uuid.UUID, cancelledAt time.Time) error {
	return r.update(id, func(o *domain.Order) {
		o.Status = domain.OrderStatusCancelled
		o.CancelledAt = &cancelledAt
	})
}

func (r *inMemoryOrderRepo) update(id uuid.UUID, fn func(o *domain.Order)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order not found")
	}
	fn(o)
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// --- In-Memory Payment Repo ---

type inMemoryPaymentRepo struct {
	mu       sync.RWMutex
	payments []domain.PaymentRecord
}

func newInMemoryPaymentRepo() *inMemoryPaymentRepo {
	return &inMemoryPaymentRepo{}
}

func (r *inMemoryPaymentRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.payments)
}

func (r *inMemoryPaymentRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.PaymentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.payments {
		if existing.OrderID == p.OrderID {
			return fmt.Errorf("duplicate payment for order %s", p.OrderID)
		}
	}
	r.payments = append(r.payments, *p)
	return nil
}

func (r *inMemoryPaymentRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.PaymentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.OrderID == orderID {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryPaymentRepo) List(ctx context.Context, params ports.PaymentListParams) ([]domain.PaymentRecord, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.PaymentRecord
	for _, p := range r.payments {
		if p.StoreID != params.StoreID {
			continue
		}
		if params.From != nil && p.PaidAt.Before(*params.From) {
			continue
		}
		if params.To != nil && p.PaidAt.After(*params.To) {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PaidAt.After(result[j].PaidAt) })
	total := int64(len(result))

	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.PaymentRecord{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *inMemoryPaymentRepo) GetStats(ctx context.Context, storeID uuid.UUID, since *time.Time) (*domain.PaymentStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &domain.PaymentStats{GrossVolume: decimal.Zero, FeeVolume: decimal.Zero, NetVolume: decimal.Zero}
	for _, p := range r.payments {
		if p.StoreID != storeID {
			continue
		}
		if since != nil && p.PaidAt.Before(*since) {
			continue
		}
		stats.TotalCount++
		stats.GrossVolume = stats.GrossVolume.Add(p.AmountGross)
		stats.FeeVolume = stats.FeeVolume.Add(p.AmountFee)
		stats.NetVolume = stats.NetVolume.Add(p.AmountNet)
	}
	return stats, nil
}

// --- In-Memory Notification Log Repo ---

type inMemoryNotificationLogRepo struct {
	mu   sync.RWMutex
	logs []domain.NotificationLog
}

func (r *inMemoryNotificationLogRepo) Create(ctx context.Context, log *domain.NotificationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *inMemoryNotificationLogRepo) all() []domain.NotificationLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.NotificationLog(nil), r.logs...)
}

// --- In-Memory Staff Repo ---

type inMemoryStaffRepo struct {
	mu    sync.RWMutex
	staff map[uuid.UUID]*domain.Staff
}

func newInMemoryStaffRepo() *inMemoryStaffRepo {
	return &inMemoryStaffRepo{staff: make(map[uuid.UUID]*domain.Staff)}
}

func (r *inMemoryStaffRepo) add(s *domain.Staff) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staff[s.ID] = s
}

func (r *inMemoryStaffRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Staff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.staff[id]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (r *inMemoryStaffRepo) GetByUsername(ctx context.Context, username string) (*domain.Staff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.staff {
		if s.Username == username {
			return s, nil
		}
	}
	return nil, nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.RWMutex
	entries []domain.AuditLog
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *log)
	return nil
}

func (r *inMemoryAuditRepo) actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, string(e.Action))
	}
	return out
}

// --- Recording Enqueuer ---

// recordingEnqueuer stands in for the asynq client. It rejects a repeated
// TaskID the way the real queue does.
type recordingEnqueuer struct {
	mu    sync.Mutex
	ids   map[string]struct{}
	tasks []*asynq.Task
}

func newRecordingEnqueuer() *recordingEnqueuer {
	return &recordingEnqueuer{ids: make(map[string]struct{})}
}

func (e *recordingEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var id string
	for _, opt := range opts {
		if opt.Type() == asynq.TaskIDOpt {
			id = opt.Value().(string)
		}
	}
	if id != "" {
		if _, dup := e.ids[id]; dup {
			return nil, asynq.ErrTaskIDConflict
		}
		e.ids[id] = struct{}{}
	}
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{ID: id, Type: task.Type()}, nil
}

func (e *recordingEnqueuer) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.tasks))
	for _, t := range e.tasks {
		out = append(out, t.Type())
	}
	return out
}

// --- Locking Transactor ---

// lockingTransactor serialises transactions with one mutex, which gives the
// same ordering a row lock on the order would.
type lockingTransactor struct {
	mu sync.Mutex
}

func (t *lockingTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &lockedTx{release: &sync.Once{}, unlock: t.mu.Unlock}, nil
}

// lockedTx holds the transactor lock until Commit or Rollback.
type lockedTx struct {
	release *sync.Once
	unlock  func()
}

func (t *lockedTx) done() { t.release.Do(t.unlock) }

func (t *lockedTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *lockedTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *lockedTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *lockedTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *lockedTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *lockedTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *lockedTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *lockedTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *lockedTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *lockedTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *lockedTx) Conn() *pgx.Conn { return nil }
