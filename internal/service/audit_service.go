package service

import (
	"context"
	"sync"
	"time"

	"restaurant-pos/internal/core/domain"
	"restaurant-pos/internal/core/ports"

	"github.com/rs/zerolog"
)

const (
	auditQueueSize    = 256
	auditWriteTimeout = 3 * time.Second
)

// AuditService writes audit entries from a single background goroutine so a
// slow database never holds up a till. When the queue is full the entry is
// logged and dropped.
type AuditService struct {
	repo    ports.AuditRepository
	log     zerolog.Logger
	entries chan *domain.AuditLog
	done    chan struct{}
	once    sync.Once
}

// NewAuditService starts the writer. A nil repo keeps the trail in the log only.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) *AuditService {
	s := &AuditService{
		repo:    repo,
		log:     log.With().Str("component", "audit").Logger(),
		entries: make(chan *domain.AuditLog, auditQueueSize),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Log queues entry. It never blocks.
func (s *AuditService) Log(_ context.Context, entry *domain.AuditLog) {
	select {
	case s.entries <- entry:
	default:
		s.log.Warn().
			Str("action", string(entry.Action)).
			Str("resource_id", entry.ResourceID).
			Msg("audit queue full, entry dropped")
	}
}

// Close waits until the queued entries are written or ctx expires. Log must
// not be called after Close.
func (s *AuditService) Close(ctx context.Context) error {
	s.once.Do(func() { close(s.entries) })
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AuditService) run() {
	defer close(s.done)
	for entry := range s.entries {
		s.write(entry)
	}
}

func (s *AuditService) write(entry *domain.AuditLog) {
	ev := s.log.Info().
		Str("action", string(entry.Action)).
		Str("resource_type", entry.ResourceType).
		Str("resource_id", entry.ResourceID).
		Str("ip", entry.IPAddress)
	if entry.StoreID != nil {
		ev = ev.Str("store_id", entry.StoreID.String())
	}
	if entry.StaffID != nil {
		ev = ev.Str("staff_id", entry.StaffID.String())
	}
	ev.Msg("audit")

	if s.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	defer cancel()
	if err := s.repo.Create(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("action", string(entry.Action)).Msg("failed to persist audit log")
	}
}
