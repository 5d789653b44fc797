package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/n0madsky/profile-api-assignment/internal/domain"
	"github.com/n0madsky/profile-api-assignment/internal/ports"
)

type OutboxRepository struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]ports.OutboxRecord
	order []uuid.UUID
}

func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{rows: map[uuid.UUID]ports.OutboxRecord{}}
}

func (r *OutboxRepository) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[event.EventID]; ok {
		return domain.ErrConflict
	}
	r.rows[event.EventID] = ports.OutboxRecord{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      append([]byte(nil), event.Payload...),
		FirstSeenAt:  event.OccurredAt,
	}
	r.order = append(r.order, event.EventID)
	return nil
}

// FetchUnpublished returns pending records in enqueue order.
func (r *OutboxRepository) FetchUnpublished(_ context.Context, limit int) ([]ports.OutboxRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	out := make([]ports.OutboxRecord, 0, limit)
	for _, id := range r.order {
		row := r.rows[id]
		if row.PublishedAt != nil {
			continue
		}
		out = append(out, row)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *OutboxRepository) MarkPublished(_ context.Context, outboxID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[outboxID]
	if !ok {
		return domain.ErrNotFound
	}
	row.PublishedAt = &at
	r.rows[outboxID] = row
	r.compactLocked()
	return nil
}

func (r *OutboxRepository) MarkFailed(_ context.Context, outboxID uuid.UUID, errMsg string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[outboxID]
	if !ok {
		return domain.ErrNotFound
	}
	row.RetryCount++
	row.LastError = &errMsg
	row.LastErrorAt = &at
	r.rows[outboxID] = row
	return nil
}

// compactLocked drops the published prefix so the queue does not grow
// without bound.
func (r *OutboxRepository) compactLocked() {
	n := 0
	for n < len(r.order) && r.rows[r.order[n]].PublishedAt != nil {
		delete(r.rows, r.order[n])
		n++
	}
	if n > 0 {
		r.order = append([]uuid.UUID(nil), r.order[n:]...)
	}
}

func (r *OutboxRepository) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, id := range r.order {
		if r.rows[id].PublishedAt == nil {
			n++
		}
	}
	return n
}
