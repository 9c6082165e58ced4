package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"estately/db"
)

// Message statuses.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
)

// Enqueue inserts an outbox message inside the caller's transaction so
// the event only exists if the state change that produced it commits.
func Enqueue(ctx context.Context, q db.Querier, topic string, payload map[string]any, at time.Time) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("outbox: marshal payload: %w", err)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO outbox (id, topic, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), topic, body, StatusPending, at)
	if err != nil {
		return fmt.Errorf("outbox: enqueue %s: %w", topic, err)
	}
	return nil
}

// Sweeper periodically claims pending messages and marks them sent.
// Delivery here is the log stream; a broker can replace publish later
// without touching producers.
type Sweeper struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	batch  int
}

func NewSweeper(pool *pgxpool.Pool, logger *zap.Logger) *Sweeper {
	return &Sweeper{pool: pool, logger: logger, batch: 100}
}

// Run sweeps on the given interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				s.logger.Warn("outbox sweep failed", zap.Error(err))
			}
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("outbox: begin sweep: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id, topic, payload
		FROM outbox
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`, StatusPending, s.batch)
	if err != nil {
		return fmt.Errorf("outbox: select pending: %w", err)
	}

	type message struct {
		id      string
		topic   string
		payload []byte
	}
	var claimed []message
	for rows.Next() {
		var m message
		if err := rows.Scan(&m.id, &m.topic, &m.payload); err != nil {
			rows.Close()
			return fmt.Errorf("outbox: scan pending: %w", err)
		}
		claimed = append(claimed, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("outbox: iterate pending: %w", err)
	}
	if len(claimed) == 0 {
		return nil
	}

	for _, m := range claimed {
		s.logger.Info("outbox publish",
			zap.String("id", m.id),
			zap.String("topic", m.topic),
			zap.ByteString("payload", m.payload))
		if _, err := tx.Exec(ctx, `
			UPDATE outbox SET status = $1, sent_at = now() WHERE id = $2
		`, StatusSent, m.id); err != nil {
			return fmt.Errorf("outbox: mark sent: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("outbox: commit sweep: %w", err)
	}
	return nil
}
