package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"onboard/internal/verification/models"
	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
)

// PostgresQueue persists the verification queue so pending reviews
// survive restarts and multiple instances can dequeue safely. Arrival
// order within a tier comes from a bigserial, not timestamps, so equal
// timestamps cannot reorder a tier.
type PostgresQueue struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresQueue {
	return &PostgresQueue{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS verification_queue (
	seq           BIGSERIAL PRIMARY KEY,
	id            UUID        NOT NULL UNIQUE,
	producer_id   UUID        NOT NULL,
	session_id    UUID        NOT NULL,
	risk_score    DOUBLE PRECISION NOT NULL,
	priority      TEXT        NOT NULL,
	rank          INT         NOT NULL,
	type          TEXT        NOT NULL,
	data_snapshot JSONB,
	enqueued_at   TIMESTAMPTZ NOT NULL,
	scheduled_time TIMESTAMPTZ NOT NULL,
	serviced      BOOLEAN     NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS verification_queue_order_idx
	ON verification_queue (rank, seq) WHERE NOT serviced;
`

// EnsureSchema creates the queue table if missing.
func (q *PostgresQueue) EnsureSchema(ctx context.Context) error {
	if _, err := q.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure verification_queue schema: %w", err)
	}
	return nil
}

func (q *PostgresQueue) Push(ctx context.Context, req *models.VerificationRequest) (Placement, error) {
	tx, err := q.pool.Begin(ctx)
	if err != nil {
		return Placement{}, fmt.Errorf("begin push: %w", err)
	}
	defer tx.Rollback(ctx)

	var seq int64
	err = tx.QueryRow(ctx, `
		INSERT INTO verification_queue
			(id, producer_id, session_id, risk_score, priority, rank, type, data_snapshot, enqueued_at, scheduled_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq`,
		req.ID.String(), req.ProducerID.String(), req.SessionID.String(),
		req.RiskScore, string(req.Priority), req.Priority.Rank(), string(req.Type),
		req.DataSnapshot, req.EnqueuedAt, req.ScheduledTime,
	).Scan(&seq)
	if err != nil {
		return Placement{}, fmt.Errorf("insert verification request: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT priority, COUNT(*)
		FROM verification_queue
		WHERE NOT serviced AND rank <= $1 AND seq < $2
		GROUP BY priority`,
		req.Priority.Rank(), seq)
	if err != nil {
		return Placement{}, fmt.Errorf("count queue ahead: %w", err)
	}
	placement := Placement{Position: 1}
	for rows.Next() {
		var priority string
		var count int
		if err := rows.Scan(&priority, &count); err != nil {
			rows.Close()
			return Placement{}, fmt.Errorf("scan queue depth: %w", err)
		}
		placement.Position += count
		placement.Backlog += models.Priority(priority).AverageServiceTime() * time.Duration(count)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Placement{}, fmt.Errorf("iterate queue depth: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Placement{}, fmt.Errorf("commit push: %w", err)
	}
	return placement, nil
}

// Pop claims the head of the queue. SKIP LOCKED lets concurrent
// dequeuers each claim a distinct request.
func (q *PostgresQueue) Pop(ctx context.Context) (*models.VerificationRequest, error) {
	tx, err := q.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin pop: %w", err)
	}
	defer tx.Rollback(ctx)

	req, err := scanRequest(tx.QueryRow(ctx, `
		SELECT id, producer_id, session_id, risk_score, priority, type, data_snapshot, enqueued_at, scheduled_time
		FROM verification_queue
		WHERE NOT serviced
		ORDER BY rank, seq
		LIMIT 1
		FOR UPDATE SKIP LOCKED`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select queue head: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE verification_queue SET serviced = TRUE WHERE id = $1`, req.ID.String()); err != nil {
		return nil, fmt.Errorf("mark serviced: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit pop: %w", err)
	}
	return req, nil
}

// Remove deletes a still-waiting request. A request already claimed by
// Pop stays serviced and is not removable.
func (q *PostgresQueue) Remove(ctx context.Context, verificationID id.VerificationID) error {
	tag, err := q.pool.Exec(ctx,
		`DELETE FROM verification_queue WHERE id = $1 AND NOT serviced`, verificationID.String())
	if err != nil {
		return fmt.Errorf("remove verification request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (q *PostgresQueue) List(ctx context.Context) ([]*models.VerificationRequest, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT id, producer_id, session_id, risk_score, priority, type, data_snapshot, enqueued_at, scheduled_time
		FROM verification_queue
		WHERE NOT serviced
		ORDER BY rank, seq`)
	if err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}
	defer rows.Close()

	var out []*models.VerificationRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan queue row: %w", err)
		}
		req.QueuePosition = len(out) + 1
		out = append(out, req)
	}
	return out, rows.Err()
}

func (q *PostgresQueue) DepthByPriority(ctx context.Context) (map[models.Priority]int, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT priority, COUNT(*)
		FROM verification_queue
		WHERE NOT serviced
		GROUP BY priority`)
	if err != nil {
		return nil, fmt.Errorf("queue depth: %w", err)
	}
	defer rows.Close()

	depth := make(map[models.Priority]int)
	for rows.Next() {
		var priority string
		var count int
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, fmt.Errorf("scan queue depth: %w", err)
		}
		depth[models.Priority(priority)] = count
	}
	return depth, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.VerificationRequest, error) {
	var (
		req                          models.VerificationRequest
		reqID, producerID, sessionID string
		priority, verificationType   string
	)
	err := row.Scan(&reqID, &producerID, &sessionID, &req.RiskScore,
		&priority, &verificationType, &req.DataSnapshot, &req.EnqueuedAt, &req.ScheduledTime)
	if err != nil {
		return nil, err
	}
	vid, err := id.ParseVerificationID(reqID)
	if err != nil {
		return nil, err
	}
	pid, err := id.ParseProducerID(producerID)
	if err != nil {
		return nil, err
	}
	sid, err := id.ParseSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	req.ID = vid
	req.ProducerID = pid
	req.SessionID = sid
	req.Priority = models.Priority(priority)
	req.Type = models.VerificationType(verificationType)
	return &req, nil
}
