package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ntroshin/orderflow/internal/domain/model"
)

const taskColumns = `id, event_id, kind, order_id, status, attempts, next_attempt_at, last_error, created_at`

const insertTask = `INSERT INTO tasks (event_id, kind, order_id) VALUES ($1,$2,$3)
                    RETURNING ` + taskColumns

func enqueueTaskTx(ctx context.Context, tx pgx.Tx, kind model.TaskKind, orderID int64) error {
	_, err := tx.Exec(ctx, `INSERT INTO tasks (event_id, kind, order_id) VALUES ($1,$2,$3)`,
		uuid.NewString(), kind, orderID)
	return err
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.EventID, &t.Kind, &t.OrderID, &t.Status, &t.Attempts, &t.NextAttemptAt, &t.LastError, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *taskRepository) Enqueue(ctx context.Context, kind model.TaskKind, orderID int64) (*model.Task, error) {
	return scanTask(r.storage.pool.QueryRow(ctx, insertTask, uuid.NewString(), kind, orderID))
}

// ClaimDue picks due pending tasks and leases them by pushing their next
// attempt into the future, doubling the lease per prior attempt. SKIP
// LOCKED keeps concurrent pollers off the claimed rows; the future
// next_attempt_at keeps later polls off them until the lease elapses.
func (r *taskRepository) ClaimDue(ctx context.Context, limit int, lease time.Duration) ([]model.Task, error) {
	const selectQuery = `SELECT ` + taskColumns + ` FROM tasks
                         WHERE status='pending' AND next_attempt_at <= NOW()
                         ORDER BY next_attempt_at
                         LIMIT $1
                         FOR UPDATE SKIP LOCKED`

	var tasks []model.Task
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			task, err := scanTask(rows)
			if err != nil {
				return err
			}
			tasks = append(tasks, *task)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		const claim = `UPDATE tasks
                       SET attempts = attempts + 1,
                           next_attempt_at = NOW() + make_interval(secs => $1)
                       WHERE id = $2`
		for i := range tasks {
			backoff := backoffFor(lease, tasks[i].Attempts)
			if _, err := tx.Exec(ctx, claim, backoff.Seconds(), tasks[i].ID); err != nil {
				return err
			}
			tasks[i].Attempts++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// backoffFor grows exponentially with prior attempts, capped at one hour.
func backoffFor(base time.Duration, attempts int) time.Duration {
	const maxBackoff = time.Hour
	if attempts > 10 {
		attempts = 10
	}
	backoff := base << attempts
	if backoff > maxBackoff || backoff <= 0 {
		return maxBackoff
	}
	return backoff
}

func (r *taskRepository) MarkDone(ctx context.Context, taskID int64) error {
	_, err := r.storage.pool.Exec(ctx, `UPDATE tasks SET status='done', done_at=NOW() WHERE id=$1`, taskID)
	return err
}

func (r *taskRepository) RecordError(ctx context.Context, taskID int64, taskErr string) error {
	_, err := r.storage.pool.Exec(ctx, `UPDATE tasks SET last_error=$1 WHERE id=$2`, taskErr, taskID)
	return err
}

func (r *taskRepository) MarkFailed(ctx context.Context, taskID int64, taskErr string) error {
	_, err := r.storage.pool.Exec(ctx, `UPDATE tasks SET status='failed', last_error=$1 WHERE id=$2`, taskErr, taskID)
	return err
}
