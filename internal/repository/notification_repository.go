package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BerkantGC/hotel-booking-api/internal/domain"
)

// NotificationRepository exposes the read-only backlog query.
type NotificationRepository interface {
	ListPendingForSubject(ctx context.Context, subjectID int64) ([]domain.Notification, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository returns a Postgres-backed implementation.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) ListPendingForSubject(ctx context.Context, subjectID int64) ([]domain.Notification, error) {
	const query = `
        SELECT id, message, type, user_id, seen, created_at
        FROM notifications
        WHERE user_id=$1 AND seen=FALSE
        ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.Message,
			&n.Type,
			&n.UserID,
			&n.Seen,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
