package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/logistics-kit/delivery-service/internal/domain"
)

// StatusHistoryRepository persists the trail of state-machine edges.
type StatusHistoryRepository interface {
	Create(ctx context.Context, entry *domain.StatusHistory) error
	ListByDelivery(ctx context.Context, deliveryID string, limit, offset int) ([]domain.StatusHistory, error)
}

type statusHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewStatusHistoryRepository instantiates repository.
func NewStatusHistoryRepository(pool *pgxpool.Pool) StatusHistoryRepository {
	return &statusHistoryRepository{pool: pool}
}

func (r *statusHistoryRepository) Create(ctx context.Context, entry *domain.StatusHistory) error {
	const query = `
        INSERT INTO delivery_status_history (delivery_id, old_status, new_status, changed_by)
        VALUES ($1,$2,$3,$4)
        RETURNING id, changed_at`
	return r.pool.QueryRow(ctx, query,
		entry.DeliveryID,
		entry.OldStatus,
		entry.NewStatus,
		entry.ChangedBy,
	).Scan(&entry.ID, &entry.ChangedAt)
}

func (r *statusHistoryRepository) ListByDelivery(ctx context.Context, deliveryID string, limit, offset int) ([]domain.StatusHistory, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, delivery_id, old_status, new_status, changed_by, changed_at
        FROM delivery_status_history
        WHERE delivery_id=$1
        ORDER BY changed_at DESC
        LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, deliveryID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusHistory
	for rows.Next() {
		var entry domain.StatusHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.DeliveryID,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.ChangedBy,
			&entry.ChangedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
