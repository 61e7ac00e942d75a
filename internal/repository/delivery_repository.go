package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/logistics-kit/delivery-service/internal/domain"
)

// ErrVersionConflict reports a compare-and-swap update that lost a race:
// the record exists but its version moved past the expected one.
var ErrVersionConflict = errors.New("delivery version conflict")

// DeliveryFilter captures listing parameters.
type DeliveryFilter struct {
	OwnerID    *string
	DriverID   *string
	Statuses   []domain.DeliveryStatus
	Unassigned bool
	Limit      int
	Offset     int
}

// DeliveryChange describes the fields one atomic update may touch. Nil
// fields are left untouched, so concurrent updates to disjoint fields never
// lose each other's writes.
type DeliveryChange struct {
	Status     *domain.DeliveryStatus
	DriverID   *string
	ActualKm   *float64
	ActualCost *float64
}

// DeliveryRepository encapsulates delivery persistence. UpdateDelivery is the
// only mutation path after creation and is versioned: the write applies in a
// single statement guarded by the expected version, or not at all.
type DeliveryRepository interface {
	Create(ctx context.Context, delivery *domain.Delivery) error
	GetByID(ctx context.Context, id string) (*domain.Delivery, error)
	ListWithFilter(ctx context.Context, filter DeliveryFilter) ([]domain.Delivery, error)
	UpdateDelivery(ctx context.Context, id string, expectedVersion int64, change DeliveryChange) (*domain.Delivery, error)
}

type deliveryRepository struct {
	pool *pgxpool.Pool
}

// NewDeliveryRepository instantiates repository.
func NewDeliveryRepository(pool *pgxpool.Pool) DeliveryRepository {
	return &deliveryRepository{pool: pool}
}

const deliveryColumns = `id, owner_user_id, driver_user_id, customer_name, customer_phone,
               pickup_address, drop_address, weight, priority, notes, status,
               estimated_cost, actual_km, actual_cost, version, created_at, updated_at`

func (r *deliveryRepository) Create(ctx context.Context, delivery *domain.Delivery) error {
	const query = `
        INSERT INTO deliveries (owner_user_id, customer_name, customer_phone, pickup_address,
            drop_address, weight, priority, notes, status, estimated_cost)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, version, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		delivery.OwnerID,
		delivery.CustomerName,
		delivery.CustomerPhone,
		delivery.PickupAddress,
		delivery.DropAddress,
		delivery.Weight,
		delivery.Priority,
		delivery.Notes,
		delivery.Status,
		delivery.EstimatedCost,
	).Scan(&delivery.ID, &delivery.Version, &delivery.CreatedAt, &delivery.UpdatedAt)
}

func (r *deliveryRepository) GetByID(ctx context.Context, id string) (*domain.Delivery, error) {
	query := fmt.Sprintf(`SELECT %s FROM deliveries WHERE id=$1`, deliveryColumns)
	var delivery domain.Delivery
	if err := scanDelivery(r.pool.QueryRow(ctx, query, id), &delivery); err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *deliveryRepository) ListWithFilter(ctx context.Context, filter DeliveryFilter) ([]domain.Delivery, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_user_id=$%d", len(args)))
	}
	if filter.DriverID != nil {
		args = append(args, *filter.DriverID)
		clauses = append(clauses, fmt.Sprintf("driver_user_id=$%d", len(args)))
	}
	if filter.Unassigned {
		clauses = append(clauses, "driver_user_id IS NULL")
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM deliveries WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		deliveryColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDeliveries(rows)
}

// UpdateDelivery applies the change in one conditional statement. Zero rows
// affected means either the record is gone (pgx.ErrNoRows) or another writer
// won the race (ErrVersionConflict); which one is decided by a follow-up
// existence probe.
func (r *deliveryRepository) UpdateDelivery(ctx context.Context, id string, expectedVersion int64, change DeliveryChange) (*domain.Delivery, error) {
	sets := []string{"version = version + 1", "updated_at = NOW()"}
	args := []any{}

	if change.Status != nil {
		args = append(args, *change.Status)
		sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	}
	if change.DriverID != nil {
		args = append(args, *change.DriverID)
		sets = append(sets, fmt.Sprintf("driver_user_id=$%d", len(args)))
	}
	if change.ActualKm != nil {
		args = append(args, *change.ActualKm)
		sets = append(sets, fmt.Sprintf("actual_km=$%d", len(args)))
	}
	if change.ActualCost != nil {
		args = append(args, *change.ActualCost)
		sets = append(sets, fmt.Sprintf("actual_cost=$%d", len(args)))
	}

	args = append(args, id)
	idPos := len(args)
	args = append(args, expectedVersion)
	versionPos := len(args)

	query := fmt.Sprintf(`UPDATE deliveries SET %s WHERE id=$%d AND version=$%d RETURNING %s`,
		strings.Join(sets, ", "), idPos, versionPos, deliveryColumns)

	var delivery domain.Delivery
	err := scanDelivery(r.pool.QueryRow(ctx, query, args...), &delivery)
	if err == nil {
		return &delivery, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var exists bool
	if probeErr := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM deliveries WHERE id=$1)`, id).Scan(&exists); probeErr != nil {
		return nil, probeErr
	}
	if exists {
		return nil, ErrVersionConflict
	}
	return nil, pgx.ErrNoRows
}

func scanDelivery(row pgx.Row, delivery *domain.Delivery) error {
	return row.Scan(
		&delivery.ID,
		&delivery.OwnerID,
		&delivery.DriverID,
		&delivery.CustomerName,
		&delivery.CustomerPhone,
		&delivery.PickupAddress,
		&delivery.DropAddress,
		&delivery.Weight,
		&delivery.Priority,
		&delivery.Notes,
		&delivery.Status,
		&delivery.EstimatedCost,
		&delivery.ActualKm,
		&delivery.ActualCost,
		&delivery.Version,
		&delivery.CreatedAt,
		&delivery.UpdatedAt,
	)
}

func scanDeliveries(rows pgx.Rows) ([]domain.Delivery, error) {
	var result []domain.Delivery
	for rows.Next() {
		var delivery domain.Delivery
		if err := scanDelivery(rows, &delivery); err != nil {
			return nil, err
		}
		result = append(result, delivery)
	}
	return result, rows.Err()
}
