package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-parcel-tracking/internal/apperr"
	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/ports/parceltx"
)

const parcelColumns = `
	id, tracking_id, category, shipping_tier, weight_kg, weight_unit,
	fee, coupon_code, is_paid, status, current_location,
	estimated_delivery, delivered_at, cancelled_at, is_blocked,
	sender_id, receiver_id, pickup_address, delivery_address,
	created_at, updated_at`

// ParcelRepo represents parcel repository.
type ParcelRepo struct {
	db *pgxpool.Pool
}

// NewParcelRepo creates a new ParcelRepo.
func NewParcelRepo(db *pgxpool.Pool) *ParcelRepo {
	return &ParcelRepo{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (r *ParcelRepo) WithTx(ctx context.Context, fn func(tx parceltx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	wrapped := &TxRepo{tx: tx}

	if err := fn(wrapped); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// Get returns the parcel with its personnel and status log, or (nil, nil).
func (r *ParcelRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Parcel, error) {
	p, err := scanParcel(r.db.QueryRow(ctx, `SELECT `+parcelColumns+` FROM parcels WHERE id = $1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get parcel %s: %w", id, err)
	}
	if err := loadChildren(ctx, r.db, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByTrackingID returns the parcel by its public code, or (nil, nil).
func (r *ParcelRepo) GetByTrackingID(ctx context.Context, trackingID string) (*domain.Parcel, error) {
	p, err := scanParcel(r.db.QueryRow(ctx, `SELECT `+parcelColumns+` FROM parcels WHERE tracking_id = $1`, trackingID))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get parcel by tracking id %q: %w", trackingID, err)
	}
	if err := loadChildren(ctx, r.db, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns parcels matching f, newest first.
func (r *ParcelRepo) List(ctx context.Context, f domain.ParcelFilter) ([]domain.Parcel, error) {
	q := `SELECT ` + parcelColumns + ` FROM parcels WHERE true`
	args := make([]any, 0, 6)

	if f.SenderID != nil {
		args = append(args, *f.SenderID)
		q += fmt.Sprintf(" AND sender_id = $%d", len(args))
	}
	if f.ReceiverID != nil {
		args = append(args, *f.ReceiverID)
		q += fmt.Sprintf(" AND receiver_id = $%d", len(args))
	}
	if len(f.Statuses) > 0 {
		args = append(args, statusStrings(f.Statuses))
		q += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}
	if len(f.ExceptStatus) > 0 {
		args = append(args, statusStrings(f.ExceptStatus))
		q += fmt.Sprintf(" AND NOT (status = ANY($%d))", len(args))
	}
	q += " ORDER BY created_at DESC, id"
	if f.Limit != nil {
		args = append(args, *f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset != nil {
		args = append(args, *f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list parcels: %w", err)
	}
	capacity := 0
	if f.Limit != nil && *f.Limit > 0 {
		capacity = *f.Limit
	}
	out := make([]domain.Parcel, 0, capacity)
	for rows.Next() {
		p, err := scanParcel(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan parcel: %w", err)
		}
		out = append(out, *p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list parcels: %w", err)
	}

	for i := range out {
		if err := loadChildren(ctx, r.db, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Stats counts parcels per status.
func (r *ParcelRepo) Stats(ctx context.Context) (domain.ParcelStats, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM parcels GROUP BY status ORDER BY status`)
	if err != nil {
		return domain.ParcelStats{}, fmt.Errorf("parcel stats: %w", err)
	}
	defer rows.Close()

	stats := domain.ParcelStats{ByStatus: make([]domain.StatusCount, 0, len(domain.AllStatuses()))}
	for rows.Next() {
		var c domain.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return domain.ParcelStats{}, fmt.Errorf("scan parcel stats: %w", err)
		}
		stats.Total += c.Count
		stats.ByStatus = append(stats.ByStatus, c)
	}
	return stats, rows.Err()
}

// TxRepo represents transaction repository.
type TxRepo struct {
	tx pgx.Tx
}

// GetForUpdate locks and loads the parcel.
func (r *TxRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Parcel, error) {
	p, err := scanParcel(r.tx.QueryRow(ctx, `SELECT `+parcelColumns+` FROM parcels WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get parcel %s for update: %w", id, err)
	}
	if err := loadChildren(ctx, r.tx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// TrackingIDExists - checks whether the tracking code is taken.
func (r *TxRepo) TrackingIDExists(ctx context.Context, trackingID string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM parcels WHERE tracking_id = $1)`, trackingID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check tracking id %q: %w", trackingID, err)
	}
	return exists, nil
}

// Insert - insert a new parcel row. Status log and personnel are written separately.
func (r *TxRepo) Insert(ctx context.Context, p *domain.Parcel) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO parcels (`+parcelColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
    `,
		p.ID, p.TrackingID, string(p.Category), string(p.ShippingTier), p.WeightKg, p.WeightUnit,
		p.Fee, p.CouponCode, p.IsPaid, string(p.Status), p.CurrentLocation,
		p.EstimatedDelivery, p.DeliveredAt, p.CancelledAt, p.IsBlocked,
		p.SenderID, p.ReceiverID, p.PickupAddress, p.DeliveryAddress,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		switch {
		case IsDuplicate(err):
			return apperr.Conflictf("tracking id %s already exists", p.TrackingID)
		case IsCheckViolation(err):
			return apperr.Invalidf("parcel %s cannot be both delivered and cancelled", p.TrackingID)
		}
		return fmt.Errorf("insert parcel: %w", err)
	}
	return nil
}

// Update - writes the mutable lifecycle fields of the parcel.
func (r *TxRepo) Update(ctx context.Context, p *domain.Parcel) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE parcels
        SET status             = $2,
            current_location   = $3,
            estimated_delivery = $4,
            delivered_at       = $5,
            cancelled_at       = $6,
            is_blocked         = $7,
            is_paid            = $8,
            updated_at         = $9
        WHERE id = $1
    `, p.ID, string(p.Status), p.CurrentLocation, p.EstimatedDelivery, p.DeliveredAt, p.CancelledAt,
		p.IsBlocked, p.IsPaid, p.UpdatedAt)
	if err != nil {
		if IsCheckViolation(err) {
			return apperr.Conflictf("parcel %s cannot be both delivered and cancelled", p.ID)
		}
		return fmt.Errorf("update parcel %s: %w", p.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFoundf("parcel %s", p.ID)
	}
	return nil
}

// AppendStatusLog - inserts one audit entry. Entries are never updated.
func (r *TxRepo) AppendStatusLog(ctx context.Context, parcelID uuid.UUID, e domain.StatusLogEntry) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO parcel_status_log (parcel_id, status, location, note, updated_by, at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, parcelID, string(e.Status), e.Location, e.Note, e.UpdatedBy, e.At)
	if err != nil {
		return fmt.Errorf("append status log %s: %w", parcelID, err)
	}
	return nil
}

// AddPersonnel - assigns personnel to the parcel, ignoring repeats.
func (r *TxRepo) AddPersonnel(ctx context.Context, parcelID, personnelID uuid.UUID, at time.Time) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO parcel_personnel (parcel_id, personnel_id, assigned_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (parcel_id, personnel_id) DO NOTHING
    `, parcelID, personnelID, at)
	if err != nil {
		return fmt.Errorf("add personnel to %s: %w", parcelID, err)
	}
	return nil
}

// Delete - hard-deletes the parcel, its log and assignments.
func (r *TxRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.tx.Exec(ctx, `DELETE FROM parcels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete parcel %s: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFoundf("parcel %s", id)
	}
	return nil
}

// GetCouponByCode reads a coupon inside the transaction.
func (r *TxRepo) GetCouponByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	return getCouponByCode(ctx, r.tx, code)
}

// RedeemCoupon consumes one use of the coupon inside the transaction.
func (r *TxRepo) RedeemCoupon(ctx context.Context, code string, now time.Time) (bool, error) {
	return redeemCoupon(ctx, r.tx, code, now)
}

var _ parceltx.Repository = (*TxRepo)(nil)

func scanParcel(row pgx.Row) (*domain.Parcel, error) {
	var p domain.Parcel
	err := row.Scan(
		&p.ID, &p.TrackingID, &p.Category, &p.ShippingTier, &p.WeightKg, &p.WeightUnit,
		&p.Fee, &p.CouponCode, &p.IsPaid, &p.Status, &p.CurrentLocation,
		&p.EstimatedDelivery, &p.DeliveredAt, &p.CancelledAt, &p.IsBlocked,
		&p.SenderID, &p.ReceiverID, &p.PickupAddress, &p.DeliveryAddress,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func loadChildren(ctx context.Context, q querier, p *domain.Parcel) error {
	rows, err := q.Query(ctx, `
        SELECT personnel_id FROM parcel_personnel
        WHERE parcel_id = $1
        ORDER BY assigned_at, personnel_id
    `, p.ID)
	if err != nil {
		return fmt.Errorf("load personnel %s: %w", p.ID, err)
	}
	personnel, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return fmt.Errorf("scan personnel %s: %w", p.ID, err)
	}
	p.DeliveryPersonnel = personnel

	rows, err = q.Query(ctx, `
        SELECT status, location, note, updated_by, at FROM parcel_status_log
        WHERE parcel_id = $1
        ORDER BY id
    `, p.ID)
	if err != nil {
		return fmt.Errorf("load status log %s: %w", p.ID, err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.StatusLogEntry, error) {
		var e domain.StatusLogEntry
		err := row.Scan(&e.Status, &e.Location, &e.Note, &e.UpdatedBy, &e.At)
		return e, err
	})
	if err != nil {
		return fmt.Errorf("scan status log %s: %w", p.ID, err)
	}
	p.StatusLog = entries
	return nil
}

func statusStrings(in []domain.ParcelStatus) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}
