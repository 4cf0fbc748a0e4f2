package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-parcel-tracking/internal/apperr"
	"service-parcel-tracking/internal/domain"
)

const couponColumns = `id, code, discount_type, discount_value, expires_at, is_active, usage_limit, used_count, created_at, updated_at`

// CouponRepo represents coupon repository.
type CouponRepo struct{ db *pgxpool.Pool }

// NewCouponRepo creates a new CouponRepo.
func NewCouponRepo(db *pgxpool.Pool) *CouponRepo { return &CouponRepo{db: db} }

// Create - inserts a new coupon.
func (r *CouponRepo) Create(ctx context.Context, c *domain.Coupon) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO coupons (`+couponColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, c.ID, c.Code, string(c.Type), c.Value, c.ExpiresAt, c.IsActive, c.UsageLimit, c.UsedCount, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if IsDuplicate(err) {
			return apperr.Conflictf("coupon %s already exists", c.Code)
		}
		return fmt.Errorf("create coupon: %w", err)
	}
	return nil
}

// List returns coupons, newest first. If limit/offset are nil, returns the full list.
func (r *CouponRepo) List(ctx context.Context, limit, offset *int) ([]domain.Coupon, error) {
	q := `SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at DESC, id`
	args := make([]any, 0, 2)
	if limit != nil {
		q += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, *limit)
	}
	if offset != nil {
		q += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, *offset)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Coupon, error) {
		c, err := scanCoupon(row)
		if err != nil {
			return domain.Coupon{}, err
		}
		return *c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan coupons: %w", err)
	}
	return out, nil
}

// GetByCode returns the coupon or (nil, nil).
func (r *CouponRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	return getCouponByCode(ctx, r.db, code)
}

// Redeem consumes one use of the coupon outside of a parcel transaction.
func (r *CouponRepo) Redeem(ctx context.Context, code string, now time.Time) (bool, error) {
	return redeemCoupon(ctx, r.db, code, now)
}

// DeactivateExpired switches off active coupons past their expiry and returns how many changed.
func (r *CouponRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE coupons
        SET is_active = false, updated_at = $1
        WHERE is_active AND expires_at < $1
    `, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired coupons: %w", err)
	}
	return ct.RowsAffected(), nil
}

func getCouponByCode(ctx context.Context, q querier, code string) (*domain.Coupon, error) {
	c, err := scanCoupon(q.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE code = $1`, code))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon %q: %w", code, err)
	}
	return c, nil
}

// redeemCoupon is a guarded increment: it never pushes used_count past usage_limit.
func redeemCoupon(ctx context.Context, q querier, code string, now time.Time) (bool, error) {
	ct, err := q.Exec(ctx, `
        UPDATE coupons
        SET used_count = used_count + 1, updated_at = $2
        WHERE code = $1
          AND is_active
          AND expires_at >= $2
          AND (usage_limit IS NULL OR used_count < usage_limit)
    `, code, now)
	if err != nil {
		return false, fmt.Errorf("redeem coupon %q: %w", code, err)
	}
	return ct.RowsAffected() == 1, nil
}

func scanCoupon(row pgx.Row) (*domain.Coupon, error) {
	var c domain.Coupon
	err := row.Scan(&c.ID, &c.Code, &c.Type, &c.Value, &c.ExpiresAt, &c.IsActive, &c.UsageLimit, &c.UsedCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
