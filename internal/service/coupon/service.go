package coupon

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"service-parcel-tracking/internal/apperr"
	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/idgen"
	"service-parcel-tracking/internal/logx"
)

// MaxUsageLimit caps the usage limit an admin may set.
const MaxUsageLimit = 10000

const codeAttempts = 5

// CreateInput describes a new coupon.
type CreateInput struct {
	Type       domain.DiscountType
	Value      decimal.Decimal
	ExpiresAt  time.Time
	UsageLimit *int
	IsActive   *bool
}

// Service coordinates coupon administration.
type Service struct {
	repo             couponRepository
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
	newCode          func() (string, error)
}

// NewService creates and configures a coupon Service.
func NewService(r couponRepository, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		repo:             r,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
		newCode:          idgen.CouponCode,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

func requireAdmin(actor domain.Actor) error {
	if !actor.Role.IsAdmin() {
		return apperr.Forbiddenf("role %q cannot manage coupons", actor.Role)
	}
	return nil
}

func validateCreate(in CreateInput, now time.Time) error {
	if !in.Type.Valid() {
		return apperr.Invalidf("discount type must be percentage or fixed")
	}
	if in.Value.IsNegative() {
		return apperr.Invalidf("discount value must not be negative")
	}
	if in.Type == domain.DiscountPercentage && in.Value.GreaterThan(decimal.NewFromInt(100)) {
		return apperr.Invalidf("percentage discount must be between 0 and 100")
	}
	if !in.ExpiresAt.After(now) {
		return apperr.Invalidf("expiry date must be in the future")
	}
	if in.UsageLimit != nil && (*in.UsageLimit < 1 || *in.UsageLimit > MaxUsageLimit) {
		return apperr.Invalidf("usage limit must be between 1 and %d", MaxUsageLimit)
	}
	return nil
}

// Create issues a new coupon with a generated code.
func (s *Service) Create(ctx context.Context, actor domain.Actor, in CreateInput) (*domain.Coupon, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	now := s.now()
	if err := validateCreate(in, now); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	c := &domain.Coupon{
		ID:         uuid.New(),
		Type:       in.Type,
		Value:      in.Value,
		ExpiresAt:  in.ExpiresAt.UTC(),
		IsActive:   active,
		UsageLimit: in.UsageLimit,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	for attempt := 1; ; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}
		c.Code = code

		err = s.repo.Create(ctx, c)
		if err == nil {
			break
		}
		if !errors.Is(err, apperr.ErrConflict) || attempt == codeAttempts {
			return nil, err
		}
	}

	s.logger.Info("coupon created",
		logx.String("event", "coupon_created"),
		logx.String("code", c.Code),
		logx.String("type", string(c.Type)),
		logx.Time("expires_at", c.ExpiresAt),
	)
	return c, nil
}

// List returns coupons with optional pagination.
func (s *Service) List(ctx context.Context, actor domain.Actor, limit, offset *int) ([]domain.Coupon, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.List(ctx, limit, offset)
}

// Validate reports whether the code could be applied right now.
func (s *Service) Validate(ctx context.Context, code string) (domain.CouponValidation, error) {
	if NormalizeCode(code) == "" {
		return domain.CouponValidation{}, apperr.Invalidf("coupon code is required")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return Validate(ctx, s.repo, code, s.now())
}

// Apply redeems the code against fee outside of parcel creation.
func (s *Service) Apply(ctx context.Context, code string, fee decimal.Decimal) (decimal.Decimal, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	out, c, err := Apply(ctx, s.repo, code, fee, s.now())
	if err != nil {
		return decimal.Zero, err
	}
	s.logger.Info("coupon applied",
		logx.String("event", "coupon_applied"),
		logx.String("code", c.Code),
		logx.Int("used_count", c.UsedCount),
	)
	return out, nil
}

// DeactivateExpired switches off coupons whose expiry has passed.
func (s *Service) DeactivateExpired(ctx context.Context) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	n, err := s.repo.DeactivateExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired coupons deactivated",
			logx.String("event", "coupons_deactivated"),
			logx.Int64("count", n),
		)
	}
	return n, nil
}
