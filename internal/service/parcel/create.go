package parcel

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"service-parcel-tracking/internal/apperr"
	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/logx"
	"service-parcel-tracking/internal/ports/parceltx"
	"service-parcel-tracking/internal/service/coupon"
)

const (
	maxAddressLen    = 100
	maxCouponCodeLen = 20
	trackingAttempts = 5
)

// CreateInput is a new delivery request.
type CreateInput struct {
	Category        domain.ParcelCategory
	ShippingTier    domain.ShippingTier
	WeightKg        float64
	ReceiverEmail   string
	PickupAddress   *string
	DeliveryAddress *string
	CouponCode      *string
}

// Create registers a delivery request on behalf of the sending actor.
func (s *Service) Create(ctx context.Context, actor domain.Actor, in CreateInput) (*domain.Parcel, error) {
	if err := authorize(opCreate, actor); err != nil {
		return nil, err
	}
	if err := normalizeCreate(&in); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sender, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, apperr.NotFoundf("sender account %s", actor.ID)
	}
	return s.create(ctx, actor, sender, in, "Parcel request created by sender")
}

// CreateForSender lets an admin register a delivery request for a sender identified by email.
func (s *Service) CreateForSender(ctx context.Context, actor domain.Actor, senderEmail string, in CreateInput) (*domain.Parcel, error) {
	if err := authorize(opCreateForSender, actor); err != nil {
		return nil, err
	}
	senderEmail, err := normalizeEmail("sender", senderEmail)
	if err != nil {
		return nil, err
	}
	if err := normalizeCreate(&in); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sender, err := s.users.GetByEmail(ctx, senderEmail)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, apperr.NotFoundf("sender account is not found")
	}
	if sender.Role != domain.RoleSender {
		return nil, apperr.Invalidf("provided user is not a sender")
	}
	if err := checkUsable("sender", sender); err != nil {
		return nil, err
	}
	return s.create(ctx, actor, sender, in, "Parcel request created by admin on behalf of sender")
}

func (s *Service) create(
	ctx context.Context,
	actor domain.Actor,
	sender *domain.User,
	in CreateInput,
	note string,
) (*domain.Parcel, error) {
	if sender.Phone == nil || strings.TrimSpace(*sender.Phone) == "" {
		return nil, apperr.Invalidf("sender must have a phone number in their profile")
	}
	pickup, err := firstAddress("pickup address", in.PickupAddress, sender.DefaultAddress)
	if err != nil {
		return nil, err
	}
	if pickup == "" {
		return nil, apperr.Invalidf("pickup address is required or set a default address in the sender profile")
	}

	receiver, err := s.users.GetByEmail(ctx, in.ReceiverEmail)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, apperr.NotFoundf("receiver account is not found")
	}
	if receiver.Role != domain.RoleReceiver {
		return nil, apperr.Invalidf("provided user is not a receiver")
	}
	if err := checkUsable("receiver", receiver); err != nil {
		return nil, err
	}
	if receiver.ID == sender.ID {
		return nil, apperr.Invalidf("sender and receiver must differ")
	}
	dropoff, err := firstAddress("delivery address", in.DeliveryAddress, receiver.DefaultAddress)
	if err != nil {
		return nil, err
	}
	if dropoff == "" {
		return nil, apperr.Invalidf("delivery address is required or the receiver must set a default address")
	}

	fee, err := s.fees.Fee(in.WeightKg, in.Category, in.ShippingTier)
	if err != nil {
		return nil, err
	}
	now := s.now()
	eta, err := s.estimator.EstimatedDelivery(in.ShippingTier, now)
	if err != nil {
		return nil, err
	}

	p := &domain.Parcel{
		ID:                uuid.New(),
		Category:          in.Category,
		ShippingTier:      in.ShippingTier,
		WeightKg:          in.WeightKg,
		WeightUnit:        domain.DefaultWeightUnit,
		Fee:               fee,
		Status:            domain.StatusRequested,
		EstimatedDelivery: &eta,
		SenderID:          sender.ID,
		ReceiverID:        receiver.ID,
		PickupAddress:     pickup,
		DeliveryAddress:   dropoff,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	var entry *domain.StatusLogEntry
	err = s.repo.WithTx(ctx, func(tx parceltx.Repository) error {
		code, err := s.uniqueTrackingID(ctx, tx, now)
		if err != nil {
			return err
		}
		p.TrackingID = code

		if in.CouponCode != nil {
			discounted, c, err := coupon.Apply(ctx, txCoupons{tx: tx}, *in.CouponCode, fee, now)
			if err != nil {
				return err
			}
			p.Fee = discounted
			p.CouponCode = &c.Code
		}

		if err := tx.Insert(ctx, p); err != nil {
			return err
		}
		entry, err = recordStatus(ctx, tx, p, actor, strptr(pickup), strptr(note), now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ParcelCreated()
	if p.CouponCode != nil {
		s.metrics.CouponRedeemed()
	}
	s.afterCommit(ctx, p, entry)
	s.logger.Info("parcel created",
		logx.String("event", "parcel_created"),
		logx.UUID("parcel_id", p.ID),
		logx.String("tracking_id", p.TrackingID),
		logx.String("status", string(p.Status)),
		logx.Stringer("fee", p.Fee),
		logx.Bool("coupon", p.CouponCode != nil),
	)
	return p, nil
}

func (s *Service) uniqueTrackingID(ctx context.Context, tx parceltx.Repository, now time.Time) (string, error) {
	for i := 0; i < trackingAttempts; i++ {
		code, err := s.newTrackingID(now)
		if err != nil {
			return "", err
		}
		taken, err := tx.TrackingIDExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", apperr.Conflictf("could not allocate a unique tracking id")
}

// txCoupons exposes the transaction's coupon methods as a coupon.Store.
type txCoupons struct {
	tx parceltx.Repository
}

func (c txCoupons) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	return c.tx.GetCouponByCode(ctx, code)
}

func (c txCoupons) Redeem(ctx context.Context, code string, now time.Time) (bool, error) {
	return c.tx.RedeemCoupon(ctx, code, now)
}

func normalizeCreate(in *CreateInput) error {
	if in.Category == "" {
		in.Category = domain.CategoryPackage
	}
	if in.ShippingTier == "" {
		in.ShippingTier = domain.TierStandard
	}
	if !in.Category.Valid() {
		return apperr.Invalidf("invalid parcel type %q", in.Category)
	}
	if !in.ShippingTier.Valid() {
		return apperr.Invalidf("invalid shipping type %q", in.ShippingTier)
	}

	email, err := normalizeEmail("receiver", in.ReceiverEmail)
	if err != nil {
		return err
	}
	in.ReceiverEmail = email

	if in.PickupAddress, err = cleanText("pickup address", in.PickupAddress, maxAddressLen); err != nil {
		return err
	}
	if in.DeliveryAddress, err = cleanText("delivery address", in.DeliveryAddress, maxAddressLen); err != nil {
		return err
	}
	if in.CouponCode, err = cleanText("coupon code", in.CouponCode, maxCouponCodeLen); err != nil {
		return err
	}
	if in.CouponCode != nil {
		code := coupon.NormalizeCode(*in.CouponCode)
		in.CouponCode = &code
	}
	return nil
}

func normalizeEmail(who, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", apperr.Invalidf("%s email is required", who)
	}
	if len(email) < 5 || len(email) > 100 {
		return "", apperr.Invalidf("%s email must be between 5 and 100 characters", who)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apperr.Invalidf("invalid %s email address format", who)
	}
	return email, nil
}

func checkUsable(who string, u *domain.User) error {
	if !u.IsVerified {
		return apperr.Invalidf("%s is not verified", who)
	}
	if u.Activity != domain.ActivityActive {
		return apperr.Invalidf("%s is %s", who, u.Activity)
	}
	if u.IsDeleted {
		return apperr.Invalidf("%s is deleted", who)
	}
	return nil
}

// firstAddress prefers the explicit address and falls back to a profile
// default. Both are held to the same length limit.
func firstAddress(field string, explicit, fallback *string) (string, error) {
	if explicit != nil && *explicit != "" {
		return *explicit, nil
	}
	addr, err := cleanText(field, fallback, maxAddressLen)
	if err != nil || addr == nil {
		return "", err
	}
	return *addr, nil
}
