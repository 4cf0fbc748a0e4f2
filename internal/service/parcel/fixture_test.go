package parcel_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/pricing"
	"service-parcel-tracking/internal/service/parcel"
	testlog "service-parcel-tracking/internal/testutil"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newCtrl(t *testing.T) *gomock.Controller {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return ctrl
}

type fixture struct {
	repo  *memRepo
	users *userDir
	logs  *testlog.Recorder
	svc   *parcel.Service

	sender, otherSender, receiver, otherReceiver, courier, admin domain.User

	seeded int
}

func newFixture(t *testing.T, opts ...func(*parcel.Deps)) *fixture {
	t.Helper()

	f := &fixture{
		repo: newMemRepo(),
		logs: testlog.New(),
	}
	f.sender = newUser("sender@example.com", domain.RoleSender, strptr("+15550100"), strptr("1 Pickup Road"))
	f.otherSender = newUser("other.sender@example.com", domain.RoleSender, strptr("+15550101"), strptr("2 Pickup Road"))
	f.receiver = newUser("receiver@example.com", domain.RoleReceiver, nil, strptr("9 Delivery Lane"))
	f.otherReceiver = newUser("other.receiver@example.com", domain.RoleReceiver, nil, strptr("8 Delivery Lane"))
	f.courier = newUser("courier@example.com", domain.RoleDeliveryPersonnel, strptr("+15550199"), nil)
	f.admin = newUser("admin@example.com", domain.RoleAdmin, nil, nil)
	f.users = &userDir{users: []domain.User{f.sender, f.otherSender, f.receiver, f.otherReceiver, f.courier, f.admin}}

	d := parcel.Deps{
		Repo:      f.repo,
		Users:     f.users,
		Fees:      pricing.NewCalculator(),
		Estimator: pricing.NewEstimator(),
		Logger:    f.logs.Logger(),
		Timeout:   time.Second,
	}
	for _, o := range opts {
		o(&d)
	}
	f.svc = parcel.NewService(d)
	f.svc.SetClock(func() time.Time { return fixedNow })
	return f
}

func newUser(email string, role domain.Role, phone, address *string) domain.User {
	return domain.User{
		ID:             uuid.New(),
		Email:          email,
		Name:           email,
		Phone:          phone,
		DefaultAddress: address,
		Role:           role,
		IsVerified:     true,
		Activity:       domain.ActivityActive,
	}
}

func actorOf(u domain.User) domain.Actor {
	return domain.Actor{ID: u.ID, Role: u.Role}
}

// setUser replaces the directory entry with the same id.
func (f *fixture) setUser(u domain.User) {
	for i := range f.users.users {
		if f.users.users[i].ID == u.ID {
			f.users.users[i] = u
			return
		}
	}
	f.users.users = append(f.users.users, u)
}

func (f *fixture) input() parcel.CreateInput {
	return parcel.CreateInput{
		Category:      domain.CategoryPackage,
		ShippingTier:  domain.TierStandard,
		WeightKg:      0.6,
		ReceiverEmail: f.receiver.Email,
	}
}

// seed stores a parcel of f.sender to f.receiver that is already in st.
func (f *fixture) seed(t *testing.T, st domain.ParcelStatus) *domain.Parcel {
	t.Helper()

	f.seeded++
	eta := fixedNow.AddDate(0, 0, 5)
	p := &domain.Parcel{
		ID:                uuid.New(),
		TrackingID:        fmt.Sprintf("TRK-20260310-%06d", f.seeded),
		Category:          domain.CategoryPackage,
		ShippingTier:      domain.TierStandard,
		WeightKg:          1,
		WeightUnit:        domain.DefaultWeightUnit,
		Fee:               decimal.NewFromInt(160),
		Status:            st,
		EstimatedDelivery: &eta,
		IsBlocked:         st == domain.StatusBlocked,
		SenderID:          f.sender.ID,
		ReceiverID:        f.receiver.ID,
		PickupAddress:     "1 Pickup Road",
		DeliveryAddress:   "9 Delivery Lane",
		StatusLog: []domain.StatusLogEntry{{
			Status:    domain.StatusRequested,
			Location:  strptr("1 Pickup Road"),
			Note:      strptr("Parcel request created by sender"),
			UpdatedBy: actorOf(f.sender).Ref(),
			At:        fixedNow.Add(-time.Hour),
		}},
		CreatedAt: fixedNow.Add(time.Duration(f.seeded) * time.Minute),
		UpdatedAt: fixedNow,
	}
	if st != domain.StatusRequested {
		p.StatusLog = append(p.StatusLog, domain.StatusLogEntry{Status: st, At: fixedNow.Add(-time.Minute)})
	}
	f.repo.put(p)
	return p
}

func strptr(s string) *string { return &s }

func statusPtr(s domain.ParcelStatus) *domain.ParcelStatus { return &s }
