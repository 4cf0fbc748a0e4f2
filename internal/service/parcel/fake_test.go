package parcel_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"service-parcel-tracking/internal/apperr"
	"service-parcel-tracking/internal/domain"
	"service-parcel-tracking/internal/ports/parceltx"
)

// memRepo is an in-memory parcel store. A transaction holds the store lock
// and restores a snapshot when fn fails, like a rolled back SQL transaction.
type memRepo struct {
	mu      sync.Mutex
	parcels map[uuid.UUID]*domain.Parcel
	coupons map[string]*domain.Coupon

	updateErr error
	appendErr error
}

func newMemRepo() *memRepo {
	return &memRepo{
		parcels: make(map[uuid.UUID]*domain.Parcel),
		coupons: make(map[string]*domain.Coupon),
	}
}

func (r *memRepo) WithTx(_ context.Context, fn func(tx parceltx.Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	parcels := make(map[uuid.UUID]*domain.Parcel, len(r.parcels))
	for id, p := range r.parcels {
		parcels[id] = cloneParcel(p)
	}
	coupons := make(map[string]*domain.Coupon, len(r.coupons))
	for code, c := range r.coupons {
		cp := *c
		coupons[code] = &cp
	}

	if err := fn(&memTx{r: r}); err != nil {
		r.parcels, r.coupons = parcels, coupons
		return err
	}
	return nil
}

func (r *memRepo) Get(_ context.Context, id uuid.UUID) (*domain.Parcel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.parcels[id]
	if !ok {
		return nil, nil
	}
	return cloneParcel(p), nil
}

func (r *memRepo) GetByTrackingID(_ context.Context, trackingID string) (*domain.Parcel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.parcels {
		if p.TrackingID == trackingID {
			return cloneParcel(p), nil
		}
	}
	return nil, nil
}

func (r *memRepo) List(_ context.Context, f domain.ParcelFilter) ([]domain.Parcel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Parcel
	for _, p := range r.parcels {
		if f.SenderID != nil && p.SenderID != *f.SenderID {
			continue
		}
		if f.ReceiverID != nil && p.ReceiverID != *f.ReceiverID {
			continue
		}
		if len(f.Statuses) > 0 && !hasStatus(f.Statuses, p.Status) {
			continue
		}
		if hasStatus(f.ExceptStatus, p.Status) {
			continue
		}
		out = append(out, *cloneParcel(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if f.Offset != nil {
		if *f.Offset >= len(out) {
			return nil, nil
		}
		out = out[*f.Offset:]
	}
	if f.Limit != nil && *f.Limit < len(out) {
		out = out[:*f.Limit]
	}
	return out, nil
}

func (r *memRepo) Stats(context.Context) (domain.ParcelStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[domain.ParcelStatus]int64)
	for _, p := range r.parcels {
		counts[p.Status]++
	}
	var st domain.ParcelStats
	for _, s := range domain.AllStatuses() {
		if n := counts[s]; n > 0 {
			st.ByStatus = append(st.ByStatus, domain.StatusCount{Status: s, Count: n})
			st.Total += n
		}
	}
	return st, nil
}

func (r *memRepo) put(p *domain.Parcel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parcels[p.ID] = cloneParcel(p)
}

func (r *memRepo) putCoupon(c domain.Coupon) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coupons[c.Code] = &c
}

func (r *memRepo) coupon(code string) domain.Coupon {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.coupons[code]
}

func (r *memRepo) stored(id uuid.UUID) *domain.Parcel {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.parcels[id]
	if !ok {
		return nil
	}
	return cloneParcel(p)
}

// memTx runs with memRepo.mu held.
type memTx struct {
	r *memRepo
}

func (t *memTx) GetForUpdate(_ context.Context, id uuid.UUID) (*domain.Parcel, error) {
	p, ok := t.r.parcels[id]
	if !ok {
		return nil, nil
	}
	return cloneParcel(p), nil
}

func (t *memTx) TrackingIDExists(_ context.Context, trackingID string) (bool, error) {
	for _, p := range t.r.parcels {
		if p.TrackingID == trackingID {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) Insert(_ context.Context, p *domain.Parcel) error {
	if _, ok := t.r.parcels[p.ID]; ok {
		return apperr.Conflictf("parcel %s already exists", p.ID)
	}
	cp := cloneParcel(p)
	cp.StatusLog = nil
	cp.DeliveryPersonnel = nil
	t.r.parcels[p.ID] = cp
	return nil
}

func (t *memTx) Update(_ context.Context, p *domain.Parcel) error {
	if t.r.updateErr != nil {
		return t.r.updateErr
	}
	cur, ok := t.r.parcels[p.ID]
	if !ok {
		return apperr.NotFoundf("parcel %s", p.ID)
	}
	cp := cloneParcel(p)
	cp.StatusLog = cur.StatusLog
	cp.DeliveryPersonnel = cur.DeliveryPersonnel
	t.r.parcels[p.ID] = cp
	return nil
}

func (t *memTx) AppendStatusLog(_ context.Context, parcelID uuid.UUID, e domain.StatusLogEntry) error {
	if t.r.appendErr != nil {
		return t.r.appendErr
	}
	p, ok := t.r.parcels[parcelID]
	if !ok {
		return apperr.NotFoundf("parcel %s", parcelID)
	}
	p.StatusLog = append(append([]domain.StatusLogEntry(nil), p.StatusLog...), e)
	return nil
}

func (t *memTx) AddPersonnel(_ context.Context, parcelID, personnelID uuid.UUID, _ time.Time) error {
	p, ok := t.r.parcels[parcelID]
	if !ok {
		return apperr.NotFoundf("parcel %s", parcelID)
	}
	if !p.HasPersonnel(personnelID) {
		p.DeliveryPersonnel = append(append([]uuid.UUID(nil), p.DeliveryPersonnel...), personnelID)
	}
	return nil
}

func (t *memTx) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := t.r.parcels[id]; !ok {
		return apperr.NotFoundf("parcel %s", id)
	}
	delete(t.r.parcels, id)
	return nil
}

func (t *memTx) GetCouponByCode(_ context.Context, code string) (*domain.Coupon, error) {
	c, ok := t.r.coupons[code]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (t *memTx) RedeemCoupon(_ context.Context, code string, now time.Time) (bool, error) {
	c, ok := t.r.coupons[code]
	if !ok || !c.IsActive || c.ExpiresAt.Before(now) || c.Exhausted() {
		return false, nil
	}
	c.UsedCount++
	return true, nil
}

func cloneParcel(p *domain.Parcel) *domain.Parcel {
	cp := *p
	cp.StatusLog = append([]domain.StatusLogEntry(nil), p.StatusLog...)
	cp.DeliveryPersonnel = append([]uuid.UUID(nil), p.DeliveryPersonnel...)
	return &cp
}

func hasStatus(list []domain.ParcelStatus, s domain.ParcelStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// userDir is a fixed user directory.
type userDir struct {
	users  []domain.User
	getErr error
}

func (d *userDir) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if d.getErr != nil {
		return nil, d.getErr
	}
	for i := range d.users {
		if d.users[i].ID == id {
			u := d.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (d *userDir) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if d.getErr != nil {
		return nil, d.getErr
	}
	for i := range d.users {
		if strings.EqualFold(d.users[i].Email, email) {
			u := d.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

var _ parceltx.Repository = (*memTx)(nil)
