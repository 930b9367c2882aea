package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	domain "github.com/consultahub/consulta-scheduler/internal/domain/booking"
	"github.com/consultahub/consulta-scheduler/internal/httperr"
	"github.com/consultahub/consulta-scheduler/internal/ledger"
	"github.com/consultahub/consulta-scheduler/internal/models"
	"github.com/consultahub/consulta-scheduler/internal/payment"
)

// fakeRepo is an in-memory domain.Repository with the same conditional-update
// semantics as the GORM implementation.
type fakeRepo struct {
	mu sync.Mutex

	users    map[uint]*models.User
	bookings map[uint]*models.Booking
	nextID   uint

	// afterGet fires once after the next GetBookingByID returns its copy,
	// letting tests interleave a concurrent transition behind a stale read.
	afterGet func()
}

func newFakeRepo(users ...*models.User) *fakeRepo {
	r := &fakeRepo{
		users:    make(map[uint]*models.User),
		bookings: make(map[uint]*models.Booking),
	}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeRepo) GetProviderByID(ctx context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.Role != models.RoleProvider {
		return nil, errors.New("record not found")
	}
	cp := *u
	return &cp, nil
}

func (r *fakeRepo) ListRules(ctx context.Context, providerID uint) ([]models.AvailabilityRule, error) {
	return nil, nil
}

func (r *fakeRepo) ListCustomSlots(ctx context.Context, providerID uint, fromDate, toDate string) ([]models.CustomSlot, error) {
	return nil, nil
}

func (r *fakeRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	b.ID = r.nextID
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *fakeRepo) GetBookingByID(ctx context.Context, id uint) (*models.Booking, error) {
	r.mu.Lock()

	b, ok := r.bookings[id]
	var cp models.Booking
	if ok {
		cp = *b
	}

	hook := r.afterGet
	r.afterGet = nil
	r.mu.Unlock()

	if hook != nil {
		hook()
	}

	if !ok {
		return nil, httperr.ErrBusiness(httperr.CodeBookingNotFound)
	}
	return &cp, nil
}

func (r *fakeRepo) GetBookingForClient(ctx context.Context, bookingID, clientID uint) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[bookingID]
	if !ok || b.ClientID != clientID {
		return nil, httperr.ErrBusiness(httperr.CodeBookingNotFound)
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) UpdateBookingIfStatus(ctx context.Context, b *models.Booking, fromStatus string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.bookings[b.ID]
	if !ok || stored.Status != fromStatus {
		return false, nil
	}

	stored.Date = b.Date
	stored.Time = b.Time
	stored.Status = b.Status
	stored.PostponeReason = b.PostponeReason
	stored.CancelledAt = b.CancelledAt
	stored.ConfirmedAt = b.ConfirmedAt
	return true, nil
}

func (r *fakeRepo) DeleteBooking(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.bookings, id)
	return nil
}

func (r *fakeRepo) ListBookingsForParticipant(ctx context.Context, userID uint, role string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Booking
	for _, b := range r.bookings {
		if (role == models.RoleProvider && b.ProviderID == userID) ||
			(role != models.RoleProvider && b.ClientID == userID) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Booking
	for _, b := range r.bookings {
		if b.Status == string(domain.StatusPendingPayment) && b.CreatedAt.Before(cutoff) {
			out = append(out, *b)
		}
	}
	return out, nil
}

var _ domain.Repository = (*fakeRepo)(nil)

// fakeGateway opens checkouts without talking to anything.
type fakeGateway struct {
	mu    sync.Mutex
	fail  bool
	calls int
}

func (g *fakeGateway) CreateCheckout(ctx context.Context, in payment.CheckoutInput) (*payment.Checkout, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	if g.fail {
		return nil, errors.New("gateway unreachable")
	}
	return &payment.Checkout{
		PreferenceID: "pref-1",
		RedirectURL:  "https://pay.example/checkout/" + in.ExternalRef,
		ExternalRef:  in.ExternalRef,
	}, nil
}

var _ payment.Gateway = (*fakeGateway)(nil)

// flakyLedger delegates to an in-memory ledger but fails the first
// releaseFails calls to Release.
type flakyLedger struct {
	*ledger.MemoryLedger

	mu           sync.Mutex
	releaseFails int
	releaseCalls int
}

func newFlakyLedger(releaseFails int) *flakyLedger {
	return &flakyLedger{
		MemoryLedger: ledger.NewMemoryLedger(),
		releaseFails: releaseFails,
	}
}

func (l *flakyLedger) Release(ctx context.Context, providerID uint, date, hm string) error {
	l.mu.Lock()
	l.releaseCalls++
	failing := l.releaseFails > 0
	if failing {
		l.releaseFails--
	}
	l.mu.Unlock()

	if failing {
		return errors.New("ledger unavailable")
	}
	return l.MemoryLedger.Release(ctx, providerID, date, hm)
}

var _ ledger.Ledger = (*flakyLedger)(nil)
