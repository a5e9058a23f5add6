package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"service-marketplace/internal/data/entity"
	"service-marketplace/internal/data/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// memState holds every table.
type memState struct {
	users     map[uuid.UUID]entity.User
	providers map[uuid.UUID]entity.Provider
	services  map[uuid.UUID]entity.Service
	bookings  map[uuid.UUID]entity.Booking
	reviews   map[uuid.UUID]entity.Review
}

func newMemState() *memState {
	return &memState{
		users:     map[uuid.UUID]entity.User{},
		providers: map[uuid.UUID]entity.Provider{},
		services:  map[uuid.UUID]entity.Service{},
		bookings:  map[uuid.UUID]entity.Booking{},
		reviews:   map[uuid.UUID]entity.Review{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.providers {
		v.ReviewIDs = append([]uuid.UUID(nil), v.ReviewIDs...)
		c.providers[k] = v
	}
	for k, v := range s.services {
		v.SubServices = append([]entity.SubService(nil), v.SubServices...)
		c.services[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	for k, v := range s.reviews {
		c.reviews[k] = v
	}
	return c
}

// memDB models read-committed-ish storage with row locks: writes land in the
// shared state right away and are undone on rollback, and a row locked by a
// transaction stays locked until it ends. Transactions on different rows run
// concurrently.
type memDB struct {
	mu       sync.Mutex
	state    *memState
	rowLocks map[uuid.UUID]*sync.Mutex

	// failAfterReviewInsert, when set, is returned right after the review
	// row is written inside a transaction.
	failAfterReviewInsert error
	// beforeAddReview, when set, runs inside the transaction just before the
	// provider row is locked for the aggregate update.
	beforeAddReview func()
}

func newMemDB() *memDB {
	return &memDB{state: newMemState(), rowLocks: map[uuid.UUID]*sync.Mutex{}}
}

func (db *memDB) repository() *repository.Repository {
	repo := db.bind(nil)
	repo.Tx = memTransactor{db: db}
	return repo
}

func (db *memDB) bind(tx *memTx) *repository.Repository {
	base := memBase{db: db, tx: tx}
	return &repository.Repository{
		User:     memUserRepo{base},
		Provider: memProviderRepo{base},
		Service:  memServiceRepo{base},
		Booking:  memBookingRepo{base},
		Review:   memReviewRepo{base},
	}
}

// snapshot returns a copy of the current state for assertions.
func (db *memDB) snapshot() *memState {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.state.clone()
}

func (db *memDB) seed(fn func(s *memState)) {
	db.mu.Lock()
	defer db.mu.Unlock()
	fn(db.state)
}

// memTx is owned by the goroutine running the unit of work.
type memTx struct {
	undo  []func(s *memState)
	locks []*sync.Mutex
	held  map[uuid.UUID]bool
}

type memTransactor struct {
	db *memDB
}

func (t memTransactor) WithinTransaction(ctx context.Context, fn func(repo *repository.Repository) error) error {
	tx := &memTx{held: map[uuid.UUID]bool{}}
	txRepo := t.db.bind(tx)
	txRepo.Tx = memNested{repo: txRepo}

	err := fn(txRepo)
	if err != nil {
		t.db.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i](t.db.state)
		}
		t.db.mu.Unlock()
	}

	for i := len(tx.locks) - 1; i >= 0; i-- {
		tx.locks[i].Unlock()
	}
	return err
}

type memNested struct {
	repo *repository.Repository
}

func (n memNested) WithinTransaction(_ context.Context, fn func(repo *repository.Repository) error) error {
	return fn(n.repo)
}

type memBase struct {
	db *memDB
	tx *memTx
}

func (b memBase) with(fn func(s *memState)) {
	b.db.mu.Lock()
	defer b.db.mu.Unlock()
	fn(b.db.state)
}

// write applies fn to the shared state. Inside a transaction the returned
// undo is kept for rollback.
func (b memBase) write(fn func(s *memState) (undo func(s *memState))) {
	b.db.mu.Lock()
	defer b.db.mu.Unlock()
	undo := fn(b.db.state)
	if b.tx != nil && undo != nil {
		b.tx.undo = append(b.tx.undo, undo)
	}
}

// lockRow blocks until the row is free and holds it until the transaction
// ends. Outside a transaction it does nothing.
func (b memBase) lockRow(id uuid.UUID) {
	if b.tx == nil || b.tx.held[id] {
		return
	}
	b.db.mu.Lock()
	l, ok := b.db.rowLocks[id]
	if !ok {
		l = &sync.Mutex{}
		b.db.rowLocks[id] = l
	}
	b.db.mu.Unlock()

	l.Lock()
	b.tx.held[id] = true
	b.tx.locks = append(b.tx.locks, l)
}

// applyReview mirrors the single-statement aggregate update.
func applyReview(p *entity.Provider, reviewID uuid.UUID, rating int) {
	p.Rating = (p.Rating*float64(p.TotalReviews) + float64(rating)) / float64(p.TotalReviews+1)
	p.TotalReviews++
	p.ReviewIDs = append(p.ReviewIDs, reviewID)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ==================== users ====================

type memUserRepo struct{ memBase }

func (r memUserRepo) Create(_ context.Context, user *entity.User) error {
	var err error
	r.write(func(s *memState) func(*memState) {
		for _, u := range s.users {
			if u.Email == user.Email {
				err = fmt.Errorf("create user: %w", &repository.UniqueViolationError{Constraint: "users_email_key"})
				return nil
			}
		}
		s.users[user.ID] = *user
		return func(s *memState) { delete(s.users, user.ID) }
	})
	return err
}

func (r memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	var out *entity.User
	r.with(func(s *memState) {
		if u, ok := s.users[id]; ok {
			out = &u
		}
	})
	return out, nil
}

func (r memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	r.with(func(s *memState) {
		for _, u := range s.users {
			if u.Email == email {
				u := u
				out = &u
				return
			}
		}
	})
	return out, nil
}

// ==================== providers ====================

type memProviderRepo struct{ memBase }

func (r memProviderRepo) Create(_ context.Context, provider *entity.Provider) error {
	var err error
	r.write(func(s *memState) func(*memState) {
		for _, p := range s.providers {
			if p.UserID == provider.UserID {
				err = &repository.UniqueViolationError{Constraint: "providers_user_id_key"}
				return nil
			}
		}
		p := *provider
		p.ReviewIDs = []uuid.UUID{}
		s.providers[p.ID] = p
		return func(s *memState) { delete(s.providers, p.ID) }
	})
	return err
}

func (r memProviderRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Provider, error) {
	var out *entity.Provider
	r.with(func(s *memState) {
		if p, ok := s.providers[id]; ok {
			p.ReviewIDs = append([]uuid.UUID(nil), p.ReviewIDs...)
			out = &p
		}
	})
	return out, nil
}

func (r memProviderRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.Provider, error) {
	var out *entity.Provider
	r.with(func(s *memState) {
		for _, p := range s.providers {
			if p.UserID == userID {
				p := p
				p.ReviewIDs = append([]uuid.UUID(nil), p.ReviewIDs...)
				out = &p
				return
			}
		}
	})
	return out, nil
}

func (r memProviderRepo) List(_ context.Context, limit, offset int) ([]*entity.Provider, error) {
	var all []*entity.Provider
	r.with(func(s *memState) {
		for _, p := range s.providers {
			p := p
			all = append(all, &p)
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].Rating > all[j].Rating })
	return page(all, limit, offset), nil
}

func (r memProviderRepo) Count(_ context.Context) (int64, error) {
	var n int64
	r.with(func(s *memState) { n = int64(len(s.providers)) })
	return n, nil
}

// AddReview locks the provider row like UPDATE does, so concurrent reviews of
// one provider queue here until the earlier transaction ends.
func (r memProviderRepo) AddReview(_ context.Context, providerID, reviewID uuid.UUID, rating int) (*entity.Provider, error) {
	if r.tx != nil && r.db.beforeAddReview != nil {
		r.db.beforeAddReview()
	}
	r.lockRow(providerID)

	var out *entity.Provider
	r.write(func(s *memState) func(*memState) {
		prev, ok := s.providers[providerID]
		if !ok {
			return nil
		}
		p := prev
		p.ReviewIDs = append([]uuid.UUID(nil), prev.ReviewIDs...)
		applyReview(&p, reviewID, rating)
		s.providers[providerID] = p
		out = &p
		return func(s *memState) { s.providers[providerID] = prev }
	})
	return out, nil
}

// ==================== services ====================

type memServiceRepo struct{ memBase }

func (r memServiceRepo) Create(_ context.Context, service *entity.Service) error {
	r.write(func(s *memState) func(*memState) {
		s.services[service.ID] = *service
		return func(s *memState) { delete(s.services, service.ID) }
	})
	return nil
}

func (r memServiceRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Service, error) {
	var out *entity.Service
	r.with(func(s *memState) {
		if svc, ok := s.services[id]; ok {
			out = &svc
		}
	})
	return out, nil
}

func (r memServiceRepo) List(_ context.Context, category string, limit, offset int) ([]*entity.Service, error) {
	var all []*entity.Service
	r.with(func(s *memState) {
		for _, svc := range s.services {
			if category == "" || svc.Category == category {
				svc := svc
				all = append(all, &svc)
			}
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return page(all, limit, offset), nil
}

func (r memServiceRepo) Count(_ context.Context, category string) (int64, error) {
	var n int64
	r.with(func(s *memState) {
		for _, svc := range s.services {
			if category == "" || svc.Category == category {
				n++
			}
		}
	})
	return n, nil
}

func (r memServiceRepo) Update(_ context.Context, service *entity.Service) error {
	var err error
	r.write(func(s *memState) func(*memState) {
		prev, ok := s.services[service.ID]
		if !ok {
			err = pgx.ErrNoRows
			return nil
		}
		s.services[service.ID] = *service
		return func(s *memState) { s.services[service.ID] = prev }
	})
	return err
}

// ==================== bookings ====================

type memBookingRepo struct{ memBase }

func (r memBookingRepo) Create(_ context.Context, booking *entity.Booking) error {
	r.write(func(s *memState) func(*memState) {
		s.bookings[booking.ID] = *booking
		return func(s *memState) { delete(s.bookings, booking.ID) }
	})
	return nil
}

func (r memBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	var out *entity.Booking
	r.with(func(s *memState) {
		if b, ok := s.bookings[id]; ok {
			out = &b
		}
	})
	return out, nil
}

func (r memBookingRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.lockRow(id)
	return r.FindByID(ctx, id)
}

func (r memBookingRepo) filter(keep func(b entity.Booking) bool) []*entity.Booking {
	var all []*entity.Booking
	r.with(func(s *memState) {
		for _, b := range s.bookings {
			if keep(b) {
				b := b
				all = append(all, &b)
			}
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all
}

func (r memBookingRepo) FindByCustomerID(_ context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	all := r.filter(func(b entity.Booking) bool { return b.CustomerID == customerID })
	return page(all, limit, offset), nil
}

func (r memBookingRepo) CountByCustomerID(_ context.Context, customerID uuid.UUID) (int64, error) {
	return int64(len(r.filter(func(b entity.Booking) bool { return b.CustomerID == customerID }))), nil
}

func (r memBookingRepo) FindByProviderID(_ context.Context, providerID uuid.UUID, status entity.BookingStatus, limit, offset int) ([]*entity.Booking, error) {
	all := r.filter(func(b entity.Booking) bool {
		return b.ProviderID == providerID && (status == "" || b.Status == status)
	})
	return page(all, limit, offset), nil
}

func (r memBookingRepo) CountByProviderID(_ context.Context, providerID uuid.UUID, status entity.BookingStatus) (int64, error) {
	all := r.filter(func(b entity.Booking) bool {
		return b.ProviderID == providerID && (status == "" || b.Status == status)
	})
	return int64(len(all)), nil
}

// UpdateLifecycle writes only lifecycle columns, like the SQL version.
func (r memBookingRepo) UpdateLifecycle(_ context.Context, booking *entity.Booking) error {
	r.lockRow(booking.ID)

	var err error
	r.write(func(s *memState) func(*memState) {
		prev, ok := s.bookings[booking.ID]
		if !ok {
			err = pgx.ErrNoRows
			return nil
		}
		stored := prev
		stored.Status = booking.Status
		stored.FinalPrice = booking.FinalPrice
		stored.StartedAt = booking.StartedAt
		stored.EndedAt = booking.EndedAt
		stored.TotalHours = booking.TotalHours
		stored.CancellationReason = booking.CancellationReason
		stored.CancelledBy = booking.CancelledBy
		stored.UpdatedAt = booking.UpdatedAt
		s.bookings[booking.ID] = stored
		return func(s *memState) { s.bookings[booking.ID] = prev }
	})
	return err
}

func (r memBookingRepo) UpdatePaymentStatus(_ context.Context, id uuid.UUID, status entity.PaymentStatus) error {
	r.lockRow(id)

	var err error
	r.write(func(s *memState) func(*memState) {
		prev, ok := s.bookings[id]
		if !ok {
			err = pgx.ErrNoRows
			return nil
		}
		stored := prev
		stored.PaymentStatus = status
		s.bookings[id] = stored
		return func(s *memState) { s.bookings[id] = prev }
	})
	return err
}

func (r memBookingRepo) MarkReviewed(_ context.Context, id, reviewID uuid.UUID) (bool, error) {
	r.lockRow(id)

	var linked bool
	r.write(func(s *memState) func(*memState) {
		prev, ok := s.bookings[id]
		if !ok || prev.IsReviewed {
			return nil
		}
		stored := prev
		stored.IsReviewed = true
		stored.ReviewID = &reviewID
		s.bookings[id] = stored
		linked = true
		return func(s *memState) { s.bookings[id] = prev }
	})
	return linked, nil
}

// ==================== reviews ====================

type memReviewRepo struct{ memBase }

func (r memReviewRepo) Create(_ context.Context, review *entity.Review) error {
	var err error
	r.write(func(s *memState) func(*memState) {
		for _, existing := range s.reviews {
			if existing.BookingID == review.BookingID {
				err = fmt.Errorf("create review: %w", &repository.UniqueViolationError{Constraint: "reviews_booking_id_key"})
				return nil
			}
		}
		s.reviews[review.ID] = *review
		return func(s *memState) { delete(s.reviews, review.ID) }
	})
	if err == nil && r.tx != nil && r.db.failAfterReviewInsert != nil {
		return r.db.failAfterReviewInsert
	}
	return err
}

func (r memReviewRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Review, error) {
	var out *entity.Review
	r.with(func(s *memState) {
		if rv, ok := s.reviews[id]; ok {
			out = &rv
		}
	})
	return out, nil
}

func (r memReviewRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*entity.Review, error) {
	var out *entity.Review
	r.with(func(s *memState) {
		for _, rv := range s.reviews {
			if rv.BookingID == bookingID {
				rv := rv
				out = &rv
				return
			}
		}
	})
	return out, nil
}

func (r memReviewRepo) filter(keep func(rv entity.Review) bool) []*entity.Review {
	var all []*entity.Review
	r.with(func(s *memState) {
		for _, rv := range s.reviews {
			if keep(rv) {
				rv := rv
				all = append(all, &rv)
			}
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all
}

func (r memReviewRepo) FindByProviderID(_ context.Context, providerID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	return page(r.filter(func(rv entity.Review) bool { return rv.ProviderID == providerID }), limit, offset), nil
}

func (r memReviewRepo) CountByProviderID(_ context.Context, providerID uuid.UUID) (int64, error) {
	return int64(len(r.filter(func(rv entity.Review) bool { return rv.ProviderID == providerID }))), nil
}

func (r memReviewRepo) FindByCustomerID(_ context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	return page(r.filter(func(rv entity.Review) bool { return rv.CustomerID == customerID }), limit, offset), nil
}

func (r memReviewRepo) CountByCustomerID(_ context.Context, customerID uuid.UUID) (int64, error) {
	return int64(len(r.filter(func(rv entity.Review) bool { return rv.CustomerID == customerID }))), nil
}

func (r memReviewRepo) GetProviderReviewStats(_ context.Context, providerID uuid.UUID) (int64, int64, error) {
	var sum, count int64
	for _, rv := range r.filter(func(rv entity.Review) bool { return rv.ProviderID == providerID }) {
		sum += int64(rv.Rating)
		count++
	}
	return sum, count, nil
}
