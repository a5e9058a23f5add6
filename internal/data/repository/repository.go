package repository

import (
	"context"
	"fmt"

	"service-marketplace/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User     UserRepository
	Provider ProviderRepository
	Service  ServiceRepository
	Booking  BookingRepository
	Review   ReviewRepository

	// Tx runs a function against repositories bound to one transaction.
	Tx Transactor
}

// Transactor commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(repo *Repository) error) error
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	repo := newRepositories(db, log)
	repo.Tx = &pgTransactor{db: db, log: log.With(zap.String("repository", "tx"))}
	return repo
}

func newRepositories(q database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		User:     NewUserRepository(q, log),
		Provider: NewProviderRepository(q, log),
		Service:  NewServiceRepository(q, log),
		Booking:  NewBookingRepository(q, log),
		Review:   NewReviewRepository(q, log),
	}
}

type pgTransactor struct {
	db  database.PgxIface
	log *zap.Logger
}

func (t *pgTransactor) WithinTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		t.log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("begin transaction: %w", err)
	}
	// No-op once committed.
	defer func() { _ = tx.Rollback(ctx) }()

	txRepo := newRepositories(tx, t.log)
	txRepo.Tx = nestedTransactor{repo: txRepo}

	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		t.log.Error("Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// nestedTransactor joins the surrounding transaction.
type nestedTransactor struct {
	repo *Repository
}

func (n nestedTransactor) WithinTransaction(_ context.Context, fn func(repo *Repository) error) error {
	return fn(n.repo)
}
