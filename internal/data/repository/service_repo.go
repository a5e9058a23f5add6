package repository

import (
	"context"
	"errors"
	"fmt"

	"service-marketplace/internal/data/entity"
	"service-marketplace/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ServiceRepository stores the service catalog.
type ServiceRepository interface {
	Create(ctx context.Context, service *entity.Service) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Service, error)
	List(ctx context.Context, category string, limit, offset int) ([]*entity.Service, error)
	Count(ctx context.Context, category string) (int64, error)
	Update(ctx context.Context, service *entity.Service) error
}

type serviceRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewServiceRepository(db database.Querier, log *zap.Logger) ServiceRepository {
	return &serviceRepository{
		db:  db,
		log: log.With(zap.String("repository", "service")),
	}
}

const serviceColumns = `id, name, category, description, base_price, price_unit, sub_services,
		is_active, created_at, updated_at`

func (r *serviceRepository) Create(ctx context.Context, service *entity.Service) error {
	query := `
		INSERT INTO services (id, name, category, description, base_price, price_unit,
		                      sub_services, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		service.ID,
		service.Name,
		service.Category,
		service.Description,
		service.BasePrice,
		service.PriceUnit,
		subServicesOrEmpty(service.SubServices),
		service.IsActive,
		service.CreatedAt,
		service.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create service",
			zap.Error(err),
			zap.String("name", service.Name),
		)
		return fmt.Errorf("create service %s: %w", service.Name, mapPgError(err))
	}

	return nil
}

func (r *serviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	service, err := scanService(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find service by ID",
			zap.Error(err),
			zap.String("service_id", id.String()),
		)
		return nil, fmt.Errorf("find service by ID %s: %w", id.String(), err)
	}

	return service, nil
}

// List filters by category when it is non-empty.
func (r *serviceRepository) List(ctx context.Context, category string, limit, offset int) ([]*entity.Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE ($1 = '' OR category = $1)
		ORDER BY category, name
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, category, limit, offset)
	if err != nil {
		r.log.Error("Failed to list services",
			zap.Error(err),
			zap.String("category", category),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []*entity.Service
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			r.log.Error("Failed to scan service row", zap.Error(err))
			return nil, fmt.Errorf("scan service row: %w", err)
		}
		services = append(services, service)
	}

	return services, rows.Err()
}

func (r *serviceRepository) Count(ctx context.Context, category string) (int64, error) {
	query := `SELECT COUNT(*) FROM services WHERE ($1 = '' OR category = $1)`

	var count int64
	if err := r.db.QueryRow(ctx, query, category).Scan(&count); err != nil {
		r.log.Error("Failed to count services",
			zap.Error(err),
			zap.String("category", category),
		)
		return 0, fmt.Errorf("count services: %w", err)
	}

	return count, nil
}

func (r *serviceRepository) Update(ctx context.Context, service *entity.Service) error {
	query := `
		UPDATE services
		SET name = $2, category = $3, description = $4, base_price = $5,
		    price_unit = $6, sub_services = $7, is_active = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		service.ID,
		service.Name,
		service.Category,
		service.Description,
		service.BasePrice,
		service.PriceUnit,
		subServicesOrEmpty(service.SubServices),
		service.IsActive,
		service.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update service",
			zap.Error(err),
			zap.String("service_id", service.ID.String()),
		)
		return fmt.Errorf("update service %s: %w", service.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("service %s: %w", service.ID.String(), pgx.ErrNoRows)
	}

	return nil
}

// subServicesOrEmpty keeps the JSONB column an array rather than null.
func subServicesOrEmpty(subs []entity.SubService) []entity.SubService {
	if subs == nil {
		return []entity.SubService{}
	}
	return subs
}

func scanService(row pgx.Row) (*entity.Service, error) {
	var service entity.Service
	err := row.Scan(
		&service.ID,
		&service.Name,
		&service.Category,
		&service.Description,
		&service.BasePrice,
		&service.PriceUnit,
		&service.SubServices,
		&service.IsActive,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &service, nil
}
