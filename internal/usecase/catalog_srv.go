package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"service-marketplace/internal/data/entity"
	"service-marketplace/internal/data/repository"
	"service-marketplace/internal/dto/request"
	"service-marketplace/internal/dto/response"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// CatalogService manages the services customers can book.
type CatalogService interface {
	CreateService(ctx context.Context, req *request.CreateServiceRequest) (*response.ServiceResponse, error)
	UpdateService(ctx context.Context, serviceID string, req *request.UpdateServiceRequest) (*response.ServiceResponse, error)
	GetService(ctx context.Context, serviceID string) (*response.ServiceResponse, error)
	ListServices(ctx context.Context, req *request.ListServicesRequest) (*response.PaginatedResponse[response.ServiceResponse], error)
}

type catalogService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewCatalogService(repo *repository.Repository, log *zap.Logger) CatalogService {
	return &catalogService{
		repo: repo,
		log:  log.With(zap.String("service", "catalog")),
	}
}

func (s *catalogService) CreateService(ctx context.Context, req *request.CreateServiceRequest) (*response.ServiceResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	subs, err := toSubServices(req.SubServices)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	service := &entity.Service{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		PriceUnit:   entity.PriceUnit(req.PriceUnit),
		SubServices: subs,
		IsActive:    true,
	}

	if err := s.repo.Service.Create(ctx, service); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}

	s.log.Info("Service created",
		zap.String("service_id", service.ID.String()),
		zap.String("name", service.Name),
		zap.String("category", service.Category),
	)

	resp := response.ServiceToResponse(service)
	return &resp, nil
}

func (s *catalogService) UpdateService(ctx context.Context, serviceID string, req *request.UpdateServiceRequest) (*response.ServiceResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	id, err := parseID("id", serviceID)
	if err != nil {
		return nil, err
	}

	service, err := s.repo.Service.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	if service == nil {
		return nil, ErrServiceNotFound
	}

	if req.Name != nil {
		service.Name = *req.Name
	}
	if req.Category != nil {
		service.Category = *req.Category
	}
	if req.Description != nil {
		service.Description = req.Description
	}
	if req.BasePrice != nil {
		service.BasePrice = *req.BasePrice
	}
	if req.PriceUnit != nil {
		service.PriceUnit = entity.PriceUnit(*req.PriceUnit)
	}
	if req.SubServices != nil {
		subs, err := toSubServices(*req.SubServices)
		if err != nil {
			return nil, err
		}
		service.SubServices = subs
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}
	service.UpdatedAt = time.Now()

	if err := s.repo.Service.Update(ctx, service); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("update service: %w", err)
	}

	s.log.Info("Service updated", zap.String("service_id", serviceID))

	resp := response.ServiceToResponse(service)
	return &resp, nil
}

func (s *catalogService) GetService(ctx context.Context, serviceID string) (*response.ServiceResponse, error) {
	id, err := parseID("id", serviceID)
	if err != nil {
		return nil, err
	}

	service, err := s.repo.Service.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	if service == nil {
		return nil, ErrServiceNotFound
	}

	resp := response.ServiceToResponse(service)
	return &resp, nil
}

func (s *catalogService) ListServices(ctx context.Context, req *request.ListServicesRequest) (*response.PaginatedResponse[response.ServiceResponse], error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	services, err := s.repo.Service.List(ctx, req.Category, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	total, err := s.repo.Service.Count(ctx, req.Category)
	if err != nil {
		return nil, fmt.Errorf("count services: %w", err)
	}

	return response.NewPaginatedResponse(response.ServicesToResponse(services), req.Page, req.Limit(), total), nil
}

// toSubServices rejects duplicate names, since bookings look variants up by name.
func toSubServices(reqs []request.SubServiceRequest) ([]entity.SubService, error) {
	subs := make([]entity.SubService, 0, len(reqs))
	seen := make(map[string]struct{}, len(reqs))
	for _, r := range reqs {
		if _, dup := seen[r.Name]; dup {
			return nil, newValidationError("sub_services", fmt.Sprintf("Duplicate sub-service %q", r.Name))
		}
		seen[r.Name] = struct{}{}
		subs = append(subs, entity.SubService{
			Name:      r.Name,
			Price:     r.Price,
			PriceUnit: entity.PriceUnit(r.PriceUnit),
		})
	}
	return subs, nil
}
