package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/autotaller-api/internal/application/dto"
	"github.com/jhoicas/autotaller-api/internal/application/inventory"
	"github.com/jhoicas/autotaller-api/internal/application/validation"
	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
)

// WarehouseUseCase casos de uso para bodegas.
type WarehouseUseCase struct {
	tx inventory.TxRunner
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(tx inventory.TxRunner) *WarehouseUseCase {
	return &WarehouseUseCase{tx: tx}
}

// Create crea una nueva bodega.
func (uc *WarehouseUseCase) Create(ctx context.Context, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		Code:      in.Code,
		Name:      in.Name,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.tx.Run(ctx, "warehouse.create", func(ctx context.Context, r inventory.Repos) error {
		return r.Warehouses.Create(ctx, warehouse)
	})
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega por ID.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, id string) (*dto.WarehouseResponse, error) {
	var warehouse *entity.Warehouse
	err := uc.tx.Read(ctx, func(ctx context.Context, r inventory.Repos) error {
		var err error
		warehouse, err = r.Warehouses.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.NewNotFound("bodega", id)
	}
	return toWarehouseResponse(warehouse), nil
}

// List lista bodegas con paginación.
func (uc *WarehouseUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.WarehouseListResponse, error) {
	page.DefaultPage()
	var list []*entity.Warehouse
	err := uc.tx.Read(ctx, func(ctx context.Context, r inventory.Repos) error {
		var err error
		list, err = r.Warehouses.List(ctx, page.Limit, page.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	return &dto.WarehouseResponse{
		ID:        w.ID,
		Code:      w.Code,
		Name:      w.Name,
		Address:   w.Address,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
