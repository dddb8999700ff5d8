package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/autotaller-api/internal/application/dto"
	"github.com/jhoicas/autotaller-api/internal/application/inventory"
	"github.com/jhoicas/autotaller-api/internal/application/validation"
	"github.com/jhoicas/autotaller-api/internal/domain"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
)

// ProductUseCase casos de uso del maestro de productos. Cost y Quantity se manejan vía movimientos.
type ProductUseCase struct {
	tx inventory.TxRunner
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(tx inventory.TxRunner) *ProductUseCase {
	return &ProductUseCase{tx: tx}
}

// Create crea un nuevo producto. Cost y Quantity inician en 0.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	product := &entity.Product{
		ID:           uuid.New().String(),
		Code:         in.Code,
		Name:         in.Name,
		Unit:         in.Unit,
		Price:        in.Price,
		Cost:         decimal.Zero,
		Quantity:     decimal.Zero,
		ReorderLevel: in.ReorderLevel,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := uc.tx.Run(ctx, "product.create", func(ctx context.Context, r inventory.Repos) error {
		existing, err := r.Products.GetByCode(ctx, in.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return &domain.ConflictError{Entity: "producto", Key: in.Code}
		}
		return r.Products.Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	var product *entity.Product
	err := uc.tx.Read(ctx, func(ctx context.Context, r inventory.Repos) error {
		var err error
		product, err = r.Products.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFound("producto", id)
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar Cost ni Quantity.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	var product *entity.Product
	err := uc.tx.Run(ctx, "product.update", func(ctx context.Context, r inventory.Repos) error {
		p, err := r.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NewNotFound("producto", id)
		}
		if in.Name != nil {
			p.Name = *in.Name
		}
		if in.Unit != nil {
			p.Unit = *in.Unit
		}
		if in.Price != nil {
			if in.Price.IsNegative() {
				return domain.NewValidation("price", "no puede ser negativo")
			}
			p.Price = *in.Price
		}
		if in.ReorderLevel != nil {
			if in.ReorderLevel.IsNegative() {
				return domain.NewValidation("reorder_level", "no puede ser negativo")
			}
			p.ReorderLevel = *in.ReorderLevel
		}
		p.UpdatedAt = time.Now().UTC()
		product = p
		return r.Products.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	var list []*entity.Product
	err := uc.tx.Read(ctx, func(ctx context.Context, r inventory.Repos) error {
		var err error
		list, err = r.Products.List(ctx, page.Limit, page.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:               p.ID,
		Code:             p.Code,
		Name:             p.Name,
		Unit:             p.Unit,
		Price:            p.Price,
		Cost:             p.Cost,
		Quantity:         p.Quantity,
		ReorderLevel:     p.ReorderLevel,
		LastPurchaseDate: p.LastPurchaseDate,
		LastSoldDate:     p.LastSoldDate,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
