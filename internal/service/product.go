package service

import (
	"context"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/recipebook/internal/domain"
	"github.com/rise-and-shine/recipebook/internal/repo"
	"github.com/rise-and-shine/recipebook/pkg/pagination"
	"github.com/rise-and-shine/recipebook/pkg/sorter"
	"github.com/uptrace/bun"
)

// productSortFields lists the columns clients may sort the catalog by.
var productSortFields = []string{"name", "category", "unit_cost", "created_at"}

// ProductService manages the ingredient catalog.
type ProductService struct {
	products *repo.ProductRepo
}

// NewProductService creates the product catalog service.
func NewProductService(db *bun.DB) *ProductService {
	return &ProductService{products: repo.NewProductRepo(db)}
}

// CreateProductInput carries a new catalog entry.
type CreateProductInput struct {
	Name          string   `json:"name"            validate:"required,max=255"`
	UnitOfMeasure string   `json:"unit_of_measure" validate:"required,max=50"`
	UnitCost      *float64 `json:"unit_cost"       validate:"omitempty,gte=0"`
	Category      *string  `json:"category"        validate:"omitempty,max=100"`
	Supplier      *string  `json:"supplier"        validate:"omitempty,max=255"`
	Description   *string  `json:"description"`
	Barcode       *string  `json:"barcode"         validate:"omitempty,max=100"`
}

// Create adds a product to the catalog.
func (s *ProductService) Create(
	ctx context.Context,
	actor domain.Actor,
	in *CreateProductInput,
) (*domain.Product, error) {
	product := &domain.Product{
		Name:          in.Name,
		UnitOfMeasure: in.UnitOfMeasure,
		UnitCost:      in.UnitCost,
		Category:      in.Category,
		Supplier:      in.Supplier,
		Description:   in.Description,
		Barcode:       in.Barcode,
	}

	product, err := s.products.Create(ctx, product, actor.Login)
	return product, errx.Wrap(err)
}

// Get returns one product by id.
func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	return product, errx.Wrap(err)
}

// List returns a page of products. The sort string follows the
// "field:asc,field:desc" convention; unknown fields are ignored.
func (s *ProductService) List(
	ctx context.Context,
	page pagination.Request,
	sort string,
) (*pagination.Response[*domain.Product], error) {
	page.Normalize()

	sortOpts := sorter.MakeFromStr(sort, productSortFields...)
	if len(sortOpts) == 0 {
		sortOpts = sorter.MakeFromStr("name:asc", productSortFields...)
	}

	products, total, err := s.products.List(ctx, page, sortOpts)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	resp := pagination.NewResponse(products, total, page)
	return &resp, nil
}

// UpdateProductInput carries a partial product edit.
type UpdateProductInput struct {
	Name          *string  `json:"name"            validate:"omitempty,max=255"`
	UnitOfMeasure *string  `json:"unit_of_measure" validate:"omitempty,max=50"`
	UnitCost      *float64 `json:"unit_cost"       validate:"omitempty,gte=0"`
	Category      *string  `json:"category"        validate:"omitempty,max=100"`
	Supplier      *string  `json:"supplier"        validate:"omitempty,max=255"`
	Description   *string  `json:"description"`
	Barcode       *string  `json:"barcode"         validate:"omitempty,max=100"`
}

// Update applies a partial edit. Only the creator or an admin may edit.
func (s *ProductService) Update(
	ctx context.Context,
	actor domain.Actor,
	id int64,
	in *UpdateProductInput,
) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if err := requireOwnership(product.CreatedBy, actor); err != nil {
		return nil, err
	}

	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.UnitOfMeasure != nil {
		product.UnitOfMeasure = *in.UnitOfMeasure
	}
	if in.UnitCost != nil {
		product.UnitCost = in.UnitCost
	}
	if in.Category != nil {
		product.Category = in.Category
	}
	if in.Supplier != nil {
		product.Supplier = in.Supplier
	}
	if in.Description != nil {
		product.Description = in.Description
	}
	if in.Barcode != nil {
		product.Barcode = in.Barcode
	}

	product, err = s.products.Update(ctx, product, actor.Login)
	return product, errx.Wrap(err)
}

// Delete removes a product. Only the creator or an admin may delete.
func (s *ProductService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return errx.Wrap(err)
	}
	if err := requireOwnership(product.CreatedBy, actor); err != nil {
		return err
	}

	return errx.Wrap(s.products.Delete(ctx, id))
}
