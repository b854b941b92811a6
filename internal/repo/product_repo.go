package repo

import (
	"context"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/recipebook/internal/domain"
	"github.com/rise-and-shine/recipebook/pkg/pagination"
	"github.com/rise-and-shine/recipebook/pkg/pg"
	"github.com/rise-and-shine/recipebook/pkg/sorter"
	"github.com/uptrace/bun"
)

// ProductRepo persists ingredient catalog entries.
type ProductRepo struct {
	db bun.IDB
}

// NewProductRepo creates a product repository.
func NewProductRepo(db bun.IDB) *ProductRepo {
	return &ProductRepo{db: db}
}

// Create inserts a new product, stamping audit fields with the actor login.
func (r *ProductRepo) Create(ctx context.Context, product *domain.Product, by string) (*domain.Product, error) {
	product.SetCreated(by)

	q := r.db.NewInsert().Model(product).Returning("*")
	if _, err := q.Exec(ctx); err != nil {
		if pg.ConstraintName(err) == constraintProductName {
			return nil, errx.New(
				"product name already exists",
				errx.WithCode(CodeProductNameAlreadyExists),
				errx.WithType(errx.T_Conflict),
				errx.WithDetails(errx.D{"name": product.Name}),
			)
		}
		return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}
	return product, nil
}

// GetByID fetches a product by primary key.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	product := new(domain.Product)

	err := r.db.NewSelect().Model(product).Where("p.id = ?", id).Scan(ctx)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, productNotFound(id)
		}
		return nil, errx.Wrap(err)
	}
	return product, nil
}

// List returns a page of products ordered by the given sort options.
func (r *ProductRepo) List(
	ctx context.Context,
	page pagination.Request,
	sort sorter.SortOpts,
) ([]*domain.Product, int64, error) {
	var products []*domain.Product

	q := r.db.NewSelect().Model(&products)
	for _, opt := range sort {
		q = q.OrderExpr(opt.ToSQL())
	}

	total, err := q.Limit(page.Limit()).Offset(page.Offset()).ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errx.Wrap(err)
	}
	return products, int64(total), nil
}

// Update persists product changes, stamping the update audit fields.
func (r *ProductRepo) Update(ctx context.Context, product *domain.Product, by string) (*domain.Product, error) {
	product.SetUpdated(by)

	q := r.db.NewUpdate().Model(product).WherePK().Returning("*")
	res, err := q.Exec(ctx)
	if err != nil {
		if pg.ConstraintName(err) == constraintProductName {
			return nil, errx.New(
				"product name already exists",
				errx.WithCode(CodeProductNameAlreadyExists),
				errx.WithType(errx.T_Conflict),
				errx.WithDetails(errx.D{"name": product.Name}),
			)
		}
		return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if affected == 0 {
		return nil, productNotFound(product.ID)
	}
	return product, nil
}

// Delete removes a product by primary key.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*domain.Product)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errx.Wrap(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errx.Wrap(err)
	}
	if affected == 0 {
		return productNotFound(id)
	}
	return nil
}

func productNotFound(id int64) error {
	return errx.New(
		"product not found",
		errx.WithCode(CodeProductNotFound),
		errx.WithType(errx.T_NotFound),
		errx.WithDetails(errx.D{"product_id": id}),
	)
}
