package repo

import (
	"context"
	"database/sql"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/recipebook/internal/domain"
	"github.com/rise-and-shine/recipebook/pkg/pagination"
	"github.com/rise-and-shine/recipebook/pkg/pg"
	"github.com/uptrace/bun"
)

// ImageRepo persists recipe image metadata rows.
//
// Reads order images by (display_order asc, created_at asc). Multi-row
// write compositions (demote all, then promote one) are run by the service
// layer inside a transaction via WithIDB.
type ImageRepo struct {
	db bun.IDB
}

// NewImageRepo creates an image repository.
func NewImageRepo(db bun.IDB) *ImageRepo {
	return &ImageRepo{db: db}
}

// WithIDB returns a copy of the repository bound to the given executor,
// typically a transaction.
func (r *ImageRepo) WithIDB(idb bun.IDB) *ImageRepo {
	return &ImageRepo{db: idb}
}

// Create inserts a new image row, stamping audit fields with the actor login.
func (r *ImageRepo) Create(ctx context.Context, img *domain.RecipeImage, by string) (*domain.RecipeImage, error) {
	img.SetCreated(by)

	q := r.db.NewInsert().Model(img).Returning("*")
	if _, err := q.Exec(ctx); err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}
	return img, nil
}

// GetByID fetches an image row by primary key.
func (r *ImageRepo) GetByID(ctx context.Context, id int64) (*domain.RecipeImage, error) {
	img := new(domain.RecipeImage)

	err := r.db.NewSelect().Model(img).Where("img.id = ?", id).Scan(ctx)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, imageNotFound(id)
		}
		return nil, errx.Wrap(err)
	}
	return img, nil
}

// ListByRecipe returns a page of a recipe's images ordered by display order,
// ties broken by creation time.
func (r *ImageRepo) ListByRecipe(
	ctx context.Context,
	recipeID int64,
	page pagination.Request,
) ([]*domain.RecipeImage, int64, error) {
	var images []*domain.RecipeImage

	total, err := r.db.NewSelect().
		Model(&images).
		Where("img.recipe_id = ?", recipeID).
		Order("img.display_order ASC", "img.created_at ASC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errx.Wrap(err)
	}
	return images, int64(total), nil
}

// PrincipalByRecipe fetches the recipe's principal image.
func (r *ImageRepo) PrincipalByRecipe(ctx context.Context, recipeID int64) (*domain.RecipeImage, error) {
	img := new(domain.RecipeImage)

	err := r.db.NewSelect().
		Model(img).
		Where("img.recipe_id = ?", recipeID).
		Where("img.principal").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, errx.New(
				"recipe has no principal image",
				errx.WithCode(CodeImageNotFound),
				errx.WithType(errx.T_NotFound),
				errx.WithDetails(errx.D{"recipe_id": recipeID}),
			)
		}
		return nil, errx.Wrap(err)
	}
	return img, nil
}

// FirstByRecipe returns the replacement-principal candidate: the remaining
// image with the lowest display order, ties broken by earliest creation.
// Returns (nil, nil) when the recipe has no images left.
func (r *ImageRepo) FirstByRecipe(ctx context.Context, recipeID int64) (*domain.RecipeImage, error) {
	img := new(domain.RecipeImage)

	err := r.db.NewSelect().
		Model(img).
		Where("img.recipe_id = ?", recipeID).
		Order("img.display_order ASC", "img.created_at ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, nil
		}
		return nil, errx.Wrap(err)
	}
	return img, nil
}

// Update persists image row changes, stamping the update audit fields.
func (r *ImageRepo) Update(ctx context.Context, img *domain.RecipeImage, by string) (*domain.RecipeImage, error) {
	img.SetUpdated(by)

	q := r.db.NewUpdate().Model(img).WherePK().Returning("*")
	res, err := q.Exec(ctx)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if affected == 0 {
		return nil, imageNotFound(img.ID)
	}
	return img, nil
}

// SetOrder updates one image's display order.
func (r *ImageRepo) SetOrder(ctx context.Context, id int64, order int, by string) error {
	res, err := r.db.NewUpdate().
		Model((*domain.RecipeImage)(nil)).
		Set("display_order = ?", order).
		Set("updated_at = CURRENT_TIMESTAMP").
		Set("updated_by = ?", by).
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
		return imageNotFound(id)
	}
	return nil
}

// SetPrincipal flips one image's principal flag.
func (r *ImageRepo) SetPrincipal(ctx context.Context, id int64, principal bool, by string) error {
	res, err := r.db.NewUpdate().
		Model((*domain.RecipeImage)(nil)).
		Set("principal = ?", principal).
		Set("updated_at = CURRENT_TIMESTAMP").
		Set("updated_by = ?", by).
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
		return imageNotFound(id)
	}
	return nil
}

// DemoteAllByRecipe clears the principal flag on every image of a recipe.
func (r *ImageRepo) DemoteAllByRecipe(ctx context.Context, recipeID int64, by string) error {
	_, err := r.db.NewUpdate().
		Model((*domain.RecipeImage)(nil)).
		Set("principal = FALSE").
		Set("updated_at = CURRENT_TIMESTAMP").
		Set("updated_by = ?", by).
		Where("recipe_id = ?", recipeID).
		Where("principal").
		Exec(ctx)
	return errx.Wrap(err)
}

// Delete removes an image row by primary key.
func (r *ImageRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*domain.RecipeImage)(nil)).
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
		return imageNotFound(id)
	}
	return nil
}

// DeleteByRecipe removes all image rows of a recipe and returns the
// relative paths of the files that backed them.
func (r *ImageRepo) DeleteByRecipe(ctx context.Context, recipeID int64) ([]string, error) {
	var paths []string

	err := r.db.NewDelete().
		Model((*domain.RecipeImage)(nil)).
		Where("recipe_id = ?", recipeID).
		Returning("relative_path").
		Scan(ctx, &paths)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return paths, nil
}

// CountByRecipe returns how many images a recipe has.
func (r *ImageRepo) CountByRecipe(ctx context.Context, recipeID int64) (int, error) {
	count, err := r.db.NewSelect().
		Model((*domain.RecipeImage)(nil)).
		Where("recipe_id = ?", recipeID).
		Count(ctx)
	if err != nil {
		return 0, errx.Wrap(err)
	}
	return count, nil
}

// SumBytesByRecipe returns the total stored byte size of a recipe's images.
func (r *ImageRepo) SumBytesByRecipe(ctx context.Context, recipeID int64) (int64, error) {
	var total sql.NullInt64

	err := r.db.NewSelect().
		Model((*domain.RecipeImage)(nil)).
		ColumnExpr("SUM(size_bytes)").
		Where("recipe_id = ?", recipeID).
		Scan(ctx, &total)
	if err != nil {
		return 0, errx.Wrap(err)
	}
	return total.Int64, nil
}

// MaxDisplayOrder returns the highest display order among a recipe's images,
// zero when the recipe has none.
func (r *ImageRepo) MaxDisplayOrder(ctx context.Context, recipeID int64) (int, error) {
	var maxOrder sql.NullInt64

	err := r.db.NewSelect().
		Model((*domain.RecipeImage)(nil)).
		ColumnExpr("MAX(display_order)").
		Where("recipe_id = ?", recipeID).
		Scan(ctx, &maxOrder)
	if err != nil {
		return 0, errx.Wrap(err)
	}
	return int(maxOrder.Int64), nil
}

func imageNotFound(id int64) error {
	return errx.New(
		"image not found",
		errx.WithCode(CodeImageNotFound),
		errx.WithType(errx.T_NotFound),
		errx.WithDetails(errx.D{"image_id": id}),
	)
}
