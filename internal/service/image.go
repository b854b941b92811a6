package service

import (
	"bytes"
	"context"
	"io"
	"path"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/recipebook/internal/domain"
	"github.com/rise-and-shine/recipebook/internal/repo"
	"github.com/rise-and-shine/recipebook/internal/upload"
	"github.com/rise-and-shine/recipebook/pkg/filestore"
	"github.com/rise-and-shine/recipebook/pkg/imageproc"
	"github.com/rise-and-shine/recipebook/pkg/logger"
	"github.com/rise-and-shine/recipebook/pkg/pagination"
	"github.com/rise-and-shine/recipebook/pkg/pg"
	"github.com/uptrace/bun"
)

// ImageConfig holds the image pipeline settings.
type ImageConfig struct {
	// MaxImagesPerRecipe caps how many images one recipe can hold. Default 10.
	MaxImagesPerRecipe int `yaml:"max_images_per_recipe" default:"10"`

	// BaseURL is prepended when building absolute image file URLs.
	BaseURL string `yaml:"base_url" validate:"required"`
}

// imageStore is the persistence surface the pipeline needs. Implemented by
// *repo.ImageRepo; faked in tests.
type imageStore interface {
	Create(ctx context.Context, img *domain.RecipeImage, by string) (*domain.RecipeImage, error)
	GetByID(ctx context.Context, id int64) (*domain.RecipeImage, error)
	ListByRecipe(ctx context.Context, recipeID int64, page pagination.Request) ([]*domain.RecipeImage, int64, error)
	PrincipalByRecipe(ctx context.Context, recipeID int64) (*domain.RecipeImage, error)
	FirstByRecipe(ctx context.Context, recipeID int64) (*domain.RecipeImage, error)
	Update(ctx context.Context, img *domain.RecipeImage, by string) (*domain.RecipeImage, error)
	SetOrder(ctx context.Context, id int64, order int, by string) error
	DemoteAllByRecipe(ctx context.Context, recipeID int64, by string) error
	Delete(ctx context.Context, id int64) error
	CountByRecipe(ctx context.Context, recipeID int64) (int, error)
	SumBytesByRecipe(ctx context.Context, recipeID int64) (int64, error)
	MaxDisplayOrder(ctx context.Context, recipeID int64) (int, error)
}

// recipeReader resolves recipes for existence and ownership checks.
type recipeReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Recipe, error)
}

// imageTxFunc runs fn inside a transaction, handing it a transaction-scoped
// image store.
type imageTxFunc func(ctx context.Context, fn func(ctx context.Context, images imageStore) error) error

// ImageService orchestrates the image pipeline: upload with validation and
// storage, listing, metadata updates, reordering, principal selection,
// deletion with replacement promotion, statistics and file serving.
type ImageService struct {
	cfg       ImageConfig
	validator *upload.Validator
	files     filestore.FileStore
	images    imageStore
	recipes   recipeReader
	inTx      imageTxFunc
	log       logger.Logger
}

// NewImageService wires the pipeline over the database-backed stores.
func NewImageService(
	db *bun.DB,
	validator *upload.Validator,
	files filestore.FileStore,
	cfg ImageConfig,
	log logger.Logger,
) *ImageService {
	images := repo.NewImageRepo(db)

	return &ImageService{
		cfg:       cfg,
		validator: validator,
		files:     files,
		images:    images,
		recipes:   repo.NewRecipeRepo(db),
		inTx: func(ctx context.Context, fn func(ctx context.Context, images imageStore) error) error {
			return pg.RunInTx(ctx, db, func(ctx context.Context, tx bun.Tx) error {
				return fn(ctx, images.WithIDB(tx))
			})
		},
		log: log.Named("service.image"),
	}
}

// UploadImageInput carries one decoded multipart upload.
type UploadImageInput struct {
	RecipeID     int64
	Data         []byte
	Filename     string
	DeclaredMime string
	Description  *string
	Principal    *bool
	Order        *int
}

// Upload validates, stores and records a new image for a recipe.
//
// If the metadata insert fails after the file has been written, the file is
// left behind on disk. This orphaned-file window is a known limitation; it
// is logged, not compensated.
func (s *ImageService) Upload(
	ctx context.Context,
	actor domain.Actor,
	in *UploadImageInput,
) (*domain.RecipeImage, error) {
	recipe, err := s.recipes.GetByID(ctx, in.RecipeID)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if err := requireOwnership(recipe.CreatedBy, actor); err != nil {
		return nil, err
	}

	count, err := s.images.CountByRecipe(ctx, in.RecipeID)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if count >= s.cfg.MaxImagesPerRecipe {
		return nil, errx.New(
			"recipe image limit exceeded",
			errx.WithCode(CodeImageLimitExceeded),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{
				"recipe_id": in.RecipeID,
				"limit":     s.cfg.MaxImagesPerRecipe,
			}),
		)
	}

	if res := s.validator.Validate(in.Data, in.Filename, in.DeclaredMime, int64(len(in.Data))); !res.OK {
		return nil, errx.New(
			"file failed validation",
			errx.WithCode(CodeImageValidationFailed),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{"errors": res.Errors}),
		)
	}

	info, err := s.files.Save(ctx, in.Filename, bytes.NewReader(in.Data))
	if err != nil {
		return nil, errx.Wrap(err)
	}

	img := &domain.RecipeImage{
		RecipeID:     in.RecipeID,
		StoredName:   info.StoredName,
		OriginalName: info.OriginalName,
		RelativePath: info.RelativePath,
		MimeType:     in.DeclaredMime,
		SizeBytes:    info.Size,
		Description:  in.Description,
	}

	// Dimensions were already verified by the validator; a decode failure
	// here only leaves the columns null.
	if width, height, dimErr := imageproc.Dimensions(in.Data); dimErr == nil {
		img.Width = &width
		img.Height = &height
	}

	if in.Order != nil {
		img.DisplayOrder = *in.Order
	} else {
		maxOrder, maxErr := s.images.MaxDisplayOrder(ctx, in.RecipeID)
		if maxErr != nil {
			return nil, errx.Wrap(maxErr)
		}
		img.DisplayOrder = maxOrder + 1
	}

	wantPrincipal := in.Principal != nil && *in.Principal
	img.Principal = wantPrincipal || count == 0

	err = s.inTx(ctx, func(ctx context.Context, images imageStore) error {
		if wantPrincipal {
			if demoteErr := images.DemoteAllByRecipe(ctx, in.RecipeID, actor.Login); demoteErr != nil {
				return errx.Wrap(demoteErr)
			}
		}
		_, createErr := images.Create(ctx, img, actor.Login)
		return errx.Wrap(createErr)
	})
	if err != nil {
		s.log.WithContext(ctx).
			With("relative_path", info.RelativePath).
			Warn("image row insert failed after file write, file is orphaned")
		return nil, errx.Wrap(err)
	}

	return img, nil
}

// List returns a page of a recipe's images ordered by display order, ties
// broken by creation time.
func (s *ImageService) List(
	ctx context.Context,
	recipeID int64,
	page pagination.Request,
) (*pagination.Response[*domain.RecipeImage], error) {
	if _, err := s.recipes.GetByID(ctx, recipeID); err != nil {
		return nil, errx.Wrap(err)
	}

	page.Normalize()

	images, total, err := s.images.ListByRecipe(ctx, recipeID, page)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	resp := pagination.NewResponse(images, total, page)
	return &resp, nil
}

// Get returns one image row by id.
func (s *ImageService) Get(ctx context.Context, imageID int64) (*domain.RecipeImage, error) {
	img, err := s.images.GetByID(ctx, imageID)
	return img, errx.Wrap(err)
}

// UpdateImageInput carries a partial metadata edit. Only non-nil fields are
// applied.
type UpdateImageInput struct {
	Description *string
	Principal   *bool
	Order       *int
}

// Update applies a partial edit to an image. Promoting to principal demotes
// all siblings first, inside the same transaction.
func (s *ImageService) Update(
	ctx context.Context,
	actor domain.Actor,
	imageID int64,
	in *UpdateImageInput,
) (*domain.RecipeImage, error) {
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if err := s.requireRecipeOwnership(ctx, img.RecipeID, actor); err != nil {
		return nil, err
	}

	if in.Description != nil {
		img.Description = in.Description
	}
	if in.Order != nil {
		img.DisplayOrder = *in.Order
	}

	promote := in.Principal != nil && *in.Principal && !img.Principal
	if in.Principal != nil {
		img.Principal = *in.Principal
	}

	err = s.inTx(ctx, func(ctx context.Context, images imageStore) error {
		if promote {
			if demoteErr := images.DemoteAllByRecipe(ctx, img.RecipeID, actor.Login); demoteErr != nil {
				return errx.Wrap(demoteErr)
			}
		}
		_, updErr := images.Update(ctx, img, actor.Login)
		return errx.Wrap(updErr)
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return img, nil
}

// ReorderItem assigns a new display order to one image.
type ReorderItem struct {
	ImageID int64 `json:"image_id" validate:"required"`
	Order   int   `json:"order"    validate:"gte=0"`
}

// Reorder assigns new display orders to a recipe's images. Validation is
// all-or-nothing: when any referenced image does not belong to the recipe,
// no order is changed. Duplicate target orders are accepted; reads break
// ties by creation time.
func (s *ImageService) Reorder(
	ctx context.Context,
	actor domain.Actor,
	recipeID int64,
	items []ReorderItem,
) error {
	if len(items) == 0 {
		return errx.New(
			"reorder payload is empty",
			errx.WithCode(CodeEmptyReorderPayload),
			errx.WithType(errx.T_Validation),
		)
	}

	if err := s.requireRecipeOwnership(ctx, recipeID, actor); err != nil {
		return err
	}

	// Validate membership of every referenced image before any write.
	for _, item := range items {
		img, err := s.images.GetByID(ctx, item.ImageID)
		if err != nil {
			return errx.Wrap(err)
		}
		if img.RecipeID != recipeID {
			return imageRecipeMismatch(item.ImageID, recipeID)
		}
	}

	return s.inTx(ctx, func(ctx context.Context, images imageStore) error {
		for _, item := range items {
			if err := images.SetOrder(ctx, item.ImageID, item.Order, actor.Login); err != nil {
				return errx.Wrap(err)
			}
		}
		return nil
	})
}

// SetPrincipal makes the given image the recipe's principal one. Demote and
// promote run in a single transaction, so the at-most-one-principal
// invariant holds after every completed call. The operation is idempotent.
func (s *ImageService) SetPrincipal(ctx context.Context, actor domain.Actor, recipeID, imageID int64) error {
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return errx.Wrap(err)
	}
	if img.RecipeID != recipeID {
		return imageRecipeMismatch(imageID, recipeID)
	}
	if err := s.requireRecipeOwnership(ctx, recipeID, actor); err != nil {
		return err
	}

	return s.inTx(ctx, func(ctx context.Context, images imageStore) error {
		if demoteErr := images.DemoteAllByRecipe(ctx, recipeID, actor.Login); demoteErr != nil {
			return errx.Wrap(demoteErr)
		}

		img.Principal = true
		_, updErr := images.Update(ctx, img, actor.Login)
		return errx.Wrap(updErr)
	})
}

// Delete removes an image row and its file. The row deletion and the
// replacement-principal promotion run in one transaction; the physical file
// deletion afterwards is best effort, a failure is logged and swallowed.
func (s *ImageService) Delete(ctx context.Context, actor domain.Actor, imageID int64) error {
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return errx.Wrap(err)
	}
	if err := s.requireRecipeOwnership(ctx, img.RecipeID, actor); err != nil {
		return err
	}

	err = s.inTx(ctx, func(ctx context.Context, images imageStore) error {
		if delErr := images.Delete(ctx, img.ID); delErr != nil {
			return errx.Wrap(delErr)
		}

		if !img.Principal {
			return nil
		}

		// Promote the remaining image with the lowest order, ties by
		// earliest creation, when one exists.
		next, nextErr := images.FirstByRecipe(ctx, img.RecipeID)
		if nextErr != nil {
			return errx.Wrap(nextErr)
		}
		if next == nil {
			return nil
		}

		next.Principal = true
		_, updErr := images.Update(ctx, next, actor.Login)
		return errx.Wrap(updErr)
	})
	if err != nil {
		return errx.Wrap(err)
	}

	if _, delErr := s.files.Delete(ctx, img.RelativePath); delErr != nil {
		s.log.WithContext(ctx).
			With("relative_path", img.RelativePath).
			With("delete_error", delErr.Error()).
			Warn("failed to delete image file, metadata row already removed")
	}

	return nil
}

// Principal returns the recipe's principal image.
func (s *ImageService) Principal(ctx context.Context, recipeID int64) (*domain.RecipeImage, error) {
	if _, err := s.recipes.GetByID(ctx, recipeID); err != nil {
		return nil, errx.Wrap(err)
	}

	img, err := s.images.PrincipalByRecipe(ctx, recipeID)
	return img, errx.Wrap(err)
}

// ImageStatistics aggregates a recipe's image usage.
type ImageStatistics struct {
	Count      int   `json:"count"`
	TotalBytes int64 `json:"total_bytes"`
	Limit      int   `json:"limit"`
}

// Statistics returns count, total stored bytes and the configured limit for
// a recipe. Pure aggregation, no mutation.
func (s *ImageService) Statistics(ctx context.Context, recipeID int64) (*ImageStatistics, error) {
	if _, err := s.recipes.GetByID(ctx, recipeID); err != nil {
		return nil, errx.Wrap(err)
	}

	count, err := s.images.CountByRecipe(ctx, recipeID)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	totalBytes, err := s.images.SumBytesByRecipe(ctx, recipeID)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &ImageStatistics{
		Count:      count,
		TotalBytes: totalBytes,
		Limit:      s.cfg.MaxImagesPerRecipe,
	}, nil
}

// ServedFile is an image file ready to be streamed to the client.
type ServedFile struct {
	Data     []byte
	MimeType string
	Name     string
}

// ServeFile loads the file at relativePath, optionally resized to the named
// variant (small or medium).
func (s *ImageService) ServeFile(ctx context.Context, relativePath, sizeVariant string) (*ServedFile, error) {
	f, err := s.files.Load(ctx, relativePath)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	defer f.Content.Close()

	data, err := io.ReadAll(f.Content)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	size := imageproc.ParseSize(sizeVariant)
	if size != imageproc.Original {
		resized, resizeErr := imageproc.Resize(data, size, path.Ext(relativePath))
		if resizeErr != nil {
			return nil, errx.Wrap(resizeErr)
		}
		data = resized
	}

	return &ServedFile{
		Data:     data,
		MimeType: f.Info.MimeType,
		Name:     f.Info.StoredName,
	}, nil
}

// UploadConfig describes the upload constraints exposed to clients.
type UploadConfig struct {
	MaxFileSize        int64    `json:"max_file_size"`
	AllowedExtensions  []string `json:"allowed_extensions"`
	MaxImagesPerRecipe int      `json:"max_images_per_recipe"`
}

// Config returns the upload constraints currently in force.
func (s *ImageService) Config() *UploadConfig {
	vcfg := s.validator.Config()
	return &UploadConfig{
		MaxFileSize:        vcfg.MaxFileSize,
		AllowedExtensions:  vcfg.AllowedExtensions,
		MaxImagesPerRecipe: s.cfg.MaxImagesPerRecipe,
	}
}

// FileURL builds the absolute URL a client can fetch the stored file from.
func (s *ImageService) FileURL(relativePath string) string {
	return s.cfg.BaseURL + "/api/receitas/imagens/arquivo/" + relativePath
}

func (s *ImageService) requireRecipeOwnership(ctx context.Context, recipeID int64, actor domain.Actor) error {
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return errx.Wrap(err)
	}
	return requireOwnership(recipe.CreatedBy, actor)
}

func imageRecipeMismatch(imageID, recipeID int64) error {
	return errx.New(
		"image does not belong to the given recipe",
		errx.WithCode(CodeImageRecipeMismatch),
		errx.WithType(errx.T_Validation),
		errx.WithDetails(errx.D{
			"image_id":  imageID,
			"recipe_id": recipeID,
		}),
	)
}

// requireOwnership allows the creator of a resource and admins through.
func requireOwnership(createdBy string, actor domain.Actor) error {
	if actor.IsAdmin() || actor.Login == createdBy {
		return nil
	}
	return errx.New(
		"only the owner or an admin may modify this resource",
		errx.WithCode(CodeNotResourceOwner),
		errx.WithType(errx.T_Forbidden),
		errx.WithDetails(errx.D{"owner": createdBy, "actor": actor.Login}),
	)
}
