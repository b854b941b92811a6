package httpapi

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/rise-and-shine/recipebook/internal/domain"
	"github.com/rise-and-shine/recipebook/internal/service"
	"github.com/rise-and-shine/recipebook/pkg/filestore"
	"github.com/rise-and-shine/recipebook/pkg/http/server/forward"
	"github.com/rise-and-shine/recipebook/pkg/meta"
	"github.com/rise-and-shine/recipebook/pkg/pagination"
	"github.com/samber/lo"
	"github.com/spf13/cast"
)

const codeMissingUploadFile = "MISSING_UPLOAD_FILE"

// registerImageRoutes mounts the image pipeline endpoints. The literal
// segments (config, arquivo) are registered before the parameterized ones so
// they are matched first.
func (a *API) registerImageRoutes(r fiber.Router) {
	images := r.Group("/receitas")

	images.Get("/imagens/config", a.uploadConfig)
	images.Get("/imagens/arquivo/*", a.serveImageFile)

	images.Get("/imagens/:imagemId", forward.ToUseCase(a.getImage))
	images.Put("/imagens/:imagemId", a.requireAuth, toActorUseCase(a.updateImage))
	images.Delete("/imagens/:imagemId", a.requireAuth, toActorUseCaseNoResp(a.deleteImage))

	images.Get("/:receitaId/imagens", forward.ToUseCase(a.listImages))
	images.Post("/:receitaId/imagens", a.requireAuth, a.uploadImage)
	images.Put("/:receitaId/imagens/reordenar", a.requireAuth, toActorUseCaseNoResp(a.reorderImages))
	images.Get("/:receitaId/imagens/principal", forward.ToUseCase(a.principalImage))
	images.Put("/:receitaId/imagens/:imagemId/principal", a.requireAuth, toActorUseCaseNoResp(a.setPrincipalImage))
	images.Get("/:receitaId/imagens/estatisticas", forward.ToUseCase(a.imageStatistics))
}

// imageResponse is the public view of an image row, with the URL the file can
// be fetched from.
type imageResponse struct {
	ID           int64     `json:"id"`
	RecipeID     int64     `json:"recipe_id"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	Width        *int      `json:"width"`
	Height       *int      `json:"height"`
	Principal    bool      `json:"principal"`
	Description  *string   `json:"description"`
	DisplayOrder int       `json:"display_order"`
	URL          string    `json:"url"`
	CreatedAt    time.Time `json:"created_at"`
	CreatedBy    string    `json:"created_by"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *API) imageDTO(img *domain.RecipeImage) *imageResponse {
	return &imageResponse{
		ID:           img.ID,
		RecipeID:     img.RecipeID,
		OriginalName: img.OriginalName,
		MimeType:     img.MimeType,
		SizeBytes:    img.SizeBytes,
		Width:        img.Width,
		Height:       img.Height,
		Principal:    img.Principal,
		Description:  img.Description,
		DisplayOrder: img.DisplayOrder,
		URL:          a.images.FileURL(img.RelativePath),
		CreatedAt:    img.CreatedAt,
		CreatedBy:    img.CreatedBy,
		UpdatedAt:    img.UpdatedAt,
	}
}

// uploadImage handles the multipart upload form. Oversize files are rejected
// with 413 before any validation or storage work happens.
func (a *API) uploadImage(c *fiber.Ctx) error {
	recipeID, err := c.ParamsInt("receitaId")
	if err != nil || recipeID <= 0 {
		return errx.New(
			"path parameter receitaId must be a positive integer",
			errx.WithCode(codeInvalidPathParams),
			errx.WithType(errx.T_Validation),
		)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return errx.New(
			`multipart field "file" is required`,
			errx.WithCode(codeMissingUploadFile),
			errx.WithType(errx.T_Validation),
		)
	}

	if maxSize := a.images.Config().MaxFileSize; fh.Size > maxSize {
		return a.writePayloadTooLarge(c, fh.Size, maxSize)
	}

	f, err := fh.Open()
	if err != nil {
		return errx.Wrap(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return errx.Wrap(err)
	}

	in := &service.UploadImageInput{
		RecipeID:     int64(recipeID),
		Data:         data,
		Filename:     fh.Filename,
		DeclaredMime: fh.Header.Get(fiber.HeaderContentType),
	}
	if v := c.FormValue("description"); v != "" {
		in.Description = &v
	}
	if v := c.FormValue("isPrincipal"); v != "" {
		principal := cast.ToBool(v)
		in.Principal = &principal
	}
	if v := c.FormValue("order"); v != "" {
		order := cast.ToInt(v)
		in.Order = &order
	}

	img, err := a.images.Upload(c.UserContext(), actorFromCtx(c), in)
	if err != nil {
		return errx.Wrap(err)
	}

	return c.Status(fiber.StatusCreated).JSON(a.imageDTO(img))
}

// writePayloadTooLarge writes a 413 in the standard error response shape.
// The generic error handler has no mapping for this status, so the upload
// handler crafts it directly.
func (a *API) writePayloadTooLarge(c *fiber.Ctx, size, maxSize int64) error {
	lang := c.Get(fiber.HeaderAcceptLanguage)

	return c.Status(fiber.StatusRequestEntityTooLarge).JSON(map[string]any{
		"trace_id": c.UserContext().Value(meta.TraceID),
		"error": map[string]any{
			"code":    filestore.CodeFileTooLarge,
			"message": meta.Tr(filestore.CodeFileTooLarge, lang),
			"cause":   fmt.Sprintf("file size %d exceeds the maximum of %d bytes", size, maxSize),
		},
	})
}

// serveImageFile streams a stored file, optionally resized via the size query
// parameter (small or medium).
func (a *API) serveImageFile(c *fiber.Ctx) error {
	served, err := a.images.ServeFile(c.UserContext(), c.Params("*"), c.Query("size"))
	if err != nil {
		return errx.Wrap(err)
	}

	c.Set(fiber.HeaderContentType, served.MimeType)
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+served.Name+`"`)
	return c.Send(served.Data)
}

func (a *API) uploadConfig(c *fiber.Ctx) error {
	return c.JSON(a.images.Config())
}

type imagePathRequest struct {
	ImageID int64 `params:"imagemId" validate:"required"`
}

func (a *API) getImage(ctx context.Context, in *imagePathRequest) (*imageResponse, error) {
	img, err := a.images.Get(ctx, in.ImageID)
	if err != nil {
		return nil, err
	}
	return a.imageDTO(img), nil
}

type updateImageRequest struct {
	ImageID     int64   `params:"imagemId" validate:"required"`
	Description *string `json:"description"`
	Principal   *bool   `json:"principal"`
	Order       *int    `json:"order"     validate:"omitempty,gte=0"`
}

func (a *API) updateImage(
	ctx context.Context,
	actor domain.Actor,
	in *updateImageRequest,
) (*imageResponse, error) {
	img, err := a.images.Update(ctx, actor, in.ImageID, &service.UpdateImageInput{
		Description: in.Description,
		Principal:   in.Principal,
		Order:       in.Order,
	})
	if err != nil {
		return nil, err
	}
	return a.imageDTO(img), nil
}

func (a *API) deleteImage(ctx context.Context, actor domain.Actor, in *imagePathRequest) error {
	return a.images.Delete(ctx, actor, in.ImageID)
}

type listImagesRequest struct {
	RecipeID int64 `params:"receitaId" validate:"required"`
	pagination.Request
}

func (a *API) listImages(
	ctx context.Context,
	in *listImagesRequest,
) (*pagination.Response[*imageResponse], error) {
	resp, err := a.images.List(ctx, in.RecipeID, in.Request)
	if err != nil {
		return nil, err
	}

	out := pagination.Response[*imageResponse]{
		PageNumber: resp.PageNumber,
		PageSize:   resp.PageSize,
		PageCount:  resp.PageCount,
		TotalCount: resp.TotalCount,
		PageContent: lo.Map(resp.PageContent, func(img *domain.RecipeImage, _ int) *imageResponse {
			return a.imageDTO(img)
		}),
	}
	return &out, nil
}

type reorderImagesRequest struct {
	RecipeID int64                 `params:"receitaId" validate:"required"`
	Images   []service.ReorderItem `json:"images"      validate:"omitempty,dive"`
}

func (a *API) reorderImages(ctx context.Context, actor domain.Actor, in *reorderImagesRequest) error {
	return a.images.Reorder(ctx, actor, in.RecipeID, in.Images)
}

type principalPathRequest struct {
	RecipeID int64 `params:"receitaId" validate:"required"`
	ImageID  int64 `params:"imagemId"  validate:"required"`
}

func (a *API) setPrincipalImage(ctx context.Context, actor domain.Actor, in *principalPathRequest) error {
	return a.images.SetPrincipal(ctx, actor, in.RecipeID, in.ImageID)
}

func (a *API) principalImage(ctx context.Context, in *recipePathRequest) (*imageResponse, error) {
	img, err := a.images.Principal(ctx, in.RecipeID)
	if err != nil {
		return nil, err
	}
	return a.imageDTO(img), nil
}

func (a *API) imageStatistics(ctx context.Context, in *recipePathRequest) (*service.ImageStatistics, error) {
	return a.images.Statistics(ctx, in.RecipeID)
}
