package service

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"slices"
	"sort"
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/recipebook/internal/domain"
	"github.com/rise-and-shine/recipebook/internal/repo"
	"github.com/rise-and-shine/recipebook/internal/upload"
	"github.com/rise-and-shine/recipebook/pkg/filestore/localwr"
	"github.com/rise-and-shine/recipebook/pkg/logger"
	"github.com/rise-and-shine/recipebook/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeImageStore is an in-memory imageStore.
type fakeImageStore struct {
	rows   map[int64]*domain.RecipeImage
	nextID int64
	clock  time.Time
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{
		rows:  make(map[int64]*domain.RecipeImage),
		clock: time.Now(),
	}
}

// tick returns strictly increasing timestamps so creation-time tie breaks
// are deterministic.
func (f *fakeImageStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeImageStore) Create(_ context.Context, img *domain.RecipeImage, by string) (*domain.RecipeImage, error) {
	f.nextID++
	img.ID = f.nextID
	img.SetCreated(by)
	img.CreatedAt = f.tick()

	cp := *img
	f.rows[img.ID] = &cp
	return img, nil
}

func (f *fakeImageStore) GetByID(_ context.Context, id int64) (*domain.RecipeImage, error) {
	img, ok := f.rows[id]
	if !ok {
		return nil, errx.New("image not found",
			errx.WithCode(repo.CodeImageNotFound), errx.WithType(errx.T_NotFound))
	}
	cp := *img
	return &cp, nil
}

func (f *fakeImageStore) byRecipe(recipeID int64) []*domain.RecipeImage {
	var out []*domain.RecipeImage
	for _, img := range f.rows {
		if img.RecipeID == recipeID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (f *fakeImageStore) ListByRecipe(
	_ context.Context,
	recipeID int64,
	page pagination.Request,
) ([]*domain.RecipeImage, int64, error) {
	all := f.byRecipe(recipeID)
	total := int64(len(all))

	start := min(page.Offset(), len(all))
	end := min(start+page.Limit(), len(all))
	return all[start:end], total, nil
}

func (f *fakeImageStore) PrincipalByRecipe(_ context.Context, recipeID int64) (*domain.RecipeImage, error) {
	for _, img := range f.rows {
		if img.RecipeID == recipeID && img.Principal {
			cp := *img
			return &cp, nil
		}
	}
	return nil, errx.New("recipe has no principal image",
		errx.WithCode(repo.CodeImageNotFound), errx.WithType(errx.T_NotFound))
}

func (f *fakeImageStore) FirstByRecipe(_ context.Context, recipeID int64) (*domain.RecipeImage, error) {
	all := f.byRecipe(recipeID)
	if len(all) == 0 {
		return nil, nil
	}
	cp := *all[0]
	return &cp, nil
}

func (f *fakeImageStore) Update(_ context.Context, img *domain.RecipeImage, by string) (*domain.RecipeImage, error) {
	if _, ok := f.rows[img.ID]; !ok {
		return nil, errx.New("image not found",
			errx.WithCode(repo.CodeImageNotFound), errx.WithType(errx.T_NotFound))
	}
	img.SetUpdated(by)
	cp := *img
	f.rows[img.ID] = &cp
	return img, nil
}

func (f *fakeImageStore) SetOrder(_ context.Context, id int64, order int, by string) error {
	img, ok := f.rows[id]
	if !ok {
		return errx.New("image not found",
			errx.WithCode(repo.CodeImageNotFound), errx.WithType(errx.T_NotFound))
	}
	img.DisplayOrder = order
	img.SetUpdated(by)
	return nil
}

func (f *fakeImageStore) DemoteAllByRecipe(_ context.Context, recipeID int64, by string) error {
	for _, img := range f.rows {
		if img.RecipeID == recipeID && img.Principal {
			img.Principal = false
			img.SetUpdated(by)
		}
	}
	return nil
}

func (f *fakeImageStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return errx.New("image not found",
			errx.WithCode(repo.CodeImageNotFound), errx.WithType(errx.T_NotFound))
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeImageStore) CountByRecipe(_ context.Context, recipeID int64) (int, error) {
	return len(f.byRecipe(recipeID)), nil
}

func (f *fakeImageStore) SumBytesByRecipe(_ context.Context, recipeID int64) (int64, error) {
	var total int64
	for _, img := range f.byRecipe(recipeID) {
		total += img.SizeBytes
	}
	return total, nil
}

func (f *fakeImageStore) MaxDisplayOrder(_ context.Context, recipeID int64) (int, error) {
	maxOrder := 0
	for _, img := range f.byRecipe(recipeID) {
		if img.DisplayOrder > maxOrder {
			maxOrder = img.DisplayOrder
		}
	}
	return maxOrder, nil
}

func (f *fakeImageStore) principals(recipeID int64) []int64 {
	var ids []int64
	for _, img := range f.byRecipe(recipeID) {
		if img.Principal {
			ids = append(ids, img.ID)
		}
	}
	return ids
}

// fakeRecipeReader resolves recipes from a fixed set.
type fakeRecipeReader struct {
	recipes map[int64]*domain.Recipe
}

func (f *fakeRecipeReader) GetByID(_ context.Context, id int64) (*domain.Recipe, error) {
	r, ok := f.recipes[id]
	if !ok {
		return nil, errx.New("recipe not found",
			errx.WithCode(repo.CodeRecipeNotFound), errx.WithType(errx.T_NotFound))
	}
	return r, nil
}

const testRecipeID = int64(7)

var (
	owner = domain.Actor{Login: "chef", Role: domain.RoleUser}
	admin = domain.Actor{Login: "root", Role: domain.RoleAdmin}
)

func newTestImageService(t *testing.T) (*ImageService, *fakeImageStore) {
	t.Helper()

	files, err := localwr.New(localwr.Config{Root: t.TempDir()})
	require.NoError(t, err)

	store := newFakeImageStore()

	recipe := &domain.Recipe{ID: testRecipeID, Name: "feijoada"}
	recipe.SetCreated(owner.Login)

	svc := &ImageService{
		cfg: ImageConfig{MaxImagesPerRecipe: 10, BaseURL: "http://localhost:8080"},
		validator: upload.NewValidator(upload.Config{
			MinFileSize: 100,
			MaxFileSize: 1 << 20,
			MinWidth:    1, MaxWidth: 5000,
			MinHeight: 1, MaxHeight: 5000,
		}),
		files:   files,
		images:  store,
		recipes: &fakeRecipeReader{recipes: map[int64]*domain.Recipe{testRecipeID: recipe}},
		inTx: func(ctx context.Context, fn func(ctx context.Context, images imageStore) error) error {
			return fn(ctx, store)
		},
		log: logger.Named("test"),
	}
	return svc, store
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, jpeg.Encode(buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

func uploadPNG(t *testing.T, svc *ImageService, opts func(*UploadImageInput)) *domain.RecipeImage {
	t.Helper()
	in := &UploadImageInput{
		RecipeID:     testRecipeID,
		Data:         pngBytes(t, 200, 150),
		Filename:     "photo.png",
		DeclaredMime: "image/png",
	}
	if opts != nil {
		opts(in)
	}
	img, err := svc.Upload(context.Background(), owner, in)
	require.NoError(t, err)
	return img
}

func TestUpload_RecordsInputSize(t *testing.T) {
	svc, _ := newTestImageService(t)

	data := pngBytes(t, 300, 200)
	img, err := svc.Upload(context.Background(), owner, &UploadImageInput{
		RecipeID:     testRecipeID,
		Data:         data,
		Filename:     "photo.png",
		DeclaredMime: "image/png",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(len(data)), img.SizeBytes)
	require.NotNil(t, img.Width)
	require.NotNil(t, img.Height)
	assert.Equal(t, 300, *img.Width)
	assert.Equal(t, 200, *img.Height)

	// The physical file holds exactly the uploaded bytes.
	exists, err := svc.files.Exists(context.Background(), img.RelativePath)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUpload_RecipeNotFound(t *testing.T) {
	svc, store := newTestImageService(t)

	_, err := svc.Upload(context.Background(), owner, &UploadImageInput{
		RecipeID:     999,
		Data:         pngBytes(t, 100, 100),
		Filename:     "photo.png",
		DeclaredMime: "image/png",
	})
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, repo.CodeRecipeNotFound))
	assert.Empty(t, store.rows)
}

func TestUpload_InvalidFileRejected(t *testing.T) {
	svc, store := newTestImageService(t)

	// JPEG signature inside a file declared as PNG.
	data := append([]byte{0xFF, 0xD8, 0xFF, 0xD8}, bytes.Repeat([]byte{0}, 496)...)
	_, err := svc.Upload(context.Background(), owner, &UploadImageInput{
		RecipeID:     testRecipeID,
		Data:         data,
		Filename:     "photo.png",
		DeclaredMime: "image/png",
	})
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, CodeImageValidationFailed))
	assert.Empty(t, store.rows)
}

func TestUpload_LimitExceededPersistsNothing(t *testing.T) {
	svc, store := newTestImageService(t)
	svc.cfg.MaxImagesPerRecipe = 2

	uploadPNG(t, svc, nil)
	uploadPNG(t, svc, nil)

	_, err := svc.Upload(context.Background(), owner, &UploadImageInput{
		RecipeID:     testRecipeID,
		Data:         pngBytes(t, 200, 150),
		Filename:     "photo.png",
		DeclaredMime: "image/png",
	})
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, CodeImageLimitExceeded))
	assert.Len(t, store.rows, 2)
}

func TestUpload_NonOwnerForbidden(t *testing.T) {
	svc, _ := newTestImageService(t)

	stranger := domain.Actor{Login: "stranger", Role: domain.RoleUser}
	_, err := svc.Upload(context.Background(), stranger, &UploadImageInput{
		RecipeID:     testRecipeID,
		Data:         pngBytes(t, 200, 150),
		Filename:     "photo.png",
		DeclaredMime: "image/png",
	})
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, CodeNotResourceOwner))

	// Admins bypass the ownership check.
	_, err = svc.Upload(context.Background(), admin, &UploadImageInput{
		RecipeID:     testRecipeID,
		Data:         pngBytes(t, 200, 150),
		Filename:     "admin.png",
		DeclaredMime: "image/png",
	})
	assert.NoError(t, err)
}

// Covers the lifecycle scenario: first upload auto-promotes and gets order 1,
// an explicit-principal upload demotes it, deleting the principal promotes
// the survivor back.
func TestUploadDeleteLifecycle(t *testing.T) {
	svc, store := newTestImageService(t)
	ctx := context.Background()

	imgA := uploadPNG(t, svc, nil)
	assert.True(t, imgA.Principal)
	assert.Equal(t, 1, imgA.DisplayOrder)

	principal := true
	imgB, err := svc.Upload(ctx, owner, &UploadImageInput{
		RecipeID:     testRecipeID,
		Data:         jpegBytes(t, 250, 180),
		Filename:     "photo.jpg",
		DeclaredMime: "image/jpeg",
		Principal:    &principal,
	})
	require.NoError(t, err)
	assert.True(t, imgB.Principal)
	assert.Equal(t, 2, imgB.DisplayOrder)
	assert.Equal(t, []int64{imgB.ID}, store.principals(testRecipeID))

	require.NoError(t, svc.Delete(ctx, owner, imgB.ID))
	assert.Equal(t, []int64{imgA.ID}, store.principals(testRecipeID))
}

func TestSetPrincipal_Idempotent(t *testing.T) {
	svc, store := newTestImageService(t)
	ctx := context.Background()

	uploadPNG(t, svc, nil)
	imgB := uploadPNG(t, svc, nil)

	require.NoError(t, svc.SetPrincipal(ctx, owner, testRecipeID, imgB.ID))
	require.NoError(t, svc.SetPrincipal(ctx, owner, testRecipeID, imgB.ID))

	assert.Equal(t, []int64{imgB.ID}, store.principals(testRecipeID))
}

func TestSetPrincipal_RecipeMismatch(t *testing.T) {
	svc, store := newTestImageService(t)

	img := uploadPNG(t, svc, nil)

	err := svc.SetPrincipal(context.Background(), owner, testRecipeID+1, img.ID)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, CodeImageRecipeMismatch))
	assert.Equal(t, []int64{img.ID}, store.principals(testRecipeID))
}

func TestUpdate_PromoteDemotesSiblings(t *testing.T) {
	svc, store := newTestImageService(t)
	ctx := context.Background()

	imgA := uploadPNG(t, svc, nil) // auto principal
	imgB := uploadPNG(t, svc, nil)

	principal := true
	desc := "close-up"
	updated, err := svc.Update(ctx, owner, imgB.ID, &UpdateImageInput{
		Description: &desc,
		Principal:   &principal,
	})
	require.NoError(t, err)

	assert.True(t, updated.Principal)
	assert.Equal(t, &desc, updated.Description)
	assert.Equal(t, []int64{imgB.ID}, store.principals(testRecipeID))
	_ = imgA
}

func TestUpdate_PartialLeavesOtherFieldsAlone(t *testing.T) {
	svc, store := newTestImageService(t)

	img := uploadPNG(t, svc, func(in *UploadImageInput) {
		d := "original"
		in.Description = &d
	})

	order := 5
	updated, err := svc.Update(context.Background(), owner, img.ID, &UpdateImageInput{Order: &order})
	require.NoError(t, err)

	assert.Equal(t, 5, updated.DisplayOrder)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "original", *updated.Description)
	assert.True(t, updated.Principal, "principal flag must survive a partial update")
	assert.Equal(t, []int64{img.ID}, store.principals(testRecipeID))
}

func TestDelete_OnlyImageLeavesNoPrincipal(t *testing.T) {
	svc, store := newTestImageService(t)
	ctx := context.Background()

	img := uploadPNG(t, svc, nil)
	relPath := img.RelativePath

	require.NoError(t, svc.Delete(ctx, owner, img.ID))

	assert.Empty(t, store.rows)
	assert.Empty(t, store.principals(testRecipeID))

	exists, err := svc.files.Exists(ctx, relPath)
	require.NoError(t, err)
	assert.False(t, exists, "physical file must be removed")
}

func TestDelete_PrincipalPromotesLowestOrderEarliestCreated(t *testing.T) {
	svc, store := newTestImageService(t)
	ctx := context.Background()

	principal := uploadPNG(t, svc, nil)

	// Two candidates share display order 3; the earlier created one wins.
	order := 3
	first := uploadPNG(t, svc, func(in *UploadImageInput) { in.Order = &order })
	second := uploadPNG(t, svc, func(in *UploadImageInput) { in.Order = &order })

	require.NoError(t, svc.Delete(ctx, owner, principal.ID))

	assert.Equal(t, []int64{first.ID}, store.principals(testRecipeID))
	_ = second
}

func TestReorder_AllOrNothingOnMismatch(t *testing.T) {
	svc, store := newTestImageService(t)
	ctx := context.Background()

	imgA := uploadPNG(t, svc, nil)
	imgB := uploadPNG(t, svc, nil)

	// Image belonging to another recipe referenced in the payload.
	foreign := &domain.RecipeImage{RecipeID: testRecipeID + 1, DisplayOrder: 1}
	_, err := store.Create(ctx, foreign, "someone")
	require.NoError(t, err)

	err = svc.Reorder(ctx, owner, testRecipeID, []ReorderItem{
		{ImageID: imgA.ID, Order: 9},
		{ImageID: foreign.ID, Order: 8},
	})
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, CodeImageRecipeMismatch))

	// Zero order updates applied.
	a, _ := store.GetByID(ctx, imgA.ID)
	b, _ := store.GetByID(ctx, imgB.ID)
	assert.Equal(t, 1, a.DisplayOrder)
	assert.Equal(t, 2, b.DisplayOrder)
}

func TestReorder_EmptyPayload(t *testing.T) {
	svc, _ := newTestImageService(t)

	err := svc.Reorder(context.Background(), owner, testRecipeID, nil)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, CodeEmptyReorderPayload))
}

func TestReorder_AppliesAllUpdates(t *testing.T) {
	svc, store := newTestImageService(t)
	ctx := context.Background()

	imgA := uploadPNG(t, svc, nil)
	imgB := uploadPNG(t, svc, nil)

	require.NoError(t, svc.Reorder(ctx, owner, testRecipeID, []ReorderItem{
		{ImageID: imgA.ID, Order: 2},
		{ImageID: imgB.ID, Order: 1},
	}))

	listed := store.byRecipe(testRecipeID)
	assert.Equal(t, []int64{imgB.ID, imgA.ID}, []int64{listed[0].ID, listed[1].ID})
}

func TestList_OrderAndPagination(t *testing.T) {
	svc, _ := newTestImageService(t)
	ctx := context.Background()

	var ids []int64
	for range 3 {
		ids = append(ids, uploadPNG(t, svc, nil).ID)
	}

	resp, err := svc.List(ctx, testRecipeID, pagination.Request{PageNumber: 1, PageSize: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(3), resp.TotalCount)
	require.Len(t, resp.PageContent, 2)
	assert.Equal(t, ids[0], resp.PageContent[0].ID)
	assert.Equal(t, ids[1], resp.PageContent[1].ID)
}

func TestStatistics(t *testing.T) {
	svc, _ := newTestImageService(t)
	ctx := context.Background()

	a := uploadPNG(t, svc, nil)
	b := uploadPNG(t, svc, nil)

	stats, err := svc.Statistics(ctx, testRecipeID)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, a.SizeBytes+b.SizeBytes, stats.TotalBytes)
	assert.Equal(t, svc.cfg.MaxImagesPerRecipe, stats.Limit)
}

func TestPrincipal(t *testing.T) {
	svc, _ := newTestImageService(t)
	ctx := context.Background()

	img := uploadPNG(t, svc, nil)

	got, err := svc.Principal(ctx, testRecipeID)
	require.NoError(t, err)
	assert.Equal(t, img.ID, got.ID)

	_, err = svc.Principal(ctx, 999)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, repo.CodeRecipeNotFound))
}

func TestServeFile_OriginalAndResized(t *testing.T) {
	svc, _ := newTestImageService(t)
	ctx := context.Background()

	data := pngBytes(t, 1200, 900)
	img, err := svc.Upload(ctx, owner, &UploadImageInput{
		RecipeID:     testRecipeID,
		Data:         data,
		Filename:     "big.png",
		DeclaredMime: "image/png",
	})
	require.NoError(t, err)

	served, err := svc.ServeFile(ctx, img.RelativePath, "")
	require.NoError(t, err)
	assert.Equal(t, data, served.Data)
	assert.Equal(t, "image/png", served.MimeType)

	small, err := svc.ServeFile(ctx, img.RelativePath, "small")
	require.NoError(t, err)
	assert.Less(t, len(small.Data), len(data))

	_, err = svc.ServeFile(ctx, "2020/01/01/missing.png", "")
	require.Error(t, err)
}

func TestConfigAndFileURL(t *testing.T) {
	svc, _ := newTestImageService(t)

	cfg := svc.Config()
	assert.Equal(t, int64(1<<20), cfg.MaxFileSize)
	assert.Equal(t, 10, cfg.MaxImagesPerRecipe)
	assert.True(t, slices.Contains(cfg.AllowedExtensions, "png"))

	url := svc.FileURL("2024/01/02/abc.png")
	assert.Equal(t, "http://localhost:8080/api/receitas/imagens/arquivo/2024/01/02/abc.png", url)
}
