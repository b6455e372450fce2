package loja

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ProductRepo defines the document store used for product records.
// Implementations must be safe for concurrent use.
type ProductRepo interface {
	// Create stores a new record and returns it with its assigned ID and
	// timestamps. The record has no image URL.
	Create(ctx context.Context, fields ProductFields) (Product, error)

	// Get returns the record with the given ID, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (Product, error)

	// List returns every record ordered by creation time.
	// An empty store yields an empty, non-nil slice.
	List(ctx context.Context) ([]Product, error)

	// Update overwrites name, description and price, leaving the image URL
	// untouched. Returns ErrNotFound if the record does not exist.
	Update(ctx context.Context, id uuid.UUID, fields ProductFields) (Product, error)

	// SetImageURL patches the image URL of an existing record.
	// Returns ErrNotFound if the record does not exist.
	SetImageURL(ctx context.Context, id uuid.UUID, url string) (Product, error)

	// Delete removes the record. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ImageStorage defines the blob store holding product images.
//
// All methods accept a context for cancellation. Write must replace any
// object already stored at the path.
type ImageStorage interface {
	// Get opens an object for reading. The caller closes it.
	// Returns ErrNotFound if the object does not exist.
	Get(ctx context.Context, path string) (io.ReadSeekCloser, error)

	// Write stores content at path and returns the byte count and etag.
	Write(ctx context.Context, path string, content io.Reader) (SaveResult, error)

	// Delete removes an object. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, path string) error

	// List returns every object whose path starts with prefix.
	List(ctx context.Context, prefix string) ([]ImageObject, error)
}

// CatalogConfig holds configuration options for Catalog.
type CatalogConfig struct {
	PageSize       int
	PublicPath     string        // URL prefix under which ImageStorage objects are served
	CleanupTimeout time.Duration // Timeout for compensating deletes (default: 30s)
}

// Catalog runs the product workflows. Create, Update and Delete touch both
// the document store and the blob store; those steps are not atomic and the
// partial-failure outcome of each step is spelled out on the method.
type Catalog struct {
	repo           ProductRepo
	images         ImageStorage
	pageSize       int
	publicPath     string
	cleanupTimeout time.Duration
}

var validate = validator.New()

func NewCatalog(repo ProductRepo, images ImageStorage, cfg CatalogConfig) (*Catalog, error) {
	if repo == nil || images == nil {
		return nil, errors.New("new catalog: repo and image storage are required")
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	publicPath := strings.TrimSuffix(cfg.PublicPath, "/")
	if publicPath == "" {
		publicPath = "/imagens"
	}
	if !strings.HasPrefix(publicPath, "/") {
		return nil, fmt.Errorf("new catalog: public path must start with '/': %s", cfg.PublicPath)
	}

	cleanupTimeout := cfg.CleanupTimeout
	if cleanupTimeout <= 0 {
		cleanupTimeout = 30 * time.Second
	}

	return &Catalog{
		repo:           repo,
		images:         images,
		pageSize:       pageSize,
		publicPath:     publicPath,
		cleanupTimeout: cleanupTimeout,
	}, nil
}

// PageSize returns the configured listing page size.
func (c *Catalog) PageSize() int {
	return c.pageSize
}

// ImageURL returns the public URL of a product image. The etag is appended
// as a version so that a replaced image is not served from browser caches.
func (c *Catalog) ImageURL(id uuid.UUID, etag string) string {
	u := c.publicPath + "/" + ImagePath(id)
	if etag == "" {
		return u
	}
	if len(etag) > 12 {
		etag = etag[:12]
	}
	return u + "?v=" + etag
}

// All returns every product.
func (c *Catalog) All(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products, err := c.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return products, nil
}

// Page fetches all products and returns page number of the listing.
// Numbers below 1 are treated as 1.
func (c *Catalog) Page(ctx context.Context, number int) (Page, error) {
	products, err := c.All(ctx)
	if err != nil {
		return Paginate(nil, number, c.pageSize), err
	}

	return Paginate(products, number, c.pageSize), nil
}

// Get returns a single product.
func (c *Catalog) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, fmt.Errorf("get product: %w", err)
	}

	p, err := c.repo.Get(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("get product %s: %w", id, err)
	}

	return p, nil
}

// Create validates the input, stores the record and, when img is not nil,
// uploads the image under the path derived from the new ID and patches the
// record with its URL.
//
// Input errors are returned before anything is written. If the record was
// stored but the image step failed, the stored record (without image URL) is
// returned together with an error wrapping ErrImageUpload; the record is not
// rolled back.
func (c *Catalog) Create(ctx context.Context, in ProductInput, img *Upload) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}

	fields, err := ValidateProductInput(in)
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}

	if err := ValidateImage(img); err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}

	p, err := c.repo.Create(ctx, fields)
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}

	if img == nil {
		return p, nil
	}

	withImage, err := c.attachImage(ctx, p, img, true)
	if err != nil {
		slog.Warn("product stored without image", "product_id", p.ID, "err", err)
		return p, fmt.Errorf("create product %s: %w", p.ID, err)
	}

	return withImage, nil
}

// Update overwrites name, description and price of an existing product.
// Without img the current image URL is kept. With img the previous image is
// deleted (best effort, failures are logged), the new bytes are written to
// the same path and the URL is patched.
//
// If the fields were saved but the image step failed, the updated product is
// returned together with an error wrapping ErrImageUpload.
func (c *Catalog) Update(ctx context.Context, id uuid.UUID, in ProductInput, img *Upload) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}

	fields, err := ValidateProductInput(in)
	if err != nil {
		return Product{}, fmt.Errorf("update product %s: %w", id, err)
	}

	if err := ValidateImage(img); err != nil {
		return Product{}, fmt.Errorf("update product %s: %w", id, err)
	}

	existing, err := c.repo.Get(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("update product %s: %w", id, err)
	}

	updated, err := c.repo.Update(ctx, id, fields)
	if err != nil {
		return Product{}, fmt.Errorf("update product %s: %w", id, err)
	}

	if img == nil {
		return updated, nil
	}

	if existing.HasImage() {
		if delErr := c.images.Delete(ctx, ImagePath(id)); delErr != nil && !errors.Is(delErr, ErrNotFound) {
			slog.Warn("could not delete previous product image", "product_id", id, "err", delErr)
		}
	}

	withImage, err := c.attachImage(ctx, updated, img, false)
	if err != nil {
		slog.Warn("product updated without new image", "product_id", id, "err", err)
		return updated, fmt.Errorf("update product %s: %w", id, err)
	}

	return withImage, nil
}

// Delete removes a product and its image. The image is deleted first; if
// that fails the failure is logged and the record is deleted anyway. A
// product without an image never touches the image storage.
func (c *Catalog) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	p, err := c.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}

	imageDeleted := false
	if p.HasImage() {
		delErr := c.images.Delete(ctx, ImagePath(id))
		switch {
		case delErr == nil, errors.Is(delErr, ErrNotFound):
			imageDeleted = true
		default:
			slog.Warn("could not delete product image", "product_id", id, "err", delErr)
		}
	}

	if err := c.repo.Delete(ctx, id); err != nil {
		if imageDeleted {
			slog.Error("product image deleted but record kept", "product_id", id, "err", err)
		}
		return fmt.Errorf("delete product %s: %w", id, err)
	}

	return nil
}

// BulkUpdate applies each item independently. A failing item is recorded
// in the result and does not stop the others.
func (c *Catalog) BulkUpdate(ctx context.Context, items []BulkItem) BulkResult {
	result := BulkResult{
		Updated: make([]uuid.UUID, 0, len(items)),
		Failed:  make(map[uuid.UUID]error),
	}

	for _, item := range items {
		if _, err := c.Update(ctx, item.ID, item.Input, item.Image); err != nil {
			slog.Warn("bulk update item failed", "product_id", item.ID, "err", err)
			result.Failed[item.ID] = err
			continue
		}
		result.Updated = append(result.Updated, item.ID)
	}

	return result
}

// PruneImages deletes stored images that no product references: objects
// whose product is gone or whose record has no image URL. These are left
// behind when a Create or Delete stops half way.
func (c *Catalog) PruneImages(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("prune images: %w", err)
	}

	objects, err := c.images.List(ctx, ImagePrefix)
	if err != nil {
		return 0, fmt.Errorf("prune images: %w", err)
	}

	pruned := 0
	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return pruned, fmt.Errorf("prune images: %w", err)
		}

		id, ok := ProductIDFromImagePath(obj.Path)
		if !ok {
			continue
		}

		p, getErr := c.repo.Get(ctx, id)
		if getErr != nil && !errors.Is(getErr, ErrNotFound) {
			return pruned, fmt.Errorf("prune images '%s': %w", obj.Path, getErr)
		}
		if getErr == nil && p.HasImage() {
			continue
		}

		if delErr := c.images.Delete(ctx, obj.Path); delErr != nil && !errors.Is(delErr, ErrNotFound) {
			return pruned, fmt.Errorf("prune images '%s': %w", obj.Path, delErr)
		}
		pruned++
	}

	return pruned, nil
}

// attachImage writes img to the product's image path and records its URL.
// When removeOnFail is set and the record could not be patched, the written
// object is deleted again using a background context bounded by the
// cleanup timeout.
func (c *Catalog) attachImage(ctx context.Context, p Product, img *Upload, removeOnFail bool) (Product, error) {
	objPath := ImagePath(p.ID)

	saved, err := c.images.Write(ctx, objPath, bytes.NewReader(img.Data))
	if err != nil {
		return p, fmt.Errorf("%w: write %s: %w", ErrImageUpload, objPath, err)
	}

	patched, err := c.repo.SetImageURL(ctx, p.ID, c.ImageURL(p.ID, saved.Etag))
	if err != nil {
		if removeOnFail {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), c.cleanupTimeout)
			defer cancel()

			if delErr := c.images.Delete(cleanupCtx, objPath); delErr != nil {
				return p, fmt.Errorf("%w: set image url (%w) and cleanup failed: %w", ErrImageUpload, err, delErr)
			}
		}
		return p, fmt.Errorf("%w: set image url: %w", ErrImageUpload, err)
	}

	return patched, nil
}

// ValidateProductInput checks a form submission and parses its price.
func ValidateProductInput(in ProductInput) (ProductFields, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return ProductFields{}, fmt.Errorf("%w: %s failed on %s", ErrInvalidInput, strings.ToLower(fe.Field()), fe.Tag())
		}
		return ProductFields{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	price, err := ParsePrice(in.Price)
	if err != nil {
		return ProductFields{}, err
	}

	return ProductFields{
		Name:        in.Name,
		Description: in.Description,
		Price:       price,
	}, nil
}

// ValidateImage accepts a nil upload or a non-empty image/* upload.
func ValidateImage(img *Upload) error {
	if img == nil {
		return nil
	}
	if len(img.Data) == 0 {
		return fmt.Errorf("%w: empty image file", ErrInvalidInput)
	}
	if !strings.HasPrefix(img.ContentType, "image/") {
		return fmt.Errorf("%w: %s is not an image (%s)", ErrInvalidInput, img.Filename, img.ContentType)
	}
	return nil
}
