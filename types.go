package loja

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Product is a catalog record. ID is assigned by the ProductRepo on Create.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasImage reports whether an image upload has been recorded for the product.
func (p Product) HasImage() bool {
	return p.ImageURL != ""
}

// ProductInput holds the raw form values of a create or edit submission.
type ProductInput struct {
	Name        string `validate:"required,max=200"`
	Description string `validate:"max=2000"`
	Price       string `validate:"required"`
}

// ProductFields is the validated, typed form of ProductInput.
type ProductFields struct {
	Name        string
	Description string
	Price       float64
}

// Upload is an uploaded file buffered in memory for the lifetime of one request.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Size returns the number of buffered bytes.
func (u *Upload) Size() int64 {
	if u == nil {
		return 0
	}
	return int64(len(u.Data))
}

// Account is an identity allowed to manage the catalog.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Page is one slice of the catalog listing.
type Page struct {
	Items      []Product
	Number     int
	Size       int
	Total      int
	TotalPages int
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// ImageObject describes a blob held by an ImageStorage.
type ImageObject struct {
	Path        string
	Size        int64
	ETag        string
	ContentType string
}

// SaveResult is returned by ImageStorage.Write.
type SaveResult struct {
	BytesWritten int64
	Etag         string
}

// BulkItem is one product's share of an inline bulk edit submission.
type BulkItem struct {
	ID    uuid.UUID
	Input ProductInput
	Image *Upload
}

// BulkResult reports the outcome of a bulk edit per product.
type BulkResult struct {
	Updated []uuid.UUID
	Failed  map[uuid.UUID]error
}

// Tables holds configurable table names for the document store.
type Tables struct {
	Products string `mapstructure:"products"`
	Accounts string `mapstructure:"accounts"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Products == "" {
		return errors.New("validate tables: products table name cannot be empty")
	}

	if t.Accounts == "" {
		return errors.New("validate tables: accounts table name cannot be empty")
	}

	for _, name := range []string{t.Products, t.Accounts} {
		if !IsValidTableName(name) {
			return fmt.Errorf("validate tables: invalid table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", name)
		}
	}

	if t.Products == t.Accounts {
		return fmt.Errorf("validate tables: products and accounts share the table name %s", t.Products)
	}

	return nil
}
