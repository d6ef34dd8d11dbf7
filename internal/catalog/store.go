package catalog

import (
	"context"
	"time"
)

// Store is the row store behind the storefront. Implementations return
// ErrNotFound for missing rows and run every multi-row mutation atomically.
type Store interface {
	Header(ctx context.Context) (Header, error)
	Footer(ctx context.Context) (Footer, error)

	Propagandas(ctx context.Context) ([]Propaganda, error)
	Propaganda(ctx context.Context, id int64) (Propaganda, error)
	InsertPropaganda(ctx context.Context, bigImage, smallImage string) (Propaganda, error)
	DeletePropaganda(ctx context.Context, id int64) (Propaganda, error)

	Categories(ctx context.Context) ([]Category, error)
	Category(ctx context.Context, id int64) (Category, error)
	CategoryByName(ctx context.Context, name string) (Category, error)
	InsertCategory(ctx context.Context, name string) (Category, error)
	// DeleteCategory removes the category's products and then the category,
	// returning the removed products so their images can be released.
	DeleteCategory(ctx context.Context, id int64) (Category, []Product, error)

	Products(ctx context.Context) ([]Product, error)
	Product(ctx context.Context, id int64) (Product, error)
	InsertProduct(ctx context.Context, p Product) (Product, error)
	DeleteProduct(ctx context.Context, id int64) (Product, error)
	RecordClick(ctx context.Context, productID int64, at time.Time) error
	Clicks(ctx context.Context, productID int64) ([]Click, error)

	// FieldValue reads the current value of one editable column.
	FieldValue(ctx context.Context, f Field, id int64) (string, error)
	// UpdateField writes one editable column. Singleton tables ignore id.
	UpdateField(ctx context.Context, f Field, id int64, value string) error

	// IDs lists the ids of an orderable table in position order.
	IDs(ctx context.Context, t Table) ([]int64, error)
	// Reorder assigns position i to ids[i]. ids must be a permutation of the
	// table's current ids, checked in the same atomic step as the write;
	// otherwise it returns a 400 Error and changes nothing.
	Reorder(ctx context.Context, t Table, ids []int64) error

	Credential(ctx context.Context) (Credential, error)
	SaveCredential(ctx context.Context, c Credential) error

	Close() error
}
