// Package loja provides the product catalog behind a small server-rendered
// store admin.
//
// A product record lives in a document store (ProductRepo) and its optional
// image in a blob store (ImageStorage). The Catalog service runs the create,
// edit and delete workflows across both stores. These workflows are not
// transactional: each method documents what remains when a later step fails.
//
// # Key Components
//
//   - Catalog: listing, pagination and the product create/edit/delete workflows
//   - Identity: credential checks and account creation with bcrypt hashes
//   - ProductRepo, AccountRepo: persistence interfaces (PostgreSQL, SQLite)
//   - ImageStorage: blob interface (filesystem)
//   - ParseBulkForm: groups an inline bulk edit form into per-product items
//
// # Example Usage
//
//	catalog, err := loja.NewCatalog(db.Products(), store, loja.CatalogConfig{PageSize: 20})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	p, err := catalog.Create(ctx, loja.ProductInput{Name: "Mouse", Price: "99.99"}, nil)
//
//	page, err := catalog.Page(ctx, loja.ParsePage(r.URL.Query().Get("page")))
//
// See the http package for the web frontend and the database packages for the
// store implementations.
package loja
