package postgres_test

import (
	"context"
	"testing"

	"github.com/amww/loja"
	"github.com/amww/loja/database/postgres"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	db, err := postgres.Connect(ctx, getDSN(pool), randomTables(t))
	require.NoError(t, err)
	require.NotNil(t, db)
	defer func() { _ = db.Close() }()

	err = db.Ping(ctx)
	assert.NoError(t, err, "ping should succeed after connect")
}

func TestDatabase_Migrate(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	tables := randomTables(t)
	db, err := postgres.Connect(ctx, getDSN(pool), tables)
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
		_ = dropTable(ctx, pool, tables.Products)
		_ = dropTable(ctx, pool, tables.Accounts)
	}()

	err = db.Validate(ctx)
	assert.Error(t, err, "validate should fail before migration")

	require.NoError(t, db.Migrate(ctx), "migrate should succeed")
	require.NoError(t, db.Migrate(ctx), "migrate should be idempotent")

	assert.NoError(t, db.Validate(ctx), "validate should pass after migration")

	_, err = db.Products().List(ctx)
	assert.NoError(t, err, "repo should work after migration")
}

func TestDatabase_Validate_WrongSchema(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	tables := randomTables(t)
	_, err := pool.Exec(ctx, `CREATE TABLE `+tables.Products+` (id UUID PRIMARY KEY, name INTEGER)`)
	require.NoError(t, err)
	defer func() { _ = dropTable(ctx, pool, tables.Products) }()

	err = postgres.ValidateSchema(ctx, pool, tables)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns")
	assert.Contains(t, err.Error(), "name: expected text, got integer")
}

func TestDatabase_Close(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	db, err := postgres.Connect(ctx, getDSN(pool), randomTables(t))
	require.NoError(t, err)

	assert.NoError(t, db.Close())
	assert.Error(t, db.Ping(ctx), "ping should fail after close")
}

func TestProductRepo_CRUD(t *testing.T) {
	products, _ := setupTestRepos(t)
	ctx := context.Background()

	created, err := products.Create(ctx, loja.ProductFields{Name: "Mouse", Description: "USB", Price: 99.99})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Empty(t, created.ImageURL)

	got, err := products.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mouse", got.Name)
	assert.Equal(t, 99.99, got.Price)

	patched, err := products.SetImageURL(ctx, created.ID, "/imagens/products/"+created.ID.String())
	require.NoError(t, err)
	assert.True(t, patched.HasImage())

	updated, err := products.Update(ctx, created.ID, loja.ProductFields{Name: "Mouse sem fio", Price: 120})
	require.NoError(t, err)
	assert.Equal(t, "Mouse sem fio", updated.Name)
	assert.Equal(t, patched.ImageURL, updated.ImageURL, "update keeps image url")

	require.NoError(t, products.Delete(ctx, created.ID))

	_, err = products.Get(ctx, created.ID)
	assert.ErrorIs(t, err, loja.ErrNotFound)
}

func TestProductRepo_NotFound(t *testing.T) {
	products, _ := setupTestRepos(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := products.Get(ctx, id)
	assert.ErrorIs(t, err, loja.ErrNotFound)

	_, err = products.Update(ctx, id, loja.ProductFields{Name: "x"})
	assert.ErrorIs(t, err, loja.ErrNotFound)

	_, err = products.SetImageURL(ctx, id, "/x")
	assert.ErrorIs(t, err, loja.ErrNotFound)

	err = products.Delete(ctx, id)
	assert.ErrorIs(t, err, loja.ErrNotFound)
}

func TestProductRepo_List(t *testing.T) {
	products, _ := setupTestRepos(t)
	ctx := context.Background()

	empty, err := products.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	names := []string{"Notebook", "Mouse", "Teclado"}
	for i, name := range names {
		_, err := products.Create(ctx, loja.ProductFields{Name: name, Price: float64(i)})
		require.NoError(t, err)
	}

	list, err := products.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, p := range list {
		assert.Equal(t, names[i], p.Name)
	}
}

func TestAccountRepo(t *testing.T) {
	_, accounts := setupTestRepos(t)
	ctx := context.Background()

	created, err := accounts.Create(ctx, "admin@loja.dev", "$2a$10$hash")
	require.NoError(t, err)
	assert.Equal(t, "admin@loja.dev", created.Email)

	byID, err := accounts.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, byID.Email)

	byEmail, err := accounts.GetByEmail(ctx, "admin@loja.dev")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "$2a$10$hash", byEmail.PasswordHash)

	_, err = accounts.Create(ctx, "admin@loja.dev", "other")
	assert.ErrorIs(t, err, loja.ErrAlreadyExists)

	_, err = accounts.GetByEmail(ctx, "ninguem@loja.dev")
	assert.ErrorIs(t, err, loja.ErrNotFound)
}
