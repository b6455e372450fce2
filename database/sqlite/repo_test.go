package sqlite_test

import (
	"context"
	"testing"

	"github.com/amww/loja"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepo_CreateGet(t *testing.T) {
	products, _ := setupTestRepos(t)
	ctx := context.Background()

	created, err := products.Create(ctx, loja.ProductFields{Name: "Mouse", Description: "USB", Price: 99.99})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "Mouse", created.Name)
	assert.Equal(t, 99.99, created.Price)
	assert.Empty(t, created.ImageURL)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := products.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "USB", got.Description)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestProductRepo_GetNotFound(t *testing.T) {
	products, _ := setupTestRepos(t)

	_, err := products.Get(context.Background(), uuid.New())
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
		assert.Equal(t, names[i], p.Name, "listing keeps creation order")
	}
}

func TestProductRepo_Update(t *testing.T) {
	products, _ := setupTestRepos(t)
	ctx := context.Background()

	created, err := products.Create(ctx, loja.ProductFields{Name: "Mouse", Price: 10})
	require.NoError(t, err)
	withImage, err := products.SetImageURL(ctx, created.ID, "/imagens/products/"+created.ID.String()+"?v=1")
	require.NoError(t, err)

	updated, err := products.Update(ctx, created.ID, loja.ProductFields{Name: "Mouse sem fio", Description: "2.4GHz", Price: 120})
	require.NoError(t, err)
	assert.Equal(t, "Mouse sem fio", updated.Name)
	assert.Equal(t, "2.4GHz", updated.Description)
	assert.Equal(t, float64(120), updated.Price)
	assert.Equal(t, withImage.ImageURL, updated.ImageURL, "update keeps image url")
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	_, err = products.Update(ctx, uuid.New(), loja.ProductFields{Name: "x"})
	assert.ErrorIs(t, err, loja.ErrNotFound)
}

func TestProductRepo_SetImageURL(t *testing.T) {
	products, _ := setupTestRepos(t)
	ctx := context.Background()

	created, err := products.Create(ctx, loja.ProductFields{Name: "Mouse", Price: 10})
	require.NoError(t, err)

	patched, err := products.SetImageURL(ctx, created.ID, "/imagens/x")
	require.NoError(t, err)
	assert.Equal(t, "/imagens/x", patched.ImageURL)
	assert.Equal(t, "Mouse", patched.Name)

	_, err = products.SetImageURL(ctx, uuid.New(), "/imagens/y")
	assert.ErrorIs(t, err, loja.ErrNotFound)
}

func TestProductRepo_Delete(t *testing.T) {
	products, _ := setupTestRepos(t)
	ctx := context.Background()

	created, err := products.Create(ctx, loja.ProductFields{Name: "Mouse", Price: 10})
	require.NoError(t, err)

	require.NoError(t, products.Delete(ctx, created.ID))

	_, err = products.Get(ctx, created.ID)
	assert.ErrorIs(t, err, loja.ErrNotFound)

	err = products.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, loja.ErrNotFound)
}

func TestAccountRepo(t *testing.T) {
	_, accounts := setupTestRepos(t)
	ctx := context.Background()

	created, err := accounts.Create(ctx, "admin@loja.dev", "$2a$10$hash")
	require.NoError(t, err)
	assert.Equal(t, "admin@loja.dev", created.Email)
	assert.Equal(t, "$2a$10$hash", created.PasswordHash)

	byID, err := accounts.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, byID.Email)

	byEmail, err := accounts.GetByEmail(ctx, "admin@loja.dev")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = accounts.Create(ctx, "admin@loja.dev", "other")
	assert.ErrorIs(t, err, loja.ErrAlreadyExists)

	_, err = accounts.GetByEmail(ctx, "ninguem@loja.dev")
	assert.ErrorIs(t, err, loja.ErrNotFound)

	_, err = accounts.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, loja.ErrNotFound)
}
