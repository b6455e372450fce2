package sqlite_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/amww/loja"
	"github.com/amww/loja/database/sqlite"
	"github.com/stretchr/testify/require"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

func randomTables(t *testing.T) loja.Tables {
	t.Helper()
	suffix := getRandomString(t)
	return loja.Tables{
		Products: "products_" + suffix,
		Accounts: "accounts_" + suffix,
	}
}

// setupTestRepos creates migrated repos with unique table names for test isolation
func setupTestRepos(t *testing.T) (loja.ProductRepo, loja.AccountRepo) {
	t.Helper()

	ctx := context.Background()

	db, err := sqlite.Connect(ctx, ":memory:", randomTables(t))
	require.NoError(t, err, "failed to connect")
	t.Cleanup(func() { _ = db.Close() })

	err = db.Migrate(ctx)
	require.NoError(t, err, "failed to migrate")

	return db.Products(), db.Accounts()
}
