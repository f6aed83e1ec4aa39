// Package dbtest はテスト用のマイグレーション済みインメモリSQLiteを提供する。
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hitoshi/contactbook/internal/database"
)

var seq atomic.Int64

// Open はテストごとに独立したインメモリSQLiteを開き、全マイグレーションを適用する。
// DBはテスト終了時にクローズされる。
func Open(t testing.TB) *database.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	url := fmt.Sprintf("sqlite3://file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	db, err := database.Open(url)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}
