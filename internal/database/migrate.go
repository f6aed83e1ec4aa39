// Package database はデータベース接続とマイグレーション管理を提供する。
package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite3/*.sql
var migrationsFS embed.FS

// RunMigrations はすべての未適用マイグレーションを適用する。
// すでに最新の場合はエラーなしで返る。
// 渡されたdbは呼び出し側が所有し、この関数内ではクローズしない。
func RunMigrations(ctx context.Context, db *DB) error {
	src, err := iofs.New(migrationsFS, "migrations/"+string(db.Dialect))
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	var driver migratedb.Driver
	switch db.Dialect {
	case DialectPostgres:
		// WithInstanceはClose時にsql.DBごと閉じるため、専用コネクションを渡す
		conn, err := db.Conn(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire connection: %w", err)
		}
		defer conn.Close()

		driver, err = postgres.WithConnection(ctx, conn, &postgres.Config{})
		if err != nil {
			return fmt.Errorf("failed to create postgres migration driver: %w", err)
		}
	case DialectSQLite:
		driver, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
		if err != nil {
			return fmt.Errorf("failed to create sqlite3 migration driver: %w", err)
		}
	default:
		return fmt.Errorf("unsupported dialect: %q", db.Dialect)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(db.Dialect), driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer closeMigrator(m, src, db.Dialect)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// closeMigrator はマイグレーションで使用したリソースを解放する。
// sqlite3ドライバーのCloseは共有のsql.DBを閉じるため、SQLiteではソースのみを閉じる。
// postgresドライバーのCloseは専用コネクションだけを閉じる。
func closeMigrator(m *migrate.Migrate, src source.Driver, dialect Dialect) {
	if dialect == DialectSQLite {
		if err := src.Close(); err != nil {
			slog.Warn("failed to close migration source", slog.String("error", err.Error()))
		}
		return
	}
	if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
		slog.Warn("failed to close migrator",
			slog.Any("source_error", srcErr),
			slog.Any("database_error", dbErr),
		)
	}
}
