package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Dialect は接続先データベースの種類を表す。
type Dialect string

const (
	// DialectPostgres はPostgreSQL（lib/pq）を表す。本番環境で使用する。
	DialectPostgres Dialect = "postgres"
	// DialectSQLite はSQLite（go-sqlite3）を表す。ローカル開発とテストで使用する。
	DialectSQLite Dialect = "sqlite3"
)

// pqUniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const pqUniqueViolation = "23505"

// DB はオープン済みのsql.DBと方言をまとめたもの。
type DB struct {
	*sql.DB
	Dialect Dialect
}

// DetectDialect は接続URLのスキームから方言を判定する。
//
//	postgres://... / postgresql://...  → DialectPostgres
//	sqlite3://<path>                   → DialectSQLite
func DetectDialect(databaseURL string) (Dialect, string, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return DialectPostgres, databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite3://"):
		return DialectSQLite, strings.TrimPrefix(databaseURL, "sqlite3://"), nil
	default:
		return "", "", fmt.Errorf("unsupported database URL scheme: %q", schemeOf(databaseURL))
	}
}

// Open はデータベース接続を開く。
// sql.Openは接続を試行しないため、実際の接続確認にはdb.Ping()を使用すること。
// SQLiteはインメモリDBを接続間で共有するため、接続数を1に制限する。
func Open(databaseURL string) (*DB, error) {
	dialect, dsn, err := DetectDialect(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("データベースの接続に失敗しました: %w", err)
	}

	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

// IsUniqueViolation はエラーが一意制約違反かどうかを判定する。
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	return false
}

func schemeOf(databaseURL string) string {
	if i := strings.Index(databaseURL, "://"); i >= 0 {
		return databaseURL[:i]
	}
	return ""
}
