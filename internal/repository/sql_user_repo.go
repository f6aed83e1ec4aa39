package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/contactbook/internal/database"
	"github.com/hitoshi/contactbook/internal/model"
)

// プレースホルダはPostgreSQLとSQLiteの両方で動くよう$1から昇順で一度ずつ使う。

const userColumns = `id, username, name, password, token, created_at, updated_at`

// SQLUserRepo はdatabase/sqlを使用したユーザーリポジトリ。
type SQLUserRepo struct {
	db *sql.DB
}

// NewSQLUserRepo はSQLUserRepoを生成する。
func NewSQLUserRepo(db *sql.DB) *SQLUserRepo {
	return &SQLUserRepo{db: db}
}

// FindByUsername はユーザー名でユーザーを取得する。見つからない場合はnilを返す。
func (r *SQLUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	if err != nil {
		return nil, fmt.Errorf("ユーザー名によるユーザーの検索に失敗しました: %w", err)
	}
	return user, nil
}

// FindByToken はセッショントークンに完全一致するユーザーを取得する。
func (r *SQLUserRepo) FindByToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}
	user, err := r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE token = $1`, token)
	if err != nil {
		return nil, fmt.Errorf("トークンによるユーザーの検索に失敗しました: %w", err)
	}
	return user, nil
}

// Create はユーザーを作成する。トークンは常にNULLで作成する。
func (r *SQLUserRepo) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, name, password, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		user.Username, user.Name, user.PasswordHash, now, now,
	).Scan(&user.ID)
	if database.IsUniqueViolation(err) {
		return ErrDuplicateUsername
	}
	if err != nil {
		return fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	user.Token = ""
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// UpdateProfile はユーザー名・表示名・パスワードハッシュを更新する。
func (r *SQLUserRepo) UpdateProfile(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET username = $1, name = $2, password = $3, updated_at = $4 WHERE id = $5`,
		user.Username, user.Name, user.PasswordHash, now, user.ID,
	)
	if database.IsUniqueViolation(err) {
		return ErrDuplicateUsername
	}
	if err != nil {
		return fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
	}
	if err := requireOneRow(result, "user", user.ID); err != nil {
		return err
	}

	user.UpdatedAt = now
	return nil
}

// UpdateToken はセッショントークンを上書きする。
// 同一ユーザーへの同時ログインは後勝ちになる。
func (r *SQLUserRepo) UpdateToken(ctx context.Context, userID int64, token string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET token = $1, updated_at = $2 WHERE id = $3`,
		sql.NullString{String: token, Valid: token != ""}, time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("セッショントークンの更新に失敗しました: %w", err)
	}
	return requireOneRow(result, "user", userID)
}

func (r *SQLUserRepo) findOne(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}
	var token sql.NullString

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Name, &user.PasswordHash, &token, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	user.Token = token.String
	return user, nil
}

// requireOneRow は更新対象の行が存在したことを確認する。
func requireOneRow(result sql.Result, entity string, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新件数の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s not found: %d", entity, id)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*SQLUserRepo)(nil)
