package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/contactbook/internal/model"
)

// SQLContactRepo はdatabase/sqlを使用した連絡先リポジトリ。
type SQLContactRepo struct {
	db *sql.DB
}

// NewSQLContactRepo はSQLContactRepoを生成する。
func NewSQLContactRepo(db *sql.DB) *SQLContactRepo {
	return &SQLContactRepo{db: db}
}

// Create は連絡先を作成する。
func (r *SQLContactRepo) Create(ctx context.Context, contact *model.Contact) error {
	now := time.Now().UTC()

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO contacts (user_id, first_name, last_name, email, phone, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		contact.UserID, contact.FirstName, contact.LastName, contact.Email, contact.Phone, now, now,
	).Scan(&contact.ID)
	if err != nil {
		return fmt.Errorf("連絡先の作成に失敗しました: %w", err)
	}

	contact.CreatedAt = now
	contact.UpdatedAt = now
	return nil
}

// FindByIDAndUserID は所有者が一致する連絡先を取得する。見つからない場合はnilを返す。
func (r *SQLContactRepo) FindByIDAndUserID(ctx context.Context, id, userID int64) (*model.Contact, error) {
	contact := &model.Contact{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, first_name, last_name, email, phone, created_at, updated_at
		 FROM contacts
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(
		&contact.ID, &contact.UserID, &contact.FirstName, &contact.LastName,
		&contact.Email, &contact.Phone, &contact.CreatedAt, &contact.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("連絡先の取得に失敗しました: %w", err)
	}

	return contact, nil
}

// Update は所有者が一致する連絡先の4項目を更新する。
func (r *SQLContactRepo) Update(ctx context.Context, contact *model.Contact) (bool, error) {
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE contacts
		 SET first_name = $1, last_name = $2, email = $3, phone = $4, updated_at = $5
		 WHERE id = $6 AND user_id = $7`,
		contact.FirstName, contact.LastName, contact.Email, contact.Phone, now, contact.ID, contact.UserID,
	)
	if err != nil {
		return false, fmt.Errorf("連絡先の更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("更新件数の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	contact.UpdatedAt = now
	return true, nil
}

// compile-time interface check
var _ ContactRepository = (*SQLContactRepo)(nil)
