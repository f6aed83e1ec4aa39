// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/contactbook/internal/model"
)

// ErrDuplicateUsername はユーザー名の一意制約に違反した場合のエラー。
var ErrDuplicateUsername = errors.New("username already exists")

// UserRepository はユーザーデータ（資格情報とセッショントークン）の永続化インターフェース。
type UserRepository interface {
	// FindByUsername はユーザー名でユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// FindByToken はセッショントークンに完全一致するユーザーを取得する。
	// 空のトークンや一致しない場合はnilを返す。
	FindByToken(ctx context.Context, token string) (*model.User, error)

	// Create はユーザーを作成し、採番されたIDをuser.IDに設定する。
	// ユーザー名が重複する場合はErrDuplicateUsernameを返す。
	Create(ctx context.Context, user *model.User) error

	// UpdateProfile はユーザー名・表示名・パスワードハッシュを更新する。
	// ユーザー名が重複する場合はErrDuplicateUsernameを返す。
	UpdateProfile(ctx context.Context, user *model.User) error

	// UpdateToken はセッショントークンを単一行UPDATEで上書きする。
	// 空文字列を渡すとトークンをNULLにする。
	UpdateToken(ctx context.Context, userID int64, token string) error
}

// ContactRepository は連絡先データの永続化インターフェース。
// 取得・更新は常に所有者IDで絞り込む。
type ContactRepository interface {
	// Create は連絡先を作成し、採番されたIDをcontact.IDに設定する。
	Create(ctx context.Context, contact *model.Contact) error

	// FindByIDAndUserID は所有者が一致する連絡先を取得する。
	// 存在しない場合と所有者が異なる場合はどちらもnilを返す。
	FindByIDAndUserID(ctx context.Context, id, userID int64) (*model.Contact, error)

	// Update は所有者が一致する連絡先の4項目を更新する。
	// 対象行が存在しない（または所有者が異なる）場合はfalseを返す。
	Update(ctx context.Context, contact *model.Contact) (bool, error)
}
