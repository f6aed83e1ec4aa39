package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはAPIレスポンスに含めてはならない。
type User struct {
	ID           int64
	Username     string
	Name         string
	PasswordHash string
	// Token は現在有効なセッショントークン。未ログイン時は空文字列。
	Token     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
