package model

import "time"

// Contact はユーザーが管理する連絡先を表す。
// UserIDは作成時に所有者のIDで固定され、以後変更されない。
// 所有者による絞り込みはリポジトリのSQLで行う。
type Contact struct {
	ID        int64
	UserID    int64
	FirstName string
	LastName  string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
