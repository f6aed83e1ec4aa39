package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes はbcryptが扱えるパスワードの最大バイト数。
const MaxPasswordBytes = 72

// ErrPasswordTooLong はパスワードがMaxPasswordBytesを超える場合のエラー。
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// PasswordHasher はbcryptによるパスワードハッシュを提供する。
// ソルトはハッシュ値に埋め込まれるため、別途保存する必要はない。
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher は指定コストのPasswordHasherを生成する。
// コストが範囲外の場合はbcrypt.DefaultCostを使用する。
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash はパスワードのbcryptハッシュを返す。
func (h *PasswordHasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}
	return string(hash), nil
}

// Verify はパスワードがハッシュと一致するかを返す。
// ハッシュが不正な形式の場合もfalseを返す。
func (h *PasswordHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
