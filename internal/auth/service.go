// Package auth はユーザー登録、ログイン、セッショントークンの発行と検証を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hitoshi/contactbook/internal/model"
	"github.com/hitoshi/contactbook/internal/repository"
	"github.com/hitoshi/contactbook/internal/security"
	"github.com/hitoshi/contactbook/internal/validate"
)

// tokenBytes はセッショントークンの乱数バイト数（256bit）。
const tokenBytes = 32

// PasswordHasher はパスワードのハッシュと照合のインターフェース。
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// EventRecorder は認証イベントの記録インターフェース。
// metrics.Collectorが実装する。
type EventRecorder interface {
	RecordAuthEvent(event, result string)
}

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Username string `json:"username" validate:"required,notblank,max=100"`
	Name     string `json:"name" validate:"required,notblank,max=100"`
	Password string `json:"password" validate:"required,notblank,max=72"`
}

// LoginInput はログインの入力。
type LoginInput struct {
	Username string `json:"username" validate:"required,notblank,max=100"`
	Password string `json:"password" validate:"required,notblank,max=72"`
}

// UpdateProfileInput はプロフィール更新の入力。
// nilのフィールドは変更しない。空白のみの値はバリデーションエラーになる。
type UpdateProfileInput struct {
	Username *string `json:"username" validate:"omitempty,notblank,max=100"`
	Password *string `json:"password" validate:"omitempty,notblank,max=72"`
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	hasher    PasswordHasher
	validator *validate.Validator
	recorder  EventRecorder
	newToken  func() (string, error)

	dummyOnce sync.Once
	dummyHash string
}

// NewService はServiceを生成する。recorderはnilでもよい。
func NewService(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	recorder EventRecorder,
) *Service {
	return &Service{
		userRepo:  userRepo,
		hasher:    hasher,
		validator: validate.New(),
		recorder:  recorder,
		newToken:  generateToken,
	}
}

// Register はユーザーを登録する。
// 登録直後のユーザーはセッショントークンを持たない。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("ユーザー名の確認に失敗しました: %w", err)
	}
	if existing != nil {
		s.record("register", "conflict")
		return nil, model.NewUsernameTakenError()
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     in.Username,
		Name:         in.Name,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 事前チェック後に同名ユーザーが作成された場合は一意制約で検出する
		if errors.Is(err, repository.ErrDuplicateUsername) {
			s.record("register", "conflict")
			return nil, model.NewUsernameTakenError()
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	s.record("register", "success")
	slog.Info("ユーザーを登録しました", slog.Int64("user_id", user.ID))

	return user, nil
}

// Login はユーザー名とパスワードを検証し、新しいセッショントークンを発行する。
// 以前のトークンは上書きされ、即座に無効になる。
// ユーザー不在とパスワード不一致は同一のエラーを返す。
func (s *Service) Login(ctx context.Context, in LoginInput) (*model.User, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		// 応答時間でユーザーの存在が判別できないよう、ダミーのハッシュと照合する
		s.hasher.Verify(s.dummyPasswordHash(), in.Password)
		s.record("login", "failure")
		return nil, model.NewCredentialsMismatchError()
	}
	if !s.hasher.Verify(user.PasswordHash, in.Password) {
		s.record("login", "failure")
		return nil, model.NewCredentialsMismatchError()
	}

	token, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("トークンの生成に失敗しました: %w", err)
	}
	if err := s.userRepo.UpdateToken(ctx, user.ID, token); err != nil {
		return nil, fmt.Errorf("トークンの保存に失敗しました: %w", err)
	}
	user.Token = token

	s.record("login", "success")
	slog.Info("ユーザーがログインしました", slog.Int64("user_id", user.ID))

	return user, nil
}

// Authenticate はセッショントークンに対応するユーザーを返す。
// トークンが空、または一致するユーザーがいない場合は認証エラーを返す。
func (s *Service) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, model.NewUnauthorizedError()
	}

	user, err := s.userRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("トークンによるユーザーの検索に失敗しました: %w", err)
	}
	if user == nil {
		s.record("authenticate", "failure")
		return nil, model.NewUnauthorizedError()
	}

	return user, nil
}

// UpdateProfile は認証済みユーザーのユーザー名とパスワードを更新する。
// 指定されなかった項目は変更しない。ユーザー名の変更時は一意性を再検証する。
func (s *Service) UpdateProfile(ctx context.Context, user *model.User, in UpdateProfileInput) (*model.User, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	updated := *user

	if in.Username != nil && *in.Username != user.Username {
		existing, err := s.userRepo.FindByUsername(ctx, *in.Username)
		if err != nil {
			return nil, fmt.Errorf("ユーザー名の確認に失敗しました: %w", err)
		}
		if existing != nil && existing.ID != user.ID {
			return nil, model.NewUsernameTakenError()
		}
		updated.Username = *in.Username
	}

	if in.Password != nil {
		hash, err := s.hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		updated.PasswordHash = hash
	}

	if in.Username == nil && in.Password == nil {
		return &updated, nil
	}

	if err := s.userRepo.UpdateProfile(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, model.NewUsernameTakenError()
		}
		return nil, fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
	}

	slog.Info("プロフィールを更新しました", slog.Int64("user_id", user.ID))

	return &updated, nil
}

// Logout はユーザーのセッショントークンを破棄する。
func (s *Service) Logout(ctx context.Context, user *model.User) error {
	if err := s.userRepo.UpdateToken(ctx, user.ID, ""); err != nil {
		return fmt.Errorf("トークンの破棄に失敗しました: %w", err)
	}

	s.record("logout", "success")
	slog.Info("ユーザーがログアウトしました", slog.Int64("user_id", user.ID))

	return nil
}

func (s *Service) validate(in any) error {
	fields, err := s.validator.Struct(in)
	if err != nil {
		return err
	}
	if fields != nil {
		return model.NewValidationError(fields)
	}
	return nil
}

// hashPassword はバイト長超過をpasswordフィールドのバリデーションエラーに変換する。
func (s *Service) hashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if errors.Is(err, security.ErrPasswordTooLong) {
		return "", model.NewValidationError(map[string][]string{
			"password": {fmt.Sprintf("The password field must not be greater than %d bytes.", security.MaxPasswordBytes)},
		})
	}
	if err != nil {
		return "", fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}
	return hash, nil
}

func (s *Service) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("contactbook-dummy-password")
	})
	return s.dummyHash
}

func (s *Service) record(event, result string) {
	if s.recorder != nil {
		s.recorder.RecordAuthEvent(event, result)
	}
}

// generateToken は暗号的に安全なセッショントークンを生成する。
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
