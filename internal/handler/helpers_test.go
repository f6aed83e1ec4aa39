package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/hitoshi/contactbook/internal/auth"
	"github.com/hitoshi/contactbook/internal/contact"
	"github.com/hitoshi/contactbook/internal/middleware"
	"github.com/hitoshi/contactbook/internal/model"
)

// --- モック定義 ---

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	registerFn      func(ctx context.Context, in auth.RegisterInput) (*model.User, error)
	loginFn         func(ctx context.Context, in auth.LoginInput) (*model.User, error)
	updateProfileFn func(ctx context.Context, user *model.User, in auth.UpdateProfileInput) (*model.User, error)
	logoutFn        func(ctx context.Context, user *model.User) error
}

func (m *mockAuthService) Register(ctx context.Context, in auth.RegisterInput) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, in)
	}
	return &model.User{ID: 1, Username: in.Username, Name: in.Name}, nil
}

func (m *mockAuthService) Login(ctx context.Context, in auth.LoginInput) (*model.User, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, in)
	}
	return nil, model.NewCredentialsMismatchError()
}

func (m *mockAuthService) UpdateProfile(ctx context.Context, user *model.User, in auth.UpdateProfileInput) (*model.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, user, in)
	}
	return user, nil
}

func (m *mockAuthService) Logout(ctx context.Context, user *model.User) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, user)
	}
	return nil
}

// mockContactService はContactServiceInterfaceのモック実装。
type mockContactService struct {
	createFn func(ctx context.Context, owner *model.User, in contact.Input) (*model.Contact, error)
	getFn    func(ctx context.Context, owner *model.User, id int64) (*model.Contact, error)
	updateFn func(ctx context.Context, owner *model.User, id int64, in contact.Input) (*model.Contact, error)
}

func (m *mockContactService) Create(ctx context.Context, owner *model.User, in contact.Input) (*model.Contact, error) {
	if m.createFn != nil {
		return m.createFn(ctx, owner, in)
	}
	return &model.Contact{ID: 1, UserID: owner.ID, FirstName: in.FirstName, LastName: in.LastName, Email: in.Email, Phone: in.Phone}, nil
}

func (m *mockContactService) Get(ctx context.Context, owner *model.User, id int64) (*model.Contact, error) {
	if m.getFn != nil {
		return m.getFn(ctx, owner, id)
	}
	return nil, model.NewRecordNotFoundError()
}

func (m *mockContactService) Update(ctx context.Context, owner *model.User, id int64, in contact.Input) (*model.Contact, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, owner, id, in)
	}
	return nil, model.NewRecordNotFoundError()
}

// mockAuthenticator はトークンとユーザーの対応表で認証する。
type mockAuthenticator struct {
	users map[string]*model.User
}

func (m *mockAuthenticator) Authenticate(_ context.Context, token string) (*model.User, error) {
	if u, ok := m.users[token]; ok {
		return u, nil
	}
	return nil, model.NewUnauthorizedError()
}

var (
	_ AuthServiceInterface          = (*mockAuthService)(nil)
	_ ContactServiceInterface       = (*mockContactService)(nil)
	_ middleware.TokenAuthenticator = (*mockAuthenticator)(nil)
)

// withUser はリクエストコンテキストに認証済みユーザーを注入する。
func withUser(r *http.Request, user *model.User) *http.Request {
	return r.WithContext(middleware.ContextWithUser(r.Context(), user))
}

// decodeBody はレスポンスボディを汎用マップにデコードする。
func decodeBody(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("failed to decode response body: %v\nraw: %s", err, body)
	}
	return m
}
