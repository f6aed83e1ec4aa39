package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/contactbook/internal/auth"
	"github.com/hitoshi/contactbook/internal/middleware"
	"github.com/hitoshi/contactbook/internal/model"
)

// AuthServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, in auth.RegisterInput) (*model.User, error)
	Login(ctx context.Context, in auth.LoginInput) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User, in auth.UpdateProfileInput) (*model.User, error)
	Logout(ctx context.Context, user *model.User) error
}

// UserHandler はユーザー登録・ログイン・プロフィール管理のHTTPハンドラー。
type UserHandler struct {
	service AuthServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service AuthServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// userResponse はユーザー情報のAPIレスポンス。
// パスワードハッシュは含めない。トークンはログイン中のみ含める。
type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Token    string `json:"token,omitempty"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Token:    u.Token,
	}
}

// Register はユーザー登録を処理する。
// POST /api/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if !decodeJSON(w, r, &in) {
		return
	}

	user, err := h.service.Register(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, toUserResponse(user))
}

// Login はログインを処理し、発行したトークンを含むユーザー情報を返す。
// POST /api/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if !decodeJSON(w, r, &in) {
		return
	}

	user, err := h.service.Login(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, toUserResponse(user))
}

// Current は認証済みユーザーの情報を返す。
// GET /api/users/current
func (h *UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.WriteUnauthorized(w)
		return
	}

	writeData(w, http.StatusOK, toUserResponse(user))
}

// UpdateCurrent は認証済みユーザーのユーザー名・パスワードを更新する。
// PATCH /api/users/current
func (h *UserHandler) UpdateCurrent(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.WriteUnauthorized(w)
		return
	}

	var in auth.UpdateProfileInput
	if !decodeJSON(w, r, &in) {
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), user, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, toUserResponse(updated))
}

// Logout はセッショントークンを破棄する。
// DELETE /api/users/logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.WriteUnauthorized(w)
		return
	}

	if err := h.service.Logout(r.Context(), user); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, true)
}
