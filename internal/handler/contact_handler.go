package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/contactbook/internal/contact"
	"github.com/hitoshi/contactbook/internal/middleware"
	"github.com/hitoshi/contactbook/internal/model"
)

// ContactServiceInterface は連絡先ハンドラーが必要とするサービスインターフェース。
type ContactServiceInterface interface {
	Create(ctx context.Context, owner *model.User, in contact.Input) (*model.Contact, error)
	Get(ctx context.Context, owner *model.User, contactID int64) (*model.Contact, error)
	Update(ctx context.Context, owner *model.User, contactID int64, in contact.Input) (*model.Contact, error)
}

// ContactHandler は連絡先管理のHTTPハンドラー。
type ContactHandler struct {
	service ContactServiceInterface
}

// NewContactHandler はContactHandlerを生成する。
func NewContactHandler(service ContactServiceInterface) *ContactHandler {
	return &ContactHandler{
		service: service,
	}
}

// contactResponse は連絡先のAPIレスポンス。
type contactResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func toContactResponse(c *model.Contact) contactResponse {
	return contactResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
	}
}

// Create は連絡先を作成する。
// POST /api/contacts
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.WriteUnauthorized(w)
		return
	}

	var in contact.Input
	if !decodeJSON(w, r, &in) {
		return
	}

	c, err := h.service.Create(r.Context(), owner, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, toContactResponse(c))
}

// Get は連絡先を取得する。
// GET /api/contacts/{id}
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.WriteUnauthorized(w)
		return
	}

	id, ok := parseContactID(r)
	if !ok {
		handleServiceError(w, r, model.NewRecordNotFoundError())
		return
	}

	c, err := h.service.Get(r.Context(), owner, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, toContactResponse(c))
}

// Update は連絡先の4項目を置き換える。
// PATCH /api/contacts/{id}
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.WriteUnauthorized(w)
		return
	}

	id, ok := parseContactID(r)
	if !ok {
		handleServiceError(w, r, model.NewRecordNotFoundError())
		return
	}

	var in contact.Input
	if !decodeJSON(w, r, &in) {
		return
	}

	c, err := h.service.Update(r.Context(), owner, id, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, toContactResponse(c))
}

// parseContactID はパスパラメータの連絡先IDを解析する。
// 正の整数でない場合は存在しないIDとして扱う。
func parseContactID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
