package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/contactbook/internal/middleware"
	"github.com/hitoshi/contactbook/internal/model"
)

// maxRequestBodyBytes はリクエストボディの上限サイズ。
const maxRequestBodyBytes = 1 << 20

// messageInvalidJSON は不正なJSONボディに対するメッセージ。
const messageInvalidJSON = "The request body is not valid JSON."

// dataResponse は成功レスポンスの共通形式。
type dataResponse struct {
	Data any `json:"data"`
}

// notFoundResponse はレコード未検出時のレスポンス形式。
type notFoundResponse struct {
	Message string `json:"message"`
}

// writeData は {"data": ...} 形式で成功レスポンスを書き込む。
func writeData(w http.ResponseWriter, statusCode int, data any) {
	middleware.WriteJSON(w, statusCode, dataResponse{Data: data})
}

// decodeJSON はリクエストボディをdstにデコードする。
// 空のボディは空のオブジェクトとして扱い、各項目の必須チェックはサービス層に任せる。
// デコードに失敗した場合は400を書き込み、falseを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	slog.Debug("invalid request body",
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
	)
	middleware.WriteErrorMessage(w, http.StatusBadRequest, messageInvalidJSON)
	return false
}

// handleServiceError はサービス層のエラーを適切なHTTPレスポンスに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
	)
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorの種別からHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Kind {
	case model.KindValidation, model.KindConflict:
		return http.StatusUnprocessableEntity
	case model.KindAuth:
		return http.StatusUnauthorized
	case model.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeAPIErrorResponse はAPIErrorを種別に応じた形式で書き込む。
// フィールド別エラーを持つ場合は {"errors":{"field":[...]}}、単一フィールドの場合は
// {"errors":{"field": "..."}}、NotFoundは {"message": ...}、それ以外は {"errors":{"message": ...}} となる。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	switch {
	case apiErr.Kind == model.KindNotFound:
		middleware.WriteJSON(w, statusCode, notFoundResponse{Message: apiErr.Message})
	case apiErr.Field != "":
		middleware.WriteFieldMessage(w, statusCode, apiErr.Field, apiErr.Message)
	case len(apiErr.Fields) > 0:
		middleware.WriteFieldErrors(w, statusCode, apiErr.Fields)
	default:
		middleware.WriteErrorMessage(w, statusCode, apiErr.Message)
	}
}
