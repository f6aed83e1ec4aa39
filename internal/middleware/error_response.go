package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/contactbook/internal/model"
)

// MessageInternalServerError は内部エラー時にクライアントへ返す固定メッセージ。
const MessageInternalServerError = "Internal server error."

// ErrorMessageBody は単一メッセージのエラーレスポンス形式。
//
//	{"errors":{"message":"..."}}
type ErrorMessageBody struct {
	Errors struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FieldErrorsBody はフィールド別エラーのレスポンス形式。
//
//	{"errors":{"field":["..."]}}
type FieldErrorsBody struct {
	Errors map[string][]string `json:"errors"`
}

// FieldMessageBody は単一フィールドに単一メッセージを持つエラーレスポンス形式。
//
//	{"errors":{"field":"..."}}
type FieldMessageBody struct {
	Errors map[string]string `json:"errors"`
}

// WriteJSON はJSONレスポンスを書き込む。
func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// WriteErrorMessage は単一メッセージ形式のエラーレスポンスを書き込む。
func WriteErrorMessage(w http.ResponseWriter, statusCode int, message string) {
	var body ErrorMessageBody
	body.Errors.Message = message
	WriteJSON(w, statusCode, body)
}

// WriteFieldErrors はフィールド別エラーレスポンスを書き込む。
func WriteFieldErrors(w http.ResponseWriter, statusCode int, fields map[string][]string) {
	WriteJSON(w, statusCode, FieldErrorsBody{Errors: fields})
}

// WriteFieldMessage はフィールド名をキーに単一メッセージを持つエラーレスポンスを書き込む。
func WriteFieldMessage(w http.ResponseWriter, statusCode int, field, message string) {
	WriteJSON(w, statusCode, FieldMessageBody{Errors: map[string]string{field: message}})
}

// WriteUnauthorized は認可失敗のレスポンスを書き込む。
func WriteUnauthorized(w http.ResponseWriter) {
	WriteErrorMessage(w, http.StatusUnauthorized, model.MessageUnauthorized)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorMessage(w, http.StatusInternalServerError, MessageInternalServerError)
}
