// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorKind はAPIErrorの分類を表す。
// ハンドラー層はKindからHTTPステータスとレスポンス形式を決定する。
type ErrorKind string

const (
	// KindValidation は必須項目の欠落や形式不正を表す。
	KindValidation ErrorKind = "validation"
	// KindConflict は一意制約違反を表す。レスポンス形式はバリデーションと同じ。
	KindConflict ErrorKind = "conflict"
	// KindAuth はトークンや資格情報の不一致を表す。
	KindAuth ErrorKind = "auth"
	// KindNotFound は存在しない、または他ユーザー所有のレコードへのアクセスを表す。
	KindNotFound ErrorKind = "not_found"
)

// 定義済みメッセージ
const (
	MessageUnauthorized        = "This action is unauthorized"
	MessageCredentialsMismatch = "Your credentials is not match."
	MessageRecordNotFound      = "Record not found."
	MessageUsernameTaken       = "The username has already been taken."
)

// APIError はサービス層が返すドメインエラー。
// Fieldsはフィールド名ごとのメッセージ一覧で、Kindによっては空になる。
// Fieldが設定されている場合、Messageはそのフィールドの単一メッセージとして返される。
type APIError struct {
	Kind    ErrorKind
	Message string
	Field   string
	Fields  map[string][]string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Message, e.Field)
	}
	if len(e.Fields) == 0 {
		return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Message, strings.Join(names, ", "))
}

// NewValidationError はフィールドごとのバリデーションエラーを生成する。
func NewValidationError(fields map[string][]string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: "The given data was invalid.",
		Fields:  fields,
	}
}

// NewConflictError は一意制約違反エラーを生成する。
func NewConflictError(field, message string) *APIError {
	return &APIError{
		Kind:    KindConflict,
		Message: message,
		Fields:  map[string][]string{field: {message}},
	}
}

// NewUsernameTakenError はユーザー名重複エラーを生成する。
func NewUsernameTakenError() *APIError {
	return NewConflictError("username", MessageUsernameTaken)
}

// NewUnauthorizedError はトークン未指定・不一致時の認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Kind:    KindAuth,
		Message: MessageUnauthorized,
	}
}

// NewCredentialsMismatchError はログイン失敗時の認証エラーを生成する。
// ユーザー不在とパスワード不一致のどちらでも同一の内容を返す。
func NewCredentialsMismatchError() *APIError {
	return &APIError{
		Kind:    KindAuth,
		Message: MessageCredentialsMismatch,
		Field:   "username",
	}
}

// NewRecordNotFoundError はレコード未検出エラーを生成する。
// 他ユーザー所有のレコードに対しても同じエラーを返す。
func NewRecordNotFoundError() *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Message: MessageRecordNotFound,
	}
}
