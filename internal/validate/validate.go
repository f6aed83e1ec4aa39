// Package validate はリクエストペイロードのバリデーションを提供する。
// go-playground/validatorのエラーを、フィールド名ごとのメッセージ一覧に変換する。
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Validator は構造体タグに基づくバリデーションを行う。
// フィールド名にはjsonタグの名前を使用する。
type Validator struct {
	v *validator.Validate
}

// New はValidatorを生成する。
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// notblank は空白のみの文字列を拒否する。ポインタはomitemptyと組み合わせて使う。
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	return &Validator{v: v}
}

// Struct は構造体を検証し、違反があればフィールド名ごとのメッセージ一覧を返す。
// 違反がない場合はnilを返す。
func (val *Validator) Struct(s any) (map[string][]string, error) {
	err := val.v.Struct(s)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, fmt.Errorf("failed to validate %T: %w", s, err)
	}

	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = append(fields[fe.Field()], message(fe))
	}
	return fields, nil
}

// message はバリデーション違反を人が読めるメッセージに変換する。
func message(fe validator.FieldError) string {
	attr := strings.ReplaceAll(fe.Field(), "_", " ")

	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("The %s field is required.", attr)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", attr, fe.Param())
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", attr, fe.Param())
	default:
		return fmt.Sprintf("The %s field is invalid.", attr)
	}
}
