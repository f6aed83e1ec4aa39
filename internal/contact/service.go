// Package contact は連絡先管理のドメインロジックを提供する。
// すべての操作は認証済みユーザー（所有者）を明示的に受け取り、所有者の連絡先だけを扱う。
package contact

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/contactbook/internal/model"
	"github.com/hitoshi/contactbook/internal/repository"
	"github.com/hitoshi/contactbook/internal/validate"
)

// MarkupDetector はプレーンテキスト項目にマークアップが含まれるかを判定するインターフェース。
type MarkupDetector interface {
	ContainsMarkup(raw string) bool
}

// CreationRecorder は連絡先作成の記録インターフェース。
type CreationRecorder interface {
	RecordContactCreated()
}

// Input は連絡先の作成・更新の入力。
type Input struct {
	FirstName string `json:"first_name" validate:"required,notblank,max=100"`
	LastName  string `json:"last_name" validate:"required,notblank,max=100"`
	Email     string `json:"email" validate:"required,notblank,max=100"`
	Phone     string `json:"phone" validate:"required,notblank,max=100"`
}

// Service は連絡先管理のサービス層。
type Service struct {
	repo      repository.ContactRepository
	markup    MarkupDetector
	validator *validate.Validator
	recorder  CreationRecorder
}

// NewService はServiceを生成する。recorderはnilでもよい。
func NewService(repo repository.ContactRepository, markup MarkupDetector, recorder CreationRecorder) *Service {
	return &Service{
		repo:      repo,
		markup:    markup,
		validator: validate.New(),
		recorder:  recorder,
	}
}

// Create は所有者の連絡先を作成する。
func (s *Service) Create(ctx context.Context, owner *model.User, in Input) (*model.Contact, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	c := &model.Contact{
		UserID:    owner.ID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("連絡先の作成に失敗しました: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordContactCreated()
	}
	slog.Info("contact created",
		slog.Int64("user_id", owner.ID),
		slog.Int64("contact_id", c.ID),
	)

	return c, nil
}

// Get は所有者の連絡先を取得する。
// 存在しない場合と他ユーザー所有の場合は同じNotFoundエラーを返す。
func (s *Service) Get(ctx context.Context, owner *model.User, contactID int64) (*model.Contact, error) {
	c, err := s.repo.FindByIDAndUserID(ctx, contactID, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("連絡先の取得に失敗しました: %w", err)
	}
	if c == nil {
		return nil, model.NewRecordNotFoundError()
	}
	return c, nil
}

// Update は所有者の連絡先の4項目を置き換える。
// バリデーションはストレージへの問い合わせより先に行う。
func (s *Service) Update(ctx context.Context, owner *model.User, contactID int64, in Input) (*model.Contact, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	c := &model.Contact{
		ID:        contactID,
		UserID:    owner.ID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
	}
	ok, err := s.repo.Update(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("連絡先の更新に失敗しました: %w", err)
	}
	if !ok {
		return nil, model.NewRecordNotFoundError()
	}

	slog.Info("contact updated",
		slog.Int64("user_id", owner.ID),
		slog.Int64("contact_id", contactID),
	)

	return c, nil
}

// check は入力を検証する。値は送信されたまま保存するため、書き換えは行わない。
// マークアップを含む項目は、他の違反がない場合に限りその項目のエラーとして報告する。
func (s *Service) check(in Input) error {
	fields, err := s.validator.Struct(in)
	if err != nil {
		return err
	}

	for _, f := range []struct{ name, value string }{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"email", in.Email},
		{"phone", in.Phone},
	} {
		if _, failed := fields[f.name]; failed || !s.markup.ContainsMarkup(f.value) {
			continue
		}
		if fields == nil {
			fields = make(map[string][]string)
		}
		fields[f.name] = []string{fmt.Sprintf("The %s field must not contain markup.", strings.ReplaceAll(f.name, "_", " "))}
	}

	if fields != nil {
		return model.NewValidationError(fields)
	}
	return nil
}
