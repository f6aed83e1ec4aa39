package contact

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/contactbook/internal/database/dbtest"
	"github.com/hitoshi/contactbook/internal/model"
	"github.com/hitoshi/contactbook/internal/repository"
	"github.com/hitoshi/contactbook/internal/security"
)

// --- モック定義 ---

type mockContactRepo struct {
	createFn func(ctx context.Context, c *model.Contact) error
	findFn   func(ctx context.Context, id, userID int64) (*model.Contact, error)
	updateFn func(ctx context.Context, c *model.Contact) (bool, error)
}

func (m *mockContactRepo) Create(ctx context.Context, c *model.Contact) error {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	c.ID = 1
	return nil
}

func (m *mockContactRepo) FindByIDAndUserID(ctx context.Context, id, userID int64) (*model.Contact, error) {
	if m.findFn != nil {
		return m.findFn(ctx, id, userID)
	}
	return nil, nil
}

func (m *mockContactRepo) Update(ctx context.Context, c *model.Contact) (bool, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, c)
	}
	return true, nil
}

var _ repository.ContactRepository = (*mockContactRepo)(nil)

type countingRecorder struct{ n int }

func (r *countingRecorder) RecordContactCreated() { r.n++ }

var owner = &model.User{ID: 10, Username: "abud"}

func validInput() Input {
	return Input{
		FirstName: "Muhammad",
		LastName:  "Asseweth",
		Email:     "yazid@gmail.com",
		Phone:     "082167361472",
	}
}

func requireKind(t *testing.T, err error, kind model.ErrorKind) *model.APIError {
	t.Helper()
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, kind, apiErr.Kind)
	return apiErr
}

func TestCreate_AssignsOwner(t *testing.T) {
	var stored *model.Contact
	repo := &mockContactRepo{
		createFn: func(_ context.Context, c *model.Contact) error {
			c.ID = 42
			stored = c
			return nil
		},
	}
	recorder := &countingRecorder{}
	svc := NewService(repo, security.NewMarkupDetector(), recorder)

	c, err := svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	assert.Equal(t, int64(42), c.ID)
	assert.Equal(t, owner.ID, stored.UserID)
	assert.Equal(t, "Muhammad", stored.FirstName)
	assert.Equal(t, 1, recorder.n)
}

func TestCreate_ValidationNamesEveryMissingField(t *testing.T) {
	repo := &mockContactRepo{
		createFn: func(context.Context, *model.Contact) error {
			t.Fatal("Create must not be called")
			return nil
		},
	}
	svc := NewService(repo, security.NewMarkupDetector(), nil)

	_, err := svc.Create(context.Background(), owner, Input{})

	apiErr := requireKind(t, err, model.KindValidation)
	assert.Equal(t, []string{"The first name field is required."}, apiErr.Fields["first_name"])
	assert.Equal(t, []string{"The last name field is required."}, apiErr.Fields["last_name"])
	assert.Contains(t, apiErr.Fields, "email")
	assert.Contains(t, apiErr.Fields, "phone")
}

func TestCreate_StoresFieldsAsSubmitted(t *testing.T) {
	var stored *model.Contact
	repo := &mockContactRepo{
		createFn: func(_ context.Context, c *model.Contact) error {
			stored = c
			return nil
		},
	}
	svc := NewService(repo, security.NewMarkupDetector(), nil)

	in := Input{
		FirstName: "  Muhammad ",
		LastName:  "&lt;x&gt;",
		Email:     "yazid+work@gmail.com",
		Phone:     "+62 821 < 9",
	}
	c, err := svc.Create(context.Background(), owner, in)
	require.NoError(t, err)

	assert.Equal(t, "  Muhammad ", stored.FirstName)
	assert.Equal(t, "&lt;x&gt;", stored.LastName)
	assert.Equal(t, "+62 821 < 9", c.Phone)
}

func TestCreate_MarkupIsRejected(t *testing.T) {
	repo := &mockContactRepo{
		createFn: func(context.Context, *model.Contact) error {
			t.Fatal("Create must not be called")
			return nil
		},
	}
	svc := NewService(repo, security.NewMarkupDetector(), nil)

	in := validInput()
	in.FirstName = "<b>Muhammad</b>"
	in.Email = "Yazid <yazid@gmail.com>"
	in.Phone = ""
	_, err := svc.Create(context.Background(), owner, in)

	apiErr := requireKind(t, err, model.KindValidation)
	assert.Equal(t, []string{"The first name field must not contain markup."}, apiErr.Fields["first_name"])
	assert.Equal(t, []string{"The email field must not contain markup."}, apiErr.Fields["email"])
	assert.Equal(t, []string{"The phone field is required."}, apiErr.Fields["phone"])
	assert.NotContains(t, apiErr.Fields, "last_name")
}

func TestCreate_BlankFieldIsRequired(t *testing.T) {
	svc := NewService(&mockContactRepo{}, security.NewMarkupDetector(), nil)

	in := validInput()
	in.LastName = "   "
	_, err := svc.Create(context.Background(), owner, in)

	apiErr := requireKind(t, err, model.KindValidation)
	assert.Equal(t, []string{"The last name field is required."}, apiErr.Fields["last_name"])
}

func TestUpdate_MarkupIsRejectedBeforeStorage(t *testing.T) {
	repo := &mockContactRepo{
		updateFn: func(context.Context, *model.Contact) (bool, error) {
			t.Fatal("Update must not be called")
			return false, nil
		},
	}
	svc := NewService(repo, security.NewMarkupDetector(), nil)

	in := validInput()
	in.LastName = "<script>alert(1)</script>"
	_, err := svc.Update(context.Background(), owner, 5, in)

	apiErr := requireKind(t, err, model.KindValidation)
	assert.Contains(t, apiErr.Fields, "last_name")
}

func TestCreate_TooLongField(t *testing.T) {
	svc := NewService(&mockContactRepo{}, security.NewMarkupDetector(), nil)

	in := validInput()
	in.Email = strings.Repeat("a", 101)
	_, err := svc.Create(context.Background(), owner, in)

	apiErr := requireKind(t, err, model.KindValidation)
	assert.Equal(t, []string{"The email field must not be greater than 100 characters."}, apiErr.Fields["email"])
}

func TestCreate_RepositoryErrorIsWrapped(t *testing.T) {
	dbErr := errors.New("disk full")
	repo := &mockContactRepo{
		createFn: func(context.Context, *model.Contact) error { return dbErr },
	}
	recorder := &countingRecorder{}
	svc := NewService(repo, security.NewMarkupDetector(), recorder)

	_, err := svc.Create(context.Background(), owner, validInput())
	assert.ErrorIs(t, err, dbErr)
	assert.Equal(t, 0, recorder.n)
}

func TestGet_ScopesLookupToOwner(t *testing.T) {
	var gotID, gotUserID int64
	repo := &mockContactRepo{
		findFn: func(_ context.Context, id, userID int64) (*model.Contact, error) {
			gotID, gotUserID = id, userID
			return &model.Contact{ID: id, UserID: userID, FirstName: "Muhammad"}, nil
		},
	}
	svc := NewService(repo, security.NewMarkupDetector(), nil)

	c, err := svc.Get(context.Background(), owner, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), gotID)
	assert.Equal(t, owner.ID, gotUserID)
	assert.Equal(t, "Muhammad", c.FirstName)
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(&mockContactRepo{}, security.NewMarkupDetector(), nil)

	_, err := svc.Get(context.Background(), owner, 5)

	apiErr := requireKind(t, err, model.KindNotFound)
	assert.Equal(t, model.MessageRecordNotFound, apiErr.Message)
}

func TestUpdate_ValidatesBeforeStorage(t *testing.T) {
	repo := &mockContactRepo{
		updateFn: func(context.Context, *model.Contact) (bool, error) {
			t.Fatal("Update must not be called")
			return false, nil
		},
	}
	svc := NewService(repo, security.NewMarkupDetector(), nil)

	_, err := svc.Update(context.Background(), owner, 5, Input{FirstName: "Muhammad"})

	apiErr := requireKind(t, err, model.KindValidation)
	assert.NotContains(t, apiErr.Fields, "first_name")
	assert.Contains(t, apiErr.Fields, "phone")
}

func TestUpdate_NotOwnedIsNotFound(t *testing.T) {
	repo := &mockContactRepo{
		updateFn: func(context.Context, *model.Contact) (bool, error) { return false, nil },
	}
	svc := NewService(repo, security.NewMarkupDetector(), nil)

	_, err := svc.Update(context.Background(), owner, 5, validInput())

	requireKind(t, err, model.KindNotFound)
}

func TestUpdate_PassesOwnerAndID(t *testing.T) {
	var updated *model.Contact
	repo := &mockContactRepo{
		updateFn: func(_ context.Context, c *model.Contact) (bool, error) {
			updated = c
			return true, nil
		},
	}
	svc := NewService(repo, security.NewMarkupDetector(), nil)

	in := validInput()
	in.FirstName = "Yazid"
	c, err := svc.Update(context.Background(), owner, 5, in)
	require.NoError(t, err)

	assert.Equal(t, int64(5), updated.ID)
	assert.Equal(t, owner.ID, updated.UserID)
	assert.Equal(t, "Yazid", c.FirstName)
}

// SQLiteストアと組み合わせて所有者以外からのアクセスを確認する
func TestService_WithSQLStore_OwnershipIsolation(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	users := repository.NewSQLUserRepo(db.DB)
	alice := &model.User{Username: "alice", Name: "Alice", PasswordHash: "x"}
	bob := &model.User{Username: "bob", Name: "Bob", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))

	svc := NewService(repository.NewSQLContactRepo(db.DB), security.NewMarkupDetector(), nil)

	c, err := svc.Create(ctx, alice, validInput())
	require.NoError(t, err)

	got, err := svc.Get(ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "yazid@gmail.com", got.Email)

	_, err = svc.Get(ctx, bob, c.ID)
	requireKind(t, err, model.KindNotFound)

	in := validInput()
	in.Phone = "000"
	_, err = svc.Update(ctx, bob, c.ID, in)
	requireKind(t, err, model.KindNotFound)

	got, err = svc.Get(ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "082167361472", got.Phone)
}
