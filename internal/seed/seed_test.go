package seed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "kali/internal/errors"
	"kali/internal/model"
	"kali/internal/service"
)

const document = `[
  {"username":"alice","email":"alice@x.io","password":"pw1","firstName":"Alice","lastName":"Smith"},
  {"username":"bob","email":"bob@x.io","password":"pw2","firstName":"Bob","lastName":"Jones","phoneNumber":"+15550100"}
]`

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, in service.RegisterInput) (*model.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), nil, args.Error(2)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(document), 0o600))

	users, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob@x.io", users[1].Email)
	assert.Equal(t, "+15550100", users[1].PhoneNumber)
}

func TestLoad_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(document))
	}))
	defer srv.Close()

	users, err := Load(context.Background(), srv.URL+"/users.json")
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = Load(context.Background(), srv.URL+"/missing.json")
	assert.ErrorContains(t, err, "404")
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not":"an array"}`), 0o600))

	_, err := Load(context.Background(), path)
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	users := []UserData{
		{Username: "alice", Email: "alice@x.io", Password: "pw1", FirstName: "Alice", LastName: "Smith"},
		{Username: "dup", Email: "dup@x.io", Password: "pw", FirstName: "D", LastName: "D"},
		{Username: "nopass", Email: "nopass@x.io"},
		{Username: "longpass", Email: "long@x.io", Password: strings.Repeat("p", 73)},
	}

	m := new(mockAuthService)
	m.On("Register", mock.Anything, mock.MatchedBy(func(in service.RegisterInput) bool { return in.Email == "alice@x.io" })).
		Return(&model.User{ID: "u1"}, nil)
	m.On("Register", mock.Anything, mock.MatchedBy(func(in service.RegisterInput) bool { return in.Email == "dup@x.io" })).
		Return(nil, apperrors.ErrDuplicateEmail)

	res, err := Import(context.Background(), m, users)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 1, Skipped: 3}, res)
	m.AssertExpectations(t)
	m.AssertNumberOfCalls(t, "Register", 2)
}

func TestImport_StopsOnStoreFailure(t *testing.T) {
	m := new(mockAuthService)
	m.On("Register", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused")).Once()

	res, err := Import(context.Background(), m, []UserData{
		{Username: "a", Email: "a@x.io", Password: "pw"},
		{Username: "b", Email: "b@x.io", Password: "pw"},
	})
	assert.Error(t, err)
	assert.Equal(t, 0, res.Created)
	m.AssertNumberOfCalls(t, "Register", 1)
}
