package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hyowon-dev/sugang-api/internal/models"
	appErrors "github.com/hyowon-dev/sugang-api/pkg/errors"
)

type mockAccountRepo struct {
	accounts       map[string]*models.Account
	lastLoginCalls int
	lastLoginErr   error
}

func (m *mockAccountRepo) FindByStudentNo(ctx context.Context, studentNo string) (*models.Account, error) {
	if a, ok := m.accounts[studentNo]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id string) (*models.Account, error) {
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAccountRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginCalls++
	return m.lastLoginErr
}

func newAuthFixture(t *testing.T) (*AuthService, *mockAccountRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockAccountRepo{accounts: map[string]*models.Account{
		"20211234": {ID: "acc-1", StudentNo: "20211234", FullName: "Kim Minji", PasswordHash: string(hash)},
	}}
	svc := NewAuthService(repo, nil, nil, AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "sugang-api",
	})
	return svc, repo
}

func TestLoginIssuesResolvableToken(t *testing.T) {
	svc, repo := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{StudentNo: "20211234", Password: "secret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "20211234", resp.Student.StudentNo)
	assert.Equal(t, 1, repo.lastLoginCalls)

	claims, err := svc.ResolveSession(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.StudentID)
	assert.Equal(t, "Kim Minji", claims.FullName)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{StudentNo: "20211234", Password: "nope"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestLoginUnknownStudent(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{StudentNo: "99999999", Password: "secret-pass"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestLoginMissingFields(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{StudentNo: "20211234"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestLoginSurvivesLastLoginFailure(t *testing.T) {
	svc, repo := newAuthFixture(t)
	repo.lastLoginErr = sql.ErrConnDone

	resp, err := svc.Login(context.Background(), models.LoginRequest{StudentNo: "20211234", Password: "secret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestResolveSessionRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.ResolveSession("not-a-token")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestResolveSessionRejectsForeignSecret(t *testing.T) {
	svc, repo := newAuthFixture(t)
	other := NewAuthService(repo, nil, nil, AuthConfig{Secret: "other-secret", Expiration: time.Hour, Issuer: "sugang-api"})

	resp, err := other.Login(context.Background(), models.LoginRequest{StudentNo: "20211234", Password: "secret-pass"})
	require.NoError(t, err)

	_, err = svc.ResolveSession(resp.Token)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
