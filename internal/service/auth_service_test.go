package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"andespos/internal/config"
	"andespos/internal/dto"
	"andespos/internal/model"
)

func newAuthEnv(t *testing.T) (AuthService, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
	return NewAuthService(repo, cfg), repo
}

func seedUser(t *testing.T, repo *fakeUserRepo, username, password, role string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		Username:     username,
		Name:         "Usuario de prueba",
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestLogin(t *testing.T) {
	svc, repo := newAuthEnv(t)
	seedUser(t, repo, "cajero1", "secreto123", model.RoleCashier)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "cajero1", Password: "secreto123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, model.RoleCashier, resp.User.Role)
}

func TestLoginBadPassword(t *testing.T) {
	svc, repo := newAuthEnv(t)
	seedUser(t, repo, "cajero1", "secreto123", model.RoleCashier)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "cajero1", Password: "otra"})
	assert.ErrorContains(t, err, "credenciales inválidas")
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newAuthEnv(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "fantasma", Password: "x"})
	assert.ErrorContains(t, err, "credenciales inválidas")
}

func TestLoginInactiveUser(t *testing.T) {
	svc, repo := newAuthEnv(t)
	u := seedUser(t, repo, "cajero1", "secreto123", model.RoleCashier)
	u.Active = false

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "cajero1", Password: "secreto123"})
	assert.ErrorContains(t, err, "credenciales inválidas")
}

func TestRefreshRoundTrip(t *testing.T) {
	svc, repo := newAuthEnv(t)
	seedUser(t, repo, "supervisor1", "secreto123", model.RoleSupervisor)

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "supervisor1", Password: "secreto123"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, "supervisor1", refreshed.User.Username)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc, _ := newAuthEnv(t)

	_, err := svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorContains(t, err, "inválido o expirado")
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc, repo := newAuthEnv(t)

	resp, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "admin1",
		Name:     "Admin",
		Password: "clave-segura",
		Role:     model.RoleAdmin,
	})
	require.NoError(t, err)
	assert.True(t, resp.Active)

	stored, err := repo.FindByUsername(context.Background(), "admin1")
	require.NoError(t, err)
	assert.NotEqual(t, "clave-segura", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("clave-segura")))
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	svc, repo := newAuthEnv(t)
	seedUser(t, repo, "admin1", "clave-segura", model.RoleAdmin)

	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "admin1",
		Name:     "Otro",
		Password: "clave-segura",
		Role:     model.RoleAdmin,
	})
	assert.ErrorContains(t, err, "username")
}
