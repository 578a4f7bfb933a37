package admin

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/faqbot/pkg/errors"
)

func TestService_LoginAndValidate(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	svc := NewService(Config{
		Username:     "ops",
		PasswordHash: hash,
		Secret:       "test-secret",
		TokenTTL:     time.Hour,
	}, newTestLogger())

	resp, err := svc.Login(context.Background(), LoginRequest{Username: "ops", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, time.Minute)

	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	require.Equal(t, "ops", claims.Username)
}

func TestService_RejectsBadCredentials(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	svc := NewService(Config{Username: "ops", PasswordHash: hash, Secret: "test-secret"}, newTestLogger())

	_, err = svc.Login(context.Background(), LoginRequest{Username: "ops", Password: "wrong-pass"})
	require.True(t, apperrors.IsCode(err, "invalid_credentials"))

	_, err = svc.Login(context.Background(), LoginRequest{Username: "root", Password: "s3cret-pass"})
	require.True(t, apperrors.IsCode(err, "invalid_credentials"))

	_, err = svc.Login(context.Background(), LoginRequest{Username: "ops"})
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestService_RejectsForeignAndExpiredTokens(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	cfg := Config{Username: "ops", PasswordHash: hash, Secret: "test-secret", TokenTTL: time.Minute}

	other := NewService(Config{Username: "ops", PasswordHash: hash, Secret: "other-secret"}, newTestLogger())
	foreign, err := other.Login(context.Background(), LoginRequest{Username: "ops", Password: "s3cret-pass"})
	require.NoError(t, err)

	svc := NewService(cfg, newTestLogger())
	_, err = svc.ValidateToken(context.Background(), foreign.Token)
	require.True(t, apperrors.IsCode(err, "invalid_token"))

	issued, err := svc.Login(context.Background(), LoginRequest{Username: "ops", Password: "s3cret-pass"})
	require.NoError(t, err)
	svc.(*service).now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(context.Background(), issued.Token)
	require.True(t, apperrors.IsCode(err, "invalid_token"))

	_, err = svc.ValidateToken(context.Background(), "")
	require.True(t, apperrors.IsCode(err, "invalid_token"))
}

func TestService_Disabled(t *testing.T) {
	svc := NewService(Config{}, newTestLogger())
	_, err := svc.Login(context.Background(), LoginRequest{Username: "ops", Password: "whatever1"})
	require.True(t, apperrors.IsCode(err, "admin_disabled"))
}

func TestHashPassword_TooShort(t *testing.T) {
	_, err := HashPassword("short")
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}
