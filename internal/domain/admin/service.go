package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/yanqian/faqbot/pkg/errors"
)

const (
	tokenTypeAdmin = "admin"
	minPasswordLen = 8
)

// Service authenticates catalog operators.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
}

type service struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a Service instance.
func NewService(cfg Config, logger *slog.Logger) Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	return &service{
		cfg:    cfg,
		logger: logger.With("component", "admin.service"),
		now:    time.Now,
	}
}

// HashPassword produces the bcrypt hash stored in configuration.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLen {
		return "", apperrors.Wrap("invalid_input", fmt.Sprintf("password must be at least %d characters", minPasswordLen), nil)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.Wrap("auth_error", "failed to hash password", err)
	}
	return string(hashed), nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	if !s.cfg.Enabled() {
		return LoginResponse{}, apperrors.Wrap("admin_disabled", "admin access is not configured", nil)
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || strings.TrimSpace(req.Password) == "" {
		return LoginResponse{}, apperrors.Wrap("invalid_input", "username and password are required", nil)
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(req.Password))
	if !userOK || passErr != nil {
		s.logger.Warn("admin login rejected", "username", username)
		return LoginResponse{}, apperrors.Wrap("invalid_credentials", "invalid username or password", nil)
	}
	return s.generateToken(username)
}

func (s *service) ValidateToken(ctx context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap("invalid_token", "token missing", nil)
	}
	if !s.cfg.Enabled() {
		return Claims{}, apperrors.Wrap("admin_disabled", "admin access is not configured", nil)
	}
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return Claims{}, apperrors.Wrap("invalid_token", "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap("invalid_token", "token invalid", nil)
	}
	if claims.TokenType != tokenTypeAdmin {
		return Claims{}, apperrors.Wrap("invalid_token", "token type mismatch", nil)
	}
	if claims.ExpiresAt == nil {
		return Claims{}, apperrors.Wrap("invalid_token", "token missing expiry", nil)
	}
	return Claims{Username: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (s *service) generateToken(username string) (LoginResponse, error) {
	now := s.now()
	expires := now.Add(s.cfg.TokenTTL)
	claims := tokenClaims{
		TokenType: tokenTypeAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        newTokenID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return LoginResponse{}, apperrors.Wrap("auth_error", "failed to sign token", err)
	}
	return LoginResponse{Token: signed, ExpiresAt: expires}, nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type"`
}

func newTokenID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return hex.EncodeToString(buf)
}
