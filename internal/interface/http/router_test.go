package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/faqbot/internal/domain/admin"
	"github.com/yanqian/faqbot/internal/domain/faq"
	"github.com/yanqian/faqbot/internal/infra/config"
	apperrors "github.com/yanqian/faqbot/pkg/errors"
)

const testPassword = "correct-horse"

func TestRouter_SendMessageIssuesSession(t *testing.T) {
	svc := &stubFAQ{
		respondFn: func(ctx context.Context, req faq.Request) faq.Reply {
			require.Equal(t, "Quels sont vos horaires ?", req.Message)
			require.NotEmpty(t, req.SessionID)
			return faq.Reply{Answer: "Du lundi au samedi.", Source: faq.SourceCatalog}
		},
	}

	recorder := performRequest(http.MethodPost, "/send_message", `{"message":"Quels sont vos horaires ?"}`, newRouterUnderTest(t, svc), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, map[string]string{"response": "Du lundi au samedi."}, body)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "session_id", cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
}

func TestRouter_SendMessageReusesSession(t *testing.T) {
	const session = "5b0f3a8e-4a57-4b7c-9d0a-6a1f1c2b3d4e"
	svc := &stubFAQ{
		respondFn: func(ctx context.Context, req faq.Request) faq.Reply {
			require.Equal(t, session, req.SessionID)
			return faq.Reply{Answer: "ok"}
		},
	}

	recorder := performRequest(http.MethodPost, "/send_message", `{"message":"salut"}`, newRouterUnderTest(t, svc), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "session_id", Value: session})
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Empty(t, recorder.Result().Cookies())
}

func TestRouter_SendMessageApologyIsStill200(t *testing.T) {
	svc := &stubFAQ{
		respondFn: func(ctx context.Context, req faq.Request) faq.Reply {
			return faq.Reply{
				Answer: faq.DefaultApology,
				Source: faq.SourceError,
				Err:    apperrors.Wrap(faq.CodeEmbeddingFailed, "embed query", errors.New("down")),
			}
		},
	}

	recorder := performRequest(http.MethodPost, "/send_message", `{"message":"x"}`, newRouterUnderTest(t, svc), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "response")
}

func TestRouter_SendMessageInvalidJSON(t *testing.T) {
	recorder := performRequest(http.MethodPost, "/send_message", `{"message":123}`, newRouterUnderTest(t, &stubFAQ{}), nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
}

func TestRouter_Welcome(t *testing.T) {
	svc := &stubFAQ{welcome: "Bonjour !"}
	recorder := performRequest(http.MethodGet, "/", "", newRouterUnderTest(t, svc), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "Bonjour !", recorder.Body.String())
}

func TestRouter_Stats(t *testing.T) {
	svc := &stubFAQ{stats: faq.Stats{Catalog: faq.CatalogInfo{Entries: 12, Model: "lexical-fnv64-384"}}}
	recorder := performRequest(http.MethodGet, "/api/v1/stats", "", newRouterUnderTest(t, svc), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var got faq.Stats
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, 12, got.Catalog.Entries)
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	svc := &stubFAQ{}
	server := newRouterUnderTest(t, svc)

	recorder := performRequest(http.MethodPost, "/api/v1/admin/cache/clear", "", server, nil)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = performRequest(http.MethodPost, "/api/v1/admin/cache/clear", "", server, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer not-a-token")
	})
	require.Equal(t, http.StatusForbidden, recorder.Code)
	require.Zero(t, svc.clears)
}

func TestRouter_AdminLoginThenReload(t *testing.T) {
	svc := &stubFAQ{
		reloadFn: func(ctx context.Context) (faq.CatalogInfo, error) {
			return faq.CatalogInfo{Entries: 3, Model: "m"}, nil
		},
	}
	server := newRouterUnderTest(t, svc)

	recorder := performRequest(http.MethodPost, "/api/v1/admin/login", `{"username":"admin","password":"wrong-password"}`, server, nil)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = performRequest(http.MethodPost, "/api/v1/admin/login", `{"username":"admin","password":"`+testPassword+`"}`, server, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var login admin.LoginResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	bearer := func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+login.Token) }
	recorder = performRequest(http.MethodPost, "/api/v1/admin/catalog/reload", "", server, bearer)
	require.Equal(t, http.StatusOK, recorder.Code)
	var info faq.CatalogInfo
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &info))
	require.Equal(t, 3, info.Entries)

	recorder = performRequest(http.MethodPost, "/api/v1/admin/cache/clear", "", server, bearer)
	require.Equal(t, http.StatusNoContent, recorder.Code)
	require.Equal(t, 1, svc.clears)
}

func TestRouter_ReloadFailure(t *testing.T) {
	svc := &stubFAQ{
		reloadFn: func(ctx context.Context) (faq.CatalogInfo, error) {
			return faq.CatalogInfo{}, apperrors.Wrap(faq.CodeCatalogUnavailable, "load faq records", errors.New("db down"))
		},
	}
	server := newRouterUnderTest(t, svc)
	token := loginToken(t, server)

	recorder := performRequest(http.MethodPost, "/api/v1/admin/catalog/reload", "", server, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	require.Equal(t, http.StatusBadGateway, recorder.Code)
	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "reload_failed", errBody["error"]["code"])
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 2}
	server := NewRouter(cfg, NewHandler(cfg, &stubFAQ{}, newAdminUnderTest(t), newTestLogger()))

	for i := 0; i < 2; i++ {
		recorder := performRequest(http.MethodPost, "/send_message", `{"message":"x"}`, server, nil)
		require.Equal(t, http.StatusOK, recorder.Code)
	}
	recorder := performRequest(http.MethodPost, "/send_message", `{"message":"x"}`, server, nil)
	require.Equal(t, http.StatusTooManyRequests, recorder.Code)
}

func TestIPRateLimiter_Refills(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := newIPRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 1})
	limiter.now = func() time.Time { return now }

	require.True(t, limiter.allow("10.0.0.1"))
	require.False(t, limiter.allow("10.0.0.1"))
	require.True(t, limiter.allow("10.0.0.2"))

	now = now.Add(time.Second)
	require.True(t, limiter.allow("10.0.0.1"))
}

func TestResolveOrigin(t *testing.T) {
	require.Equal(t, "*", resolveOrigin("https://a.example", nil))
	require.Equal(t, "https://a.example", resolveOrigin("https://a.example", []string{"https://b.example", "https://a.example"}))
	require.Equal(t, "https://b.example", resolveOrigin("https://c.example", []string{"https://b.example"}))
}

func performRequest(method, path, body string, server *http.Server, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
}

func newRouterUnderTest(t *testing.T, svc faq.Service) *http.Server {
	t.Helper()
	cfg := testConfig()
	handler := NewHandler(cfg, svc, newAdminUnderTest(t), newTestLogger())
	return NewRouter(cfg, handler)
}

func newAdminUnderTest(t *testing.T) admin.Service {
	t.Helper()
	hash, err := admin.HashPassword(testPassword)
	require.NoError(t, err)
	return admin.NewService(admin.Config{
		Username:     "admin",
		PasswordHash: hash,
		Secret:       "router-test-secret",
		TokenTTL:     time.Hour,
	}, newTestLogger())
}

func loginToken(t *testing.T, server *http.Server) string {
	t.Helper()
	recorder := performRequest(http.MethodPost, "/api/v1/admin/login", `{"username":"admin","password":"`+testPassword+`"}`, server, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var login admin.LoginResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &login))
	return login.Token
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubFAQ struct {
	respondFn func(ctx context.Context, req faq.Request) faq.Reply
	reloadFn  func(ctx context.Context) (faq.CatalogInfo, error)
	welcome   string
	stats     faq.Stats
	clears    int
}

func (s *stubFAQ) GenerateResponse(ctx context.Context, message string) string {
	return s.Respond(ctx, faq.Request{Message: message}).Answer
}

func (s *stubFAQ) Respond(ctx context.Context, req faq.Request) faq.Reply {
	if s.respondFn != nil {
		return s.respondFn(ctx, req)
	}
	return faq.Reply{Answer: "ok", Source: faq.SourceFallback}
}

func (s *stubFAQ) Reload(ctx context.Context) (faq.CatalogInfo, error) {
	if s.reloadFn != nil {
		return s.reloadFn(ctx)
	}
	return faq.CatalogInfo{}, nil
}

func (s *stubFAQ) ClearCache(context.Context) error {
	s.clears++
	return nil
}

func (s *stubFAQ) Stats() faq.Stats { return s.stats }

func (s *stubFAQ) Welcome() string { return s.welcome }

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
