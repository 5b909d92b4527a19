package main

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "migratio/internal/jwt_token"
	"migratio/internal/platform/config"
	"migratio/internal/platform/logger"
	id "migratio/pkg/domain"
	"migratio/pkg/testutil"
)

func testConfig() config.Server {
	return config.Server{
		JWTSigningKey: "test-signing-key",
		JWTIssuer:     "migratio-test",
		Engine: config.EngineConfig{
			SessionStore:     config.StoreMemory,
			InitialQuestions: 2,
			QuizVersion:      "v2.0",
			TxTimeout:        time.Second,
		},
		Catalog:    config.CatalogConfig{CountTTL: time.Minute},
		Enrichment: config.EnrichmentConfig{Workers: 1, Buffer: 8, Timeout: time.Second},
		Services:   config.ServicesConfig{HTTPTimeout: time.Second},
		RateLimit:  config.RateLimitConfig{PerUser: 3, Window: time.Minute},
	}
}

func TestRouterWiring(t *testing.T) {
	cfg := testConfig()
	a, err := buildApp(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { assert.Empty(t, a.close(context.Background())) })

	token, err := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer).
		GenerateAccessToken(id.UserID(uuid.New()), time.Hour)
	require.NoError(t, err)

	testutil.Given(t, "an in-memory deployment", func(t *testing.T) {
		testutil.When(t, "the health endpoint is probed", func(t *testing.T) {
			rr := testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodGet, "/healthz", nil))
			testutil.Then(t, "it reports ok", func(t *testing.T) {
				assert.Equal(t, http.StatusOK, rr.Code)
				assert.Contains(t, rr.Body.String(), `"ok"`)
			})
		})

		testutil.When(t, "a session is started without a token", func(t *testing.T) {
			rr := testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodPost, "/assessment/sessions", nil))
			testutil.Then(t, "it is rejected", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
			})
		})

		testutil.When(t, "a session is started with a valid token", func(t *testing.T) {
			req := testutil.WithBearer(testutil.NewJSONRequest(t, http.MethodPost, "/assessment/sessions", nil), token)
			rr := testutil.DoRequest(a.router, req)
			testutil.Then(t, "the first question is served", func(t *testing.T) {
				require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
				assert.Contains(t, rr.Body.String(), `"current_question"`)
				assert.Equal(t, "2", rr.Header().Get("X-RateLimit-Remaining"))
				assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
			})
		})

		testutil.When(t, "the user exceeds the request budget", func(t *testing.T) {
			var last int
			for range 3 {
				req := testutil.WithBearer(testutil.NewJSONRequest(t, http.MethodPost, "/assessment/sessions", nil), token)
				last = testutil.DoRequest(a.router, req).Code
			}
			testutil.Then(t, "further requests are throttled", func(t *testing.T) {
				assert.Equal(t, http.StatusTooManyRequests, last)
			})
		})

		testutil.When(t, "metrics are scraped", func(t *testing.T) {
			rr := testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodGet, "/metrics", nil))
			testutil.Then(t, "route and engine series are exported", func(t *testing.T) {
				require.Equal(t, http.StatusOK, rr.Code)
				body := rr.Body.String()
				assert.True(t, strings.Contains(body, "migratio_http_requests_total"))
				assert.True(t, strings.Contains(body, `route="/assessment/sessions"`))
			})
		})
	})
}

func TestBuildAppRejectsUnknownSessionStore(t *testing.T) {
	cfg := testConfig()
	cfg.Engine.SessionStore = "etcd"
	_, err := buildApp(context.Background(), cfg, logger.Discard())
	require.Error(t, err)
}
