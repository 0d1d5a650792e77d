package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authapi "github.com/nexly/rag-backend/internal/api/auth"
	chatapi "github.com/nexly/rag-backend/internal/api/chat"
	retrievalapi "github.com/nexly/rag-backend/internal/api/retrieval"
	"github.com/nexly/rag-backend/internal/config"
	"github.com/nexly/rag-backend/internal/entity"
	"github.com/nexly/rag-backend/internal/pkg/token"
	"github.com/nexly/rag-backend/internal/pkg/validator"
	"go.uber.org/zap"
)

const testAPIKey = "static-api-key"

type fakeAuthUsecase struct{}

func (f *fakeAuthUsecase) ObtainTokenPair(ctx context.Context, username, password string) (*entity.TokenPairResponse, error) {
	if username != "alice" || password != "pw" {
		return nil, entity.ErrInvalidCredentials
	}
	return &entity.TokenPairResponse{Access: "access-token", Refresh: "refresh-token"}, nil
}

func (f *fakeAuthUsecase) RefreshAccessToken(ctx context.Context, refreshToken string) (*entity.AccessTokenResponse, error) {
	if refreshToken != "refresh-token" {
		return nil, entity.ErrTokenInvalid
	}
	return &entity.AccessTokenResponse{Access: "new-access-token"}, nil
}

type fakeChatUsecase struct {
	err      error
	calls    int
	lastUser string
}

func (f *fakeChatUsecase) Chat(ctx context.Context, req *entity.ChatRequest, principal *entity.Principal) (*entity.ChatResponse, error) {
	f.calls++
	if principal != nil {
		f.lastUser = principal.Username
	}
	if f.err != nil {
		return nil, f.err
	}
	return &entity.ChatResponse{Reply: req.Message, Model: "gemini-2.0-flash"}, nil
}

type fakeRetrievalUsecase struct {
	calls int
}

func (f *fakeRetrievalUsecase) Query(ctx context.Context, req *entity.VectorQueryRequest) (*entity.VectorQueryResponse, error) {
	f.calls++
	return &entity.VectorQueryResponse{
		Query:   req.Query,
		Elapsed: "0.01s",
		Results: []entity.VectorQueryMatch{},
	}, nil
}

type testEnv struct {
	router http.Handler
	tokens *token.Manager
	chat   *fakeChatUsecase
	retr   *fakeRetrievalUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	v := validator.NewValidator(config.VectorConnectorConfig{DefaultTopK: 5, MaxTopK: 50})

	tokens := token.NewManager("0123456789abcdef0123456789abcdef", "rag-backend", 15*time.Minute, 24*time.Hour)
	chatUC := &fakeChatUsecase{}
	retrUC := &fakeRetrievalUsecase{}

	router := SetupRouter(
		authapi.NewHandler(&fakeAuthUsecase{}, v),
		chatapi.NewHandler(chatUC, v),
		retrievalapi.NewHandler(retrUC, v),
		tokens,
		testAPIKey,
		zap.NewNop(),
	)

	return &testEnv{router: router, tokens: tokens, chat: chatUC, retr: retrUC}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, decorate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if decorate != nil {
		decorate(req)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) accessToken(t *testing.T) string {
	t.Helper()

	access, err := e.tokens.IssueAccess("user-1", "alice")
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}
	return access
}

func withBearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withAPIKey(key string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("X-Api-Key", key) }
}

func TestObtainTokenEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/token/", entity.ObtainTokenRequest{Username: "alice", Password: "pw"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var pair entity.TokenPairResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &pair); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Errorf("expected both tokens in response, got %+v", pair)
	}
}

func TestObtainTokenEndpoint_BadCredentials(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/token/", entity.ObtainTokenRequest{Username: "alice", Password: "wrong"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var errResp entity.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("error response is not structured JSON: %v", err)
	}
	if errResp.Error == "" {
		t.Error("expected error field in response")
	}
}

func TestObtainTokenEndpoint_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/token/", entity.ObtainTokenRequest{Username: "alice"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRefreshTokenEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/token/refresh/", entity.RefreshTokenRequest{Refresh: "refresh-token"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp entity.AccessTokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Access != "new-access-token" {
		t.Errorf("unexpected access token: %q", resp.Access)
	}
}

func TestChatEndpoint_EchoReply(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/chat/", entity.ChatRequest{Message: "hello"}, withBearer(env.accessToken(t)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp entity.ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Reply != "hello" {
		t.Errorf("expected echoed reply, got %q", resp.Reply)
	}
	if env.chat.lastUser != "alice" {
		t.Errorf("expected principal alice forwarded, got %q", env.chat.lastUser)
	}
}

func TestChatEndpoint_Unauthorized(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/chat/", entity.ChatRequest{Message: "hello"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if env.chat.calls != 0 {
		t.Error("chat usecase must not run for unauthorized requests")
	}
}

func TestChatEndpoint_APIKeyAdmitted(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/chat/", entity.ChatRequest{Message: "hello"}, withAPIKey(testAPIKey))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with api key, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestChatEndpoint_ValidationBeforeDispatch(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		req  entity.ChatRequest
	}{
		{"empty message", entity.ChatRequest{Message: ""}},
		{"whitespace message", entity.ChatRequest{Message: "   "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/chat/", tc.req, withBearer(env.accessToken(t)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}

	if env.chat.calls != 0 {
		t.Error("chat usecase must not run for invalid requests")
	}
}

func TestChatEndpoint_UnknownModelAccepted(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/chat/", entity.ChatRequest{Message: "hello", Model: "not-a-model"}, withBearer(env.accessToken(t)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected unknown model to be accepted with fallback, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestChatEndpoint_UpstreamErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unavailable", entity.ErrUpstreamUnavailable, http.StatusServiceUnavailable},
		{"failed", entity.ErrUpstreamFailed, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.chat.err = tc.err

			rec := env.do(t, http.MethodPost, "/api/chat/", entity.ChatRequest{Message: "hello"}, withBearer(env.accessToken(t)))
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}

			var errResp entity.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("error response is not structured JSON: %v", err)
			}
		})
	}
}

func TestTestQueryEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/test-query/", entity.VectorQueryRequest{Query: "refund policy"}, withBearer(env.accessToken(t)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp entity.VectorQueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Results == nil {
		t.Error("expected results array present even when empty")
	}
}

func TestTestQueryEndpoint_RejectsAPIKey(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/test-query/", entity.VectorQueryRequest{Query: "q"}, withAPIKey(testAPIKey))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for api key on token-only route, got %d", rec.Code)
	}
	if env.retr.calls != 0 {
		t.Error("retrieval usecase must not run for unauthorized requests")
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUnknownRouteIsJSON(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/nope", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var errResp entity.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("not-found response is not structured JSON: %v", err)
	}
}
