package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/certs"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/common"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/plaid"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/provider"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/stocks"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/storage"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

const profileJSON = `{
	"age": 32, "income": 85000, "riskTolerance": "Moderate", "investmentGoal": "Retirement",
	"timeHorizon": "30 years", "currentSavings": 45000, "monthlyExpenses": 4200,
	"hasEmergencyFund": false, "has401k": true, "employerMatch": 0.05
}`

type fakeStocks struct {
	searchErr error
}

func (f *fakeStocks) Search(_ context.Context, q string) ([]stocks.Match, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return []stocks.Match{{Symbol: strings.ToUpper(q), Name: "Test Corp", MatchScore: 1}}, nil
}

func (f *fakeStocks) Sentiment(_ context.Context, symbol string) (*stocks.Sentiment, error) {
	sym, err := stocks.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return stocks.Score(sym, []stocks.Headline{{Title: "Shares surge"}}), nil
}

func (f *fakeStocks) ChartURL(symbol string) (string, error) {
	return stocks.ChartURL(stocks.DefaultChartURL, symbol)
}

type harness struct {
	srv   *Server
	store *storage.SQLiteStorage
	plaid *plaid.MockClient
}

func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))

	mock := plaid.NewMockClient()
	mock.SnapshotFn = func(context.Context, string) (model.AccountsSnapshot, error) {
		return model.AccountsSnapshot{
			CapturedAt: testNow,
			Source:     "plaid",
			Accounts: []model.Account{
				{ID: "chk", Type: model.AccountChecking, Balance: 4000},
				{ID: "sav", Type: model.AccountSavings, Balance: 21200},
				{ID: "cc", Type: model.AccountCredit, Balance: 800},
			},
		}, nil
	}

	accounts := provider.NewService(store, nil, time.Minute)
	accounts.Register(model.ProviderPlaid, mock)

	cfg := DefaultConfig()
	cfg.AllowedOrigins = []string{"https://app.example"}
	if mutate != nil {
		mutate(&cfg)
	}

	ids := 0
	srv, err := New(cfg, Deps{
		Accounts:     accounts,
		Store:        store,
		Plaid:        mock,
		Transactions: map[model.ProviderKind]TransactionSource{model.ProviderPlaid: mock},
		Stocks:       &fakeStocks{},
		Now:          func() time.Time { return testNow },
		NewID: func() string {
			ids++
			return "conn-" + string(rune('0'+ids))
		},
	})
	require.NoError(t, err)
	t.Cleanup(srv.limiter.Stop)

	return &harness{srv: srv, store: store, plaid: mock}
}

func (h *harness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (h *harness) link(t *testing.T) string {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/api/link/exchange",
		`{"publicToken": "public-sandbox-1", "institution": {"institution_id": "ins_3", "name": "Chase"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(t, rec)["connectionId"].(string)
}

func TestHealth(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestPlan(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodPost, "/api/plan", `{"profile": `+profileJSON+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	alloc := body["portfolioAnalysis"].(map[string]any)["allocation"].(map[string]any)
	assert.InDelta(t, 88, alloc["stocks"], 1e-9)
	assert.InDelta(t, 4, alloc["bonds"], 1e-9)
	assert.Len(t, body["warnings"], 3, "no accounts means fallback warnings")
	assert.Equal(t, "2024-06-01T12:00:00Z", body["generatedAt"])
}

func TestPlan_WithInlineAccounts(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodPost, "/api/plan", `{"profile": `+profileJSON+`,
		"accounts": [{"type": "Savings", "balance": 25200}, {"type": "loan", "balance": 10000}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	fin := body["currentFinancials"].(map[string]any)
	assert.InDelta(t, 25200, fin["liquidSavings"], 1e-9)
	assert.InDelta(t, 10000, fin["totalLiabilities"], 1e-9)
	assert.Nil(t, body["warnings"])
}

func TestPlan_WithConnection(t *testing.T) {
	h := newHarness(t, nil)
	id := h.link(t)

	rec := h.do(t, http.MethodPost, "/api/plan", `{"profile": `+profileJSON+`, "connectionId": "`+id+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	fin := decode(t, rec)["currentFinancials"].(map[string]any)
	assert.InDelta(t, 25200, fin["liquidSavings"], 1e-9)
	assert.InDelta(t, 800, fin["totalLiabilities"], 1e-9)
	assert.Equal(t, []string{"access-sandbox-public-sandbox-1"}, h.plaid.SnapshotCalls)
}

func TestPlan_Errors(t *testing.T) {
	h := newHarness(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string
	}{
		{name: "malformed json", body: `{"profile":`, wantStatus: http.StatusBadRequest},
		{name: "missing profile", body: `{}`, wantStatus: http.StatusBadRequest},
		{
			name:       "invalid age",
			body:       `{"profile": {"age": 12, "income": 50000}}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "age",
		},
		{
			name:       "unknown account type",
			body:       `{"profile": ` + profileJSON + `, "accounts": [{"type": "crypto", "balance": 1}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown connection",
			body:       `{"profile": ` + profileJSON + `, "connectionId": "nope"}`,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(t, http.MethodPost, "/api/plan", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			body := decode(t, rec)
			assert.NotEmpty(t, body["error"])
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, body["field"])
				assert.NotEmpty(t, body["constraint"])
			}
		})
	}
}

func TestPlan_BodyLimit(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.MaxBodyBytes = 64 })
	rec := h.do(t, http.MethodPost, "/api/plan", `{"profile": `+profileJSON+`}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestPlan_MethodNotAllowed(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(t, http.MethodGet, "/api/plan", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestLinkFlow(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodPost, "/api/link/token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "link-sandbox-token", decode(t, rec)["linkToken"])

	id := h.link(t)
	assert.Equal(t, "conn-1", id)

	conn, err := h.store.GetConnection(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ins_3", conn.InstitutionID)
	assert.Equal(t, "Chase", conn.InstitutionName)
	assert.Equal(t, "access-sandbox-public-sandbox-1", conn.AccessToken)

	rec = h.do(t, http.MethodGet, "/api/connections", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "access-sandbox", "access tokens never leave the server")

	rec = h.do(t, http.MethodGet, "/api/connections/"+id+"/accounts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["accounts"], 3)

	rec = h.do(t, http.MethodGet, "/api/connections/"+id+"/transactions?days=7", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, h.plaid.GetTransactionsCalls, 1)
	assert.Equal(t, testNow.AddDate(0, 0, -7), h.plaid.GetTransactionsCalls[0].StartDate)

	rec = h.do(t, http.MethodGet, "/api/connections/"+id+"/holdings", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodDelete, "/api/connections/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/connections/"+id+"/accounts", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLinkExchange_Errors(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodPost, "/api/link/exchange", `{"publicToken": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h.plaid.ExchangePublicTokenFn = func(context.Context, string) (string, string, error) {
		return "", "", common.ErrPlaidConnection
	}
	rec = h.do(t, http.MethodPost, "/api/link/exchange", `{"publicToken": "p"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "plaid connection failed")
}

func TestTransactions_BadDays(t *testing.T) {
	h := newHarness(t, nil)
	id := h.link(t)
	for _, days := range []string{"0", "abc", "9999"} {
		rec := h.do(t, http.MethodGet, "/api/connections/"+id+"/transactions?days="+days, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "days=%s", days)
	}
}

func TestInstitutions(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(t, http.MethodGet, "/api/institutions?q=chase&limit=5", "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodGet, "/api/institutions", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOFXUpload(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodPost, "/api/accounts/ofx", "not an ofx file")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStocks(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(t, http.MethodGet, "/api/stocks/search?q=msft", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"symbol":"MSFT"`)

	rec = h.do(t, http.MethodGet, "/api/stocks/aapl/sentiment", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bullish", decode(t, rec)["label"])

	rec = h.do(t, http.MethodGet, "/api/stocks/AAPL/chart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec)["chartUrl"], "symbol=AAPL")

	rec = h.do(t, http.MethodGet, "/api/stocks/bad%20symbol!/chart", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h.srv.deps.Stocks.(*fakeStocks).searchErr = common.ErrRateLimit
	rec = h.do(t, http.MethodGet, "/api/stocks/search?q=msft", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestStocks_NotConfigured(t *testing.T) {
	h := newHarness(t, nil)
	h.srv.deps.Stocks = nil
	rec := h.do(t, http.MethodGet, "/api/stocks/search?q=msft", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORS(t *testing.T) {
	h := newHarness(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/plan", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.RateLimit = 2 })

	for i := 0; i < 2; i++ {
		rec := h.do(t, http.MethodGet, "/api/connections", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	rec := h.do(t, http.MethodGet, "/api/connections", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = h.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code, "health checks are not rate limited")
}

func TestNotFound(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServe_GracefulShutdown(t *testing.T) {
	h := newHarness(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_TLSCertificateFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TLS = true
	cfg.CertDir = t.TempDir()
	mock := &certs.MockManager{Err: errors.New("no disk")}
	srv, err := New(cfg, Deps{Certs: mock})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	err = srv.Serve(context.Background(), ln)
	assert.ErrorContains(t, err, "no disk")
	assert.Equal(t, 1, mock.GetCallCount)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.RateLimit = 0
	assert.ErrorIs(t, cfg.Validate(), common.ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.TLS = true
	assert.ErrorIs(t, cfg.Validate(), common.ErrMissingConfig)

	_, err := New(Config{}, Deps{})
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusAccepted, map[string]int{"n": 1})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
	assert.True(t, bytes.HasSuffix(rec.Body.Bytes(), []byte("\n")))
}
