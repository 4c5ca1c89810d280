package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/erpledger/internal/accounts"
	"github.com/cleared-dev/erpledger/internal/events"
	"github.com/cleared-dev/erpledger/internal/posting"
	"github.com/cleared-dev/erpledger/internal/reporting"
	"github.com/cleared-dev/erpledger/internal/storage/memory"
)

type testServer struct {
	*Server
	events *events.Recorder
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	store := memory.NewStore()
	chart := accounts.NewService(accounts.DefaultChart("trading_company"))
	rec := &events.Recorder{}
	p := posting.New(store, chart, posting.Options{Publisher: rec})
	r := reporting.New(store, chart, reporting.Options{})
	s := New(p, r, nil)
	s.now = func() time.Time { return time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC) }
	return testServer{Server: s, events: rec}
}

func (s testServer) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &out), "body: %s", data)
	}
	return resp.StatusCode, out
}

const balancedSale = `{
	"date": "2025-01-15",
	"description": "Cash sale",
	"lines": [
		{"accountId": 1101, "debit": "1000"},
		{"accountId": 4101, "credit": 1000}
	]
}`

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "available", body["status"])
}

func TestValidate(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/v1/ledger/validate",
		`{"lines":[{"accountId":1101,"debit":"1000"},{"accountId":4101,"credit":"900"}]}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1000.00", body["totalDebit"])
	assert.Equal(t, "900.00", body["totalCredit"])
	assert.Equal(t, "100.00", body["difference"])
	assert.Equal(t, false, body["isBalanced"])
	assert.Empty(t, body["issues"])
}

func TestValidate_Empty(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/v1/ledger/validate", `{"lines":[]}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "0.00", body["totalDebit"])
	assert.Equal(t, true, body["isBalanced"])
}

func TestValidate_Issues(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/v1/ledger/validate",
		`{"lines":[{"accountId":9999,"debit":"10","credit":"10"}]}`)
	assert.Equal(t, http.StatusOK, status)
	issues := body["issues"].([]any)
	assert.Len(t, issues, 2)
}

func TestValidate_MalformedAmount(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/v1/ledger/validate",
		`{"lines":[{"accountId":1101,"debit":"ten"}]}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, CodeInvalidInput, body["code"])
}

func TestValidate_MalformedJSON(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/v1/ledger/validate", `{"lines":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, CodeInvalidInput, body["code"])
}

func TestPostTransaction(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/v1/ledger/transactions", balancedSale)
	require.Equal(t, http.StatusCreated, status, "body: %v", body)

	tx := body["transaction"].(map[string]any)
	assert.Equal(t, "JV-2025-01-001", tx["ledgerNumber"])
	assert.Equal(t, "posted", tx["status"])
	assert.Equal(t, true, body["result"].(map[string]any)["isBalanced"])
	assert.Len(t, s.events.Events(), 1)
}

func TestPostTransaction_Unbalanced(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/v1/ledger/transactions",
		`{"date":"2025-01-15","lines":[{"accountId":1101,"debit":"1000"},{"accountId":4101,"credit":"900"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, CodeUnbalanced, body["code"])
	assert.Equal(t, "100.00", body["result"].(map[string]any)["difference"])
	assert.Empty(t, s.events.Events())
}

func TestPostTransaction_UnbalancedDraft(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/v1/ledger/transactions",
		`{"date":"2025-01-15","draft":true,"lines":[{"accountId":1101,"debit":"1000"},{"accountId":4101,"credit":"900"}]}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "draft", body["transaction"].(map[string]any)["status"])
}

func TestPostTransaction_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing date", `{"lines":[{"accountId":1101,"debit":"1"}]}`, "'date' is required"},
		{"bad date", `{"date":"15/01/2025","lines":[{"accountId":1101,"debit":"1"}]}`, "'date' must be a date"},
		{"no lines", `{"date":"2025-01-15","lines":[]}`, "'lines' must have at least 1"},
		{"bad reference type", `{"date":"2025-01-15","referenceType":"memo","lines":[{"accountId":1101,"debit":"1"}]}`, "'referenceType' must be one of"},
		{"missing account", `{"date":"2025-01-15","lines":[{"debit":"1"}]}`, "'lines[0].accountId' is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, http.MethodPost, "/v1/ledger/transactions", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, CodeValidation, body["code"])
			assert.Contains(t, body["message"], tt.want)
		})
	}
}

func TestPostTransaction_UnknownAccount(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/v1/ledger/transactions",
		`{"date":"2025-01-15","lines":[{"accountId":9999,"debit":"5"},{"accountId":1101,"credit":"5"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, CodeInvalidLines, body["code"])
	issues := body["issues"].([]any)
	require.Len(t, issues, 1)
	assert.Equal(t, "unknown_account", issues[0].(map[string]any)["kind"])
}

func TestOpeningBalance(t *testing.T) {
	s := newTestServer(t)
	body := `{"date":"2025-01-01","lines":[{"accountId":1102,"debit":"5000"},{"accountId":3901,"credit":"5000"}]}`

	status, resp := s.do(t, http.MethodPost, "/v1/ledger/opening-balance", body)
	require.Equal(t, http.StatusCreated, status, "body: %v", resp)
	assert.Equal(t, "OB-2025-01-001", resp["transaction"].(map[string]any)["ledgerNumber"])

	status, resp = s.do(t, http.MethodPost, "/v1/ledger/opening-balance", body)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, CodeConflict, resp["code"])
}

func TestPostTransaction_OpeningBalanceTypeRejected(t *testing.T) {
	s := newTestServer(t)
	lines := `"lines":[{"accountId":1102,"debit":"5000"},{"accountId":3901,"credit":"5000"}]`

	status, resp := s.do(t, http.MethodPost, "/v1/ledger/opening-balance", `{"date":"2025-01-01",`+lines+`}`)
	require.Equal(t, http.StatusCreated, status, "body: %v", resp)

	status, resp = s.do(t, http.MethodPost, "/v1/ledger/transactions",
		`{"date":"2025-01-01","referenceType":"opening_balance",`+lines+`}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, CodeValidation, resp["code"])
	assert.Contains(t, resp["message"], "'referenceType' must be one of")

	status, resp = s.do(t, http.MethodGet, "/v1/reports/general-ledger", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, resp["groups"], 1)
}

func TestReports(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.do(t, http.MethodPost, "/v1/ledger/opening-balance",
		`{"date":"2025-01-01","lines":[{"accountId":1102,"debit":"5000"},{"accountId":3901,"credit":"5000"}]}`)
	require.Equal(t, http.StatusCreated, status)
	status, _ = s.do(t, http.MethodPost, "/v1/ledger/transactions", balancedSale)
	require.Equal(t, http.StatusCreated, status)

	t.Run("balance sheet", func(t *testing.T) {
		status, body := s.do(t, http.MethodGet, "/v1/reports/balance-sheet?asOf=2025-01-31", "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "6000.00", body["assets"].(map[string]any)["total"])
		equity := body["equity"].(map[string]any)
		assert.Equal(t, "1000.00", equity["currentYearEarnings"])
		assert.Equal(t, "6000.00", body["totalLiabilitiesAndEquity"])
		assert.Equal(t, true, body["checks"].(map[string]any)["isBalanced"])
	})

	t.Run("balance sheet defaults to today", func(t *testing.T) {
		status, body := s.do(t, http.MethodGet, "/v1/reports/balance-sheet", "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "6000.00", body["assets"].(map[string]any)["total"])
	})

	t.Run("general ledger", func(t *testing.T) {
		status, body := s.do(t, http.MethodGet, "/v1/reports/general-ledger?from=2025-01-10&to=2025-01-31", "")
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, body["groups"], 1)
		assert.Equal(t, "1000.00", body["grandTotalDebit"])
	})

	t.Run("trial balance", func(t *testing.T) {
		status, body := s.do(t, http.MethodGet, "/v1/reports/trial-balance?asOf=2025-01-31", "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["isBalanced"])
		assert.Equal(t, "6000.00", body["totalDebit"])
	})

	t.Run("statement", func(t *testing.T) {
		status, body := s.do(t, http.MethodGet, "/v1/accounts/1101/statement?from=2025-01-01&to=2025-01-31", "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "1000.00", body["closingBalance"])
		assert.Len(t, body["rows"], 1)
	})

	t.Run("statement unknown account", func(t *testing.T) {
		status, body := s.do(t, http.MethodGet, "/v1/accounts/9999/statement", "")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, CodeNotFound, body["code"])
	})

	t.Run("statement bad id", func(t *testing.T) {
		status, body := s.do(t, http.MethodGet, "/v1/accounts/cash/statement", "")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, CodeInvalidInput, body["code"])
	})

	t.Run("bad date", func(t *testing.T) {
		status, body := s.do(t, http.MethodGet, "/v1/reports/trial-balance?asOf=yesterday", "")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, CodeInvalidInput, body["code"])
	})

	t.Run("inverted range", func(t *testing.T) {
		status, _ := s.do(t, http.MethodGet, "/v1/reports/general-ledger?from=2025-02-01&to=2025-01-01", "")
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, http.MethodGet, "/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, CodeRouteNotFound, body["code"])
}
