package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mercator-hq/ruler/pkg/config"
	"mercator-hq/ruler/pkg/engine"
	"mercator-hq/ruler/pkg/engine/history"
	"mercator-hq/ruler/pkg/rulebook/store"
	"mercator-hq/ruler/pkg/taxonomy"
	"mercator-hq/ruler/pkg/telemetry/metrics"
)

const testRulebook = `{
	"version": "2024.1",
	"rules": [
		{
			"clause_id": "meals-001",
			"expense_category": {"en": "Meals"},
			"required_fields": {
				"inputs": [
					{"key": "amount", "type": "money", "required": true},
					{"key": "purpose", "type": "string", "required": true}
				]
			},
			"validation_rules": {
				"amount_constraints": {"max_amount_jpy": 5000}
			}
		}
	]
}`

func testServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "rulebook.json"), []byte(testRulebook), 0o644); err != nil {
		t.Fatalf("write rulebook: %v", err)
	}

	st, err := store.New(store.Options{Path: dir})
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	if err := st.Load(); err != nil {
		t.Fatalf("store.Load() error = %v", err)
	}

	tax := taxonomy.FromEntries([]taxonomy.Entry{
		{Code: "missing_field", Label: "Missing Field", Description: "{field_name} is required.", Severity: taxonomy.SeverityError},
		{Code: "amount_exceeds_limit", Label: "Limit Exceeded", Description: "Amount exceeds {limit} {currency}.", Severity: taxonomy.SeverityError},
	})

	eval, err := engine.New(tax, nil, engine.WithClock(engine.FixedClock{Time: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)}))
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}

	cfg := config.Default()
	srv, err := New(Options{
		Config:    cfg.Server,
		Metrics:   config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Store:     st,
		Evaluator: eval,
		Collector: metrics.NewCollector(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, "GET", "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.RuleCount != 1 {
		t.Errorf("health = %+v", resp)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("missing request ID header")
	}
}

func TestListRulesEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, "GET", "/rules", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Rules []ruleSummary `json:"rules"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Rules) != 1 || resp.Rules[0].ClauseID != "meals-001" || resp.Rules[0].Category != "Meals" {
		t.Errorf("rules = %+v", resp.Rules)
	}
}

func TestGetRuleEndpoint(t *testing.T) {
	srv := testServer(t)

	rec := doRequest(t, srv, "GET", "/rules/meals-001", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var detail ruleDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if detail.ClauseID != "meals-001" || len(detail.Fields) != 2 {
		t.Errorf("detail = %+v", detail)
	}

	rec = doRequest(t, srv, "GET", "/rules/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown clause status = %d", rec.Code)
	}
}

func TestEvaluateEndpoint(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name       string
		body       string
		wantCode   int
		wantStatus string
	}{
		{
			name:       "valid submission",
			body:       `{"clause_id": "meals-001", "inputs": [{"key": "amount", "value": 1200}, {"key": "purpose", "value": "client lunch"}]}`,
			wantCode:   http.StatusOK,
			wantStatus: "OK",
		},
		{
			name:       "over the limit",
			body:       `{"clause_id": "meals-001", "inputs": [{"key": "amount", "value": 9000}, {"key": "purpose", "value": "team dinner"}]}`,
			wantCode:   http.StatusOK,
			wantStatus: "NG",
		},
		{
			name:       "missing required field",
			body:       `{"clause_id": "meals-001", "inputs": [{"key": "amount", "value": 1200}]}`,
			wantCode:   http.StatusOK,
			wantStatus: "NG",
		},
		{
			name:     "unknown clause",
			body:     `{"clause_id": "nope", "inputs": []}`,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "missing clause id",
			body:     `{"inputs": []}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed body",
			body:     `{not json`,
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, "POST", "/rules/evaluate", tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantStatus == "" {
				return
			}
			var result engine.Result
			if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if string(result.Status) != tt.wantStatus {
				t.Errorf("evaluation status = %s, want %s (reasons %v)", result.Status, tt.wantStatus, result.ReasonCodes)
			}
		})
	}
}

func TestFrequencyLimitAcrossSubmissions(t *testing.T) {
	const frequencyRulebook = `{
		"version": "2024.1",
		"rules": [
			{
				"clause_id": "lodging-001",
				"expense_category": {"en": "Lodging"},
				"required_fields": {
					"inputs": [
						{"key": "amount", "type": "money", "required": true}
					]
				},
				"validation_rules": {
					"frequency_constraints": {
						"max_occurrences_per_period": {"scope": "person", "count": 1, "period": "month"}
					}
				}
			}
		]
	}`

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "rulebook.json"), []byte(frequencyRulebook), 0o644); err != nil {
		t.Fatalf("write rulebook: %v", err)
	}

	st, err := store.New(store.Options{Path: dir})
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	if err := st.Load(); err != nil {
		t.Fatalf("store.Load() error = %v", err)
	}

	tax := taxonomy.FromEntries([]taxonomy.Entry{
		{Code: "missing_field", Label: "Missing Field", Description: "{field_name} is required.", Severity: taxonomy.SeverityError},
		{Code: "frequency_limit_exceeded", Label: "Frequency Limit", Description: "Already submitted this period.", Severity: taxonomy.SeverityError},
	})

	hist := history.NewMemoryStore()
	counter := history.NewCounter(hist, engine.SystemClock())
	eval, err := engine.New(tax, nil, engine.WithFrequencyCounter(counter))
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}

	cfg := config.Default()
	srv, err := New(Options{
		Config:    cfg.Server,
		Store:     st,
		Evaluator: eval,
		History:   hist,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	body := `{"clause_id": "lodging-001", "inputs": [{"key": "amount", "value": 8000}, {"key": "employee_id", "value": "emp-7"}]}`

	rec := doRequest(t, srv, "POST", "/rules/evaluate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("first submission status = %d: %s", rec.Code, rec.Body.String())
	}
	var first engine.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first.Status != engine.StatusOK {
		t.Fatalf("first submission = %s (reasons %v), want OK", first.Status, first.ReasonCodes)
	}
	if hist.Size() != 1 {
		t.Fatalf("history size after first submission = %d, want 1", hist.Size())
	}

	rec = doRequest(t, srv, "POST", "/rules/evaluate", body)
	var second engine.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if second.Status != engine.StatusNG {
		t.Fatalf("second submission = %s, want NG", second.Status)
	}
	found := false
	for _, code := range second.ReasonCodes {
		if code == "frequency_limit_exceeded" {
			found = true
		}
	}
	if !found {
		t.Errorf("reasons = %v, want frequency_limit_exceeded", second.ReasonCodes)
	}

	// Rejected submissions are not recorded.
	if hist.Size() != 1 {
		t.Errorf("history size after rejection = %d, want 1", hist.Size())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := testServer(t)

	doRequest(t, srv, "POST", "/rules/evaluate",
		`{"clause_id": "meals-001", "inputs": [{"key": "amount", "value": 9000}, {"key": "purpose", "value": "x"}]}`)

	rec := doRequest(t, srv, "GET", "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ruler_evaluations_total") {
		t.Error("metrics exposition missing evaluation counter")
	}
}
