package server

import (
	"encoding/json"
	"net/http"
	"time"

	"mercator-hq/ruler/pkg/engine"
	"mercator-hq/ruler/pkg/engine/history"
	"mercator-hq/ruler/pkg/rulebook"
)

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

// healthResponse reports service liveness and the active rule set.
type healthResponse struct {
	Status    string `json:"status"`
	RuleCount int    `json:"rule_count"`
	Version   string `json:"version"`
}

// ruleSummary is one entry in the rule listing.
type ruleSummary struct {
	ClauseID   string `json:"clause_id"`
	Category   string `json:"category"`
	FieldCount int    `json:"field_count"`
	SourceFile string `json:"source_file,omitempty"`
}

// fieldDetail is one field in the rule detail view.
type fieldDetail struct {
	Key           string   `json:"key"`
	Type          string   `json:"type"`
	Required      bool     `json:"required"`
	DisplayName   string   `json:"display_name"`
	AllowedValues []string `json:"allowed_values,omitempty"`
}

// ruleDetail is the full rule inspection view.
type ruleDetail struct {
	ClauseID    string            `json:"clause_id"`
	Category    map[string]string `json:"category"`
	Fields      []fieldDetail     `json:"fields"`
	Constraints *rulebook.Node    `json:"validation_rules,omitempty"`
	SourceFile  string            `json:"source_file,omitempty"`
}

// evaluateRequest is the POST /rules/evaluate body.
type evaluateRequest struct {
	ClauseID string `json:"clause_id"`
	Inputs   []struct {
		Key   string `json:"key"`
		Value any    `json:"value"`
	} `json:"inputs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		RuleCount: s.store.Registry().Count(),
		Version:   s.store.Registry().Version(),
	})
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules := s.store.Registry().All()

	summaries := make([]ruleSummary, 0, len(rules))
	for _, rule := range rules {
		summaries = append(summaries, ruleSummary{
			ClauseID:   rule.ClauseID,
			Category:   rule.CategoryLabel("en"),
			FieldCount: len(rule.Fields),
			SourceFile: rule.SourceFile,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rules":   summaries,
		"version": s.store.Registry().Version(),
	})
}

func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	clauseID := r.PathValue("clause_id")

	rule, ok := s.store.Get(clauseID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown clause_id: " + clauseID})
		return
	}

	fields := make([]fieldDetail, 0, len(rule.Fields))
	for _, field := range rule.Fields {
		fields = append(fields, fieldDetail{
			Key:           field.Key,
			Type:          string(field.Type),
			Required:      field.Required,
			DisplayName:   field.DisplayName("en"),
			AllowedValues: field.AllowedValues,
		})
	}

	writeJSON(w, http.StatusOK, ruleDetail{
		ClauseID:    rule.ClauseID,
		Category:    rule.Category,
		Fields:      fields,
		Constraints: rule.Constraints,
		SourceFile:  rule.SourceFile,
	})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.config.MaxRequestBytes)
	defer body.Close()

	var req evaluateRequest
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if req.ClauseID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "clause_id is required"})
		return
	}

	rule, ok := s.store.Get(req.ClauseID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown clause_id: " + req.ClauseID})
		return
	}

	given := make(map[string]any, len(req.Inputs))
	for _, input := range req.Inputs {
		if input.Key == "" {
			continue
		}
		given[input.Key] = input.Value
	}

	start := time.Now()
	result := s.evaluator.Evaluate(rule, given)
	s.collector.RecordEvaluation(rule.ClauseID, string(result.Status), time.Since(start), result.ReasonCodes)

	if result.Status == engine.StatusOK {
		s.recordSubmission(r, rule.ClauseID, given)
	}

	writeJSON(w, http.StatusOK, result)
}

// recordSubmission persists an accepted submission so frequency
// constraints count it on later evaluations. Recording is best-effort:
// a storage failure is logged, never surfaced to the client.
func (s *Server) recordSubmission(r *http.Request, clauseID string, given map[string]any) {
	if s.history == nil {
		return
	}

	employee, _ := given["employee_id"].(string)
	if employee == "" {
		return
	}
	amount, _ := given["amount"].(float64)

	sub := &history.Submission{
		EmployeeID:  employee,
		ClauseID:    clauseID,
		Amount:      amount,
		SubmittedAt: time.Now(),
	}
	if err := s.history.Record(r.Context(), sub); err != nil {
		s.logger.Warn("failed to record submission",
			"clause_id", clauseID,
			"employee_id", employee,
			"error", err,
		)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
