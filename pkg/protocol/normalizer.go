package protocol

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var cardTypeAllowlist = map[string]bool{
	CardRoutineProducts: true,
	CardAnalysisSummary: true,
	CardPhotoGuide:      true,
	CardBudgetOptions:   true,
	CardCheckoutSummary: true,
	CardSafetyNotice:    true,
}

var riskLevels = map[string]bool{
	RiskNone:   true,
	RiskLow:    true,
	RiskMedium: true,
	RiskHigh:   true,
}

// rawEnvelope defers array decoding so a single malformed entry can be
// dropped without failing the whole response.
type rawEnvelope struct {
	Version               string            `json:"version"`
	RequestID             string            `json:"request_id"`
	TraceID               string            `json:"trace_id"`
	AssistantText         string            `json:"assistant_text"`
	Cards                 []json.RawMessage `json:"cards"`
	FollowUpQuestions     []json.RawMessage `json:"follow_up_questions"`
	SuggestedQuickReplies []json.RawMessage `json:"suggested_quick_replies"`
	Ops                   *rawOps           `json:"ops"`
	Safety                *Safety           `json:"safety"`
	Telemetry             *rawTelemetry     `json:"telemetry"`
}

type rawOps struct {
	ThreadOps        []json.RawMessage        `json:"thread_ops"`
	ProfilePatch     []map[string]interface{} `json:"profile_patch"`
	RoutinePatch     []map[string]interface{} `json:"routine_patch"`
	ExperimentEvents []map[string]interface{} `json:"experiment_events"`
}

type rawTelemetry struct {
	Intent                   string   `json:"intent"`
	IntentConfidence         float64  `json:"intent_confidence"`
	Entities                 []string `json:"entities"`
	UILanguage               string   `json:"ui_language"`
	MatchingLanguage         string   `json:"matching_language"`
	LanguageMismatch         *bool    `json:"language_mismatch"`
	LanguageResolutionSource string   `json:"language_resolution_source"`
}

// NormalizeChatResponse turns a raw backend body into a fully-typed
// ChatResponse. It returns nil when the envelope itself is unusable:
// non-object root, version mismatch, or missing identifiers. Malformed
// entries inside array fields are dropped individually, never fatal.
func NormalizeChatResponse(body []byte) *ChatResponse {
	var raw rawEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}
	if raw.Version != EnvelopeVersion {
		return nil
	}
	if raw.RequestID == "" || raw.TraceID == "" {
		return nil
	}

	resp := &ChatResponse{
		Version:       raw.Version,
		RequestID:     raw.RequestID,
		TraceID:       raw.TraceID,
		AssistantText: raw.AssistantText,
	}

	resp.Cards = normalizeEach(raw.Cards, MaxCards, normalizeCard)
	resp.FollowUpQuestions = normalizeEach(raw.FollowUpQuestions, MaxFollowUps, normalizeFollowUp)
	resp.SuggestedQuickReplies = normalizeQuickReplies(raw.SuggestedQuickReplies)
	resp.Ops = normalizeOps(raw.Ops)
	resp.Safety = normalizeSafety(raw.Safety)
	resp.Telemetry = normalizeTelemetry(raw.Telemetry)

	return resp
}

// normalizeEach maps raw entries through fn, filters rejects, and caps
// the survivors.
func normalizeEach[T any](entries []json.RawMessage, limit int, fn func(json.RawMessage) *T) []T {
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		if v := fn(e); v != nil {
			out = append(out, *v)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func normalizeCard(raw json.RawMessage) *Card {
	var c Card
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil
	}
	if !cardTypeAllowlist[c.Type] {
		return nil
	}
	if err := validate.Struct(&c); err != nil {
		return nil
	}
	if c.Priority < 1 {
		c.Priority = 1
	} else if c.Priority > 3 {
		c.Priority = 3
	}
	return &c
}

func normalizeFollowUp(raw json.RawMessage) *FollowUpQuestion {
	var q FollowUpQuestion
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil
	}
	if err := validate.Struct(&q); err != nil {
		return nil
	}
	opts := make([]FollowUpOption, 0, len(q.Options))
	for _, o := range q.Options {
		if o.ID == "" || o.Label == "" {
			continue
		}
		opts = append(opts, o)
	}
	if len(opts) > MaxFollowUpOptions {
		opts = opts[:MaxFollowUpOptions]
	}
	q.Options = opts
	return &q
}

func normalizeQuickReplies(entries []json.RawMessage) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		var s string
		if err := json.Unmarshal(e, &s); err != nil || s == "" {
			continue
		}
		out = append(out, s)
	}
	if len(out) > MaxQuickReplies {
		out = out[:MaxQuickReplies]
	}
	return out
}

func normalizeOps(raw *rawOps) Ops {
	if raw == nil {
		return Ops{}
	}
	ops := Ops{
		ProfilePatch:     raw.ProfilePatch,
		RoutinePatch:     raw.RoutinePatch,
		ExperimentEvents: raw.ExperimentEvents,
	}
	threadOps := make([]ThreadOp, 0, len(raw.ThreadOps))
	for _, e := range raw.ThreadOps {
		var op ThreadOp
		if err := json.Unmarshal(e, &op); err != nil || op.Op == "" {
			continue
		}
		threadOps = append(threadOps, op)
	}
	if len(threadOps) > MaxThreadOps {
		threadOps = threadOps[:MaxThreadOps]
	}
	ops.ThreadOps = threadOps
	return ops
}

func normalizeSafety(raw *Safety) Safety {
	if raw == nil {
		return Safety{RiskLevel: RiskNone}
	}
	s := *raw
	if !riskLevels[s.RiskLevel] {
		s.RiskLevel = RiskNone
	}
	if len(s.RedFlags) > MaxRedFlags {
		s.RedFlags = s.RedFlags[:MaxRedFlags]
	}
	return s
}

func normalizeTelemetry(raw *rawTelemetry) Telemetry {
	if raw == nil {
		return Telemetry{}
	}
	t := Telemetry{
		Intent:                   raw.Intent,
		IntentConfidence:         clamp01(raw.IntentConfidence),
		Entities:                 raw.Entities,
		UILanguage:               raw.UILanguage,
		MatchingLanguage:         raw.MatchingLanguage,
		LanguageResolutionSource: raw.LanguageResolutionSource,
	}
	if len(t.Entities) > MaxEntities {
		t.Entities = t.Entities[:MaxEntities]
	}
	if raw.LanguageMismatch != nil {
		t.LanguageMismatch = *raw.LanguageMismatch
	} else {
		// Derive when the backend did not say: mismatch iff both
		// languages are known and differ.
		t.LanguageMismatch = raw.UILanguage != "" &&
			raw.MatchingLanguage != "" &&
			raw.UILanguage != raw.MatchingLanguage
	}
	return t
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
