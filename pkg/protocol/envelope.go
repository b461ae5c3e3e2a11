// Package protocol is the trust boundary between the backend wire format
// and client state. Raw JSON enters here and only fully-typed, clamped
// shapes leave.
package protocol

// EnvelopeVersion is the only wire version this client accepts.
const EnvelopeVersion = "1.0"

// Array caps applied at ingestion, after per-entry filtering.
const (
	MaxCards           = 3
	MaxFollowUps       = 3
	MaxFollowUpOptions = 3
	MaxQuickReplies    = 8
	MaxThreadOps       = 16
	MaxRedFlags        = 8
	MaxEntities        = 16
)

// Card types form a closed allowlist; unknown types are dropped.
const (
	CardRoutineProducts = "routine_products"
	CardAnalysisSummary = "analysis_summary"
	CardPhotoGuide      = "photo_guide"
	CardBudgetOptions   = "budget_options"
	CardCheckoutSummary = "checkout_summary"
	CardSafetyNotice    = "safety_notice"
)

// Risk levels in safety blocks.
const (
	RiskNone   = "none"
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// CardSection is one content block inside a card.
type CardSection struct {
	Heading string   `json:"heading,omitempty"`
	Body    string   `json:"body,omitempty"`
	Items   []string `json:"items,omitempty"`
}

// CardAction is a tappable action attached to a card.
type CardAction struct {
	ID    string `json:"id" validate:"required"`
	Label string `json:"label" validate:"required"`
	Kind  string `json:"kind,omitempty"`
}

// Card is one typed content card from the backend.
type Card struct {
	ID       string        `json:"id" validate:"required"`
	Type     string        `json:"type" validate:"required"`
	Priority int           `json:"priority"`
	Title    string        `json:"title" validate:"required"`
	Subtitle string        `json:"subtitle,omitempty"`
	Tags     []string      `json:"tags,omitempty" validate:"max=8"`
	Sections []CardSection `json:"sections,omitempty" validate:"max=6"`
	Actions  []CardAction  `json:"actions,omitempty" validate:"max=4,dive"`
}

// FollowUpOption is one bounded option chip under a follow-up question.
type FollowUpOption struct {
	ID    string `json:"id" validate:"required"`
	Label string `json:"label" validate:"required"`
	Value string `json:"value,omitempty"`
}

// FollowUpQuestion asks the user to pick among a handful of options.
type FollowUpQuestion struct {
	ID       string           `json:"id" validate:"required"`
	Question string           `json:"question" validate:"required"`
	Options  []FollowUpOption `json:"options,omitempty"`
}

// ThreadOp is one patch operation against the conversation thread.
type ThreadOp struct {
	Op    string                 `json:"op" validate:"required"`
	Path  string                 `json:"path,omitempty"`
	Value map[string]interface{} `json:"value,omitempty"`
}

// Ops carries the backend's patch lists.
type Ops struct {
	ThreadOps        []ThreadOp               `json:"thread_ops,omitempty"`
	ProfilePatch     []map[string]interface{} `json:"profile_patch,omitempty"`
	RoutinePatch     []map[string]interface{} `json:"routine_patch,omitempty"`
	ExperimentEvents []map[string]interface{} `json:"experiment_events,omitempty"`
}

// Safety is the backend's risk assessment for the current turn.
type Safety struct {
	RiskLevel  string   `json:"risk_level"`
	RedFlags   []string `json:"red_flags,omitempty"`
	Disclaimer string   `json:"disclaimer,omitempty"`
}

// Telemetry carries intent classification and language resolution
// diagnostics.
type Telemetry struct {
	Intent                   string   `json:"intent,omitempty"`
	IntentConfidence         float64  `json:"intent_confidence"`
	Entities                 []string `json:"entities,omitempty"`
	UILanguage               string   `json:"ui_language,omitempty"`
	MatchingLanguage         string   `json:"matching_language,omitempty"`
	LanguageMismatch         bool     `json:"language_mismatch"`
	LanguageResolutionSource string   `json:"language_resolution_source,omitempty"`
}

// ChatResponse is the normalized, fully-typed backend envelope. Every
// array is clamped and every field defaulted; rendering code may trust
// it blindly.
type ChatResponse struct {
	Version             string             `json:"version"`
	RequestID           string             `json:"request_id"`
	TraceID             string             `json:"trace_id"`
	AssistantText       string             `json:"assistant_text"`
	Cards               []Card             `json:"cards"`
	FollowUpQuestions   []FollowUpQuestion `json:"follow_up_questions"`
	SuggestedQuickReplies []string         `json:"suggested_quick_replies"`
	Ops                 Ops                `json:"ops"`
	Safety              Safety             `json:"safety"`
	Telemetry           Telemetry          `json:"telemetry"`
}
