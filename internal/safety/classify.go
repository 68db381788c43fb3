// Package safety maps errors and safety flags to remediation guidance for
// the screen layer. Classification is a pure function: no I/O, no state.
package safety

import "strings"

// Category names the kind of problem detected.
type Category string

const (
	CategoryTimeout       Category = "timeout"
	CategoryNetwork       Category = "network"
	CategoryMedical       Category = "medical"
	CategoryOvertraining  Category = "overtraining"
	CategoryLowConfidence Category = "low_confidence"
	CategoryData          Category = "data"
	CategoryUnknown       Category = "unknown"
)

// Action tells the calling feature what to do.
type Action string

const (
	ActionRecover  Action = "recover"
	ActionFallback Action = "fallback"
	ActionBlock    Action = "block"
	ActionAdapt    Action = "adapt"
	ActionWarn     Action = "warn"
	ActionExplain  Action = "explain"
)

// Context carries the non-error signals considered during classification.
type Context struct {
	Confidence  *float64
	SafetyFlags []string
}

// Result is the classification outcome. Message is fixed and user-safe.
type Result struct {
	Category Category
	Action   Action
	Message  string
}

var (
	networkVocab      = []string{"network", "fetch", "timeout", "connection", "unreachable"}
	medicalVocab      = []string{"medical", "pain", "injury", "injured", "hurt"}
	overtrainingVocab = []string{"fatigue", "overload", "overtraining", "exhausted"}
	dataVocab         = []string{"data", "schema", "permission", "parse", "decode"}
)

// Classify evaluates rules in a fixed order; the first match wins. Safety
// flags dominate confidence, which dominates generic data errors.
func Classify(err error, ctx Context) Result {
	msg := ""
	if err != nil {
		msg = strings.ToLower(err.Error())
	}

	if strings.Contains(msg, "loading timeout") {
		return Result{
			Category: CategoryTimeout,
			Action:   ActionRecover,
			Message:  "That took longer than expected. Let's try again.",
		}
	}
	if matchesAny(msg, networkVocab) {
		return Result{
			Category: CategoryNetwork,
			Action:   ActionFallback,
			Message:  "Connection looks shaky. Showing your saved data for now.",
		}
	}
	if flagMatches(ctx.SafetyFlags, medicalVocab) {
		return Result{
			Category: CategoryMedical,
			Action:   ActionBlock,
			Message:  "Let's pause here. Please check in with a professional before continuing.",
		}
	}
	if flagMatches(ctx.SafetyFlags, overtrainingVocab) {
		return Result{
			Category: CategoryOvertraining,
			Action:   ActionAdapt,
			Message:  "Your body is asking for a lighter day. We can adjust the plan.",
		}
	}
	if ctx.Confidence != nil && *ctx.Confidence < 0.5 {
		return Result{
			Category: CategoryLowConfidence,
			Action:   ActionWarn,
			Message:  "This suggestion is a rough guess. Take it with a grain of salt.",
		}
	}
	if matchesAny(msg, dataVocab) {
		return Result{
			Category: CategoryData,
			Action:   ActionExplain,
			Message:  "Something about this entry didn't add up. Nothing was lost.",
		}
	}
	return Result{
		Category: CategoryUnknown,
		Action:   ActionExplain,
		Message:  "Something unexpected happened. Your progress is safe.",
	}
}

func matchesAny(s string, vocab []string) bool {
	if s == "" {
		return false
	}
	for _, w := range vocab {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func flagMatches(flags, vocab []string) bool {
	for _, f := range flags {
		if matchesAny(strings.ToLower(f), vocab) {
			return true
		}
	}
	return false
}
