package memory

import (
	"strings"
	"time"

	"github.com/stridewell/coachcore/internal/model"
)

// DecisionCategory groups decisions that share an explainability narrative.
type DecisionCategory string

const (
	CategoryPlateau           DecisionCategory = "plateau"
	CategoryHabitBreak        DecisionCategory = "habit_break"
	CategoryReturnAfterPause  DecisionCategory = "return_after_pause"
	CategoryCalorieOverTarget DecisionCategory = "calorie_over_target"
	CategoryWorkoutWin        DecisionCategory = "workout_win"
	CategoryGeneral           DecisionCategory = "general"
)

// categoryMarkers maps decision-id substrings to categories. Detection runs
// in declaration order; the first match wins. This is the single place the
// decision-id vocabulary lives.
var categoryMarkers = []struct {
	marker   string
	category DecisionCategory
}{
	{"plateau", CategoryPlateau},
	{"habit_broken", CategoryHabitBreak},
	{"habit-break", CategoryHabitBreak},
	{"return_after_pause", CategoryReturnAfterPause},
	{"comeback", CategoryReturnAfterPause},
	{"calorie_over_target", CategoryCalorieOverTarget},
	{"over-target", CategoryCalorieOverTarget},
	{"workout_completed", CategoryWorkoutWin},
	{"strength_pr", CategoryWorkoutWin},
	{"day_completed", CategoryWorkoutWin},
}

// DetectCategory resolves the decision category for a decision id.
func DetectCategory(decisionID string) DecisionCategory {
	id := strings.ToLower(decisionID)
	for _, m := range categoryMarkers {
		if strings.Contains(id, m.marker) {
			return m.category
		}
	}
	return CategoryGeneral
}

type refSpec struct {
	ref     string
	summary string
	daysAgo int
	layer   string
	tags    []string
}

type traceTemplate struct {
	refs     []refSpec
	patterns []string
}

// traceRegistry holds one registered template per decision category.
var traceRegistry = map[DecisionCategory]traceTemplate{
	CategoryPlateau: {
		refs: []refSpec{
			{"episode:plateau-previous", "Weight held steady for 10 days before your last breakthrough", 21, "long_term", []string{"plateau", "progress"}},
			{"episode:adherence-high", "You kept logging meals through the whole flat stretch", 7, "mid_term", []string{"adherence", "consistency"}},
		},
		patterns: []string{"plateau_then_breakthrough", "steady_adherence"},
	},
	CategoryHabitBreak: {
		refs: []refSpec{
			{"episode:habit-recovered", "You rebuilt your evening walk habit within a week last time", 30, "long_term", []string{"habit", "recovery"}},
			{"episode:streak-before", "Your longest streak started right after a missed day", 12, "mid_term", []string{"streak", "resilience"}},
		},
		patterns: []string{"break_then_rebuild"},
	},
	CategoryReturnAfterPause: {
		refs: []refSpec{
			{"episode:last-return", "After your last pause you eased back with two light sessions", 45, "long_term", []string{"comeback", "pacing"}},
		},
		patterns: []string{"gentle_reentry"},
	},
	CategoryCalorieOverTarget: {
		refs: []refSpec{
			{"episode:balanced-week", "One heavy day has never broken your weekly balance", 9, "mid_term", []string{"nutrition", "balance"}},
		},
		patterns: []string{"single_day_overage"},
	},
	CategoryWorkoutWin: {
		refs: []refSpec{
			{"episode:recent-prs", "Three personal records in the last month", 14, "mid_term", []string{"strength", "progress"}},
			{"episode:session-quality", "Your completed sessions trend longer and steadier", 5, "short_term", []string{"workout", "quality"}},
		},
		patterns: []string{"compounding_wins"},
	},
	CategoryGeneral: {
		refs: []refSpec{
			{"episode:recent-activity", "Regular check-ins over the past two weeks", 3, "short_term", []string{"engagement"}},
		},
		patterns: []string{},
	},
}

var safetyVocab = []string{"pain", "injury", "fatigue", "overload", "overtraining"}

// buildMemoryRefs materializes the registered refs for a category with
// occurrence times relative to now.
func buildMemoryRefs(cat DecisionCategory, now time.Time) []model.MemoryRef {
	tpl := traceRegistry[cat]
	refs := make([]model.MemoryRef, 0, len(tpl.refs))
	for _, r := range tpl.refs {
		tags := make([]string, len(r.tags))
		copy(tags, r.tags)
		refs = append(refs, model.MemoryRef{
			Ref:        r.ref,
			Summary:    r.summary,
			OccurredAt: now.AddDate(0, 0, -r.daysAgo),
			Layer:      r.layer,
			Tags:       tags,
		})
	}
	return refs
}

func patternMatches(cat DecisionCategory) []string {
	tpl := traceRegistry[cat]
	out := make([]string, len(tpl.patterns))
	copy(out, tpl.patterns)
	return out
}

// safetyFlagsFor extracts safety vocabulary present in the decision id.
func safetyFlagsFor(decisionID string) []string {
	id := strings.ToLower(decisionID)
	flags := []string{}
	for _, w := range safetyVocab {
		if strings.Contains(id, w) {
			flags = append(flags, w)
		}
	}
	return flags
}

// syntheticTrustHistory derives a deterministic two-point trajectory from the
// current trust level: one point ~14 days ago and one ~3 days ago. It stands
// in when no durable trust-event log exists; ports that implement TrustLog
// supersede it.
func syntheticTrustHistory(trustLevel int, now time.Time) []model.TrustPoint {
	earlier := model.ClampTrust(trustLevel - 5)
	return []model.TrustPoint{
		{
			Timestamp:  now.AddDate(0, 0, -14),
			Delta:      3,
			TrustLevel: earlier,
			Reason:     "consistent_logging",
		},
		{
			Timestamp:  now.AddDate(0, 0, -3),
			Delta:      2,
			TrustLevel: trustLevel,
			Reason:     "recent_follow_through",
		},
	}
}
