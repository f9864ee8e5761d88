package bot

import (
	"regexp"
	"strings"

	"habitnavi/internal/models"
)

// CommandKind identifies what an incoming text message asks the bot to do.
type CommandKind int

const (
	// KindEcho is the fallback for text that matches no command and no habit.
	KindEcho CommandKind = iota
	// KindConfigure replaces the user's habit set.
	KindConfigure
	// KindConfigureInvalid is a configure attempt with no usable habit names.
	KindConfigureInvalid
	// KindConfigureTooMany is a configure attempt exceeding models.MaxHabits.
	KindConfigureTooMany
	// KindShowHabits lists the current habits and today's completions.
	KindShowHabits
	// KindShowStats summarizes completions over the trailing window.
	KindShowStats
	// KindLogCompletion records one completion of a current habit.
	KindLogCompletion
)

func (k CommandKind) String() string {
	switch k {
	case KindConfigure:
		return "configure"
	case KindConfigureInvalid:
		return "configure_invalid"
	case KindConfigureTooMany:
		return "configure_too_many"
	case KindShowHabits:
		return "show_habits"
	case KindShowStats:
		return "show_stats"
	case KindLogCompletion:
		return "log_completion"
	default:
		return "echo"
	}
}

// Command is the result of classifying one text message.
// Fields other than Kind are populated only where noted.
type Command struct {
	Kind CommandKind
	// Names holds the parsed habit names for KindConfigure.
	Names []string
	// Habit holds the matched habit name for KindLogCompletion.
	Habit string
	// Text holds the original message text for KindEcho.
	Text string
}

const (
	configurePrefix  = "/設定 "
	showHabitsText   = "/習慣"
	showHabitsAlias  = "/確認"
	showStatsText    = "/統計"
	changeHabitsText = "/設定 "
)

// datePrefix matches an optional "M/D " marker that quick-reply habit
// buttons carry so that taps on stale buttons stay recognizable.
var datePrefix = regexp.MustCompile(`^\d{1,2}/\d{1,2}\s+`)

// Classify maps a message text to a Command. Matching is ordered and
// first-match-wins: configure prefix, then the fixed show commands, then
// a habit-name match (after stripping any date prefix), then echo.
// Habit matching is exact and case-sensitive against currentHabits.
func Classify(text string, currentHabits []string) Command {
	if strings.HasPrefix(text, configurePrefix) {
		names := splitHabitNames(strings.TrimPrefix(text, configurePrefix))
		switch {
		case len(names) == 0:
			return Command{Kind: KindConfigureInvalid}
		case len(names) > models.MaxHabits:
			return Command{Kind: KindConfigureTooMany}
		default:
			return Command{Kind: KindConfigure, Names: names}
		}
	}

	switch text {
	case showHabitsText, showHabitsAlias:
		return Command{Kind: KindShowHabits}
	case showStatsText:
		return Command{Kind: KindShowStats}
	}

	candidate := datePrefix.ReplaceAllString(text, "")
	for _, name := range currentHabits {
		if candidate == name {
			return Command{Kind: KindLogCompletion, Habit: name}
		}
	}

	return Command{Kind: KindEcho, Text: text}
}

// splitHabitNames splits on both the Japanese comma and the ASCII comma,
// trims surrounding whitespace, and drops empty segments.
func splitHabitNames(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '、' || r == ','
	})
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}
