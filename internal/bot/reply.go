package bot

import (
	"fmt"
	"strings"
	"time"

	"habitnavi/internal/line"
	"habitnavi/internal/models"
)

// quickReplyLabelMax is the platform limit on quick-reply button labels.
const quickReplyLabelMax = 20

// Builder renders outgoing reply messages. All dates and times are
// rendered in loc, the same zone used for the day boundary.
type Builder struct {
	loc *time.Location
}

// NewBuilder returns a Builder rendering times in loc.
func NewBuilder(loc *time.Location) *Builder {
	return &Builder{loc: loc}
}

// Welcome is the follow greeting, sent after the default habit set
// is installed.
func (b *Builder) Welcome(habits []string, now time.Time) line.TextMessage {
	var sb strings.Builder
	sb.WriteString("フォローありがとうございます！健康ナビへようこそ。\n\n")
	sb.WriteString("デフォルトの習慣を設定しました:\n")
	writeNumbered(&sb, habits)
	sb.WriteString("\n習慣を達成したらボタンをタップして記録しましょう。")
	return line.TextMessage{
		Text:         sb.String(),
		QuickReplies: b.habitButtons(habits, now, b.changeButton()),
	}
}

// Configure confirms a replaced habit set.
func (b *Builder) Configure(habits []string, now time.Time) line.TextMessage {
	var sb strings.Builder
	sb.WriteString("習慣を設定しました:\n")
	writeNumbered(&sb, habits)
	sb.WriteString("\n達成したらボタンをタップして記録しましょう。")
	return line.TextMessage{
		Text:         sb.String(),
		QuickReplies: b.habitButtons(habits, now, b.statsButton()),
	}
}

// ConfigureInvalid is the guidance reply for a configure attempt with no
// usable habit names.
func (b *Builder) ConfigureInvalid() line.TextMessage {
	return line.TextMessage{
		Text: "習慣が指定されていません。「/設定 習慣1、習慣2、習慣3」の形式で入力してください。",
	}
}

// ConfigureTooMany is the guidance reply for a configure attempt with more
// than models.MaxHabits names.
func (b *Builder) ConfigureTooMany() line.TextMessage {
	return line.TextMessage{
		Text: fmt.Sprintf("習慣は%dつまで設定できます。「/設定 習慣1、習慣2、習慣3」の形式で入力してください。", models.MaxHabits),
	}
}

// ShowHabits lists the current habits and today's completions.
func (b *Builder) ShowHabits(habits []string, todayLogs []models.HabitLog, now time.Time) line.TextMessage {
	var sb strings.Builder
	sb.WriteString("現在の習慣:\n")
	writeNumbered(&sb, habits)
	sb.WriteString("\n今日の記録:\n")
	if len(todayLogs) == 0 {
		sb.WriteString("まだありません。")
	} else {
		for i, l := range todayLogs {
			if i > 0 {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "・%s (%s)", l.Name, l.LoggedAt.In(b.loc).Format("15:04"))
		}
	}
	return line.TextMessage{
		Text:         sb.String(),
		QuickReplies: b.habitButtons(habits, now, b.changeButton(), b.statsButton()),
	}
}

// ShowStats summarizes completions over the trailing window.
func (b *Builder) ShowStats(stats []models.HabitStat, windowDays int, habits []string, now time.Time) line.TextMessage {
	var sb strings.Builder
	if len(stats) == 0 {
		fmt.Fprintf(&sb, "過去%d日間の記録はありません。", windowDays)
	} else {
		fmt.Fprintf(&sb, "過去%d日間の統計:\n", windowDays)
		for i, s := range stats {
			if i > 0 {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "%d. %s: %d回 (最終: %s)", i+1, s.Name, s.Count, s.LastLoggedAt.In(b.loc).Format("1/2"))
		}
	}
	return line.TextMessage{
		Text:         sb.String(),
		QuickReplies: b.habitButtons(habits, now, b.showButton()),
	}
}

// LogCompletion confirms a recorded completion. todayCount is the number
// of completions of this habit so far today, including the one just made.
func (b *Builder) LogCompletion(name string, habits []string, todayCount int, now time.Time) line.TextMessage {
	local := now.In(b.loc)
	text := fmt.Sprintf("「%s」を記録しました！(%s)\n今日%d回目の達成です。",
		name, local.Format("1/2 15:04"), todayCount)
	return line.TextMessage{
		Text:         text,
		QuickReplies: b.habitButtons(habits, now, b.showButton(), b.statsButton()),
	}
}

// Echo is the fallback reply for unrecognized text.
func (b *Builder) Echo(text string, habits []string, now time.Time) line.TextMessage {
	return line.TextMessage{
		Text:         "受信しました: " + text,
		QuickReplies: b.habitButtons(habits, now, b.showButton(), b.statsButton()),
	}
}

// Failure is the generic reply when storage or an upstream call failed.
func (b *Builder) Failure() line.TextMessage {
	return line.TextMessage{
		Text: "エラーが発生しました。しばらくしてからもう一度お試しください。",
	}
}

// StatsDisabled replaces the stats reply while the feature is gated off.
func (b *Builder) StatsDisabled(habits []string, now time.Time) line.TextMessage {
	return line.TextMessage{
		Text:         "統計機能は現在ご利用いただけません。",
		QuickReplies: b.habitButtons(habits, now, b.showButton()),
	}
}

// habitButtons builds one date-prefixed button per habit followed by the
// given trailing actions. The date prefix keeps taps on yesterday's
// buttons recognizable as habit completions.
func (b *Builder) habitButtons(habits []string, now time.Time, trailing ...line.QuickReply) []line.QuickReply {
	local := now.In(b.loc)
	prefix := fmt.Sprintf("%d/%d ", local.Month(), local.Day())
	items := make([]line.QuickReply, 0, len(habits)+len(trailing))
	for _, h := range habits {
		items = append(items, line.QuickReply{
			Label: clipLabel(prefix + h),
			Text:  prefix + h,
		})
	}
	return append(items, trailing...)
}

func (b *Builder) changeButton() line.QuickReply {
	return line.QuickReply{Label: "習慣を変更", Text: changeHabitsText}
}

func (b *Builder) showButton() line.QuickReply {
	return line.QuickReply{Label: "習慣を確認", Text: showHabitsText}
}

func (b *Builder) statsButton() line.QuickReply {
	return line.QuickReply{Label: "統計を見る", Text: showStatsText}
}

func writeNumbered(sb *strings.Builder, items []string) {
	for i, item := range items {
		fmt.Fprintf(sb, "%d. %s\n", i+1, item)
	}
}

func clipLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= quickReplyLabelMax {
		return s
	}
	return string(runes[:quickReplyLabelMax-1]) + "…"
}
