package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitnavi/internal/models"
)

var tokyo = time.FixedZone("JST", 9*60*60)

func TestBuilder_Welcome(t *testing.T) {
	b := NewBuilder(tokyo)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	msg := b.Welcome(models.DefaultHabits, now)

	assert.Contains(t, msg.Text, "フォローありがとうございます！健康ナビへようこそ。")
	assert.Contains(t, msg.Text, "1. ウォーキング")
	assert.Contains(t, msg.Text, "3. 瞑想")

	require.Len(t, msg.QuickReplies, 4)
	assert.Equal(t, "8/31 ウォーキング", msg.QuickReplies[0].Text)
	assert.Equal(t, "習慣を変更", msg.QuickReplies[3].Label)
}

func TestBuilder_DatePrefixUsesConfiguredZone(t *testing.T) {
	b := NewBuilder(tokyo)
	// 16:30 UTC on Aug 31 is already Sep 1 in Tokyo.
	now := time.Date(2026, 8, 31, 16, 30, 0, 0, time.UTC)

	msg := b.Configure([]string{"読書"}, now)

	require.NotEmpty(t, msg.QuickReplies)
	assert.Equal(t, "9/1 読書", msg.QuickReplies[0].Text)
}

func TestBuilder_ConfigureGuidance(t *testing.T) {
	b := NewBuilder(tokyo)

	invalid := b.ConfigureInvalid()
	assert.Contains(t, invalid.Text, "/設定 習慣1、習慣2、習慣3")
	assert.Empty(t, invalid.QuickReplies)

	tooMany := b.ConfigureTooMany()
	assert.Contains(t, tooMany.Text, "3つまで")
}

func TestBuilder_ShowHabits(t *testing.T) {
	b := NewBuilder(tokyo)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	habits := []string{"ウォーキング", "筋トレ"}

	t.Run("no completions today", func(t *testing.T) {
		msg := b.ShowHabits(habits, nil, now)
		assert.Contains(t, msg.Text, "1. ウォーキング")
		assert.Contains(t, msg.Text, "まだありません")
	})

	t.Run("renders log times in zone", func(t *testing.T) {
		logs := []models.HabitLog{
			{Name: "ウォーキング", LoggedAt: time.Date(2026, 8, 31, 0, 5, 0, 0, time.UTC)},
		}
		msg := b.ShowHabits(habits, logs, now)
		// 00:05 UTC renders as 09:05 in Tokyo.
		assert.Contains(t, msg.Text, "・ウォーキング (09:05)")
	})

	t.Run("trailing actions after habit buttons", func(t *testing.T) {
		msg := b.ShowHabits(habits, nil, now)
		require.Len(t, msg.QuickReplies, 4)
		assert.Equal(t, "習慣を変更", msg.QuickReplies[2].Label)
		assert.Equal(t, "統計を見る", msg.QuickReplies[3].Label)
		assert.Equal(t, "/統計", msg.QuickReplies[3].Text)
	})
}

func TestBuilder_ShowStats(t *testing.T) {
	b := NewBuilder(tokyo)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	t.Run("empty window", func(t *testing.T) {
		msg := b.ShowStats(nil, 7, []string{"ウォーキング"}, now)
		assert.Equal(t, "過去7日間の記録はありません。", msg.Text)
	})

	t.Run("ranked lines", func(t *testing.T) {
		stats := []models.HabitStat{
			{Name: "ウォーキング", Count: 5, LastLoggedAt: time.Date(2026, 8, 30, 21, 0, 0, 0, time.UTC)},
			{Name: "瞑想", Count: 2, LastLoggedAt: time.Date(2026, 8, 28, 21, 0, 0, 0, time.UTC)},
		}
		msg := b.ShowStats(stats, 7, []string{"ウォーキング", "瞑想"}, now)
		assert.Contains(t, msg.Text, "過去7日間の統計:")
		assert.Contains(t, msg.Text, "1. ウォーキング: 5回 (最終: 8/31)")
		assert.Contains(t, msg.Text, "2. 瞑想: 2回 (最終: 8/29)")
	})
}

func TestBuilder_LogCompletion(t *testing.T) {
	b := NewBuilder(tokyo)
	now := time.Date(2026, 8, 31, 12, 4, 0, 0, time.UTC)

	msg := b.LogCompletion("筋トレ", []string{"筋トレ"}, 2, now)

	assert.Contains(t, msg.Text, "「筋トレ」を記録しました！(8/31 21:04)")
	assert.Contains(t, msg.Text, "今日2回目の達成です。")
}

func TestBuilder_Echo(t *testing.T) {
	b := NewBuilder(tokyo)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	msg := b.Echo("こんにちは", []string{"ウォーキング"}, now)

	assert.Equal(t, "受信しました: こんにちは", msg.Text)
	require.Len(t, msg.QuickReplies, 3)
	assert.Equal(t, "/習慣", msg.QuickReplies[1].Text)
}

func TestBuilder_ClipsLongQuickReplyLabels(t *testing.T) {
	b := NewBuilder(tokyo)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	long := strings.Repeat("あ", 30)

	msg := b.Configure([]string{long}, now)

	require.NotEmpty(t, msg.QuickReplies)
	label := []rune(msg.QuickReplies[0].Label)
	assert.Len(t, label, quickReplyLabelMax)
	assert.Equal(t, "…", string(label[len(label)-1]))
	// The resubmitted text keeps the full name so the tap still matches.
	assert.Equal(t, "8/31 "+long, msg.QuickReplies[0].Text)
}
