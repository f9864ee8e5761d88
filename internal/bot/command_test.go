package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Configure(t *testing.T) {
	habits := []string{"ウォーキング", "筋トレ", "瞑想"}

	tests := []struct {
		name      string
		text      string
		wantKind  CommandKind
		wantNames []string
	}{
		{
			name:      "japanese comma separator",
			text:      "/設定 読書、ランニング、早寝",
			wantKind:  KindConfigure,
			wantNames: []string{"読書", "ランニング", "早寝"},
		},
		{
			name:      "ascii comma separator",
			text:      "/設定 読書,ランニング",
			wantKind:  KindConfigure,
			wantNames: []string{"読書", "ランニング"},
		},
		{
			name:      "mixed separators with whitespace",
			text:      "/設定 読書 、 ランニング, 早寝",
			wantKind:  KindConfigure,
			wantNames: []string{"読書", "ランニング", "早寝"},
		},
		{
			name:      "single habit",
			text:      "/設定 読書",
			wantKind:  KindConfigure,
			wantNames: []string{"読書"},
		},
		{
			name:     "empty remainder",
			text:     "/設定 ",
			wantKind: KindConfigureInvalid,
		},
		{
			name:     "only separators",
			text:     "/設定 、、,",
			wantKind: KindConfigureInvalid,
		},
		{
			name:     "four habits rejected",
			text:     "/設定 a、b、c、d",
			wantKind: KindConfigureTooMany,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := Classify(tt.text, habits)
			assert.Equal(t, tt.wantKind, cmd.Kind)
			assert.Equal(t, tt.wantNames, cmd.Names)
		})
	}
}

func TestClassify_ShowCommands(t *testing.T) {
	habits := []string{"ウォーキング"}

	assert.Equal(t, KindShowHabits, Classify("/習慣", habits).Kind)
	assert.Equal(t, KindShowHabits, Classify("/確認", habits).Kind)
	assert.Equal(t, KindShowStats, Classify("/統計", habits).Kind)

	// Exact match only: trailing text demotes to echo.
	assert.Equal(t, KindEcho, Classify("/習慣 today", habits).Kind)
	assert.Equal(t, KindEcho, Classify(" /統計", habits).Kind)
}

func TestClassify_LogCompletion(t *testing.T) {
	habits := []string{"ウォーキング", "筋トレ", "瞑想"}

	tests := []struct {
		name      string
		text      string
		wantKind  CommandKind
		wantHabit string
	}{
		{
			name:      "bare habit name",
			text:      "筋トレ",
			wantKind:  KindLogCompletion,
			wantHabit: "筋トレ",
		},
		{
			name:      "date prefixed habit name",
			text:      "8/31 ウォーキング",
			wantKind:  KindLogCompletion,
			wantHabit: "ウォーキング",
		},
		{
			name:      "date prefix with extra spaces",
			text:      "12/3   瞑想",
			wantKind:  KindLogCompletion,
			wantHabit: "瞑想",
		},
		{
			name:     "unknown habit",
			text:     "昼寝",
			wantKind: KindEcho,
		},
		{
			name:     "date prefix with unknown habit",
			text:     "8/31 昼寝",
			wantKind: KindEcho,
		},
		{
			name:     "date prefix alone",
			text:     "8/31 ",
			wantKind: KindEcho,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := Classify(tt.text, habits)
			assert.Equal(t, tt.wantKind, cmd.Kind)
			assert.Equal(t, tt.wantHabit, cmd.Habit)
		})
	}
}

func TestClassify_PrecedenceOverHabitNames(t *testing.T) {
	// A habit that collides with a command name never shadows the command.
	habits := []string{"/統計", "筋トレ"}

	assert.Equal(t, KindShowStats, Classify("/統計", habits).Kind)
	assert.Equal(t, KindLogCompletion, Classify("筋トレ", habits).Kind)
}

func TestClassify_EchoPreservesOriginalText(t *testing.T) {
	cmd := Classify("8/31 知らない習慣", []string{"ウォーキング"})

	assert.Equal(t, KindEcho, cmd.Kind)
	// The date prefix is stripped only for matching, not for echoing.
	assert.Equal(t, "8/31 知らない習慣", cmd.Text)
}

func TestClassify_MatchingIsCaseSensitive(t *testing.T) {
	habits := []string{"Walk"}

	assert.Equal(t, KindLogCompletion, Classify("Walk", habits).Kind)
	assert.Equal(t, KindEcho, Classify("walk", habits).Kind)
}

func TestSplitHabitNames(t *testing.T) {
	assert.Empty(t, splitHabitNames(""))
	assert.Empty(t, splitHabitNames(" 、 , "))
	assert.Equal(t, []string{"a", "b"}, splitHabitNames("a、、b"))
}
