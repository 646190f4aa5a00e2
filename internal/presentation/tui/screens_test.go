package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/fatefinder/internal/i18n"
	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestMarkdown_Screens(t *testing.T) {
	ja := i18n.MustLoad().Localizer("ja")

	tests := []struct {
		name string
		snap domain.Snapshot
		want []string
	}{
		{"home", domain.Snapshot{Screen: domain.ScreenHome}, []string{"# Fate Prefecture Finder", "あなたと相性の良い都道府県を占います"}},
		{"input", domain.Snapshot{Screen: domain.ScreenInput}, []string{"## あなたのプロフィール"}},
		{"input with validation", domain.Snapshot{
			Screen:     domain.ScreenInput,
			Validation: &domain.ValidationError{Field: "birthday", Key: domain.MsgInvalidBirthday},
		}, []string{"> 生年月日が正しくありません"}},
		{"loading", domain.Snapshot{Screen: domain.ScreenLoading, IsRequestInFlight: true}, []string{"_占い中..._"}},
		{"error", domain.Snapshot{Screen: domain.ScreenError, LastError: "status 500"}, []string{"## エラーが発生しました", "`status 500`"}},
		{"result not saved", domain.Snapshot{
			Screen:       domain.ScreenResult,
			LastResult:   &domain.FortuneResult{Name: "富山県", Capital: "富山市"},
			PersistError: "disk full",
		}, []string{"## 結果: 富山県", "> 結果を保存できませんでした"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := Markdown(tt.snap, ja)
			for _, w := range tt.want {
				assert.Contains(t, md, w)
			}
		})
	}
}

func TestResultMarkdown(t *testing.T) {
	en := i18n.MustLoad().Localizer("en")
	md := ResultMarkdown(&domain.FortuneResult{
		Name:       "富山県",
		Capital:    "富山市",
		CitizenDay: &domain.MonthDay{Month: 5, Day: 9},
		LogoURL:    "https://example.com/toyama.png",
		Brief:      "概要",
	}, en)

	assert.Contains(t, md, "| Capital | 富山市 |")
	assert.Contains(t, md, "| Citizen day | 05-09 |")
	assert.Contains(t, md, "| Coastline | No |")
	assert.Contains(t, md, "### About\n\n概要")

	md = ResultMarkdown(&domain.FortuneResult{Name: "奈良県"}, en)
	assert.NotContains(t, md, "Citizen day")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_|  \\__,_|")
}

func TestNewRenderer_Renders(t *testing.T) {
	out, err := NewRenderer(80)("# Title")
	assert.NoError(t, err)
	assert.Contains(t, out, "Title")
}
