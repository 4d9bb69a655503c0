package style

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// TextColor 返回一個使用指定前景色的 Render 函數。
func TextColor(c lipgloss.Color) func(string) string {
	s := lipgloss.NewStyle().Foreground(c)
	return func(str string) string {
		return s.Render(str)
	}
}

func MutedText(s string) string {
	return TextColor(Muted)(s)
}

func PrimaryText(s string) string {
	return TextColor(Primary)(s)
}

// Fit 按終端顯示寬度截斷並補齊到 width 列
// CJK 字符佔兩列
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

// RenderProgressBar 渲染進度條，percent 取值 0-100
func RenderProgressBar(percent float64, width int) string {
	if width < 2 {
		width = 20
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(float64(width) * percent / 100.0)
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return ProgressBarStyle.Render(bar) + fmt.Sprintf(" %5.1f%%", percent)
}
