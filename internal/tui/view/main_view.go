package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Yat-Muk/pkgdeck/internal/domain/catalog"
	"github.com/Yat-Muk/pkgdeck/internal/domain/operation"
	"github.com/Yat-Muk/pkgdeck/internal/tui/state"
	"github.com/Yat-Muk/pkgdeck/internal/tui/style"
)

const (
	versionColumn = 14
	sourceColumn  = 7
)

// RenderMainView 渲染主視圖
func RenderMainView(ui *state.UIState, version string) string {
	width := ui.Width
	if width < 60 {
		width = 60
	}

	sections := []string{
		renderHeader(ui, version),
		renderInput(ui),
		"",
		renderList(ui, width),
	}
	if banner := RenderStatusBanner(ui, width); banner != "" {
		sections = append(sections, banner)
	}
	sections = append(sections, renderHelp(ui))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderHeader(ui *state.UIState, version string) string {
	title := style.TitleStyle.Render("pkgdeck")
	ver := style.MutedText(version)

	right := ""
	if ui.Loading {
		right = ui.Spinner.View() + style.MutedText(" 搜索中")
	} else {
		right = style.MutedText(fmt.Sprintf("%d 個結果", len(ui.Records)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, title, ver, "  ", right)
}

func renderInput(ui *state.UIState) string {
	prompt := lipgloss.NewStyle().
		Foreground(style.Snow2).
		Render(" ❯ ")
	if ui.Focus == state.FocusSearch {
		prompt = style.PrimaryText(" ❯ ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, prompt, ui.TextInput.View())
}

func renderList(ui *state.UIState, width int) string {
	if len(ui.Records) == 0 {
		if ui.TextInput.Value() == "" {
			return style.HelpStyle.Render("輸入關鍵詞開始搜索")
		}
		if ui.Loading {
			return ""
		}
		return style.HelpStyle.Render("沒有匹配的軟件包")
	}

	height := ui.ListHeight()
	start := 0
	if ui.Cursor >= height {
		start = ui.Cursor - height + 1
	}
	end := start + height
	if end > len(ui.Records) {
		end = len(ui.Records)
	}

	nameWidth := width - versionColumn*2 - sourceColumn - 8
	if nameWidth < 12 {
		nameWidth = 12
	}

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, RenderRow(ui.Records[i], nameWidth, i == ui.Cursor))
	}
	return strings.Join(rows, "\n")
}

// RenderRow 渲染一行：名稱、可用版本、已安裝版本、來源
func RenderRow(r catalog.PackageRecord, nameWidth int, selected bool) string {
	installed := ""
	if r.IsInstalled() {
		installed = "✓ " + r.InstalledVersion
	}

	line := style.Fit(r.DisplayName(), nameWidth) + " " +
		style.Fit(r.Version, versionColumn) + " " +
		style.Fit(installed, versionColumn) + " " +
		style.Fit(r.Source, sourceColumn)

	if selected {
		return style.SelectedRowStyle.Render("▸ " + line)
	}
	if r.IsInstalled() {
		return style.RowStyle.Render("  " + style.InstalledStyle.Render(line))
	}
	return style.RowStyle.Render("  " + line)
}

// RenderStatusBanner 渲染最近一條狀態消息
func RenderStatusBanner(ui *state.UIState, width int) string {
	if !ui.HasStatus {
		return ""
	}
	m := ui.Status

	var text string
	switch m.Severity {
	case operation.SeverityError:
		text = style.ErrorStyle.Render("✗ " + m.Text)
	case operation.SeveritySuccess:
		text = style.SuccessStyle.Render("✓ " + m.Text)
	default:
		text = style.InfoStyle.Render(m.Text)
	}

	lines := []string{text}
	if m.Progress != nil {
		if pct := m.Progress.Percent(); pct >= 0 {
			lines = append(lines, style.RenderProgressBar(pct, 30))
		} else {
			lines = append(lines, ui.Spinner.View())
		}
	}

	return style.BannerStyle.Width(width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderHelp(ui *state.UIState) string {
	if ui.Focus == state.FocusList {
		return style.HelpStyle.Render("↑/↓ 選擇 • enter/i 安裝或卸載 • / 搜索 • ctrl+c 退出")
	}
	return style.HelpStyle.Render("輸入即搜索 • ↑/↓ 選擇 • enter 安裝或卸載 • tab 列表 • esc 清空 • ctrl+c 退出")
}
