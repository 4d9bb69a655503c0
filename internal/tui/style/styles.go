package style

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// 標題樣式
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// 列表行
	RowStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(Snow2)

	// 選中的行
	SelectedRowStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Foreground(Text).
				Background(BgMedium).
				Bold(true)

	// 來源標記
	SourceStyle = lipgloss.NewStyle().
			Foreground(Secondary)

	// 已安裝標記
	InstalledStyle = lipgloss.NewStyle().
			Foreground(Success)

	// 狀態橫幅
	BannerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary)

	// 幫助樣式
	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Info)

	ProgressBarStyle = lipgloss.NewStyle().
				Foreground(Primary)
)
