package state

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Yat-Muk/pkgdeck/internal/domain/catalog"
	"github.com/Yat-Muk/pkgdeck/internal/domain/operation"
	"github.com/Yat-Muk/pkgdeck/internal/pkg/inputvalidator"
	"github.com/Yat-Muk/pkgdeck/internal/tui/style"
)

// Focus 當前接收按鍵的區域
type Focus int

const (
	FocusSearch Focus = iota
	FocusList
)

// UIState UI 核心狀態
type UIState struct {
	TextInput textinput.Model
	Spinner   spinner.Model
	Width     int
	Height    int
	Focus     Focus

	Records []catalog.PackageRecord
	Cursor  int
	Loading bool

	// 最近一條狀態消息，HasStatus 為 false 時不顯示橫幅
	Status    operation.StatusMessage
	HasStatus bool
}

// NewUIState 創建 UI 狀態
func NewUIState() *UIState {
	ti := textinput.New()
	ti.Placeholder = "搜索軟件包，#標籤 過濾"
	ti.Prompt = ""
	ti.CharLimit = inputvalidator.MaxQueryLength
	ti.Width = 50
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(style.Secondary)

	return &UIState{
		TextInput: ti,
		Spinner:   s,
		Width:     80,
		Height:    24,
		Focus:     FocusSearch,
	}
}

// SetRecords 替換列表並把光標限制在範圍內
func (s *UIState) SetRecords(records []catalog.PackageRecord) {
	s.Records = records
	s.clampCursor()
}

// MoveCursor 移動光標
func (s *UIState) MoveCursor(delta int) {
	s.Cursor += delta
	s.clampCursor()
}

func (s *UIState) clampCursor() {
	if s.Cursor >= len(s.Records) {
		s.Cursor = len(s.Records) - 1
	}
	if s.Cursor < 0 {
		s.Cursor = 0
	}
}

// Selected 當前選中的記錄
func (s *UIState) Selected() (catalog.PackageRecord, bool) {
	if len(s.Records) == 0 {
		return catalog.PackageRecord{}, false
	}
	return s.Records[s.Cursor], true
}

// SetStatus 設置狀態橫幅
func (s *UIState) SetStatus(m operation.StatusMessage) {
	s.Status = m
	s.HasStatus = true
}

// SetFocus 切換焦點
func (s *UIState) SetFocus(f Focus) tea.Cmd {
	s.Focus = f
	if f == FocusSearch {
		return s.TextInput.Focus()
	}
	s.TextInput.Blur()
	return nil
}

// UpdateInput 更新輸入框
func (s *UIState) UpdateInput(m tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.TextInput, cmd = s.TextInput.Update(m)
	return cmd
}

// UpdateSize 更新尺寸
func (s *UIState) UpdateSize(w, h int) {
	s.Width = w
	s.Height = h
	if w > 20 {
		s.TextInput.Width = w - 20
	}
}

// ListHeight 列表可用的行數
func (s *UIState) ListHeight() int {
	// 標題、輸入框、橫幅與幫助行
	h := s.Height - 10
	if h < 3 {
		h = 3
	}
	return h
}
