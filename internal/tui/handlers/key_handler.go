package handlers

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Yat-Muk/pkgdeck/internal/tui/constants"
	"github.com/Yat-Muk/pkgdeck/internal/tui/state"
)

// KeyHandler 處理全局按鍵
type KeyHandler struct {
	keys       constants.KeyMap
	cmdBuilder *CommandBuilder
}

func NewKeyHandler(cmdBuilder *CommandBuilder) *KeyHandler {
	return &KeyHandler{
		keys:       constants.DefaultKeyMap,
		cmdBuilder: cmdBuilder,
	}
}

// Handle 處理按鍵，返回的 bool 表示是否啟動了新的搜索
func (h *KeyHandler) Handle(m tea.KeyMsg, ui *state.UIState) (tea.Cmd, bool) {
	if key.Matches(m, h.keys.Quit) {
		return tea.Quit, false
	}

	switch {
	case key.Matches(m, h.keys.Up):
		ui.MoveCursor(-1)
		return nil, false
	case key.Matches(m, h.keys.Down):
		ui.MoveCursor(1)
		return nil, false
	case key.Matches(m, h.keys.Invoke):
		return h.invokeSelected(ui), false
	}

	if ui.Focus == state.FocusList {
		return h.handleList(m, ui)
	}
	return h.handleSearch(m, ui)
}

func (h *KeyHandler) handleList(m tea.KeyMsg, ui *state.UIState) (tea.Cmd, bool) {
	switch {
	case key.Matches(m, h.keys.InvokeList):
		return h.invokeSelected(ui), false
	case key.Matches(m, h.keys.FocusSearch), key.Matches(m, h.keys.ClearQuery):
		return ui.SetFocus(state.FocusSearch), false
	}
	return nil, false
}

func (h *KeyHandler) handleSearch(m tea.KeyMsg, ui *state.UIState) (tea.Cmd, bool) {
	switch {
	case key.Matches(m, h.keys.FocusList):
		return ui.SetFocus(state.FocusList), false
	case key.Matches(m, h.keys.ClearQuery):
		if ui.TextInput.Value() == "" {
			return nil, false
		}
		ui.TextInput.Reset()
		ui.Loading = h.cmdBuilder.Submit("")
		return nil, true
	}

	before := ui.TextInput.Value()
	cmd := ui.UpdateInput(m)
	after := ui.TextInput.Value()
	if after == before {
		return cmd, false
	}

	// 每次按鍵都提交，舊的搜索由服務取消
	ui.Loading = h.cmdBuilder.Submit(after)
	return cmd, true
}

func (h *KeyHandler) invokeSelected(ui *state.UIState) tea.Cmd {
	r, ok := ui.Selected()
	if !ok {
		return nil
	}
	return h.cmdBuilder.InvokeCmd(r)
}
