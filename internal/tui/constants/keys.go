package constants

import "github.com/charmbracelet/bubbles/key"

// KeyMap 全局按鍵綁定
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Invoke      key.Binding
	InvokeList  key.Binding
	FocusList   key.Binding
	FocusSearch key.Binding
	ClearQuery  key.Binding
	Quit        key.Binding
}

// DefaultKeyMap 默認按鍵
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑", "上移"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓", "下移"),
	),
	Invoke: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "安裝/卸載"),
	),
	// 列表焦點下的額外快捷鍵，輸入框焦點下字母需要用於輸入
	InvokeList: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "安裝/卸載"),
	),
	FocusList: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "切換到列表"),
	),
	FocusSearch: key.NewBinding(
		key.WithKeys("/", "tab"),
		key.WithHelp("/", "搜索"),
	),
	ClearQuery: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "清空"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "退出"),
	),
}

// TagPrefix 查詢中以此開頭的詞作為標籤過濾
const TagPrefix = "#"
