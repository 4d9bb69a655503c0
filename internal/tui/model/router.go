package model

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Yat-Muk/pkgdeck/internal/domain/operation"
	"github.com/Yat-Muk/pkgdeck/internal/pkg/errors"
	"github.com/Yat-Muk/pkgdeck/internal/tui/handlers"
	"github.com/Yat-Muk/pkgdeck/internal/tui/msg"
	"github.com/Yat-Muk/pkgdeck/internal/tui/state"
	"github.com/Yat-Muk/pkgdeck/internal/tui/view"
)

// Router 事件路由器
type Router struct {
	ui         *state.UIState
	keyHandler *handlers.KeyHandler
	cmdBuilder *handlers.CommandBuilder
	log        *zap.Logger
	version    string

	initialQuery string
	// 同一時間只保留一條 spinner tick 鏈
	ticking bool
}

// NewRouter 創建路由器
func NewRouter(cfg *handlers.Config, version string) *Router {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	cmdBuilder := handlers.NewCommandBuilder(cfg)
	keyHandler := handlers.NewKeyHandler(cmdBuilder)

	return &Router{
		ui:           state.NewUIState(),
		keyHandler:   keyHandler,
		cmdBuilder:   cmdBuilder,
		log:          log.Named("router"),
		version:      version,
		initialQuery: cfg.InitialQuery,
	}
}

// InitModel 用於 Model.Init 調用
func (r *Router) InitModel() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}

	if r.initialQuery != "" {
		r.ui.TextInput.SetValue(r.initialQuery)
		r.ui.TextInput.CursorEnd()
		r.ui.Loading = r.cmdBuilder.Submit(r.initialQuery)
	} else {
		// 啟動時的標籤瀏覽可能在程序掛接前就已提交
		r.ui.SetRecords(r.cmdBuilder.Results())
		r.ui.Loading = r.cmdBuilder.Loading()
	}

	cmds = append(cmds, r.startTicking())
	return tea.Batch(cmds...)
}

// Update 適配 bubbletea 的 Update 簽名
func (r *Router) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	return nil, r.routeMessage(message)
}

// View 適配 bubbletea 的 View 簽名
func (r *Router) View() string {
	return view.RenderMainView(r.ui, r.version)
}

// UI 當前 UI 狀態
func (r *Router) UI() *state.UIState {
	return r.ui
}

func (r *Router) routeMessage(message tea.Msg) tea.Cmd {
	switch m := message.(type) {
	case tea.WindowSizeMsg:
		r.ui.UpdateSize(m.Width, m.Height)
		return nil

	case tea.KeyMsg:
		cmd, submitted := r.keyHandler.Handle(m, r.ui)
		if submitted {
			return tea.Batch(cmd, r.startTicking())
		}
		return cmd

	case msg.ResultsChangedMsg:
		r.refreshRecords()
		return nil

	case msg.StatusMsg:
		r.ui.SetStatus(m.Status)
		return r.startTicking()

	case msg.OperationStartedMsg:
		if m.Err != nil {
			r.log.Warn("包操作未能啟動", zap.String("package", m.PackageID), zap.Error(m.Err))
			r.ui.SetStatus(operation.StatusMessage{
				Text:     errors.Describe(m.Err),
				Severity: operation.SeverityError,
				State:    operation.Error,
			})
		}
		return nil

	case spinner.TickMsg:
		return r.onTick(m)
	}

	// 其他消息交給輸入框，例如光標閃爍
	if r.ui.Focus == state.FocusSearch {
		return r.ui.UpdateInput(message)
	}
	return nil
}

// refreshRecords 從搜索服務拉取最新快照
func (r *Router) refreshRecords() {
	r.ui.SetRecords(r.cmdBuilder.Results())
	r.ui.Loading = r.cmdBuilder.Loading()
}

func (r *Router) onTick(m spinner.TickMsg) tea.Cmd {
	wasLoading := r.ui.Loading
	r.ui.Loading = r.cmdBuilder.Loading()

	// 搜索失敗不會通知列表，結束時補拉一次快照
	if wasLoading && !r.ui.Loading {
		r.ui.SetRecords(r.cmdBuilder.Results())
	}

	if !r.needsSpinner() {
		r.ticking = false
		return nil
	}
	var cmd tea.Cmd
	r.ui.Spinner, cmd = r.ui.Spinner.Update(m)
	return cmd
}

func (r *Router) needsSpinner() bool {
	if r.ui.Loading {
		return true
	}
	if !r.ui.HasStatus {
		return false
	}
	p := r.ui.Status.Progress
	return p != nil && p.Indeterminate
}

func (r *Router) startTicking() tea.Cmd {
	if r.ticking || !r.needsSpinner() {
		return nil
	}
	r.ticking = true
	return r.ui.Spinner.Tick
}
