package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Yat-Muk/pkgdeck/internal/domain/catalog"
	"github.com/Yat-Muk/pkgdeck/internal/domain/operation"
	"github.com/Yat-Muk/pkgdeck/internal/pkg/errors"
)

// Action 控制器要執行的動作
type Action int

const (
	ActionInstall Action = iota
	ActionUninstall
)

func (a Action) String() string {
	if a == ActionUninstall {
		return "uninstall"
	}
	return "install"
}

// OperationResult Invoke 的返回值
// KeepOpen 提示調用方保持界面打開以觀察進度
type OperationResult struct {
	Action   Action
	KeepOpen bool
	Err      error
}

// ControllerOption 控制器可選項
type ControllerOption func(*OperationController)

// WithScope 設置安裝範圍
func WithScope(scope catalog.Scope) ControllerOption {
	return func(c *OperationController) {
		c.scope = scope
	}
}

// WithOnFinished 操作成功後的回調，installed 表示包當前是否已安裝
func WithOnFinished(fn func(r catalog.PackageRecord, installed bool)) ControllerOption {
	return func(c *OperationController) {
		c.onFinished = fn
	}
}

// OperationController 驅動一次安裝或卸載
// 每個實例只對應一次用戶動作，不可重用，啟動後不可取消
type OperationController struct {
	id      string
	gateway catalog.Gateway
	record  catalog.PackageRecord
	action  Action
	scope   catalog.Scope
	sink    operation.Sink
	log     *zap.Logger

	onFinished func(catalog.PackageRecord, bool)

	mu      sync.Mutex
	state   operation.State
	invoked bool
	done    chan struct{}
}

// NewOperationController 創建控制器
// 安裝還是卸載在構造時根據包當前是否已安裝決定，Invoke 時不再重新檢查
func NewOperationController(
	gateway catalog.Gateway,
	record catalog.PackageRecord,
	sink operation.Sink,
	log *zap.Logger,
	opts ...ControllerOption,
) *OperationController {
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = operation.SinkFunc(func(operation.StatusMessage) {})
	}

	action := ActionInstall
	if record.IsInstalled() {
		action = ActionUninstall
	}

	c := &OperationController{
		id:      uuid.NewString(),
		gateway: gateway,
		record:  record,
		action:  action,
		scope:   catalog.ScopeAny,
		sink:    sink,
		state:   operation.Idle,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = log.Named("operation").With(
		zap.String("op_id", c.id),
		zap.String("package", record.ID),
		zap.String("action", action.String()),
	)

	return c
}

// Invoke 調度後台操作並立即返回
func (c *OperationController) Invoke() OperationResult {
	c.mu.Lock()
	if c.invoked {
		c.mu.Unlock()
		return OperationResult{Action: c.action, KeepOpen: true, Err: errors.ErrAlreadyInvoked}
	}
	c.invoked = true
	c.mu.Unlock()

	c.log.Info("開始執行包操作", zap.String("scope", c.scope.String()))
	go c.run()

	return OperationResult{Action: c.action, KeepOpen: true}
}

func (c *OperationController) run() {
	defer close(c.done)
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("包操作崩潰", zap.Any("panic", r))
			c.fail(fmt.Errorf("unexpected failure: %v", r))
		}
	}()

	ctx := context.Background()

	switch c.action {
	case ActionUninstall:
		c.transition(operation.Uninstalling, nil)
		if _, err := c.gateway.Uninstall(ctx, c.record, catalog.UninstallOptions{Scope: c.scope}); err != nil {
			c.fail(err)
			return
		}
		c.finish("")

	default:
		res, err := c.gateway.Install(ctx, c.record, catalog.InstallOptions{Scope: c.scope}, c.onProgress)
		if err != nil {
			c.fail(err)
			return
		}
		version := res.InstalledVersion
		if version == "" {
			version = c.record.Version
		}
		if version == "" {
			version = "unknown"
		}
		c.finish(version)
	}
}

// onProgress 將網關進度事件翻譯成狀態轉換
func (c *OperationController) onProgress(ev catalog.ProgressEvent) {
	switch ev.Phase {
	case catalog.PhaseQueued:
		c.transition(operation.Queued, nil)
	case catalog.PhaseDownloading:
		c.transition(operation.Downloading, &operation.ProgressSnapshot{
			BytesDownloaded: ev.BytesDownloaded,
			BytesRequired:   ev.BytesRequired,
		})
	case catalog.PhaseInstalling:
		c.transition(operation.Installing, &operation.ProgressSnapshot{Indeterminate: true})
	case catalog.PhasePostInstall:
		c.transition(operation.PostInstall, &operation.ProgressSnapshot{Indeterminate: true})
	default:
		c.log.Debug("忽略未知進度階段", zap.Int("phase", int(ev.Phase)))
	}
}

// transition 在持鎖狀態下完成轉換並同步推送狀態消息
// 非法轉換（例如回退）直接丟棄
func (c *OperationController) transition(to operation.State, progress *operation.ProgressSnapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	from := c.state
	if !operation.CanTransition(from, to) {
		c.log.Debug("忽略非法狀態轉換", zap.Stringer("from", from), zap.Stringer("to", to))
		return false
	}
	c.state = to

	msg := c.message(to, progress)
	if from != to {
		c.log.Debug("狀態轉換", zap.Stringer("from", from), zap.Stringer("to", to))
	}
	c.sink.Push(msg)
	return true
}

func (c *OperationController) message(to operation.State, progress *operation.ProgressSnapshot) operation.StatusMessage {
	name := c.record.DisplayName()
	msg := operation.StatusMessage{Severity: operation.SeverityInfo, State: to}

	switch to {
	case operation.Queued:
		msg.Text = fmt.Sprintf("Queued %s for install", name)
	case operation.Downloading:
		msg.Text = operation.DownloadText(progress.BytesDownloaded, progress.BytesRequired)
		msg.Progress = progress
	case operation.Installing:
		msg.Text = fmt.Sprintf("Installing %s", name)
		msg.Progress = &operation.ProgressSnapshot{Indeterminate: true}
	case operation.PostInstall:
		msg.Text = fmt.Sprintf("Finishing install for %s", name)
		msg.Progress = &operation.ProgressSnapshot{Indeterminate: true}
	case operation.Uninstalling:
		msg.Text = fmt.Sprintf("Uninstalling %s", name)
		msg.Progress = &operation.ProgressSnapshot{Indeterminate: true}
	case operation.Finished:
		msg.Severity = operation.SeveritySuccess
		if c.action == ActionUninstall {
			msg.Text = fmt.Sprintf("Uninstalled %s", name)
		} else {
			msg.Text = fmt.Sprintf("Installed %s", name)
		}
	}
	return msg
}

func (c *OperationController) finish(version string) {
	if !c.transition(operation.Finished, nil) {
		return
	}
	c.log.Info("包操作完成", zap.String("installed_version", version))

	if c.onFinished != nil {
		r := c.record
		r.InstalledVersion = version
		c.onFinished(r, version != "")
	}
}

// fail 轉入 Error；消息為失敗描述
func (c *OperationController) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !operation.CanTransition(c.state, operation.Error) {
		return
	}
	c.log.Error("包操作失敗", zap.Stringer("state", c.state), zap.Error(err))
	c.state = operation.Error
	c.sink.Push(operation.StatusMessage{
		Text:     errors.Describe(err),
		Severity: operation.SeverityError,
		State:    operation.Error,
	})
}

// ID 操作標識，用於日誌關聯
func (c *OperationController) ID() string {
	return c.id
}

// Action 構造時決定的動作
func (c *OperationController) Action() Action {
	return c.action
}

// State 當前狀態
func (c *OperationController) State() operation.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done 後台任務結束時關閉
func (c *OperationController) Done() <-chan struct{} {
	return c.done
}
