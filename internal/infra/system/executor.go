package system

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Yat-Muk/pkgdeck/internal/pkg/errors"
)

// Executor 命令執行器接口
type Executor interface {
	// Execute 執行命令
	Execute(ctx context.Context, name string, args ...string) (string, error)

	// ExecuteWithTimeout 帶超時的命令執行
	ExecuteWithTimeout(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error)

	// IsAllowed 檢查命令是否在白名單中
	IsAllowed(name string) bool

	// Exists 命令在白名單中且可在 PATH 中找到
	Exists(name string) bool
}

// DefaultAllowlist 包管理相關命令
var DefaultAllowlist = []string{
	"apt-cache",
	"apt-get",
	"dpkg-query",
	"brew",
	"sudo",
}

// SafeExecutor 安全的命令執行器
type SafeExecutor struct {
	allowlist map[string]bool
	env       []string
	logger    *zap.Logger
}

// NewExecutor 創建使用默認白名單的命令執行器
func NewExecutor(logger *zap.Logger) Executor {
	return NewExecutorWithAllowlist(logger, DefaultAllowlist...)
}

// NewExecutorWithAllowlist 創建使用指定白名單的命令執行器
func NewExecutorWithAllowlist(logger *zap.Logger, commands ...string) *SafeExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	allow := make(map[string]bool, len(commands))
	for _, c := range commands {
		allow[c] = true
	}
	return &SafeExecutor{
		allowlist: allow,
		// 包管理器不能向 TUI 彈出交互提示
		env: append(os.Environ(),
			"DEBIAN_FRONTEND=noninteractive",
			"HOMEBREW_NO_AUTO_UPDATE=1",
			"HOMEBREW_NO_ENV_HINTS=1",
		),
		logger: logger,
	}
}

// Execute 執行命令
func (e *SafeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	if !e.IsAllowed(name) {
		return "", errors.Wrap(errors.ErrCommandNotAllowed, "SYS001", fmt.Sprintf("%s is not allowed", name))
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = e.env

	e.logger.Debug("執行命令",
		zap.String("cmd", name),
		zap.Strings("args", args),
	)

	output, err := cmd.CombinedOutput()
	outputStr := strings.TrimSpace(string(output))

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			e.logger.Debug("命令被取消",
				zap.String("cmd", name),
				zap.Error(ctxErr),
			)
			return outputStr, ctxErr
		}
		e.logger.Error("命令執行失敗",
			zap.String("cmd", name),
			zap.Strings("args", args),
			zap.String("output", outputStr),
			zap.Error(err),
		)
		return outputStr, errors.Wrap(fmt.Errorf("%w: %v", errors.ErrCommandFailed, err), "SYS002", name)
	}

	e.logger.Debug("命令執行成功",
		zap.String("cmd", name),
		zap.Int("output_len", len(outputStr)),
	)

	return outputStr, nil
}

// ExecuteWithTimeout 帶超時的命令執行
func (e *SafeExecutor) ExecuteWithTimeout(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return e.Execute(ctx, name, args...)
}

// IsAllowed 檢查命令是否在白名單中
func (e *SafeExecutor) IsAllowed(name string) bool {
	return e.allowlist[name]
}

// Exists 檢查命令是否可執行
func (e *SafeExecutor) Exists(name string) bool {
	if !e.IsAllowed(name) {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
