package appctx

import (
	"go.uber.org/zap"

	"github.com/Yat-Muk/pkgdeck/internal/domain/catalog"
	"github.com/Yat-Muk/pkgdeck/internal/domain/config"
)

// App 進程範圍的顯式上下文，啟動時構造一次並向下傳遞
type App struct {
	Log     *zap.Logger
	Paths   *Paths
	Config  *config.Config
	Gateway catalog.Gateway
}

// Logger 返回帶組件名的日誌器
func (a *App) Logger(component string) *zap.Logger {
	if a == nil || a.Log == nil {
		return zap.NewNop()
	}
	return a.Log.Named(component)
}
