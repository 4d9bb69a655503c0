package catalog

import "context"

// Catalog 合併目錄的句柄，由 Gateway 創建
type Catalog interface {
	// Name 目錄名
	Name() string
	// Sources 參與合併的子目錄
	Sources() []string
}

// Scope 安裝範圍
type Scope int

const (
	ScopeAny Scope = iota
	ScopeUser
	ScopeMachine
)

func (s Scope) String() string {
	switch s {
	case ScopeUser:
		return "user"
	case ScopeMachine:
		return "machine"
	default:
		return "any"
	}
}

// InstallOptions 安裝選項
type InstallOptions struct {
	Scope Scope
}

// UninstallOptions 卸載選項
type UninstallOptions struct {
	Scope Scope
}

// InstallResult 安裝結果
type InstallResult struct {
	InstalledVersion string
	RebootRequired   bool
}

// UninstallResult 卸載結果
type UninstallResult struct {
	RebootRequired bool
}

// Phase 安裝進度階段
type Phase int

const (
	PhaseQueued Phase = iota
	PhaseDownloading
	PhaseInstalling
	PhasePostInstall
)

func (p Phase) String() string {
	switch p {
	case PhaseQueued:
		return "queued"
	case PhaseDownloading:
		return "downloading"
	case PhaseInstalling:
		return "installing"
	case PhasePostInstall:
		return "post-install"
	default:
		return "unknown"
	}
}

// ProgressEvent 安裝過程中的進度事件
// 只有 PhaseDownloading 攜帶字節數
type ProgressEvent struct {
	Phase           Phase
	BytesDownloaded uint64
	BytesRequired   uint64
}

// ProgressFunc 進度回調
type ProgressFunc func(ProgressEvent)

// Gateway 目錄網關：連接、搜索、安裝、卸載
// 所有阻塞方法都遵循 ctx 取消（盡力而為）
type Gateway interface {
	CompositeCatalog(ctx context.Context) (Catalog, error)
	FindPackages(ctx context.Context, c Catalog, opts FindOptions) ([]PackageMatch, error)
	Install(ctx context.Context, r PackageRecord, opts InstallOptions, progress ProgressFunc) (InstallResult, error)
	Uninstall(ctx context.Context, r PackageRecord, opts UninstallOptions) (UninstallResult, error)
}
