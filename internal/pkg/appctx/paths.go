package appctx

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv 覆蓋默認基礎目錄的環境變量
const HomeEnv = "PKGDECK_HOME"

// Paths 定義應用程序所有的關鍵路徑
type Paths struct {
	BaseDir     string
	DataDir     string
	LogDir      string
	PackagesDir string

	ConfigFile string
	StateFile  string
	IndexFile  string
}

// NewPaths 解析並創建目錄
// baseDir 為空時依次使用 PKGDECK_HOME 與 ~/.pkgdeck
func NewPaths(baseDir string) (*Paths, error) {
	if baseDir == "" {
		baseDir = os.Getenv(HomeEnv)
	}
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("無法獲取用戶主目錄: %w", err)
		}
		baseDir = filepath.Join(home, ".pkgdeck")
	}

	absPath, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("無法解析絕對路徑: %w", err)
	}

	dataDir := filepath.Join(absPath, "data")
	paths := &Paths{
		BaseDir:     absPath,
		DataDir:     dataDir,
		LogDir:      filepath.Join(absPath, "logs"),
		PackagesDir: filepath.Join(absPath, "packages"),
		ConfigFile:  filepath.Join(absPath, "config.yaml"),
		StateFile:   filepath.Join(dataDir, "state.yaml"),
		IndexFile:   filepath.Join(absPath, "index.yaml"),
	}

	dirs := []string{
		paths.BaseDir,
		paths.DataDir,
		paths.LogDir,
		paths.PackagesDir,
	}
	for _, dir := range dirs {
		perm := os.FileMode(0700)
		if dir == paths.LogDir {
			perm = 0755
		}
		if err := os.MkdirAll(dir, perm); err != nil {
			return nil, fmt.Errorf("無法創建目錄 %s: %w", dir, err)
		}
	}

	return paths, nil
}

// PackageDir 單個包的安裝目錄
func (p *Paths) PackageDir(id string) string {
	return filepath.Join(p.PackagesDir, sanitizeID(id))
}

// sanitizeID 將包標識轉為安全的目錄名
func sanitizeID(id string) string {
	out := make([]rune, 0, len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	s := string(out)
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}
