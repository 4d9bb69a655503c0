package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	domainCatalog "github.com/Yat-Muk/pkgdeck/internal/domain/catalog"
	"github.com/Yat-Muk/pkgdeck/internal/pkg/appctx"
	"github.com/Yat-Muk/pkgdeck/internal/pkg/errors"
	"github.com/Yat-Muk/pkgdeck/internal/pkg/inputvalidator"
	"github.com/Yat-Muk/pkgdeck/internal/pkg/sanitizer"
)

// IndexSourceName 本地索引來源名
const IndexSourceName = "index"

// 進度回調的最小字節間隔
const progressStep = 64 * 1024

// IndexEntry 索引清單中的一個包
type IndexEntry struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Version string   `yaml:"version"`
	Tags    []string `yaml:"tags,omitempty"`
	URL     string   `yaml:"url"`
	Size    uint64   `yaml:"size,omitempty"`
	SHA256  string   `yaml:"sha256,omitempty"`
}

type indexManifest struct {
	Packages []IndexEntry `yaml:"packages"`
}

// IndexSource 基於 YAML 清單的包來源，安裝即下載到 packages/<id>/
type IndexSource struct {
	manifest string
	paths    *appctx.Paths
	state    *StateStore
	client   *http.Client
	log      *zap.Logger

	removeAll func(string) error

	mu          sync.Mutex
	cached      []IndexEntry
	lastModTime time.Time
}

var _ Source = (*IndexSource)(nil)

// IndexOption 索引來源可選項
type IndexOption func(*IndexSource)

// WithHTTPClient 替換下載用的 HTTP 客戶端
func WithHTTPClient(c *http.Client) IndexOption {
	return func(s *IndexSource) {
		s.client = c
	}
}

func NewIndexSource(manifest string, paths *appctx.Paths, log *zap.Logger, opts ...IndexOption) *IndexSource {
	if log == nil {
		log = zap.NewNop()
	}
	s := &IndexSource{
		manifest: manifest,
		paths:    paths,
		state:    NewStateStore(paths.StateFile),
		client:   &http.Client{Timeout: 30 * time.Minute},
		log:      log.Named(IndexSourceName),

		removeAll: os.RemoveAll,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *IndexSource) Name() string { return IndexSourceName }

func (s *IndexSource) Available() bool {
	info, err := os.Stat(s.manifest)
	return err == nil && !info.IsDir()
}

// entries 讀取清單，文件未變更時使用緩存
func (s *IndexSource) entries() ([]IndexEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stat, err := os.Stat(s.manifest)
	if err != nil {
		return nil, fmt.Errorf("讀取索引清單失敗: %w", err)
	}
	if s.cached != nil && !stat.ModTime().After(s.lastModTime) {
		return s.cached, nil
	}

	data, err := os.ReadFile(s.manifest)
	if err != nil {
		return nil, fmt.Errorf("讀取索引清單失敗: %w", err)
	}

	var m indexManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "IDX001", "index manifest is malformed")
	}

	valid := m.Packages[:0]
	for _, e := range m.Packages {
		if e.ID == "" || e.URL == "" {
			s.log.Warn("忽略缺少 id 或 url 的索引條目", zap.String("id", e.ID), zap.String("name", e.Name))
			continue
		}
		if err := inputvalidator.ValidateDownloadURL(e.URL); err != nil {
			s.log.Warn("忽略下載地址無效的索引條目", zap.String("id", e.ID), zap.String("url", sanitizer.URL(e.URL)), zap.Error(err))
			continue
		}
		valid = append(valid, e)
	}

	s.cached = valid
	s.lastModTime = stat.ModTime()
	s.log.Debug("索引清單已加載", zap.String("path", s.manifest), zap.Int("packages", len(valid)))
	return valid, nil
}

func (s *IndexSource) lookup(id string) (IndexEntry, error) {
	entries, err := s.entries()
	if err != nil {
		return IndexEntry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return IndexEntry{}, errors.Wrap(errors.ErrPackageNotFound, "IDX002", fmt.Sprintf("%s is not in the index", id))
}

func (s *IndexSource) Search(ctx context.Context, opts domainCatalog.FindOptions) ([]domainCatalog.PackageRecord, error) {
	entries, err := s.entries()
	if err != nil {
		return nil, err
	}
	installed, err := s.state.Snapshot()
	if err != nil {
		return nil, err
	}

	limit := effectiveLimit(opts)
	var records []domainCatalog.PackageRecord
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r := domainCatalog.PackageRecord{
			ID:               e.ID,
			Name:             e.Name,
			Version:          e.Version,
			InstalledVersion: installed[e.ID].Version,
			Source:           IndexSourceName,
			Tags:             append([]string(nil), e.Tags...),
		}
		if !opts.Matches(r) {
			continue
		}
		records = append(records, r)
		if len(records) >= limit {
			break
		}
	}
	return records, nil
}

func (s *IndexSource) Install(ctx context.Context, r domainCatalog.PackageRecord, opts domainCatalog.InstallOptions, progress domainCatalog.ProgressFunc) (domainCatalog.InstallResult, error) {
	entry, err := s.lookup(r.ID)
	if err != nil {
		return domainCatalog.InstallResult{}, err
	}

	report(progress, domainCatalog.ProgressEvent{Phase: domainCatalog.PhaseQueued})

	tmpName, err := s.download(ctx, entry, progress)
	if err != nil {
		return domainCatalog.InstallResult{}, err
	}
	defer os.Remove(tmpName)

	report(progress, domainCatalog.ProgressEvent{Phase: domainCatalog.PhaseInstalling})

	dir := s.paths.PackageDir(entry.ID)
	if err := os.RemoveAll(dir); err != nil {
		return domainCatalog.InstallResult{}, fmt.Errorf("清理安裝目錄失敗: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return domainCatalog.InstallResult{}, fmt.Errorf("創建安裝目錄失敗: %w", err)
	}
	target := filepath.Join(dir, artifactName(entry))
	if err := os.Rename(tmpName, target); err != nil {
		return domainCatalog.InstallResult{}, fmt.Errorf("移動下載文件失敗: %w", err)
	}

	report(progress, domainCatalog.ProgressEvent{Phase: domainCatalog.PhasePostInstall})

	// 清單未寫版本時仍需一個非空值標記已安裝
	version := entry.Version
	if version == "" {
		version = "unknown"
	}
	if err := s.state.Put(entry.ID, InstalledEntry{
		Version:     version,
		Path:        dir,
		InstalledAt: time.Now().UTC(),
	}); err != nil {
		return domainCatalog.InstallResult{}, err
	}

	s.log.Info("索引包已安裝", zap.String("package", entry.ID), zap.String("version", version), zap.String("path", target))
	return domainCatalog.InstallResult{InstalledVersion: version}, nil
}

// download 下載到 packages 目錄下的臨時文件並校驗 sha256
func (s *IndexSource) download(ctx context.Context, entry IndexEntry, progress domainCatalog.ProgressFunc) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, entry.URL, nil)
	if err != nil {
		return "", errors.Wrap(err, "IDX003", "invalid download url")
	}

	s.log.Debug("開始下載", zap.String("package", entry.ID), zap.String("url", sanitizer.URL(entry.URL)))
	resp, err := s.client.Do(req)
	if err != nil {
		return "", errors.Wrap(fmt.Errorf("%w: %v", errors.ErrDownloadFailed, err), "IDX004", "download failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Wrap(errors.ErrDownloadFailed, "IDX004", fmt.Sprintf("server returned %s", resp.Status))
	}

	total := entry.Size
	if resp.ContentLength > 0 {
		total = uint64(resp.ContentLength)
	}

	tmp, err := os.CreateTemp(s.paths.PackagesDir, ".download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("創建臨時文件失敗: %w", err)
	}
	ok := false
	defer func() {
		tmp.Close()
		if !ok {
			os.Remove(tmp.Name())
		}
	}()

	hash := sha256.New()
	counter := &progressCounter{total: total, progress: progress}
	counter.emit()

	n, err := io.Copy(io.MultiWriter(tmp, hash, counter), resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", errors.Wrap(fmt.Errorf("%w: %v", errors.ErrDownloadFailed, err), "IDX004", "download interrupted")
	}
	if total > 0 && uint64(n) != total {
		return "", errors.Wrap(errors.ErrDownloadFailed, "IDX004", fmt.Sprintf("expected %d bytes, got %d", total, n))
	}
	counter.finish()

	if want := strings.ToLower(strings.TrimSpace(entry.SHA256)); want != "" {
		got := hex.EncodeToString(hash.Sum(nil))
		if got != want {
			return "", errors.Wrap(errors.ErrChecksumMismatch, "IDX005", fmt.Sprintf("sha256 of %s does not match", entry.ID))
		}
	}

	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("關閉臨時文件失敗: %w", err)
	}
	ok = true
	return tmp.Name(), nil
}

func (s *IndexSource) Uninstall(ctx context.Context, r domainCatalog.PackageRecord, opts domainCatalog.UninstallOptions) (domainCatalog.UninstallResult, error) {
	installed, err := s.state.Snapshot()
	if err != nil {
		return domainCatalog.UninstallResult{}, err
	}
	entry, found := installed[r.ID]
	if !found {
		return domainCatalog.UninstallResult{}, errors.Wrap(errors.ErrPackageNotFound, "IDX006", fmt.Sprintf("%s is not installed", r.ID))
	}

	// 狀態文件中的路徑必須落在 packages 目錄內
	dir := entry.Path
	if dir == "" || inputvalidator.ValidateWithinDir(s.paths.PackagesDir, dir) != nil {
		dir = s.paths.PackageDir(r.ID)
	}

	// 先刪文件再刪狀態，刪除失敗時包仍顯示為已安裝
	if err := s.removeAll(dir); err != nil {
		return domainCatalog.UninstallResult{}, errors.Wrap(err, "IDX007", fmt.Sprintf("could not remove %s", r.ID))
	}
	if _, _, err := s.state.Delete(r.ID); err != nil {
		return domainCatalog.UninstallResult{}, err
	}

	s.log.Info("索引包已卸載", zap.String("package", r.ID), zap.String("path", dir))
	return domainCatalog.UninstallResult{}, nil
}

// artifactName 取下載地址的最後一段作為文件名
func artifactName(e IndexEntry) string {
	if u, err := url.Parse(e.URL); err == nil {
		if base := path.Base(u.Path); inputvalidator.ValidateFilename(base) == nil {
			return base
		}
	}
	return "package"
}

// progressCounter 按固定字節間隔上報下載進度
type progressCounter struct {
	total    uint64
	written  uint64
	reported uint64
	progress domainCatalog.ProgressFunc
}

func (c *progressCounter) Write(p []byte) (int, error) {
	c.written += uint64(len(p))
	if c.written-c.reported >= progressStep {
		c.emit()
	}
	return len(p), nil
}

func (c *progressCounter) emit() {
	c.reported = c.written
	required := c.total
	if required < c.written {
		required = c.written
	}
	report(c.progress, domainCatalog.ProgressEvent{
		Phase:           domainCatalog.PhaseDownloading,
		BytesDownloaded: c.written,
		BytesRequired:   required,
	})
}

func (c *progressCounter) finish() {
	if c.written != c.reported || c.written == 0 {
		c.emit()
	}
}
