package catalog

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	infraConfig "github.com/Yat-Muk/pkgdeck/internal/infra/config"
)

// InstalledEntry 索引來源安裝過的包
type InstalledEntry struct {
	Version     string    `yaml:"version"`
	Path        string    `yaml:"path"`
	InstalledAt time.Time `yaml:"installed_at"`
}

type stateFile struct {
	Packages map[string]InstalledEntry `yaml:"packages"`
}

// StateStore 記錄索引來源的安裝狀態，持久化到 state.yaml
type StateStore struct {
	path string
	mu   sync.Mutex
}

func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Snapshot 讀取全部安裝記錄
func (s *StateStore) Snapshot() (map[string]InstalledEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Put 寫入一條安裝記錄
func (s *StateStore) Put(id string, entry InstalledEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	entries[id] = entry
	return s.write(entries)
}

// Delete 刪除一條安裝記錄，返回記錄是否存在
func (s *StateStore) Delete(id string) (InstalledEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return InstalledEntry{}, false, err
	}
	entry, ok := entries[id]
	if !ok {
		return InstalledEntry{}, false, nil
	}
	delete(entries, id)
	return entry, true, s.write(entries)
}

func (s *StateStore) read() (map[string]InstalledEntry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]InstalledEntry), nil
	}
	if err != nil {
		return nil, fmt.Errorf("讀取安裝狀態失敗: %w", err)
	}

	var f stateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("解析安裝狀態失敗: %w", err)
	}
	if f.Packages == nil {
		f.Packages = make(map[string]InstalledEntry)
	}
	return f.Packages, nil
}

func (s *StateStore) write(entries map[string]InstalledEntry) error {
	data, err := yaml.Marshal(stateFile{Packages: entries})
	if err != nil {
		return fmt.Errorf("序列化安裝狀態失敗: %w", err)
	}
	return infraConfig.WriteAtomic(s.path, data, 0600)
}
