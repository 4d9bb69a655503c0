package catalog

import "strings"

// PackageRecord 目錄中的一個軟件包
// 身份只由 ID 決定，兩條 ID 相同的記錄可互換
type PackageRecord struct {
	ID               string   `yaml:"id"`
	Name             string   `yaml:"name"`
	Version          string   `yaml:"version,omitempty"`           // 目錄中可用的版本
	InstalledVersion string   `yaml:"installed_version,omitempty"` // 空表示未安裝
	Source           string   `yaml:"source,omitempty"`            // 提供該包的目錄名
	Tags             []string `yaml:"tags,omitempty"`
}

// IsInstalled 是否已安裝
func (r PackageRecord) IsInstalled() bool {
	return r.InstalledVersion != ""
}

// SameIdentity 判斷兩條記錄是否指向同一個包
func (r PackageRecord) SameIdentity(other PackageRecord) bool {
	return r.ID == other.ID
}

// DisplayName 優先使用名稱，缺省時回退到 ID
func (r PackageRecord) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// HasTag 大小寫不敏感地判斷標籤是否包含 value
func (r PackageRecord) HasTag(value string) bool {
	value = strings.ToLower(value)
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), value) {
			return true
		}
	}
	return false
}

// Query 一次搜索嘗試的輸入，創建後不可變
type Query struct {
	Text string
	Tag  string
}

// IsEmpty 文本與標籤都為空
func (q Query) IsEmpty() bool {
	return q.Text == "" && q.Tag == ""
}

// PackageMatch 目錄返回的一個匹配項
type PackageMatch struct {
	Record  PackageRecord
	Catalog string // 命中的目錄名
}
