package catalog

import (
	"context"
	"sort"
)

// ResultSet 以 ID 去重的軟件包集合，無序
// 零值不可寫，使用 NewResultSet 創建
type ResultSet struct {
	records map[string]PackageRecord
}

// NewResultSet 創建空集合
func NewResultSet() ResultSet {
	return ResultSet{records: make(map[string]PackageRecord)}
}

// Dedupe 將匹配項合併為按 ID 去重的集合，同 ID 保留先出現的記錄
func Dedupe(matches []PackageMatch) ResultSet {
	set, _ := DedupeContext(context.Background(), matches)
	return set
}

// DedupeContext 同 Dedupe，每處理一個匹配項後檢查 ctx，取消時返回空集合
func DedupeContext(ctx context.Context, matches []PackageMatch) (ResultSet, error) {
	set := ResultSet{records: make(map[string]PackageRecord, len(matches))}
	for _, m := range matches {
		set.Add(m.Record)
		if err := ctx.Err(); err != nil {
			return ResultSet{}, err
		}
	}
	return set, nil
}

// Add 加入記錄；ID 已存在時返回 false 並保持原記錄
func (s *ResultSet) Add(r PackageRecord) bool {
	if s.records == nil {
		s.records = make(map[string]PackageRecord)
	}
	if _, ok := s.records[r.ID]; ok {
		return false
	}
	s.records[r.ID] = r
	return true
}

// Len 記錄數
func (s ResultSet) Len() int {
	return len(s.records)
}

// Get 按 ID 查找
func (s ResultSet) Get(id string) (PackageRecord, bool) {
	r, ok := s.records[id]
	return r, ok
}

// Contains 是否包含該 ID
func (s ResultSet) Contains(id string) bool {
	_, ok := s.records[id]
	return ok
}

// Clone 深拷貝，用於對外提供快照
func (s ResultSet) Clone() ResultSet {
	out := ResultSet{records: make(map[string]PackageRecord, len(s.records))}
	for id, r := range s.records {
		r.Tags = append([]string(nil), r.Tags...)
		out.records[id] = r
	}
	return out
}

// Replace 覆蓋同 ID 的記錄，不存在時返回 false
func (s *ResultSet) Replace(r PackageRecord) bool {
	if _, ok := s.records[r.ID]; !ok {
		return false
	}
	s.records[r.ID] = r
	return true
}

// Records 返回按名稱（其次 ID）排序的副本，供列表渲染
func (s ResultSet) Records() []PackageRecord {
	out := make([]PackageRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayName() != out[j].DisplayName() {
			return out[i].DisplayName() < out[j].DisplayName()
		}
		return out[i].ID < out[j].ID
	})
	return out
}
