package catalog

import "strings"

// DefaultLimit 單次搜索返回的最大結果數
const DefaultLimit = 25

// MatchField 匹配字段
type MatchField int

const (
	// FieldCatalogDefault 由目錄決定的默認字段（通常是 ID 與名稱）
	FieldCatalogDefault MatchField = iota
	FieldTag
)

func (f MatchField) String() string {
	switch f {
	case FieldCatalogDefault:
		return "default"
	case FieldTag:
		return "tag"
	default:
		return "unknown"
	}
}

// MatchMode 匹配方式
type MatchMode int

const (
	// ModeCatalogDefault 由目錄自行解釋
	ModeCatalogDefault MatchMode = iota
	ModeContainsCaseInsensitive
)

// MatchFilter 查詢目錄用的謂詞
type MatchFilter struct {
	Field MatchField
	Mode  MatchMode
	Value string
}

// FindOptions 一次目錄查詢的全部條件
type FindOptions struct {
	Filters []MatchFilter
	Limit   uint
}

// NewFindOptions 根據查詢構建過濾條件
// 文本總是作為默認字段過濾；標籤非空時追加大小寫不敏感的包含過濾
func NewFindOptions(q Query, limit uint) FindOptions {
	if limit == 0 {
		limit = DefaultLimit
	}

	opts := FindOptions{
		Filters: []MatchFilter{{
			Field: FieldCatalogDefault,
			Mode:  ModeCatalogDefault,
			Value: q.Text,
		}},
		Limit: limit,
	}

	if q.Tag != "" {
		opts.Filters = append(opts.Filters, MatchFilter{
			Field: FieldTag,
			Mode:  ModeContainsCaseInsensitive,
			Value: q.Tag,
		})
	}

	return opts
}

// Text 返回默認字段的過濾文本
func (o FindOptions) Text() string {
	for _, f := range o.Filters {
		if f.Field == FieldCatalogDefault {
			return f.Value
		}
	}
	return ""
}

// Tag 返回標籤過濾值，沒有則為空
func (o FindOptions) Tag() string {
	for _, f := range o.Filters {
		if f.Field == FieldTag {
			return f.Value
		}
	}
	return ""
}

// Matches 供本地目錄使用的通用匹配邏輯
func (o FindOptions) Matches(r PackageRecord) bool {
	for _, f := range o.Filters {
		switch f.Field {
		case FieldCatalogDefault:
			if f.Value == "" {
				continue
			}
			v := strings.ToLower(f.Value)
			if !strings.Contains(strings.ToLower(r.ID), v) && !strings.Contains(strings.ToLower(r.Name), v) {
				return false
			}
		case FieldTag:
			if !r.HasTag(f.Value) {
				return false
			}
		}
	}
	return true
}
