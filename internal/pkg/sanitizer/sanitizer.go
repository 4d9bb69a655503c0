package sanitizer

import (
	"net/url"
	"regexp"
	"strings"
)

// API Key 常見模式 (sk_..., ghp_...)
var apiKeyRegex = regexp.MustCompile(`(?i)(sk|pk|api|ghp|gho|token)_[a-zA-Z0-9_-]{16,}`)

// URL 隱藏地址中的用戶憑證與查詢參數值，用於日誌輸出
func URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return Sanitize(raw)
	}
	if u.User != nil {
		u.User = url.User("***")
	}
	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			q.Set(k, "***")
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// Sanitize 對文本中的令牌進行脫敏
func Sanitize(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	return apiKeyRegex.ReplaceAllStringFunc(s, APIKey)
}

// String 通用字符串脫敏 (保留首尾)
func String(s string, start, end int) string {
	if len(s) <= start+end {
		return "***"
	}
	return s[:start] + "***" + s[len(s)-end:]
}

// APIKey API Key 脫敏 (保留前綴)
func APIKey(s string) string {
	if len(s) < 8 {
		return "***"
	}
	return String(s, 4, 4)
}
