package inputvalidator

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// 輸入長度限制常量
const (
	MaxQueryLength    = 100 // 搜索框最大長度
	MaxFilenameLength = 255 // 下載文件名最大長度
	MaxURLLength      = 2048
)

var validFilename = regexp.MustCompile(`^[a-zA-Z0-9._+-]+$`)

// ValidationError 驗證錯誤
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateLength 驗證字符串長度（按字符計）
func ValidateLength(input string, maxLen int, fieldName string) error {
	if n := utf8.RuneCountInString(input); n > maxLen {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("長度超過限制（最大 %d 字符，當前 %d 字符）", maxLen, n),
		}
	}
	return nil
}

// ValidateFilename 驗證文件名安全性 (防止路徑遍歷)
func ValidateFilename(name string) error {
	if name == "" {
		return &ValidationError{Field: "filename", Message: "文件名不能為空"}
	}
	if len(name) > MaxFilenameLength {
		return &ValidationError{Field: "filename", Message: "文件名過長"}
	}
	if name == "." || name == ".." {
		return &ValidationError{Field: "filename", Message: "非法文件名"}
	}
	if !validFilename.MatchString(name) {
		return &ValidationError{Field: "filename", Message: "文件名包含非法字符"}
	}
	return nil
}

// ValidateWithinDir 確保 target 位於 dir 之內且不是 dir 本身
func ValidateWithinDir(dir, target string) error {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(target))
	if err != nil {
		return &ValidationError{Field: "path", Message: err.Error()}
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return &ValidationError{Field: "path", Message: "檢測到路徑遍歷嘗試"}
	}
	return nil
}

// ValidateDownloadURL 只接受帶主機名的 http/https 地址
func ValidateDownloadURL(raw string) error {
	if len(raw) > MaxURLLength {
		return &ValidationError{Field: "url", Message: "地址過長"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Field: "url", Message: "地址格式無效"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: "url", Message: fmt.Sprintf("不支持的協議 %q", u.Scheme)}
	}
	if u.Host == "" {
		return &ValidationError{Field: "url", Message: "缺少主機名"}
	}
	return nil
}

// TruncateInput 按字符截斷過長的輸入
func TruncateInput(input string, maxLen int) string {
	if utf8.RuneCountInString(input) <= maxLen {
		return input
	}
	return string([]rune(input)[:maxLen])
}

// SanitizeInput 清理輸入（移除控制字符）
func SanitizeInput(input string) string {
	var result strings.Builder
	for _, r := range input {
		if r >= 32 && r != 127 {
			result.WriteRune(r)
		}
	}
	return result.String()
}
