package inputvalidator

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLength(t *testing.T) {
	assert.NoError(t, ValidateLength("七個字符的輸入框", 8, "query"))
	err := ValidateLength("abcdef", 5, "query")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, "query", ve.Field)
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"7z2301-x64.tar.xz", false},
		{"g++_13.2.deb", false},
		{"", true},
		{".", true},
		{"..", true},
		{"a/b", true},
		{`a\b`, true},
		{"空格 名稱", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateWithinDir(t *testing.T) {
	base := filepath.Join("/var", "pkgdeck", "packages")

	assert.NoError(t, ValidateWithinDir(base, filepath.Join(base, "git")))
	assert.NoError(t, ValidateWithinDir(base, filepath.Join(base, "a", "b")))
	assert.Error(t, ValidateWithinDir(base, base))
	assert.Error(t, ValidateWithinDir(base, filepath.Join(base, "..")))
	assert.Error(t, ValidateWithinDir(base, "/etc"))
	assert.Error(t, ValidateWithinDir(base, filepath.Join(base, "..", "packages-evil")))
}

func TestValidateDownloadURL(t *testing.T) {
	assert.NoError(t, ValidateDownloadURL("https://example.com/rg.tar.gz"))
	assert.NoError(t, ValidateDownloadURL("http://127.0.0.1:8080/a"))
	assert.Error(t, ValidateDownloadURL("file:///etc/passwd"))
	assert.Error(t, ValidateDownloadURL("https:///nohost"))
	assert.Error(t, ValidateDownloadURL("::"))
}

func TestTruncateAndSanitize(t *testing.T) {
	assert.Equal(t, "中文", TruncateInput("中文輸入", 2))
	assert.Equal(t, "short", TruncateInput("short", 10))
	assert.Equal(t, "ab", SanitizeInput("a\x00\tb\x7f"))
}
