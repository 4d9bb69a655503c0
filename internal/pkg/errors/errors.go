package errors

import (
	"errors"
	"fmt"
)

// 預定義錯誤類型
var (
	// 配置相關
	ErrConfigNotFound = errors.New("configuration file not found")
	ErrConfigInvalid  = errors.New("configuration is invalid")

	// 目錄相關
	ErrCatalogUnavailable = errors.New("no package catalog is available")
	ErrSourceNotFound     = errors.New("package source not found")
	ErrPackageNotFound    = errors.New("package not found")

	// 操作相關
	ErrAlreadyInvoked   = errors.New("operation has already been started")
	ErrDownloadFailed   = errors.New("download failed")
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// 系統相關
	ErrCommandNotAllowed = errors.New("command is not allowed")
	ErrCommandFailed     = errors.New("command execution failed")
)

// Error 自定義錯誤類型
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 創建新錯誤
func New(code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap 包裝錯誤
func Wrap(err error, code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Code 返回錯誤鏈中第一個錯誤碼，沒有則返回空字符串
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Describe 返回面向用戶的錯誤描述（不含錯誤碼）
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, Describe(e.Err))
	}
	return e.Message
}
