package handlers

import (
	"go.uber.org/zap"

	"github.com/Yat-Muk/pkgdeck/internal/application"
	"github.com/Yat-Muk/pkgdeck/internal/domain/catalog"
)

// SearchPort TUI 使用的搜索服務能力
type SearchPort interface {
	SubmitQuery(text, tag string)
	Results() catalog.ResultSet
	Loading() bool
}

// Invoker 一次性的包操作
type Invoker interface {
	Invoke() application.OperationResult
}

// OperationFactory 為選中的包創建操作控制器
type OperationFactory func(r catalog.PackageRecord) Invoker

// Config 處理器依賴
type Config struct {
	Log          *zap.Logger
	Search       SearchPort
	NewOperation OperationFactory
	DefaultTag   string
	InitialQuery string
}
