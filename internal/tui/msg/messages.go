package msg

import (
	"github.com/Yat-Muk/pkgdeck/internal/domain/operation"
)

// StatusMsg 操作控制器推送的狀態消息
type StatusMsg struct {
	Status operation.StatusMessage
}

// ResultsChangedMsg 搜索結果數量變化，收到後重新拉取快照
type ResultsChangedMsg struct {
	Count int
}

// OperationStartedMsg 一次安裝/卸載已調度
type OperationStartedMsg struct {
	PackageID string
	Action    string
	Err       error
}
