package operation

// Severity 狀態消息級別
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// ProgressSnapshot 進度快照
type ProgressSnapshot struct {
	BytesDownloaded uint64
	BytesRequired   uint64
	Indeterminate   bool
}

// Percent 返回 0-100 的百分比；不確定進度或總量未知時返回 -1
func (p ProgressSnapshot) Percent() float64 {
	if p.Indeterminate || p.BytesRequired == 0 {
		return -1
	}
	if p.BytesDownloaded >= p.BytesRequired {
		return 100
	}
	return float64(p.BytesDownloaded) * 100 / float64(p.BytesRequired)
}

// StatusMessage 操作狀態的對外投影，每次轉換都會推送一次
type StatusMessage struct {
	Text     string
	Severity Severity
	Progress *ProgressSnapshot // nil 表示沒有進度
	State    State
}

// Sink 接收狀態消息，推送即忘，不做確認與背壓
type Sink interface {
	Push(StatusMessage)
}

// SinkFunc 函數適配器
type SinkFunc func(StatusMessage)

func (f SinkFunc) Push(m StatusMessage) { f(m) }
