package operation

// State 安裝/卸載操作的狀態
type State int

const (
	Idle State = iota
	Queued
	Downloading
	Installing
	PostInstall
	Finished
	Error
	Uninstalling
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Queued:
		return "queued"
	case Downloading:
		return "downloading"
	case Installing:
		return "installing"
	case PostInstall:
		return "post-install"
	case Finished:
		return "finished"
	case Error:
		return "error"
	case Uninstalling:
		return "uninstalling"
	default:
		return "unknown"
	}
}

// IsTerminal Finished 與 Error 之後不再有任何轉換
func (s State) IsTerminal() bool {
	return s == Finished || s == Error
}

// HasProgress 該狀態是否攜帶進度
func (s State) HasProgress() bool {
	switch s {
	case Downloading, Installing, PostInstall, Uninstalling:
		return true
	}
	return false
}

// installRank 安裝路徑上的順序，卸載狀態不在其中
var installRank = map[State]int{
	Idle:        0,
	Queued:      1,
	Downloading: 2,
	Installing:  3,
	PostInstall: 4,
	Finished:    5,
}

// CanTransition 判斷 from -> to 是否合法
// 安裝路徑只能前進（允許跳過階段），下載中可重複刷新進度；
// 卸載路徑為 Idle -> Uninstalling -> Finished；Error 可從任意非終止狀態到達
func CanTransition(from, to State) bool {
	if from.IsTerminal() {
		return false
	}
	if to == Error {
		return true
	}
	if from == to {
		return from == Downloading
	}

	switch {
	case to == Uninstalling:
		return from == Idle
	case from == Uninstalling:
		return to == Finished
	}

	fr, ok1 := installRank[from]
	tr, ok2 := installRank[to]
	return ok1 && ok2 && tr > fr
}
