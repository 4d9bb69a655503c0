package handlers

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Yat-Muk/pkgdeck/internal/domain/catalog"
	"github.com/Yat-Muk/pkgdeck/internal/pkg/inputvalidator"
	"github.com/Yat-Muk/pkgdeck/internal/tui/constants"
	"github.com/Yat-Muk/pkgdeck/internal/tui/msg"
)

// CommandBuilder 把用戶動作轉成對應用層的調用
type CommandBuilder struct {
	log          *zap.Logger
	search       SearchPort
	newOperation OperationFactory
	defaultTag   string
}

func NewCommandBuilder(cfg *Config) *CommandBuilder {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &CommandBuilder{
		log:          log.Named("tui"),
		search:       cfg.Search,
		newOperation: cfg.NewOperation,
		defaultTag:   cfg.DefaultTag,
	}
}

// Submit 解析輸入並提交查詢，返回提交後的 loading 狀態
func (b *CommandBuilder) Submit(input string) bool {
	if b.search == nil {
		return false
	}
	text, tag := ParseQuery(input, b.defaultTag)
	b.search.SubmitQuery(text, tag)
	return b.search.Loading()
}

// Results 當前結果快照
func (b *CommandBuilder) Results() []catalog.PackageRecord {
	if b.search == nil {
		return nil
	}
	set := b.search.Results()
	return set.Records()
}

// Loading 是否有搜索在進行
func (b *CommandBuilder) Loading() bool {
	return b.search != nil && b.search.Loading()
}

// InvokeCmd 為選中的包調度一次安裝或卸載
func (b *CommandBuilder) InvokeCmd(r catalog.PackageRecord) tea.Cmd {
	if b.newOperation == nil {
		return nil
	}
	return func() tea.Msg {
		op := b.newOperation(r)
		res := op.Invoke()
		b.log.Debug("包操作已調度", zap.String("package", r.ID), zap.Stringer("action", res.Action))
		return msg.OperationStartedMsg{
			PackageID: r.ID,
			Action:    res.Action.String(),
			Err:       res.Err,
		}
	}
}

// ParseQuery 把輸入拆成文本與標籤
// 以 # 開頭的詞作為標籤（多個時取最後一個），沒有時使用默認標籤
func ParseQuery(input, defaultTag string) (text, tag string) {
	tag = defaultTag
	input = inputvalidator.TruncateInput(inputvalidator.SanitizeInput(input), inputvalidator.MaxQueryLength)
	words := strings.Fields(input)
	kept := words[:0]
	for _, w := range words {
		if t, ok := strings.CutPrefix(w, constants.TagPrefix); ok {
			if t != "" {
				tag = t
			}
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " "), tag
}
