package bridge

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Yat-Muk/pkgdeck/internal/application"
	"github.com/Yat-Muk/pkgdeck/internal/domain/operation"
	"github.com/Yat-Muk/pkgdeck/internal/tui/msg"
)

// Sender 可向 bubbletea 程序投遞消息，*tea.Program 滿足該接口
type Sender interface {
	Send(m tea.Msg)
}

// Program 後台協程與 TUI 之間的橋
// 消息先入隊，由單獨的協程按順序投遞，調用方永不阻塞；
// tea.Program.Send 會等待事件循環，事件循環內的調用直接投遞會自鎖
// 程序綁定前收到的消息直接丟棄
type Program struct {
	mu      sync.Mutex
	sender  Sender
	queue   []tea.Msg
	started bool
	closed  bool

	wake chan struct{}
	done chan struct{}
	log  *zap.Logger
}

func New(log *zap.Logger) *Program {
	if log == nil {
		log = zap.NewNop()
	}
	return &Program{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		log:  log.Named("bridge"),
	}
}

// Attach 綁定運行中的程序並啟動投遞協程
func (p *Program) Attach(s Sender) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sender = s
	if !p.started {
		p.started = true
		go p.pump()
	}
}

// Close 停止投遞，未投遞的消息丟棄
func (p *Program) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.queue = nil
	close(p.done)
}

func (p *Program) send(m tea.Msg) {
	p.mu.Lock()
	if p.sender == nil || p.closed {
		p.mu.Unlock()
		p.log.Debug("程序尚未綁定，丟棄消息", zap.String("type", typeName(m)))
		return
	}
	p.queue = append(p.queue, m)
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Program) pump() {
	for {
		select {
		case <-p.done:
			return
		case <-p.wake:
		}

		for {
			p.mu.Lock()
			if p.closed || len(p.queue) == 0 {
				p.mu.Unlock()
				break
			}
			batch := p.queue
			p.queue = nil
			s := p.sender
			p.mu.Unlock()

			for _, m := range batch {
				s.Send(m)
			}
		}
	}
}

// Sink 返回 operation.Sink 適配器
func (p *Program) Sink() operation.Sink {
	return operation.SinkFunc(func(m operation.StatusMessage) {
		p.send(msg.StatusMsg{Status: m})
	})
}

// Surface 返回 application.ListSurface 適配器
func (p *Program) Surface() application.ListSurface {
	return application.ListSurfaceFunc(func(count int) {
		p.send(msg.ResultsChangedMsg{Count: count})
	})
}

func typeName(m tea.Msg) string {
	switch m.(type) {
	case msg.StatusMsg:
		return "status"
	case msg.ResultsChangedMsg:
		return "results"
	default:
		return "other"
	}
}
