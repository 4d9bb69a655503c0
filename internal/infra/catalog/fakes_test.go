package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	domainCatalog "github.com/Yat-Muk/pkgdeck/internal/domain/catalog"
	"github.com/Yat-Muk/pkgdeck/internal/pkg/errors"
)

type fakeResponse struct {
	out string
	err error
}

// fakeExecutor 按完整命令行返回預設輸出
type fakeExecutor struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	missing   map[string]bool
	calls     []string
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		responses: make(map[string]fakeResponse),
		missing:   make(map[string]bool),
	}
}

func (f *fakeExecutor) on(cmdline, out string, err error) {
	f.responses[cmdline] = fakeResponse{out: out, err: err}
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	f.calls = append(f.calls, cmdline)
	resp, ok := f.responses[cmdline]
	f.mu.Unlock()

	if !ok {
		return "", errors.Wrap(fmt.Errorf("%w: exit status 1", errors.ErrCommandFailed), "SYS002", name)
	}
	return resp.out, resp.err
}

func (f *fakeExecutor) ExecuteWithTimeout(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	return f.Execute(ctx, name, args...)
}

func (f *fakeExecutor) IsAllowed(name string) bool { return true }

func (f *fakeExecutor) Exists(name string) bool { return !f.missing[name] }

func (f *fakeExecutor) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func commandFailed() error {
	return errors.Wrap(fmt.Errorf("%w: exit status 100", errors.ErrCommandFailed), "SYS002", "sudo")
}

// fakeSource 可編程的包來源
type fakeSource struct {
	name      string
	available bool
	probes    atomic.Int32
	blockOn   chan struct{} // 非空時探測阻塞到關閉

	search    func(ctx context.Context, opts domainCatalog.FindOptions) ([]domainCatalog.PackageRecord, error)
	installed []string
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Available() bool {
	s.probes.Add(1)
	if s.blockOn != nil {
		<-s.blockOn
	}
	time.Sleep(5 * time.Millisecond)
	return s.available
}

func (s *fakeSource) Search(ctx context.Context, opts domainCatalog.FindOptions) ([]domainCatalog.PackageRecord, error) {
	if s.search == nil {
		return nil, nil
	}
	return s.search(ctx, opts)
}

func (s *fakeSource) Install(ctx context.Context, r domainCatalog.PackageRecord, opts domainCatalog.InstallOptions, progress domainCatalog.ProgressFunc) (domainCatalog.InstallResult, error) {
	s.installed = append(s.installed, r.ID)
	return domainCatalog.InstallResult{InstalledVersion: "1.0"}, nil
}

func (s *fakeSource) Uninstall(ctx context.Context, r domainCatalog.PackageRecord, opts domainCatalog.UninstallOptions) (domainCatalog.UninstallResult, error) {
	return domainCatalog.UninstallResult{}, nil
}

func recordsOf(source string, ids ...string) []domainCatalog.PackageRecord {
	out := make([]domainCatalog.PackageRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, domainCatalog.PackageRecord{ID: id, Name: id, Source: source})
	}
	return out
}

type phaseRecorder struct {
	mu     sync.Mutex
	events []domainCatalog.ProgressEvent
}

func (p *phaseRecorder) record(ev domainCatalog.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *phaseRecorder) phases() []domainCatalog.Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domainCatalog.Phase
	for _, ev := range p.events {
		if len(out) > 0 && out[len(out)-1] == ev.Phase {
			continue
		}
		out = append(out, ev.Phase)
	}
	return out
}
