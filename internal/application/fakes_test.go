package application

import (
	"context"
	"sync"

	"github.com/Yat-Muk/pkgdeck/internal/domain/catalog"
	"github.com/Yat-Muk/pkgdeck/internal/domain/operation"
)

// fakeCatalog 測試用目錄句柄
type fakeCatalog struct{}

func (fakeCatalog) Name() string      { return "fake" }
func (fakeCatalog) Sources() []string { return []string{"fake"} }

// fakeGateway 可編程的目錄網關
type fakeGateway struct {
	mu         sync.Mutex
	finds      []catalog.FindOptions
	compositeE error

	find      func(ctx context.Context, opts catalog.FindOptions) ([]catalog.PackageMatch, error)
	install   func(ctx context.Context, r catalog.PackageRecord, progress catalog.ProgressFunc) (catalog.InstallResult, error)
	uninstall func(ctx context.Context, r catalog.PackageRecord) (catalog.UninstallResult, error)
}

func (g *fakeGateway) CompositeCatalog(ctx context.Context) (catalog.Catalog, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.compositeE != nil {
		return nil, g.compositeE
	}
	return fakeCatalog{}, nil
}

func (g *fakeGateway) FindPackages(ctx context.Context, c catalog.Catalog, opts catalog.FindOptions) ([]catalog.PackageMatch, error) {
	g.mu.Lock()
	g.finds = append(g.finds, opts)
	fn := g.find
	g.mu.Unlock()

	if fn == nil {
		return nil, nil
	}
	return fn(ctx, opts)
}

func (g *fakeGateway) Install(ctx context.Context, r catalog.PackageRecord, opts catalog.InstallOptions, progress catalog.ProgressFunc) (catalog.InstallResult, error) {
	if g.install == nil {
		return catalog.InstallResult{}, nil
	}
	return g.install(ctx, r, progress)
}

func (g *fakeGateway) Uninstall(ctx context.Context, r catalog.PackageRecord, opts catalog.UninstallOptions) (catalog.UninstallResult, error) {
	if g.uninstall == nil {
		return catalog.UninstallResult{}, nil
	}
	return g.uninstall(ctx, r)
}

func (g *fakeGateway) findCalls() []catalog.FindOptions {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]catalog.FindOptions(nil), g.finds...)
}

// countRecorder 記錄列表數量通知
type countRecorder struct {
	mu     sync.Mutex
	counts []int
}

func (r *countRecorder) ItemCountChanged(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts = append(r.counts, count)
}

func (r *countRecorder) snapshot() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.counts...)
}

// sinkRecorder 記錄狀態消息
type sinkRecorder struct {
	mu   sync.Mutex
	msgs []operation.StatusMessage
}

func (s *sinkRecorder) Push(m operation.StatusMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, m)
}

func (s *sinkRecorder) snapshot() []operation.StatusMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]operation.StatusMessage(nil), s.msgs...)
}

func (s *sinkRecorder) states() []operation.State {
	var out []operation.State
	for _, m := range s.snapshot() {
		out = append(out, m.State)
	}
	return out
}

func matchesOf(ids ...string) []catalog.PackageMatch {
	out := make([]catalog.PackageMatch, 0, len(ids))
	for _, id := range ids {
		out = append(out, catalog.PackageMatch{Record: catalog.PackageRecord{ID: id, Name: id}})
	}
	return out
}
