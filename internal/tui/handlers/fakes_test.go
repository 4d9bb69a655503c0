package handlers

import (
	"sync"

	"github.com/Yat-Muk/pkgdeck/internal/application"
	"github.com/Yat-Muk/pkgdeck/internal/domain/catalog"
)

type submitted struct {
	text string
	tag  string
}

type fakeSearch struct {
	mu      sync.Mutex
	calls   []submitted
	records []catalog.PackageRecord
	loading bool
}

func (f *fakeSearch) SubmitQuery(text, tag string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, submitted{text: text, tag: tag})
	f.loading = text != "" || tag != ""
}

func (f *fakeSearch) Results() catalog.ResultSet {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := catalog.NewResultSet()
	for _, r := range f.records {
		set.Add(r)
	}
	return set
}

func (f *fakeSearch) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *fakeSearch) last() submitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return submitted{}
	}
	return f.calls[len(f.calls)-1]
}

type fakeInvoker struct {
	result application.OperationResult
}

func (f fakeInvoker) Invoke() application.OperationResult {
	return f.result
}
