package model

import (
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yat-Muk/pkgdeck/internal/application"
	"github.com/Yat-Muk/pkgdeck/internal/domain/catalog"
	"github.com/Yat-Muk/pkgdeck/internal/domain/operation"
	"github.com/Yat-Muk/pkgdeck/internal/pkg/errors"
	"github.com/Yat-Muk/pkgdeck/internal/tui/handlers"
	"github.com/Yat-Muk/pkgdeck/internal/tui/msg"
)

type stubSearch struct {
	mu      sync.Mutex
	queries []catalog.Query
	records []catalog.PackageRecord
	loading bool
}

func (s *stubSearch) SubmitQuery(text, tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, catalog.Query{Text: text, Tag: tag})
	s.loading = true
}

func (s *stubSearch) Results() catalog.ResultSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := catalog.NewResultSet()
	for _, r := range s.records {
		set.Add(r)
	}
	return set
}

func (s *stubSearch) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *stubSearch) finish(records ...catalog.PackageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.loading = false
}

type stubInvoker struct{}

func (stubInvoker) Invoke() application.OperationResult {
	return application.OperationResult{Action: application.ActionInstall, KeepOpen: true}
}

func newTestModel(search *stubSearch, initialQuery string) *Model {
	return New(&handlers.Config{
		Search:       search,
		NewOperation: func(catalog.PackageRecord) handlers.Invoker { return stubInvoker{} },
		InitialQuery: initialQuery,
	}, "test")
}

func TestModel_InitialQuery(t *testing.T) {
	search := &stubSearch{}
	m := newTestModel(search, "git #vcs")

	cmd := m.Init()
	assert.NotNil(t, cmd)

	require.Len(t, search.queries, 1)
	assert.Equal(t, catalog.Query{Text: "git", Tag: "vcs"}, search.queries[0])
	assert.True(t, m.router.UI().Loading)
	assert.Equal(t, "git #vcs", m.router.UI().TextInput.Value())
}

func TestModel_InitPicksUpEarlyResults(t *testing.T) {
	search := &stubSearch{records: []catalog.PackageRecord{{ID: "vim", Name: "Vim"}}}
	m := newTestModel(search, "")

	m.Init()

	assert.Empty(t, search.queries)
	assert.Len(t, m.router.UI().Records, 1)
	assert.False(t, m.router.UI().Loading)
}

func TestModel_ResultsChanged(t *testing.T) {
	search := &stubSearch{}
	m := newTestModel(search, "")
	m.Init()

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	assert.True(t, m.router.UI().Loading)

	search.finish(
		catalog.PackageRecord{ID: "git", Name: "Git"},
		catalog.PackageRecord{ID: "gitk", Name: "Gitk"},
	)
	m.Update(msg.ResultsChangedMsg{Count: 2})

	ui := m.router.UI()
	assert.False(t, ui.Loading)
	require.Len(t, ui.Records, 2)
	assert.Equal(t, "git", ui.Records[0].ID)
	assert.Contains(t, m.View(), "Gitk")
}

func TestModel_TickSettlesFailedSearch(t *testing.T) {
	search := &stubSearch{}
	m := newTestModel(search, "")
	m.Init()

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	require.True(t, m.router.UI().Loading)

	// 失敗的搜索不通知列表，只清除 loading
	search.finish()
	_, cmd := m.Update(spinner.TickMsg{})

	assert.Nil(t, cmd)
	assert.False(t, m.router.UI().Loading)
}

func TestModel_StatusMessages(t *testing.T) {
	m := newTestModel(&stubSearch{}, "")
	m.Init()

	m.Update(msg.StatusMsg{Status: operation.StatusMessage{
		Text:     "Downloading. 5.00 MB of 10.00 MB",
		Severity: operation.SeverityInfo,
		State:    operation.Downloading,
		Progress: &operation.ProgressSnapshot{BytesDownloaded: 5 << 20, BytesRequired: 10 << 20},
	}})

	ui := m.router.UI()
	require.True(t, ui.HasStatus)
	assert.Equal(t, operation.Downloading, ui.Status.State)
	assert.Contains(t, m.View(), "Downloading. 5.00 MB of 10.00 MB")

	m.Update(msg.StatusMsg{Status: operation.StatusMessage{
		Text:     "Installed 7-Zip",
		Severity: operation.SeveritySuccess,
		State:    operation.Finished,
	}})
	assert.Equal(t, operation.Finished, ui.Status.State)
	assert.Contains(t, m.View(), "Installed 7-Zip")
}

func TestModel_OperationStartFailure(t *testing.T) {
	m := newTestModel(&stubSearch{}, "")
	m.Init()

	m.Update(msg.OperationStartedMsg{PackageID: "git", Action: "install", Err: errors.ErrAlreadyInvoked})

	ui := m.router.UI()
	require.True(t, ui.HasStatus)
	assert.Equal(t, operation.SeverityError, ui.Status.Severity)
	assert.Equal(t, "operation has already been started", ui.Status.Text)
}

func TestModel_WindowSize(t *testing.T) {
	m := newTestModel(&stubSearch{}, "")

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, m.router.UI().Width)
	assert.Equal(t, 30, m.router.UI().ListHeight())
}
