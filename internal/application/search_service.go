package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Yat-Muk/pkgdeck/internal/domain/catalog"
)

// ListSurface 結果列表的消費方
// 收到數量變化通知後自行通過 SearchService.Results 拉取快照
type ListSurface interface {
	ItemCountChanged(count int)
}

// ListSurfaceFunc 函數適配器
type ListSurfaceFunc func(count int)

func (f ListSurfaceFunc) ItemCountChanged(count int) { f(count) }

// SearchOptions 搜索服務選項
type SearchOptions struct {
	Limit uint   // 0 使用 catalog.DefaultLimit
	Tag   string // 非空時構造後立即按標籤瀏覽一次
}

// searchToken 一次搜索嘗試的取消句柄
type searchToken struct {
	gen    uint64
	query  catalog.Query
	cancel context.CancelFunc
}

// SearchService 增量搜索協調器
// 新查詢會取消進行中的搜索；只有仍是最新一代的嘗試才能提交結果
type SearchService struct {
	gateway catalog.Gateway
	surface ListSurface
	limit   uint
	log     *zap.Logger

	// 結果狀態，只在讀取或整體替換時持有，不跨越遠程調用
	resultsMu sync.Mutex
	results   catalog.ResultSet
	committed uint64 // 最近一次提交的代數

	// 令牌狀態；需要同時持有時先取 resultsMu
	tokenMu sync.Mutex
	current *searchToken
	gen     uint64

	loading atomic.Bool
	wg      sync.WaitGroup
}

// NewSearchService 創建搜索服務
func NewSearchService(gateway catalog.Gateway, surface ListSurface, opts SearchOptions, log *zap.Logger) *SearchService {
	if log == nil {
		log = zap.NewNop()
	}
	if surface == nil {
		surface = ListSurfaceFunc(func(int) {})
	}

	s := &SearchService{
		gateway: gateway,
		surface: surface,
		limit:   opts.Limit,
		log:     log.Named("search"),
		results: catalog.NewResultSet(),
	}

	// 帶標籤啟動時先按標籤瀏覽一次
	if opts.Tag != "" {
		s.SubmitQuery("", opts.Tag)
	}

	return s
}

// SubmitQuery 提交新查詢，取代任何進行中的搜索
// 文本與標籤都為空時同步清空結果，不啟動後台任務
func (s *SearchService) SubmitQuery(text, tag string) {
	q := catalog.Query{Text: text, Tag: tag}

	ctx, cancel := context.WithCancel(context.Background())
	next, prev := s.swapToken(q, cancel)

	// 盡力取消上一次嘗試；已結束的嘗試忽略此信號
	if prev != nil {
		prev.cancel()
	}

	if q.IsEmpty() {
		cancel()
		s.commit(next.gen, catalog.NewResultSet())
		return
	}

	s.wg.Add(1)
	go s.run(ctx, next)
}

// swapToken 原子地生成新令牌並返回被取代的舊令牌，同時標記 loading
func (s *SearchService) swapToken(q catalog.Query, cancel context.CancelFunc) (next, prev *searchToken) {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()

	s.gen++
	next = &searchToken{gen: s.gen, query: q, cancel: cancel}
	prev = s.current
	s.current = next
	s.loading.Store(true)
	return next, prev
}

// isCurrent 新鮮度檢查：按代數比較，而不是完成順序
func (s *SearchService) isCurrent(gen uint64) bool {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()
	return s.current != nil && s.current.gen == gen
}

// run 執行一次搜索嘗試，錯誤全部在此處消化
func (s *SearchService) run(ctx context.Context, tok *searchToken) {
	defer s.wg.Done()
	// 句柄在任務完全結束後釋放且只釋放一次
	defer tok.cancel()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("搜索任務崩潰", zap.Uint64("gen", tok.gen), zap.Any("panic", r))
			s.settle(tok.gen)
		}
	}()

	set, err := s.search(ctx, tok.query)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.log.Debug("搜索已取消", zap.Uint64("gen", tok.gen), zap.String("query", tok.query.Text))
		} else {
			// 失敗時保留之前顯示的結果
			s.log.Warn("搜索失敗，保留現有結果",
				zap.Uint64("gen", tok.gen),
				zap.String("query", tok.query.Text),
				zap.String("tag", tok.query.Tag),
				zap.Error(err),
			)
		}
		s.settle(tok.gen)
		return
	}

	if !s.commit(tok.gen, set) {
		s.log.Debug("丟棄過期的搜索結果", zap.Uint64("gen", tok.gen), zap.Int("count", set.Len()))
	}
}

// search 查詢合併目錄並去重，在遠程調用前後以及每個匹配項之後檢查取消
func (s *SearchService) search(ctx context.Context, q catalog.Query) (catalog.ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return catalog.ResultSet{}, err
	}

	composite, err := s.gateway.CompositeCatalog(ctx)
	if err != nil {
		return catalog.ResultSet{}, fmt.Errorf("連接目錄失敗: %w", err)
	}

	opts := catalog.NewFindOptions(q, s.limit)
	matches, err := s.gateway.FindPackages(ctx, composite, opts)
	if err != nil {
		return catalog.ResultSet{}, fmt.Errorf("查詢目錄失敗: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return catalog.ResultSet{}, err
	}

	set, err := catalog.DedupeContext(ctx, matches)
	if err != nil {
		return catalog.ResultSet{}, err
	}

	s.log.Debug("搜索完成",
		zap.String("query", q.Text),
		zap.String("tag", q.Tag),
		zap.Int("matches", len(matches)),
		zap.Int("unique", set.Len()),
	)
	return set, nil
}

// commit 僅當 gen 仍為當前代時整體替換結果並通知列表
// 新鮮度檢查與替換在 resultsMu 內一步完成；鎖順序固定為 resultsMu → tokenMu
func (s *SearchService) commit(gen uint64, set catalog.ResultSet) bool {
	s.resultsMu.Lock()
	if !s.isCurrent(gen) || gen < s.committed {
		s.resultsMu.Unlock()
		return false
	}
	s.results = set
	s.committed = gen
	count := set.Len()
	s.resultsMu.Unlock()

	s.settle(gen)
	s.surface.ItemCountChanged(count)
	return true
}

// settle 當前代以失敗或取消結束時清除 loading，不動結果
func (s *SearchService) settle(gen uint64) {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()
	if s.current != nil && s.current.gen == gen {
		s.loading.Store(false)
	}
}

// Results 返回最近一次提交結果的快照，不等待進行中的搜索
func (s *SearchService) Results() catalog.ResultSet {
	s.resultsMu.Lock()
	defer s.resultsMu.Unlock()
	return s.results.Clone()
}

// MarkInstalled 操作完成後更新已提交結果中某個包的安裝版本
// version 為空表示已卸載
func (s *SearchService) MarkInstalled(id, version string) bool {
	s.resultsMu.Lock()
	r, ok := s.results.Get(id)
	if ok {
		r.InstalledVersion = version
		s.results.Replace(r)
	}
	count := s.results.Len()
	s.resultsMu.Unlock()

	if ok {
		s.surface.ItemCountChanged(count)
	}
	return ok
}

// Loading 是否有搜索正在進行
func (s *SearchService) Loading() bool {
	return s.loading.Load()
}

// Generation 當前令牌的代數
func (s *SearchService) Generation() uint64 {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()
	return s.gen
}

// Wait 等待所有已啟動的搜索嘗試結束
func (s *SearchService) Wait() {
	s.wg.Wait()
}

// Close 取消當前搜索並等待後台任務退出
func (s *SearchService) Close() {
	s.tokenMu.Lock()
	if s.current != nil {
		s.current.cancel()
	}
	s.tokenMu.Unlock()
	s.wg.Wait()
}
