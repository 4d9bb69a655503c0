package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Yat-Muk/pkgdeck/internal/pkg/appctx"
	"github.com/Yat-Muk/pkgdeck/internal/pkg/version"
	"github.com/Yat-Muk/pkgdeck/internal/tui/model"
)

func main() {
	// 1. 命令行參數解析
	var (
		workDir   = flag.String("dir", "", "指定工作目錄 (默認: $PKGDECK_HOME 或 ~/.pkgdeck)")
		tagFlag   = flag.String("tag", "", "啟動時按標籤瀏覽")
		queryFlag = flag.String("query", "", "啟動時的初始查詢")
		showVer   = flag.Bool("version", false, "顯示版本信息")
		debugFlag = flag.Bool("debug", false, "開啟調試模式")
	)
	flag.Parse()

	if *showVer {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// 2. 環境初始化
	paths, err := appctx.NewPaths(*workDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "致命錯誤: 無法初始化路徑: %v\n", err)
		os.Exit(1)
	}

	redirectStdErr(filepath.Join(paths.LogDir, "stderr.log"))

	cfg, cfgErr := loadConfig(paths)

	log, err := newLogger(paths, cfg, *debugFlag)
	if err != nil {
		panic(fmt.Sprintf("日誌初始化失敗: %v", err))
	}
	defer log.Sync()

	log.Info("pkgdeck 正在啟動",
		zap.String("version", version.Version),
		zap.String("commit", version.GitCommit),
		zap.String("base_dir", paths.BaseDir),
	)
	if cfgErr != nil {
		log.Warn("加載配置失敗，使用默認值", zap.Error(cfgErr))
	}

	// 3. 依賴注入
	deps, err := initializeDependencies(log, paths, cfg, StartOptions{
		Tag:   *tagFlag,
		Query: *queryFlag,
	})
	if err != nil {
		log.Fatal("依賴初始化失敗", zap.Error(err))
	}
	defer deps.Close()

	runTUI(deps)
}

func runTUI(deps *AppDependencies) {
	mainModel := model.New(deps.HandlerConfig, version.Short())

	p := tea.NewProgram(
		mainModel,
		tea.WithAltScreen(),
	)
	// 後台搜索與包操作經由橋投遞消息
	deps.Bridge.Attach(p)

	// 崩潰保護
	defer func() {
		if r := recover(); r != nil {
			p.ReleaseTerminal()
			fmt.Printf("\n\n❌ 程序崩潰: %v\n", r)
			deps.App.Log.Error("Panic", zap.Any("error", r), zap.String("stack", string(debug.Stack())))
			os.Exit(1)
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Printf("程序運行錯誤: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("👋 Bye!")
}

func redirectStdErr(filename string) {
	_ = os.MkdirAll(filepath.Dir(filename), 0755)
	f, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err == nil {
		os.Stderr = f
	}
}
