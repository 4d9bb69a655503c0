package version

import (
	"fmt"
	"runtime"
)

// 構建時通過 -ldflags 注入
var (
	Version   = "dev"
	BuildTime = ""
	GoVersion = runtime.Version()
	GitCommit = ""
)

func Short() string {
	if GitCommit != "" {
		return fmt.Sprintf("v%s (%s)", Version, shortCommit(GitCommit))
	}
	return "v" + Version
}

func Info() string {
	return fmt.Sprintf(
		"pkgdeck v%s\nBuild Time: %s\nGo Version: %s\nGit Commit: %s",
		Version, BuildTime, GoVersion, GitCommit,
	)
}

func shortCommit(c string) string {
	if len(c) > 7 {
		return c[:7]
	}
	return c
}
