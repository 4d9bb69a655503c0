package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainCatalog "github.com/Yat-Muk/pkgdeck/internal/domain/catalog"
	"github.com/Yat-Muk/pkgdeck/internal/pkg/errors"
)

const aptSearchOutput = `p7zip - 7zr file archiver with high compression ratio
p7zip-full - 7z and 7za file archivers with high compression ratio
p7zip-rar - non-free rar module for p7zip
`

const dpkgOutput = "p7zip\tinstall ok installed\t16.02+dfsg-8\n" +
	"p7zip-full\tdeinstall ok config-files\t16.02+dfsg-8\n"

func textOpts(text string, limit uint) domainCatalog.FindOptions {
	return domainCatalog.NewFindOptions(domainCatalog.Query{Text: text}, limit)
}

func TestAptSource_Search(t *testing.T) {
	exec := newFakeExecutor()
	exec.on("apt-cache search --names-only p7zip", aptSearchOutput, nil)
	exec.on("dpkg-query -W -f=${Package}\t${Status}\t${Version}\n p7zip p7zip-full p7zip-rar", dpkgOutput, commandFailed())

	src := NewAptSource(exec, zap.NewNop())
	records, err := src.Search(context.Background(), textOpts("p7zip", 0))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "apt:p7zip", records[0].ID)
	assert.Equal(t, "p7zip", records[0].Name)
	assert.Equal(t, "apt", records[0].Source)
	assert.Equal(t, "16.02+dfsg-8", records[0].InstalledVersion)
	assert.False(t, records[1].IsInstalled(), "只剩配置文件不算已安裝")
	assert.False(t, records[2].IsInstalled())
}

func TestAptSource_SearchLimit(t *testing.T) {
	exec := newFakeExecutor()
	exec.on("apt-cache search --names-only p7zip", aptSearchOutput, nil)
	exec.on("dpkg-query -W -f=${Package}\t${Status}\t${Version}\n p7zip", "", nil)

	records, err := NewAptSource(exec, nil).Search(context.Background(), textOpts("p7zip", 1))
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestAptSource_SearchSkipsTagsAndEmptyText(t *testing.T) {
	exec := newFakeExecutor()
	src := NewAptSource(exec, nil)

	records, err := src.Search(context.Background(), textOpts("", 0))
	require.NoError(t, err)
	assert.Empty(t, records)

	tagged := domainCatalog.NewFindOptions(domainCatalog.Query{Text: "zip", Tag: "archiver"}, 0)
	records, err = src.Search(context.Background(), tagged)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, exec.callLog())
}

func TestAptSource_SearchFailure(t *testing.T) {
	exec := newFakeExecutor()
	_, err := NewAptSource(exec, nil).Search(context.Background(), textOpts("git", 0))

	require.Error(t, err)
	assert.Equal(t, "APT001", errors.Code(err))
	assert.ErrorIs(t, err, errors.ErrCommandFailed)
}

func TestAptSource_Install(t *testing.T) {
	exec := newFakeExecutor()
	exec.on("sudo -n apt-get install -y p7zip", "Setting up p7zip", nil)
	exec.on("dpkg-query -W -f=${Package}\t${Status}\t${Version}\n p7zip", "p7zip:amd64\tinstall ok installed\t16.02\n", nil)

	rec := &phaseRecorder{}
	res, err := NewAptSource(exec, nil).Install(context.Background(),
		domainCatalog.PackageRecord{ID: "apt:p7zip", Name: "p7zip", Source: "apt"},
		domainCatalog.InstallOptions{}, rec.record)
	require.NoError(t, err)

	assert.Equal(t, "16.02", res.InstalledVersion)
	assert.Equal(t, []domainCatalog.Phase{
		domainCatalog.PhaseQueued,
		domainCatalog.PhaseInstalling,
		domainCatalog.PhasePostInstall,
	}, rec.phases())
}

func TestAptSource_InstallFailure(t *testing.T) {
	exec := newFakeExecutor()
	exec.on("sudo -n apt-get install -y p7zip", "E: Unable to locate package", commandFailed())

	_, err := NewAptSource(exec, nil).Install(context.Background(),
		domainCatalog.PackageRecord{ID: "apt:p7zip"}, domainCatalog.InstallOptions{}, nil)
	require.Error(t, err)
	assert.Equal(t, "APT003", errors.Code(err))
	assert.Contains(t, errors.Describe(err), "apt-get install failed")
}

func TestAptSource_Uninstall(t *testing.T) {
	exec := newFakeExecutor()
	exec.on("sudo -n apt-get remove -y p7zip", "", nil)

	_, err := NewAptSource(exec, nil).Uninstall(context.Background(),
		domainCatalog.PackageRecord{ID: "apt:p7zip"}, domainCatalog.UninstallOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"sudo -n apt-get remove -y p7zip"}, exec.callLog())
}

func TestAptSource_Available(t *testing.T) {
	exec := newFakeExecutor()
	src := NewAptSource(exec, nil)
	assert.True(t, src.Available())

	exec.missing["dpkg-query"] = true
	assert.False(t, src.Available())
}

func TestParseDpkgStatus(t *testing.T) {
	got := parseDpkgStatus("git\tinstall ok installed\t1:2.43.0-1\nbroken line\nvim\tunknown ok not-installed\t\n")
	assert.Equal(t, map[string]string{"git": "1:2.43.0-1"}, got)
}
