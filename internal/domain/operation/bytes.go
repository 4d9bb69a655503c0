package operation

import "fmt"

const (
	kib = 1024
	mib = kib * 1024
	gib = mib * 1024
)

// FormatBytes 以值 >= 1 的最大二進制單位顯示字節數
func FormatBytes(n uint64) string {
	switch {
	case n >= gib:
		return fmt.Sprintf("%.2f GB", float64(n)/gib)
	case n >= mib:
		return fmt.Sprintf("%.2f MB", float64(n)/mib)
	case n >= kib:
		return fmt.Sprintf("%.2f KB", float64(n)/kib)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// DownloadText 下載進度文案
func DownloadText(downloaded, required uint64) string {
	return fmt.Sprintf("Downloading. %s of %s", FormatBytes(downloaded), FormatBytes(required))
}
