//go:build windows

package cmd

import "os"

// getTermWidthIoctl returns 0 on Windows; width detection falls back to $COLUMNS.
func getTermWidthIoctl(*os.File) int {
	return 0
}
