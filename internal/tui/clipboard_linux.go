//go:build linux

package tui

import "github.com/atotto/clipboard"

// writeClipboard copies text through xclip, xsel or wl-copy, whichever is installed.
func writeClipboard(text string) error {
	return clipboard.WriteAll(text)
}
