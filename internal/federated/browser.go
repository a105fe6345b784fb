package federated

import (
	"io"

	pkgbrowser "github.com/pkg/browser"
)

func init() {
	// The TUI owns the terminal; helper output would draw over it.
	pkgbrowser.Stdout = io.Discard
	pkgbrowser.Stderr = io.Discard
}

// OpenBrowser asks the desktop to open url.
func OpenBrowser(url string) error {
	return pkgbrowser.OpenURL(url)
}
