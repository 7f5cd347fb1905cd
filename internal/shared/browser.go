package shared

import (
	"fmt"
	"io"

	"github.com/pkg/browser"
)

var openURL = browser.OpenURL

// OpenBrowser opens the default system browser to the specified URL.
//
// Output of the launcher is discarded so it does not mix with CLI output.
func OpenBrowser(url string) error {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	if err := openURL(url); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
