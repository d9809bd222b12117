package cli

import (
	"io"
	"strings"

	"github.com/aretw0/arttic"
	"github.com/aretw0/arttic/internal/tui"
)

// RunVersion prints the banner and the channel the session would open with
// the current config and flags. A config problem is reported, not returned.
func RunVersion(opts RunOptions, w io.Writer) error {
	tui.PrintBanner(w, strings.TrimSpace(arttic.Version))

	cfg, err := loadConfig(opts)
	if err != nil {
		printSystemMessage(w, "Config: %v", err)
		return nil
	}
	wsURL, err := WebsocketURL(cfg.BackendURL)
	if err != nil {
		printSystemMessage(w, "Backend: %v", err)
		return nil
	}
	printSystemMessage(w, "Backend: %s", cfg.BackendURL)
	printSystemMessage(w, "Channel: %s (reconnect every %s)", wsURL, cfg.ReconnectDelay)
	return nil
}
