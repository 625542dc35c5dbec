package liveprovider

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// Serializes headless Chrome usage; mirror resolution is rare and never
// worth a browser per call.
var chromeMu sync.Mutex

// resolveMirror follows the provider mirror's JavaScript redirect in a
// headless browser and returns the final scheme://host base URL. Providers
// rotate domains, so the mirror is the only stable entry point.
func resolveMirror(ctx context.Context, mirrorURL string, timeout time.Duration) (string, error) {
	chromeMu.Lock()
	defer chromeMu.Unlock()

	chromeDir, err := os.MkdirTemp("", "liveprovider_chrome_")
	if err != nil {
		return "", fmt.Errorf("create chrome temp dir: %w", err)
	}
	defer os.RemoveAll(chromeDir)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserDataDir(chromeDir),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var finalURL string
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(mirrorURL),
		chromedp.Sleep(3*time.Second),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp navigation: %w", err)
	}
	if finalURL == "" {
		return "", fmt.Errorf("mirror %s did not resolve to a URL", mirrorURL)
	}

	base := normalizeResolvedBaseURL(finalURL)
	slog.Debug("Resolved provider mirror", "from", mirrorURL, "to", base)
	return base, nil
}

// normalizeResolvedBaseURL returns scheme://host from a full redirect URL
// (no path/query, no default port).
func normalizeResolvedBaseURL(resolved string) string {
	u, err := url.Parse(resolved)
	if err != nil {
		return resolved
	}
	host := u.Hostname()
	port := u.Port()
	if port != "" && port != "80" && port != "443" {
		host = net.JoinHostPort(u.Hostname(), port)
	}
	return u.Scheme + "://" + host
}
