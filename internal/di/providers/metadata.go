package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookwormapp/bookworm-server/internal/config"
	"github.com/bookwormapp/bookworm-server/internal/logger"
	"github.com/bookwormapp/bookworm-server/internal/media/covers"
	"github.com/bookwormapp/bookworm-server/internal/metadata/openlibrary"
)

// ProvideOpenLibraryClient provides the rate-limited lookup client.
func ProvideOpenLibraryClient(i do.Injector) (*openlibrary.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := openlibrary.New(log.Logger,
		openlibrary.WithBaseURL(cfg.Lookup.BaseURL),
		openlibrary.WithTimeout(cfg.Lookup.Timeout),
		openlibrary.WithRateLimit(cfg.Lookup.RequestsPerSecond, cfg.Lookup.Burst),
		openlibrary.WithUserAgent(cfg.Lookup.UserAgent),
	)

	log.Info("Open Library client initialized",
		"base_url", cfg.Lookup.BaseURL,
		"rps", cfg.Lookup.RequestsPerSecond,
	)

	return client, nil
}

// ProvideCoverDownloader provides the cover image downloader.
func ProvideCoverDownloader(i do.Injector) (*covers.Downloader, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return covers.NewDownloader(log.Logger, cfg.Covers.DownloadTimeout), nil
}
