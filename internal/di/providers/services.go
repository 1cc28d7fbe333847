package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookwormapp/bookworm-server/internal/config"
	"github.com/bookwormapp/bookworm-server/internal/logger"
	"github.com/bookwormapp/bookworm-server/internal/media/covers"
	"github.com/bookwormapp/bookworm-server/internal/metadata/openlibrary"
	"github.com/bookwormapp/bookworm-server/internal/service"
)

// ProvideCatalogService provides the catalog business service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	resolver := do.MustInvoke[*openlibrary.Client](i)
	downloader := do.MustInvoke[*covers.Downloader](i)

	return service.NewCatalogService(
		storeHandle.Store,
		resolver,
		downloader,
		cfg.Covers.DownloadEnabled,
		log,
	), nil
}
