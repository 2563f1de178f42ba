package commport

import (
	"github.com/allbin/go-commport/provider"
	"github.com/allbin/go-commport/provider/commx"
)

// refreshListIfRequired works around the commx stale-cache defect: the
// backend parses its driver properties into a static master list exactly
// once, so ports added later are never seen. Resetting the cache and
// reloading the drivers before each enumeration keeps the list current.
//
// The workaround is best effort. A failure is reported and enumeration
// proceeds with whatever the backend currently has. Only called from
// GetPortIdentifiers, under the enumeration mutex; delete this file once the
// backend re-reads its configuration on its own.
func refreshListIfRequired(active provider.Provider) {
	if active.ID() != provider.CommX {
		return
	}
	refresher, ok := active.(provider.Refresher)
	if !ok {
		return
	}

	refresher.InvalidatePortCache()
	if err := refresher.ReloadDrivers(commx.PropertiesPath()); err != nil {
		log := provider.Logger()
		log.Warn().Err(err).
			Msg("failed to reset commx port cache; enumeration may return stale ports")
	}
}
