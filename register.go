package commport

import (
	// Link the devfs backend into the probe set. The commx backend is linked
	// through refresh.go.
	_ "github.com/allbin/go-commport/provider/devfs"
)
