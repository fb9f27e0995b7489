package cli

import (
	"fmt"

	"github.com/filmroom/telestrator/internal/store"
	"github.com/filmroom/telestrator/internal/store/postgres"
)

// openStore opens the event store named by --driver and --db. For sqlite
// the db argument is a file path; for postgres it is a DSN.
func openStore(driver, db string) (store.EventStore, error) {
	switch driver {
	case "", "sqlite":
		return store.Open(db)
	case "postgres":
		return postgres.Open(db)
	}
	return nil, fmt.Errorf("unknown driver %q (sqlite or postgres)", driver)
}
