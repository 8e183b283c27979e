package store

import (
	"fmt"
	"os"
	"strings"
)

const (
	StoreModeSQLite   = "sqlite"
	StoreModePostgres = "postgres"
)

func storeModeFromEnv() string {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv("STORE_MODE")))
	switch raw {
	case "", StoreModeSQLite, "local":
		return StoreModeSQLite
	case StoreModePostgres, "postgresql", "pg":
		return StoreModePostgres
	default:
		return raw
	}
}

// NewServiceFromEnv picks the backend from STORE_MODE. The default is a
// local sqlite file so a bare `cardroomd` run needs no database server.
func NewServiceFromEnv() (Service, string, error) {
	mode := storeModeFromEnv()

	switch mode {
	case StoreModeSQLite:
		svc, err := NewSQLiteServiceFromEnv()
		if err != nil {
			return nil, mode, err
		}
		return svc, mode, nil
	case StoreModePostgres:
		svc, err := NewPostgresServiceFromEnv()
		if err != nil {
			return nil, mode, err
		}
		return svc, mode, nil
	default:
		return nil, mode, fmt.Errorf("invalid STORE_MODE %q (supported: %s, %s)", mode, StoreModeSQLite, StoreModePostgres)
	}
}
