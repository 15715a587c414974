// Package all registers every storage backend with the storage factory.
// Blank-import it from a main package to make all kinds selectable.
package all

import (
	_ "eettscrape/internal/storage/mssql"
	_ "eettscrape/internal/storage/postgres"
	_ "eettscrape/internal/storage/sqlite"
)
