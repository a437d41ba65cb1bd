// Package all registers every built-in warehouse backend with the storage
// factory. Import it for side effects:
//
//	import _ "salesdw/internal/storage/all"
//
// Kinds made available: "sqlite", "postgres", "mssql", "mysql".
package all

import (
	_ "salesdw/internal/storage/mssql"
	_ "salesdw/internal/storage/mysql"
	_ "salesdw/internal/storage/postgres"
	_ "salesdw/internal/storage/sqlite"
)
