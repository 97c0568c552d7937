// Package all registers every built-in storage backend with the storage
// factory. Import it for side effects:
//
//	import _ "studentdw/internal/storage/all"
//
// Binaries that need a subset can import the backend packages directly.
package all

import (
	_ "studentdw/internal/storage/mssql"
	_ "studentdw/internal/storage/mysql"
	_ "studentdw/internal/storage/parquet"
	_ "studentdw/internal/storage/postgres"
	_ "studentdw/internal/storage/sqlite"
)
