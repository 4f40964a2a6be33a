// Package all registers every built-in report sink backend with the storage
// factory. Import it for side effects:
//
//	import _ "fastwc/internal/storage/all"
//
// after which storage.ListKinds reports "mssql", "mysql", "postgres" and
// "sqlite".
package all

import (
	_ "fastwc/internal/storage/mssql"
	_ "fastwc/internal/storage/mysql"
	_ "fastwc/internal/storage/postgres"
	_ "fastwc/internal/storage/sqlite"
)
