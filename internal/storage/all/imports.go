// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete backend to run, which
// in turn register their factories with the storage package. Importing it
// makes the following kinds available to storage.New:
//
//   - "postgres" (csvcodec/internal/storage/postgres)
//   - "mssql"    (csvcodec/internal/storage/mssql)
//   - "sqlite"   (csvcodec/internal/storage/sqlite)
//
// A binary that supports only a subset of backends can instead blank-import
// just the backends it needs.
package all

import (
	_ "csvcodec/internal/storage/mssql"
	_ "csvcodec/internal/storage/postgres"
	_ "csvcodec/internal/storage/sqlite"
)
