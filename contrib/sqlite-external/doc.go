// Package sqliteexternal provides the optional CGO SQLite driver.
//
// OpenWord reads translation, lexicon and commentary databases through
// core/sqlite, which uses the pure Go modernc.org/sqlite driver by default.
// Large lexicon files open and query noticeably faster through
// github.com/mattn/go-sqlite3; build with the cgo_sqlite tag to switch:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite ./cmd/openword
//
// Nothing else changes: core/sqlite picks the driver name from this package.
package sqliteexternal
