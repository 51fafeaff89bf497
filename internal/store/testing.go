package store

// OpenMemory opens a migrated in-memory database.
// This is only intended for use in tests.
func OpenMemory() (*DB, error) {
	// every pooled connection would get its own empty :memory: database
	return openDSN(":memory:", 1)
}
