package mongo

import "time"

// Config holds MongoDB connection settings
type Config struct {
	// URI is the MongoDB connection string. Transactions need a replica set.
	URI string

	// Database is the name of the database holding the ledger collections
	Database string

	// Timeout bounds connecting and the initial ping
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults for MongoDB configuration
func DefaultConfig() Config {
	return Config{
		URI:      "mongodb://localhost:27017/?replicaSet=rs0",
		Database: "dojo_smash",
		Timeout:  10 * time.Second,
	}
}
