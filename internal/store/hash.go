package store

import (
	"crypto/sha256"
	"fmt"
)

// ContentHash returns the hex SHA-256 of content. Unchanged files are
// detected by comparing this against File.Hash.
func ContentHash(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}
