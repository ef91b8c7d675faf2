package domain

import "github.com/google/uuid"

// ReadmeKey is the literal key the singleton README record is stored under.
const ReadmeKey = "readme"

// RecordID maps a string key to a stable point identifier (UUIDv5, DNS namespace).
// The ingestion pipeline derives ids the same way, so named records can be
// addressed without a lookup index.
func RecordID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(key)).String()
}

// ReadmeID returns the identifier of the module's README record.
func ReadmeID() string {
	return RecordID(ReadmeKey)
}
