package utils

import "github.com/google/uuid"

// UUID generates new random UUID, and returns value as string.
func UUID() string {
	return uuid.New().String()
}

// URNUUID returns new UUID as URN, the form used in credential and
// presentation IDs.
func URNUUID() string {
	return "urn:uuid:" + UUID()
}
