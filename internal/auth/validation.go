package auth

import "regexp"

var sessionIDPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// IsValidSessionID checks that id has the shape produced by NewSessionID
func IsValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}
