package service

import "strings"

// Route-namespace collisions with the application itself. Requests for these
// never resolve as link codes.
var reservedCodes = map[string]bool{
	"api":     true,
	"healthz": true,
	"code":    true,
	"_next":   true,
}

// IsReservedCode reports whether code collides with an application route.
func IsReservedCode(code string) bool {
	return reservedCodes[strings.ToLower(code)]
}
