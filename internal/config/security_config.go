// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityMember                      // Any active account with an access token
	SecurityStaff                       // Staff or admin access token
)

// EndpointSecurityConfig maps "METHOD /route/template" to the required security
// level. Routes missing here require staff.
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Auth - Public
	"POST /api/v1/auth/login":   SecurityPublic,
	"POST /api/v1/auth/refresh": SecurityPublic,

	// Member self-service
	"GET /api/v1/categories":       SecurityMember,
	"GET /api/v1/categories/{id}":  SecurityMember,
	"GET /api/v1/tools":            SecurityMember,
	"GET /api/v1/tools/{id}":       SecurityMember,
	"GET /api/v1/tools/{id}/quote": SecurityMember,
	"POST /api/v1/rentals":         SecurityMember,
	"GET /api/v1/me":               SecurityMember,
	"GET /api/v1/me/rentals":       SecurityMember,
	"GET /api/v1/me/transactions":  SecurityMember,
}

// GetSecurityLevel returns the security level for a route
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityStaff
}
