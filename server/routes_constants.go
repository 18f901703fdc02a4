package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteAuthLogin    = "/auth/login"
	RouteAuthCallback = "/auth/callback"
	RouteAuthLogout   = "/auth/logout"
	RouteAuthMe       = "/auth/me"

	// API Routes
	RouteAPICompile = "/api/compile"

	// Where the browser lands after login, callback and logout
	RouteHome = "/"
)
