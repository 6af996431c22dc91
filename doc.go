// Package main provides the entry point for the GoRBAC-Admin application.
// It initializes and runs a web server using the Fiber framework that lets
// administrators manage users, roles and permissions through a JSON admin API.
// The application uses gorm for data persistence, session-based authentication
// and a write-invalidated cache of the role/permission graph.
package main
