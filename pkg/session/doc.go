/*
Package session keeps a registry of live fortune sessions for multi-user
presentations such as the HTTP API and the MCP server.

Each session gets a random UUID and its own navigation machine. All sessions
share one result store, so the saved result is simply the latest success
across the process. Idle sessions are closed by a cron-driven janitor.
*/
package session
