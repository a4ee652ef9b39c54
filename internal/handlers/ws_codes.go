// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes, for closures that need a more specific reason
// than the standard set.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
)
