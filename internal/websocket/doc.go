// Package websocket pushes refresh notifications to dashboard pages.
//
// A Hub owns the set of connected clients and runs until its context is
// cancelled. When the data directory changes the application calls
// BroadcastDataUpdate and every open page reloads its views. Clients do
// not send commands; their read pump only keeps the connection alive.
package websocket
