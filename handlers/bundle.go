// File: medibot/handlers/bundle.go
package handlers

// HandlerBundle groups the endpoint handlers of every server role. Handlers of a
// role that is not served stay nil.
type HandlerBundle struct {
	Sessions SessionService

	// Assistant role
	Auth      *AuthHandler
	Assistant *AssistantHandler

	// Backend role
	Appointments *AppointmentHandler
	Chat         *ChatHandler
}
