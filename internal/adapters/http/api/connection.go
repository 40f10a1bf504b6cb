package api

import "net/http"

// ConnectionHandler reports game-client connectivity.
type ConnectionHandler struct {
	deps Dependencies
}

// NewConnectionHandler creates a new connection handler.
func NewConnectionHandler(deps Dependencies) *ConnectionHandler {
	return &ConnectionHandler{deps: deps}
}

// HandleConnection handles GET /connection requests. The probe attempts a
// fresh connection when the client is down, so this call may take as long
// as one credential-discovery round trip.
func (h *ConnectionHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.CheckConnection(r.Context()))
}
