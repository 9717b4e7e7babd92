package rest

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (that *Server) handleStats(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	that.writeJSON(w, "handleStats", that.game.Stats())
}

// handleRooms lists live rooms in creation order.
func (that *Server) handleRooms(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	that.writeJSON(w, "handleRooms", that.game.Rooms())
}

func (that *Server) writeJSON(w http.ResponseWriter, method string, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		that.logger.Error("failed to marshal response", "method", method, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if _, err = w.Write(data); err != nil {
		that.logger.Error("failed to write response", "method", method, "error", err)
	}
}
