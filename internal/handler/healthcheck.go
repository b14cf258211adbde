package handler

import (
	"net/http"
	"time"
)

// HandleHealthcheck reports liveness. Public, no auth.
//
// GET /api/healthcheck
func HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "", map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
