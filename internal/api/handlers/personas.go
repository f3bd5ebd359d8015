package handlers

import (
	"net/http"

	"github.com/wonny/council/backend/internal/council"
)

// PersonasResponse represents the council roster
type PersonasResponse struct {
	Count    int               `json:"count"`
	Personas []council.Persona `json:"personas"`
}

// GetPersonas returns the 16-member council roster
// GET /api/personas
func GetPersonas(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, PersonasResponse{
		Count:    len(council.Roster),
		Personas: council.Roster,
	})
}
