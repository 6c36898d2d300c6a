package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"quitPathAPI/services"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// The catalog is loaded from YAML at startup and immutable, so these
// handlers never touch the database.

func (h *CatalogHandler) ListChallengeTypes(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.catalogService.ListChallengeTypes())
}

func (h *CatalogHandler) GetChallengeType(w http.ResponseWriter, r *http.Request) {
	ct, err := h.catalogService.GetChallengeType(mux.Vars(r)["typeId"])
	if err != nil {
		respondWithEngineError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ct)
}
