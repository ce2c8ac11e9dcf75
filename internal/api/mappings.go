package api

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/meridianhealth/comorbid/internal/mapping"
)

type MappingsHandler struct {
	source mapping.RegistrySource
}

func NewMappingsHandler(source mapping.RegistrySource) *MappingsHandler {
	return &MappingsHandler{source: source}
}

type MappingSummary struct {
	Version    string `json:"version"`
	Categories int    `json:"categories"`
}

type CategorySummary struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Weight    int      `json:"weight"`
	Groups    int      `json:"groups"`
	DependsOn []string `json:"depends_on,omitempty"`
}

// List handles GET /api/v1/mappings.
func (h *MappingsHandler) List(w http.ResponseWriter, r *http.Request) {
	reg := h.source.Current()
	summaries := make([]MappingSummary, 0, len(reg.Versions))
	for _, version := range reg.VersionIDs() {
		summaries = append(summaries, MappingSummary{
			Version:    version,
			Categories: len(reg.Versions[version]),
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

// Get handles GET /api/v1/mappings/{version}.
func (h *MappingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	version := chi.URLParam(r, "version")
	table, ok := h.source.Current().Table(version)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown mapping version"})
		return
	}

	categories := make([]CategorySummary, 0, len(table))
	for id, cat := range table {
		categories = append(categories, CategorySummary{
			ID:        id,
			Name:      cat.Name,
			Weight:    cat.Weight,
			Groups:    len(cat.Codes),
			DependsOn: cat.DependsOn,
		})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	writeJSON(w, http.StatusOK, categories)
}
