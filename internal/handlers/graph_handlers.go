package handlers

import (
	"net/http"
)

type GraphHandler struct {
	GraphService GraphService
}

func NewGraphHandler(graphService GraphService) *GraphHandler {
	return &GraphHandler{GraphService: graphService}
}

func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}

	params := r.URL.Query()
	g, err := h.GraphService.BuildGraph(r.Context(), owner, params.Get("filter_tag"), params.Get("filter_status"))
	if err != nil {
		handleError(w, r, err, "build_graph")
		return
	}
	responseWithBody(w, http.StatusOK, g)
}
