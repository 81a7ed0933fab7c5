package httpserver

import "net/http"

func (s *Server) handleListFounderCampaigns(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.ListByFounderHandler(r.Context(), r.PathValue("founder_id"))
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
