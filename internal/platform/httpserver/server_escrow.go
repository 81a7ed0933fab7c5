package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	escrowhttp "fundlock/contexts/escrow-core/campaign-service/transport/http"
)

func requireEscrowUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeEscrowError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

func milestoneIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeEscrowError(w, http.StatusBadRequest, "invalid_milestone_index", "milestone index must be an integer")
		return 0, false
	}
	return index, true
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	founderID, ok := requireEscrowUser(w, r)
	if !ok {
		return
	}
	var req escrowhttp.CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEscrowError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.escrow.Handler.CreateCampaignHandler(
		r.Context(),
		founderID,
		r.Header.Get("Idempotency-Key"),
		req,
	)
	if err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	resp, err := s.escrow.Handler.ListCampaignsHandler(r.Context())
	if err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	resp, err := s.escrow.Handler.GetCampaignHandler(r.Context(), r.PathValue("campaign_id"))
	if err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	funderID, ok := requireEscrowUser(w, r)
	if !ok {
		return
	}
	var req escrowhttp.ContributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEscrowError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.escrow.Handler.ContributeHandler(
		r.Context(),
		r.PathValue("campaign_id"),
		funderID,
		r.Header.Get("Idempotency-Key"),
		req,
	)
	if err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetMilestone(w http.ResponseWriter, r *http.Request) {
	index, ok := milestoneIndex(w, r)
	if !ok {
		return
	}
	resp, err := s.escrow.Handler.GetMilestoneHandler(r.Context(), r.PathValue("campaign_id"), index)
	if err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitEvidence(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireEscrowUser(w, r)
	if !ok {
		return
	}
	index, ok := milestoneIndex(w, r)
	if !ok {
		return
	}
	var req escrowhttp.SubmitEvidenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEscrowError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.escrow.Handler.SubmitEvidenceHandler(
		r.Context(),
		r.PathValue("campaign_id"),
		callerID,
		index,
		req,
	)
	if err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	funderID, ok := requireEscrowUser(w, r)
	if !ok {
		return
	}
	index, ok := milestoneIndex(w, r)
	if !ok {
		return
	}
	var req escrowhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEscrowError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.escrow.Handler.CastVoteHandler(
		r.Context(),
		r.PathValue("campaign_id"),
		funderID,
		index,
		req,
	)
	if err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolveMilestone(w http.ResponseWriter, r *http.Request) {
	index, ok := milestoneIndex(w, r)
	if !ok {
		return
	}
	resp, err := s.escrow.Handler.ResolveHandler(r.Context(), r.PathValue("campaign_id"), index)
	if err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClaimRefund(w http.ResponseWriter, r *http.Request) {
	funderID, ok := requireEscrowUser(w, r)
	if !ok {
		return
	}
	resp, err := s.escrow.Handler.ClaimRefundHandler(r.Context(), r.PathValue("campaign_id"), funderID)
	if err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelCampaign(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireEscrowUser(w, r)
	if !ok {
		return
	}
	resp, err := s.escrow.Handler.CancelCampaignHandler(r.Context(), r.PathValue("campaign_id"), callerID)
	if err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFlagEmergency(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireEscrowUser(w, r)
	if !ok {
		return
	}
	var req escrowhttp.EmergencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEscrowError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.escrow.Handler.FlagEmergencyHandler(
		r.Context(),
		r.PathValue("campaign_id"),
		callerID,
		req,
	); err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleGetFunder(w http.ResponseWriter, r *http.Request) {
	resp, err := s.escrow.Handler.GetFunderHandler(
		r.Context(),
		r.PathValue("campaign_id"),
		r.PathValue("funder_id"),
	)
	if err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	resp, err := s.escrow.Handler.ListTransfersHandler(r.Context(), r.PathValue("campaign_id"))
	if err != nil {
		writeEscrowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
