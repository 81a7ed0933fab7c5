package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	campaignservice "fundlock/contexts/escrow-core/campaign-service"
	escrowerrors "fundlock/contexts/escrow-core/campaign-service/domain/errors"
	escrowhttp "fundlock/contexts/escrow-core/campaign-service/transport/http"
	registryservice "fundlock/contexts/escrow-core/registry-service"
	registryerrors "fundlock/contexts/escrow-core/registry-service/domain/errors"
	registryhttp "fundlock/contexts/escrow-core/registry-service/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "fundlock/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	escrow   campaignservice.Module
	registry registryservice.Module
}

func New(
	escrow campaignservice.Module,
	registry registryservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		escrow:   escrow,
		registry: registry,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/escrow/campaigns", s.handleCreateCampaign)
	s.mux.HandleFunc("GET /v1/escrow/campaigns", s.handleListCampaigns)
	s.mux.HandleFunc("GET /v1/escrow/campaigns/{campaign_id}", s.handleGetCampaign)
	s.mux.HandleFunc("POST /v1/escrow/campaigns/{campaign_id}/contributions", s.handleContribute)
	s.mux.HandleFunc("GET /v1/escrow/campaigns/{campaign_id}/milestones/{index}", s.handleGetMilestone)
	s.mux.HandleFunc("POST /v1/escrow/campaigns/{campaign_id}/milestones/{index}/evidence", s.handleSubmitEvidence)
	s.mux.HandleFunc("POST /v1/escrow/campaigns/{campaign_id}/milestones/{index}/votes", s.handleCastVote)
	s.mux.HandleFunc("POST /v1/escrow/campaigns/{campaign_id}/milestones/{index}/resolve", s.handleResolveMilestone)
	s.mux.HandleFunc("POST /v1/escrow/campaigns/{campaign_id}/refunds", s.handleClaimRefund)
	s.mux.HandleFunc("POST /v1/escrow/campaigns/{campaign_id}/cancel", s.handleCancelCampaign)
	s.mux.HandleFunc("POST /v1/escrow/campaigns/{campaign_id}/emergency", s.handleFlagEmergency)
	s.mux.HandleFunc("GET /v1/escrow/campaigns/{campaign_id}/funders/{funder_id}", s.handleGetFunder)
	s.mux.HandleFunc("GET /v1/escrow/campaigns/{campaign_id}/transfers", s.handleListTransfers)

	s.mux.HandleFunc("GET /v1/registry/founders/{founder_id}/campaigns", s.handleListFounderCampaigns)
}

func writeEscrowDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, escrowerrors.ErrCampaignNotFound):
		writeEscrowError(w, http.StatusNotFound, "campaign_not_found", err.Error())
	case errors.Is(err, escrowerrors.ErrNotFunder):
		writeEscrowError(w, http.StatusNotFound, "funder_not_found", err.Error())
	case errors.Is(err, escrowerrors.ErrInvalidCampaignInput),
		errors.Is(err, escrowerrors.ErrInvalidAmount),
		errors.Is(err, escrowerrors.ErrInvalidRiskProfile):
		writeEscrowError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, escrowerrors.ErrIdempotencyKeyRequired):
		writeEscrowError(w, http.StatusBadRequest, "idempotency_key_required", err.Error())
	case errors.Is(err, escrowerrors.ErrNotFounder):
		writeEscrowError(w, http.StatusForbidden, "not_founder", err.Error())
	case errors.Is(err, escrowerrors.ErrCampaignNotActive),
		errors.Is(err, escrowerrors.ErrCampaignNotRefundable),
		errors.Is(err, escrowerrors.ErrGoalExceeded),
		errors.Is(err, escrowerrors.ErrRiskProfileLocked),
		errors.Is(err, escrowerrors.ErrWrongMilestone),
		errors.Is(err, escrowerrors.ErrMilestoneNotPending),
		errors.Is(err, escrowerrors.ErrMilestoneNotVoting),
		errors.Is(err, escrowerrors.ErrVotingClosed),
		errors.Is(err, escrowerrors.ErrVotingStillOpen),
		errors.Is(err, escrowerrors.ErrAlreadyVoted),
		errors.Is(err, escrowerrors.ErrRefundAlreadyClaimed),
		errors.Is(err, escrowerrors.ErrNothingToRefund),
		errors.Is(err, escrowerrors.ErrCancelNotAllowed),
		errors.Is(err, escrowerrors.ErrIdempotencyConflict),
		errors.Is(err, escrowerrors.ErrConflict):
		writeEscrowError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, escrowerrors.ErrTransferFailed):
		writeEscrowError(w, http.StatusBadGateway, "transfer_failed", err.Error())
	default:
		writeEscrowError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeRegistryDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registryerrors.ErrInvalidFounderID):
		writeRegistryError(w, http.StatusBadRequest, "invalid_founder_id", err.Error())
	case errors.Is(err, registryerrors.ErrConflict):
		writeRegistryError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeRegistryError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeEscrowError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, escrowhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeRegistryError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, registryhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
