package api

import (
	"fmt"
	"net/http"

	"github.com/set-night/localdeals/internal/domain"
)

func (s *Server) reviewQueue(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	queue, err := s.catalog.ReviewQueue(r.Context(), actorFrom(r.Context()), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOffers(queue))
}

func (s *Server) adminCreateOffer(w http.ResponseWriter, r *http.Request) {
	var req adminOfferRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	o, err := s.admin.AdminCreateOffer(r.Context(), actorFrom(r.Context()), req.MerchantID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOffer(o))
}

func (s *Server) adminEditOffer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req offerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	o, err := s.admin.AdminEditOffer(r.Context(), actorFrom(r.Context()), id, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOffer(o))
}

func (s *Server) adminSetOfferStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	o, err := s.admin.AdminUpdateOfferStatus(r.Context(), actorFrom(r.Context()), id, domain.OfferStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOffer(o))
}

func (s *Server) registerMerchant(w http.ResponseWriter, r *http.Request) {
	var req merchantRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.profiles.RegisterMerchant(r.Context(), actorFrom(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProfile(p))
}

func (s *Server) setPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Plan      string `json:"plan"`
		IsPremium bool   `json:"is_premium"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	plan, err := domain.ParsePlan(req.Plan)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errInvalidRequest, err))
		return
	}
	p, err := s.profiles.SetPlan(r.Context(), actorFrom(r.Context()), id, plan, req.IsPremium)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfile(p))
}

func (s *Server) createRewardOffer(w http.ResponseWriter, r *http.Request) {
	var req rewardOfferRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ro, err := s.rewards.CreateRewardOffer(r.Context(), actorFrom(r.Context()), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRewardOffer(ro))
}

func (s *Server) adjustPoints(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Delta  int64  `json:"delta"`
		Reason string `json:"reason"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	head, err := s.rewards.AdjustPoints(r.Context(), actorFrom(r.Context()), id, req.Delta, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummary(head))
}
