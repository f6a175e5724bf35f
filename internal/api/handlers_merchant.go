package api

import (
	"fmt"
	"net/http"

	"github.com/set-night/localdeals/internal/domain"
)

func (s *Server) listMerchantOffers(w http.ResponseWriter, r *http.Request) {
	p := profileFrom(r.Context())
	offers, err := s.catalog.ListOffersByMerchant(r.Context(), p.Actor(), p.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOffers(offers))
}

func (s *Server) createOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	o, err := s.catalog.CreateOffer(r.Context(), actorFrom(r.Context()), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOffer(o))
}

func (s *Server) editOffer(w http.ResponseWriter, r *http.Request) {
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
	o, err := s.catalog.EditOffer(r.Context(), actorFrom(r.Context()), id, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOffer(o))
}

func (s *Server) setOfferActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	o, err := s.catalog.SetActive(r.Context(), actorFrom(r.Context()), id, req.Active)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOffer(o))
}

// GET /merchant/redemptions?status=pending
func (s *Server) listMerchantRedemptions(w http.ResponseWriter, r *http.Request) {
	p := profileFrom(r.Context())
	var status *domain.RedemptionStatus
	if v := r.URL.Query().Get("status"); v != "" {
		st, err := domain.ParseRedemptionStatus(v)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", errInvalidRequest, err))
			return
		}
		status = &st
	}
	list, err := s.redemptions.ListForMerchant(r.Context(), p.Actor(), p.ID, status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRedemptions(list))
}

func (s *Server) merchantStats(w http.ResponseWriter, r *http.Request) {
	p := profileFrom(r.Context())
	stats, err := s.catalog.MerchantStats(r.Context(), p.Actor(), p.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse(stats))
}
