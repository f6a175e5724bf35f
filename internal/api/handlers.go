package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/config"
	"github.com/set-night/localdeals/internal/domain"
)

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed id", errInvalidRequest)
	}
	return id, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", errInvalidRequest, key)
	}
	return n, nil
}

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toProfile(profileFrom(r.Context())))
}

// GET /offers?category=&district=&search=&listing_type=&limit=&offset=
func (s *Server) listOffers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if limit == 0 {
		limit = config.OffersPerPage
	}

	offers, err := s.catalog.ListVisibleOffers(r.Context(), domain.OfferFilter{
		Category:    q.Get("category"),
		District:    q.Get("district"),
		Search:      q.Get("search"),
		ListingType: domain.ListingType(q.Get("listing_type")),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOffers(offers))
}

func (s *Server) getOffer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	o, err := s.catalog.GetOffer(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOffer(o))
}

func (s *Server) saveOffer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := s.saves.SaveOffer(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSaved(saved))
}

func (s *Server) listSaved(w http.ResponseWriter, r *http.Request) {
	list, err := s.saves.ListSaved(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]savedResponse, len(list))
	for i := range list {
		out[i] = toSaved(&list[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// DELETE /saved/{id} is idempotent; removed reports whether a row went away.
func (s *Server) removeSaved(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	removed, err := s.saves.RemoveSavedOffer(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

func (s *Server) redeemOffer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	red, err := s.redemptions.RedeemOffer(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRedemption(red))
}

func (s *Server) scanOffer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	head, err := s.rewards.RecordQRScan(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummary(head))
}

func (s *Server) listRedemptions(w http.ResponseWriter, r *http.Request) {
	list, err := s.redemptions.ListForUser(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRedemptions(list))
}

func (s *Server) approveRedemption(w http.ResponseWriter, r *http.Request) {
	s.decideRedemption(w, r, domain.RedemptionApproved)
}

func (s *Server) rejectRedemption(w http.ResponseWriter, r *http.Request) {
	s.decideRedemption(w, r, domain.RedemptionRejected)
}

func (s *Server) decideRedemption(w http.ResponseWriter, r *http.Request, to domain.RedemptionStatus) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	decide := s.redemptions.ApproveRedemption
	if to == domain.RedemptionRejected {
		decide = s.redemptions.RejectRedemption
	}
	red, err := decide(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRedemption(red))
}
