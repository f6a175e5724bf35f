package api

import (
	"net/http"

	"github.com/set-night/localdeals/internal/config"
)

func (s *Server) rewardSummary(w http.ResponseWriter, r *http.Request) {
	head, err := s.rewards.Summary(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummary(head))
}

// GET /rewards/history?limit=
func (s *Server) rewardHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if limit == 0 {
		limit = config.HistoryPageSize
	}
	history, err := s.rewards.History(r.Context(), actorFrom(r.Context()), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]activityResponse, len(history))
	for i, a := range history {
		out[i] = activityResponse{
			ID:            a.ID,
			Points:        a.Points,
			ActivityType:  string(a.ActivityType),
			Description:   a.Description,
			ReferenceID:   a.ReferenceID,
			ReferenceType: a.ReferenceType,
			CreatedAt:     a.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listRewardOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := s.rewards.ListRewardOffers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]rewardOfferResponse, len(offers))
	for i := range offers {
		out[i] = toRewardOffer(&offers[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) redeemReward(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	red, head, err := s.rewards.RedeemRewardOffer(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rewardRedemptionResponse{
		ID:            red.ID,
		RewardOfferID: red.RewardOfferID,
		PointsSpent:   red.PointsSpent,
		Balance:       toSummary(head),
	})
}
