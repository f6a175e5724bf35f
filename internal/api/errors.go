package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/set-night/localdeals/internal/domain"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// apiErrors maps business errors to a status and a stable error code.
var apiErrors = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
	{domain.ErrAlreadySaved, http.StatusConflict, "already_saved"},
	{domain.ErrAlreadyRedeemed, http.StatusConflict, "already_redeemed"},
	{domain.ErrSimilarAlreadyRedeemed, http.StatusConflict, "similar_already_redeemed"},
	{domain.ErrOfferUnavailable, http.StatusGone, "offer_unavailable"},
	{domain.ErrOfferNotFound, http.StatusNotFound, "offer_not_found"},
	{domain.ErrInvalidOffer, http.StatusUnprocessableEntity, "invalid_offer"},
	{domain.ErrListingTypeNotAllowed, http.StatusForbidden, "listing_type_not_allowed"},
	{domain.ErrOfferLimitReached, http.StatusTooManyRequests, "offer_limit_reached"},
	{domain.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{domain.ErrRedemptionNotFound, http.StatusNotFound, "redemption_not_found"},
	{domain.ErrSavedOfferNotFound, http.StatusNotFound, "saved_offer_not_found"},
	{domain.ErrProfileNotFound, http.StatusNotFound, "profile_not_found"},
	{domain.ErrInvalidProfile, http.StatusUnprocessableEntity, "invalid_profile"},
	{domain.ErrRoleImmutable, http.StatusConflict, "role_immutable"},
	{domain.ErrInsufficientPoints, http.StatusUnprocessableEntity, "insufficient_points"},
	{domain.ErrSoldOut, http.StatusConflict, "sold_out"},
	{domain.ErrExpired, http.StatusGone, "expired"},
	{domain.ErrRewardOfferNotFound, http.StatusNotFound, "reward_offer_not_found"},
	{domain.ErrInvalidReferral, http.StatusUnprocessableEntity, "invalid_referral"},
	{domain.ErrAlreadyScanned, http.StatusConflict, "already_scanned"},
	{domain.ErrInvalidReward, http.StatusUnprocessableEntity, "invalid_reward"},
	{domain.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
}

// errInvalidRequest covers bodies and parameters that cannot be decoded.
var errInvalidRequest = errors.New("invalid request")

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err. Store failures are logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errInvalidRequest) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_request", Message: err.Error()})
		return
	}
	for _, e := range apiErrors {
		if errors.Is(err, e.err) {
			writeJSON(w, e.status, errorBody{Error: e.code, Message: err.Error()})
			return
		}
	}
	slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal", Message: "internal error"})
}
