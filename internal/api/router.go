// Package api serves the marketplace over HTTP for the web and mobile clients.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/set-night/localdeals/internal/config"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/set-night/localdeals/internal/repository"
	"github.com/set-night/localdeals/internal/service"
)

// UserIDHeader carries the acting profile id, set by the upstream identity gateway.
const UserIDHeader = "X-User-ID"

// Server holds the services behind the HTTP API.
type Server struct {
	limiter     repository.Querier
	profiles    *service.ProfileService
	catalog     *service.CatalogService
	admin       *service.AdminService
	saves       *service.SaveService
	redemptions *service.RedemptionService
	rewards     *service.RewardsService
}

// Deps contains all dependencies required to construct a Server.
type Deps struct {
	// Limiter stores rate limit counters. Nil disables rate limiting.
	Limiter     repository.Querier
	Profiles    *service.ProfileService
	Catalog     *service.CatalogService
	Admin       *service.AdminService
	Saves       *service.SaveService
	Redemptions *service.RedemptionService
	Rewards     *service.RewardsService
}

func NewServer(deps Deps) *Server {
	return &Server{
		limiter:     deps.Limiter,
		profiles:    deps.Profiles,
		catalog:     deps.Catalog,
		admin:       deps.Admin,
		saves:       deps.Saves,
		redemptions: deps.Redemptions,
		rewards:     deps.Rewards,
	}
}

// Routes builds the HTTP router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLog)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identity)
		r.Use(s.rateLimit)

		r.Get("/me", s.getMe)

		r.Route("/offers", func(r chi.Router) {
			r.Get("/", s.listOffers)
			r.Get("/{id}", s.getOffer)
			r.Post("/{id}/save", s.saveOffer)
			r.Post("/{id}/redeem", s.redeemOffer)
			r.Post("/{id}/scan", s.scanOffer)
		})

		r.Get("/saved", s.listSaved)
		r.Delete("/saved/{id}", s.removeSaved)

		r.Route("/redemptions", func(r chi.Router) {
			r.Get("/", s.listRedemptions)
			r.Post("/{id}/approve", s.approveRedemption)
			r.Post("/{id}/reject", s.rejectRedemption)
		})

		r.Route("/merchant", func(r chi.Router) {
			r.Get("/offers", s.listMerchantOffers)
			r.Post("/offers", s.createOffer)
			r.Put("/offers/{id}", s.editOffer)
			r.Post("/offers/{id}/active", s.setOfferActive)
			r.Get("/redemptions", s.listMerchantRedemptions)
			r.Get("/stats", s.merchantStats)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/review", s.reviewQueue)
			r.Post("/offers", s.adminCreateOffer)
			r.Put("/offers/{id}", s.adminEditOffer)
			r.Post("/offers/{id}/status", s.adminSetOfferStatus)
			r.Post("/merchants", s.registerMerchant)
			r.Put("/merchants/{id}/plan", s.setPlan)
			r.Post("/rewards", s.createRewardOffer)
			r.Post("/users/{id}/points", s.adjustPoints)
		})

		r.Route("/rewards", func(r chi.Router) {
			r.Get("/", s.rewardSummary)
			r.Get("/history", s.rewardHistory)
			r.Get("/offers", s.listRewardOffers)
			r.Post("/offers/{id}/redeem", s.redeemReward)
		})
	})

	return r
}

type ctxKey string

const profileKey ctxKey = "profile"

func profileFrom(ctx context.Context) *domain.Profile {
	p, _ := ctx.Value(profileKey).(*domain.Profile)
	return p
}

func actorFrom(ctx context.Context) *domain.Actor {
	if p := profileFrom(ctx); p != nil {
		return p.Actor()
	}
	return nil
}

// identity resolves the X-User-ID header into a profile. Requests without a
// known profile are rejected.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserIDHeader)
		if raw == "" {
			writeError(w, r, domain.ErrUnauthenticated)
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: malformed %s", domain.ErrUnauthenticated, UserIDHeader))
			return
		}
		p, err := s.profiles.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrProfileNotFound) {
				err = fmt.Errorf("%w: unknown user", domain.ErrUnauthenticated)
			}
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), profileKey, p)))
	})
}

// rateLimit applies the per-user fixed window. Storage failures let the request through.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := profileFrom(r.Context())
		if s.limiter == nil || p == nil {
			next.ServeHTTP(w, r)
			return
		}
		count, err := s.limiter.HitRateLimit(r.Context(), "user:"+p.ID.String(), config.RateLimitWindow)
		if err != nil {
			slog.Error("rate limit check failed", "error", err, "user_id", p.ID)
			next.ServeHTTP(w, r)
			return
		}
		if count > config.RateLimitRequests {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(config.RateLimitWindow.Seconds())))
			writeError(w, r, domain.ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLog logs each request with its status and duration.
func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}
