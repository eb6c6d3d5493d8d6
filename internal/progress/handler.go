package progress

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/gymprogress/internal/middleware"
	"github.com/2beens/gymprogress/internal/progress/badges"
	"github.com/2beens/gymprogress/internal/progress/streaks"
	"github.com/2beens/gymprogress/internal/scheduler"
	"github.com/2beens/gymprogress/internal/telemetry/metrics"
	"github.com/2beens/gymprogress/internal/telemetry/tracing"
	"github.com/2beens/gymprogress/internal/training/recurrence"
	"github.com/2beens/gymprogress/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=progress_test
type badgesEvaluator interface {
	EvaluateBadgesForUser(ctx context.Context, userID int, now time.Time) (*badges.Summary, error)
}

type metricsProvider interface {
	Metrics(ctx context.Context, userID int, now time.Time) (streaks.Metrics, error)
}

type jobsRunner interface {
	RunExpansion(ctx context.Context) (recurrence.Result, error)
	RunSweep(ctx context.Context) (badges.SweepResult, error)
}

type StreaksResponse struct {
	UserID      int             `json:"userId"`
	Metrics     streaks.Metrics `json:"metrics"`
	EvaluatedAt time.Time       `json:"evaluatedAt"`
}

type SweepResponse struct {
	Result badges.SweepResult `json:"result"`
	// Duration in a human readable form, Result.Duration is in nanoseconds
	Took string `json:"took"`
}

type ExpansionResponse struct {
	Result recurrence.Result `json:"result"`
}

type Handler struct {
	badges  badgesEvaluator
	streaks metricsProvider
	jobs    jobsRunner
	clock   func() time.Time
}

func NewHandler(
	badgesEvaluator badgesEvaluator,
	metricsProvider metricsProvider,
	jobs jobsRunner,
	clock func() time.Time,
) *Handler {
	if clock == nil {
		clock = time.Now
	}
	return &Handler{
		badges:  badgesEvaluator,
		streaks: metricsProvider,
		jobs:    jobs,
		clock:   clock,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	onDemandAllowedPerMin int,
) {
	// full paths on the main router, a subrouter answers 404 instead of 405 on a method mismatch
	mainRouter.HandleFunc("/progress/users/{userID}/streaks", handler.HandleUserStreaks).
		Methods("GET", "OPTIONS").Name("user-streaks")

	// badge evaluation writes progress rows, so it is throttled per user
	rateLimit := middleware.RateLimitPerUser(rateLimiter, "badges", onDemandAllowedPerMin, metricsManager)
	mainRouter.Handle("/progress/users/{userID}/badges", rateLimit(http.HandlerFunc(handler.HandleUserBadges))).
		Methods("GET", "OPTIONS").Name("user-badges")

	mainRouter.HandleFunc("/progress/admin/badges/sweep", handler.HandleSweep).
		Methods("POST", "OPTIONS").Name("admin-sweep")
	mainRouter.HandleFunc("/progress/admin/recurrence/expand", handler.HandleExpand).
		Methods("POST", "OPTIONS").Name("admin-expand")
}

func (handler *Handler) HandleUserBadges(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.badges")
	defer span.End()

	userID, err := pkg.ParseID(mux.Vars(r)["userID"])
	if err != nil {
		http.Error(w, "error, invalid user id", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("user.id", userID))

	summary, err := handler.badges.EvaluateBadgesForUser(ctx, userID, handler.clock().UTC())
	if err != nil {
		if errors.Is(err, streaks.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("evaluate badges for user %d: %s", userID, err)
		http.Error(w, "could not compute badges", http.StatusInternalServerError)
		return
	}

	log.Tracef("badges evaluated for user %d, newly unlocked: %d", userID, len(summary.NewlyUnlocked))
	pkg.WriteJSON(w, summary, http.StatusOK)
}

func (handler *Handler) HandleUserStreaks(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.streaks")
	defer span.End()

	userID, err := pkg.ParseID(mux.Vars(r)["userID"])
	if err != nil {
		http.Error(w, "error, invalid user id", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("user.id", userID))

	now := handler.clock().UTC()
	userMetrics, err := handler.streaks.Metrics(ctx, userID, now)
	if err != nil {
		if errors.Is(err, streaks.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("compute streaks for user %d: %s", userID, err)
		http.Error(w, "could not compute streaks", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, StreaksResponse{
		UserID:      userID,
		Metrics:     userMetrics,
		EvaluatedAt: now,
	}, http.StatusOK)
}

func (handler *Handler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.admin.sweep")
	defer span.End()

	result, err := handler.jobs.RunSweep(ctx)
	if err != nil {
		if isJobBusy(err) {
			http.Error(w, "badge sweep already running", http.StatusConflict)
			return
		}
		log.Errorf("admin badge sweep: %s", err)
		http.Error(w, "badge sweep failed", http.StatusInternalServerError)
		return
	}

	log.Infof(
		"admin badge sweep done: users %d, success %d, errors %d, cancelled %t",
		result.Users, result.Success, result.Errors, result.Cancelled,
	)
	pkg.WriteJSON(w, SweepResponse{
		Result: result,
		Took:   result.Duration.String(),
	}, http.StatusOK)
}

func (handler *Handler) HandleExpand(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.admin.expand")
	defer span.End()

	result, err := handler.jobs.RunExpansion(ctx)
	if err != nil {
		if isJobBusy(err) {
			http.Error(w, "recurrence expansion already running", http.StatusConflict)
			return
		}
		log.Errorf("admin recurrence expansion: %s", err)
		http.Error(w, "recurrence expansion failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, ExpansionResponse{Result: result}, http.StatusOK)
}

func isJobBusy(err error) bool {
	return errors.Is(err, scheduler.ErrJobRunning) || errors.Is(err, scheduler.ErrLockHeld)
}
