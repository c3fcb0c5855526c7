// Package api exposes the finance service over JSON HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/spendwise/backend/internal/auth"
	"github.com/spendwise/backend/internal/logging"
	"github.com/spendwise/backend/internal/model"
	"github.com/spendwise/backend/internal/search"
	"github.com/spendwise/backend/internal/service"
)

// Service is the slice of service.FinanceService the handlers call.
type Service interface {
	UploadStatement(ctx context.Context, userID, filename string, data []byte) (*service.UploadResult, error)
	ListTransactions(ctx context.Context, userID, startDate, endDate string) ([]*model.Transaction, error)
	SearchTransactions(ctx context.Context, userID string, params search.Params) (*search.Response, error)
	ListChallenges(ctx context.Context, userID string, status model.ChallengeStatus) ([]*model.Challenge, error)
	Summary(ctx context.Context, userID string) (*service.Summary, error)
	Insights(ctx context.Context, userID, startDate, endDate string) (*service.Insights, error)
	SuggestCreditCards(ctx context.Context, userID string) (*service.CardRecommendations, error)
	RegisterUser(ctx context.Context, claims *auth.UserClaims, in service.ProfileInput) (string, error)
	Profile(ctx context.Context, userID string) (*model.User, error)
}

type Server struct {
	svc            Service
	log            logrus.FieldLogger
	maxUploadBytes int64
}

func NewServer(svc Service, log logrus.FieldLogger, maxUploadBytes int64) *Server {
	return &Server{
		svc:            svc,
		log:            log.WithField("component", "api"),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes registers every endpoint on a new mux. Authentication is applied by
// the caller around the returned handler.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	handle := func(pattern, name string, h logging.HandlerFunc) {
		mux.HandleFunc(pattern, logging.LoggingWrapper(name, s.log, h))
	}

	handle("POST /api/transactions/upload", "UploadStatement", s.uploadStatement)
	handle("GET /api/transactions/list", "ListTransactions", s.listTransactions)
	handle("GET /api/transactions/search", "SearchTransactions", s.searchTransactions)
	handle("GET /api/challenges", "ListChallenges", s.listChallenges)
	handle("GET /api/analysis/summary", "Summary", s.summary)
	handle("GET /api/analysis/insights", "Insights", s.insights)
	handle("GET /api/recommender/suggest-credit-cards", "SuggestCreditCards", s.suggestCreditCards)
	handle("POST /api/auth/register", "RegisterUser", s.registerUser)
	handle("GET /api/auth/profile", "Profile", s.profile)
	handle("GET /api/health", "Health", s.health)
	handle("GET /health", "Health", s.health)
	return mux
}

func (s *Server) health(w http.ResponseWriter, r *http.Request, logData *logging.LogData) error {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	return nil
}

// caller resolves the authenticated user, answering 401 when there is none.
func caller(w http.ResponseWriter, r *http.Request, logData *logging.LogData) (*auth.UserClaims, error) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		writeError(w, err)
		return nil, err
	}
	logData.AddData("userId", claims.UID)
	return claims, nil
}
