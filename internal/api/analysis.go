package api

import (
	"net/http"

	"github.com/spendwise/backend/internal/logging"
)

func (s *Server) summary(w http.ResponseWriter, r *http.Request, logData *logging.LogData) error {
	claims, err := caller(w, r, logData)
	if err != nil {
		return err
	}

	sum, err := s.svc.Summary(r.Context(), claims.UID)
	if err != nil {
		writeError(w, err)
		return err
	}
	writeJSON(w, http.StatusOK, sum)
	return nil
}

func (s *Server) insights(w http.ResponseWriter, r *http.Request, logData *logging.LogData) error {
	claims, err := caller(w, r, logData)
	if err != nil {
		return err
	}

	q := r.URL.Query()
	stop := logData.AddTiming("insightsMs")
	out, err := s.svc.Insights(r.Context(), claims.UID, q.Get("start_date"), q.Get("end_date"))
	stop()
	if err != nil {
		writeError(w, err)
		return err
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) suggestCreditCards(w http.ResponseWriter, r *http.Request, logData *logging.LogData) error {
	claims, err := caller(w, r, logData)
	if err != nil {
		return err
	}

	stop := logData.AddTiming("recommendMs")
	out, err := s.svc.SuggestCreditCards(r.Context(), claims.UID)
	stop()
	if err != nil {
		writeError(w, err)
		return err
	}

	logData.AddData("suggestionCount", len(out.Suggestions))
	writeJSON(w, http.StatusOK, out)
	return nil
}
