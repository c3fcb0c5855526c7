package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/spendwise/backend/internal/logging"
	"github.com/spendwise/backend/internal/model"
	"github.com/spendwise/backend/internal/service"
)

const maxProfileBytes = 64 << 10

func (s *Server) registerUser(w http.ResponseWriter, r *http.Request, logData *logging.LogData) error {
	claims, err := caller(w, r, logData)
	if err != nil {
		return err
	}

	var in service.ProfileInput
	dec := json.NewDecoder(io.LimitReader(r.Body, maxProfileBytes))
	if err := dec.Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		err = model.NewError(model.ErrMalformedInput, "api.RegisterUser", "invalid profile body", err)
		writeError(w, err)
		return err
	}

	msg, err := s.svc.RegisterUser(r.Context(), claims, in)
	if err != nil {
		writeError(w, err)
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
	return nil
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request, logData *logging.LogData) error {
	claims, err := caller(w, r, logData)
	if err != nil {
		return err
	}

	user, err := s.svc.Profile(r.Context(), claims.UID)
	if err != nil {
		writeError(w, err)
		return err
	}
	writeJSON(w, http.StatusOK, user)
	return nil
}
