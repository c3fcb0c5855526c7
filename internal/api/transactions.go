package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/spendwise/backend/internal/logging"
	"github.com/spendwise/backend/internal/model"
	"github.com/spendwise/backend/internal/search"
)

const uploadField = "file"

func (s *Server) uploadStatement(w http.ResponseWriter, r *http.Request, logData *logging.LogData) error {
	const op = "api.UploadStatement"
	claims, err := caller(w, r, logData)
	if err != nil {
		return err
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = model.Errorf(model.ErrMalformedInput, op, "statement exceeds %d bytes", s.maxUploadBytes)
		} else {
			err = model.NewError(model.ErrMalformedInput, op, "multipart field \"file\" is required", err)
		}
		writeError(w, err)
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		err = model.NewError(model.ErrMalformedInput, op, "could not read upload", err)
		writeError(w, err)
		return err
	}
	logData.AddData("filename", header.Filename)
	logData.AddData("bytes", len(data))

	stop := logData.AddTiming("uploadMs")
	result, err := s.svc.UploadStatement(r.Context(), claims.UID, header.Filename, data)
	stop()
	if err != nil {
		writeError(w, err)
		return err
	}

	logData.AddData("inserted", result.Inserted)
	logData.AddData("duplicates", result.Duplicates)
	writeJSON(w, http.StatusOK, result)
	return nil
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request, logData *logging.LogData) error {
	claims, err := caller(w, r, logData)
	if err != nil {
		return err
	}

	q := r.URL.Query()
	txs, err := s.svc.ListTransactions(r.Context(), claims.UID, q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeError(w, err)
		return err
	}

	logData.AddData("transactionCount", len(txs))
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
	return nil
}

func (s *Server) searchTransactions(w http.ResponseWriter, r *http.Request, logData *logging.LogData) error {
	const op = "api.SearchTransactions"
	claims, err := caller(w, r, logData)
	if err != nil {
		return err
	}

	q := r.URL.Query()
	params := search.Params{
		Query:     q.Get("q"),
		Category:  model.Category(q.Get("category")),
		Type:      model.TransactionType(q.Get("type")),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
	for name, dst := range map[string]*int{"page": &params.Page, "page_size": &params.PageSize} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 0 {
			err = model.Errorf(model.ErrMalformedInput, op, "%s must be a non-negative integer", name)
			writeError(w, err)
			return err
		}
		*dst = n
	}

	resp, err := s.svc.SearchTransactions(r.Context(), claims.UID, params)
	if err != nil {
		writeError(w, err)
		return err
	}

	logData.AddData("totalCount", resp.TotalCount)
	writeJSON(w, http.StatusOK, resp)
	return nil
}

func (s *Server) listChallenges(w http.ResponseWriter, r *http.Request, logData *logging.LogData) error {
	claims, err := caller(w, r, logData)
	if err != nil {
		return err
	}

	challenges, err := s.svc.ListChallenges(r.Context(), claims.UID, model.ChallengeStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, err)
		return err
	}

	logData.AddData("challengeCount", len(challenges))
	writeJSON(w, http.StatusOK, map[string]any{"challenges": challenges})
	return nil
}
