package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/small-engineer/go-todo-serv/internal/domain"
)

const (
	msgInternal  = "Something went wrong"
	maxBodyBytes = 100 << 10
)

var (
	errBadBody     = domain.NewError(domain.ErrValidation, "Invalid request body")
	errBodyTooLong = domain.NewError(domain.ErrValidation, "Request body too large")
)

type appHandler func(w http.ResponseWriter, r *http.Request) error

type message struct {
	Response string `json:"response"`
}

func (s *Server) handle(h appHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.fail(w, r, err)
		}
	}
}

// fail is the single error reporting stage. Domain errors answer with their
// own message; anything else is logged in full and answered generically.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	l := s.log.WithError(err).WithField("method", r.Method).WithField("path", r.URL.Path)

	msg := msgInternal
	var de *domain.Error
	if errors.As(err, &de) {
		msg = de.Msg
		l.Info("request failed")
	} else {
		l.Error("request failed")
	}

	code := http.StatusInternalServerError
	if s.mapStatus {
		code = statusFor(err)
	}
	writeJSON(w, code, message{Response: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"response":"` + msgInternal + `"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}

// decode reads a single JSON value of at most maxBodyBytes into v. An empty
// body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		if err = dec.Decode(&struct{}{}); errors.Is(err, io.EOF) {
			return nil
		}
	}
	var tooLong *http.MaxBytesError
	if errors.As(err, &tooLong) {
		return errBodyTooLong
	}
	return errBadBody
}
