package httpadapter

import (
	"net/http"
)

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) error {
	writeJSON(w, http.StatusOK, message{Response: msgHome})
	return nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) error {
	var in registerReq
	if err := decode(w, r, &in); err != nil {
		return err
	}

	u, err := s.auth.Register(r.Context(), in.Name, in.Email, in.Password)
	if err != nil {
		return err
	}
	s.log.WithField("user_id", u.ID).Info("user registered")

	writeJSON(w, http.StatusOK, message{Response: msgRegistered})
	return nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var in loginReq
	if err := decode(w, r, &in); err != nil {
		return err
	}

	tok, err := s.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, message{Response: tok})
	return nil
}
