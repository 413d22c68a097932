package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/medtrack/internal/common"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		s.logger.Warn(r.Context(), "write error", "error", err)
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, code int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error(r.Context(), "render failed", "template", name, "error", err)
	}
}

func (s *Server) message(w http.ResponseWriter, r *http.Request, code int, title, msg string) {
	s.render(w, r, code, "message.html", messagePage{Title: title, Message: msg})
}

// linkFailed renders the page for an action link that could not be applied.
func (s *Server) linkFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, common.ErrInvalidActionCode) {
		s.message(w, r, http.StatusBadRequest, "Link expired",
			"This link is invalid or has already been used. Request a new one from the app.")
		return
	}
	s.logger.Error(r.Context(), "action link failed", "path", r.URL.Path, "error", err)
	s.message(w, r, http.StatusInternalServerError, "Something went wrong", "An unexpected error occurred. Please try again.")
}

func (s *Server) verifyEmail(w http.ResponseWriter, r *http.Request) {
	if err := s.identity.VerifyEmail(r.Context(), r.URL.Query().Get("token")); err != nil {
		s.linkFailed(w, r, err)
		return
	}
	s.message(w, r, http.StatusOK, "Email verified", "Your email address has been verified.")
}

func (s *Server) resetForm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		s.linkFailed(w, r, common.ErrInvalidActionCode)
		return
	}
	s.render(w, r, http.StatusOK, "reset.html", resetPage{Action: PathResetPassword, Token: token})
}

func (s *Server) resetSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.message(w, r, http.StatusBadRequest, "Bad request", "The form could not be read.")
		return
	}
	token := r.PostForm.Get("token")
	err := s.identity.ResetPassword(r.Context(), token, r.PostForm.Get("password"))
	switch {
	case err == nil:
		s.message(w, r, http.StatusOK, "Password changed", "You can now sign in with your new password.")
	case errors.Is(err, common.ErrWeakPassword):
		s.render(w, r, http.StatusBadRequest, "reset.html", resetPage{
			Action: PathResetPassword, Token: token, Error: "Password should be at least 6 characters.",
		})
	default:
		s.linkFailed(w, r, err)
	}
}

func (s *Server) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		s.message(w, r, http.StatusBadRequest, "Sign-in cancelled", "The provider reported: "+e)
		return
	}
	if err := s.identity.CompleteFederatedSignIn(r.Context(), q.Get("state"), q.Get("code")); err != nil {
		s.linkFailed(w, r, err)
		return
	}
	s.message(w, r, http.StatusOK, "Signed in", "Return to MedTrack to finish signing in.")
}

func (s *Server) acceptGuardian(w http.ResponseWriter, r *http.Request) {
	if err := s.guardians.AcceptGuardianInvite(r.Context(), r.URL.Query().Get("token")); err != nil {
		s.linkFailed(w, r, err)
		return
	}
	s.message(w, r, http.StatusOK, "Invitation accepted", "You are now a guardian.")
}
