package web

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/roach88/precario/internal/auth"
)

type signInView struct {
	Email string
	Next  string
	Error string
}

func (s *Server) handleSignInForm(w http.ResponseWriter, r *http.Request) {
	next := auth.SafeNext(r.URL.Query().Get("next"))
	if !s.auth.Enabled() {
		redirect(w, r, next)
		return
	}
	if _, ok := s.auth.Lookup(auth.TokenFromRequest(r)); ok {
		redirect(w, r, next)
		return
	}
	s.render(w, r, http.StatusOK, "signin", page{Title: "Sign in", Data: signInView{Next: next}})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, err)
		return
	}
	email := r.PostForm.Get("email")
	next := auth.SafeNext(r.PostForm.Get("next"))

	sess, err := s.auth.SignIn(r.Context(), email, r.PostForm.Get("password"))
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Error("sign in", zap.Error(err))
		}
		s.render(w, r, http.StatusUnauthorized, "signin", page{
			Title: "Sign in",
			Data:  signInView{Email: email, Next: next, Error: "Invalid email or password."},
		})
		return
	}

	s.guard.SetCookie(w, sess)
	redirect(w, r, next)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if token := auth.TokenFromRequest(r); token != "" {
		s.auth.SignOut(token)
	}
	s.guard.ClearCookie(w)
	redirect(w, r, auth.SignInPath)
}
