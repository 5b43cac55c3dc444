package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/immoflow/accessgate/internal/errors"
	"github.com/immoflow/accessgate/session"
)

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// LoginSubmissionHandler signs credentials in against the hosted identity
// provider and redirects to the role-specific landing page.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		email := r.PostFormValue("email")
		password := r.PostFormValue("password")
		if email == "" || password == "" {
			http.Error(w, "email and password are required", http.StatusBadRequest)
			return
		}

		sess, err := s.identity.SignIn(r.Context(), email, password)
		if err != nil {
			s.log.Info().Err(err).Msg("login rejected")
			http.Redirect(w, r, RouteLogin+"?error=Invalid+credentials", http.StatusSeeOther)
			return
		}

		// A new principal invalidates whatever the previous one cached.
		s.gate.Reset(r.Context())

		role := s.resolver.Resolve(r.Context(), sess.UserID, sess.Email)
		http.Redirect(w, r, LandingPath(role), http.StatusSeeOther)
	}
}

// RefreshHandler renews the active session through the identity provider.
// Registered only when the provider supports renewal.
func (s *Server) RefreshHandler(refresher session.Refresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := refresher.Refresh(r.Context())
		if apperrors.Is(err, apperrors.ErrSessionNotFound) {
			http.Error(w, "no active session", http.StatusUnauthorized)
			return
		}
		if err != nil {
			s.log.Warn().Err(err).Msg("session refresh failed")
			http.Error(w, "refresh failed", http.StatusUnauthorized)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"user_id":    sess.UserID,
			"expires_at": sess.ExpiresAt,
		})
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.identity.SignOut(r.Context()); err != nil {
			s.log.Warn().Err(err).Msg("sign-out failed")
		}
		s.gate.Reset(r.Context())
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

// SignupHandler provisions an account plus its default role row.
func (s *Server) SignupHandler() http.HandlerFunc {
	type signupRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		account, err := s.provisioner.CreateAccount(r.Context(), req.Email, req.Password)
		if apperrors.Is(err, apperrors.ErrAccountExists) {
			http.Error(w, "account already exists", http.StatusConflict)
			return
		}
		if err != nil {
			s.log.Error().Err(err).Msg("account provisioning failed")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, account)
	}
}

// ForgotPasswordHandler issues a reset token and mails the link. The
// response is 202 regardless of whether the address exists.
func (s *Server) ForgotPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		email := r.PostFormValue("email")
		if email == "" {
			http.Error(w, "email is required", http.StatusBadRequest)
			return
		}

		if err := s.provisioner.IssuePasswordReset(r.Context(), email); err != nil {
			s.log.Error().Err(err).Msg("password reset issuance failed")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusAccepted)
	}
}

func (s *Server) ResetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		token := r.PostFormValue("token")
		password := r.PostFormValue("password")

		err := s.provisioner.ResetPassword(r.Context(), token, password)
		switch {
		case apperrors.Is(err, apperrors.ErrResetTokenInvalid), apperrors.Is(err, apperrors.ErrResetTokenExpired):
			http.Error(w, err.Error(), http.StatusGone)
		case err != nil:
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

func (s *Server) AccessDeniedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error": "access denied",
		})
	}
}

func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error": "sign in required",
		})
	}
}

// sectionHandler is the placeholder for the data-entry surfaces (incident
// declarations, providers, technicians, settings). Their content is owned by
// other services; this service only gates them.
func (s *Server) sectionHandler(section string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"section": section})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
