package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"
	"github.com/rs/zerolog"

	"github.com/Srengnx007/Khmer-AI/internal/application/auth"
	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
)

// InitOAuthProviders registers Goth providers and the session store. Call
// once at startup.
func InitOAuthProviders(callbackBaseURL, sessionSecret string, googleClientID, googleClientSecret, githubClientID, githubClientSecret string) {
	if googleClientID != "" && googleClientSecret != "" {
		callbackURL := callbackBaseURL + "/auth/google/callback"
		goth.UseProviders(google.New(googleClientID, googleClientSecret, callbackURL, "email", "profile"))
	}
	if githubClientID != "" && githubClientSecret != "" {
		callbackURL := callbackBaseURL + "/auth/github/callback"
		goth.UseProviders(github.New(githubClientID, githubClientSecret, callbackURL, "user:email"))
	}
	if sessionSecret != "" {
		gothic.Store = sessions.NewCookieStore([]byte(sessionSecret))
	}
}

// withProviderQuery clones the request with the provider set in the query,
// which is where gothic looks for it.
func withProviderQuery(r *http.Request, provider string) *http.Request {
	r2 := r.Clone(r.Context())
	q := r2.URL.Query()
	q.Set("provider", provider)
	r2.URL.RawQuery = q.Encode()
	return r2
}

// OAuthBegin redirects to the OAuth provider. Provider from URL: /auth/{provider}.
func OAuthBegin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		if provider == "" {
			writeErr(w, http.StatusBadRequest, "", "provider required")
			return
		}
		if _, err := goth.GetProvider(provider); err != nil {
			writeErr(w, http.StatusBadRequest, "", "unknown provider")
			return
		}
		authURL, err := gothic.GetAuthURL(w, withProviderQuery(r, provider))
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "", "internal error")
			return
		}
		http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
	}
}

// OAuthCallback completes the provider handshake, finds or creates the
// directory record, issues tokens, and redirects to the frontend.
func OAuthCallback(oauthCallback *auth.OAuthCallback, enqueuer ports.TaskEnqueuer, redirectURL string, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		if provider == "" {
			writeErr(w, http.StatusBadRequest, "", "provider required")
			return
		}
		gothUser, err := gothic.CompleteUserAuth(w, withProviderQuery(r, provider))
		if err != nil {
			AuditEmit(log, r, enqueuer, "user.oauth", "", "", false, err.Error())
			writeErr(w, http.StatusUnauthorized, "", "oauth failed")
			return
		}
		result, err := oauthCallback.Execute(r.Context(), auth.OAuthUser{
			Provider:       gothUser.Provider,
			ProviderUserID: gothUser.UserID,
			Email:          gothUser.Email,
			Name:           gothUser.Name,
			AvatarURL:      gothUser.AvatarURL,
		})
		if err != nil {
			AuditEmit(log, r, enqueuer, "user.oauth", "", "", false, err.Error())
			log.Error().Err(err).Str("provider", provider).Msg("oauth callback failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
			return
		}
		AuditEmit(log, r, enqueuer, "user.oauth", result.User.ID.String(), result.User.ID.String(), true, "")
		// Tokens go to the frontend in the query; the client moves them to
		// storage and strips the URL.
		u, _ := url.Parse(redirectURL)
		uq := u.Query()
		uq.Set("access_token", result.AccessToken)
		uq.Set("refresh_token", result.RefreshToken)
		uq.Set("expires_in", strconv.FormatInt(result.ExpiresIn, 10))
		u.RawQuery = uq.Encode()
		http.Redirect(w, r, u.String(), http.StatusTemporaryRedirect)
	}
}
