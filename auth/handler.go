package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/upb/todo-app/config"
	"github.com/upb/todo-app/models"
	"github.com/upb/todo-app/services"
	"github.com/upb/todo-app/utils"
	"go.uber.org/zap"
)

const (
	// CallbackPath is where the provider redirects after sign-in
	CallbackPath = "/api/oauth/callback"
	// DevLoginPath mints a session for the development identity
	DevLoginPath = "/api/dev/login"
)

// UserInfoFetcher exchanges a one-time callback token for identity claims
type UserInfoFetcher interface {
	FetchUserInfo(ctx context.Context, token string) (*services.UserInfo, error)
}

// UserDirectory persists users seen at sign-in
type UserDirectory interface {
	Upsert(ctx context.Context, user models.UserUpsert) error
	GetOrCreateDevUser(ctx context.Context) (*models.User, error)
}

// Handler handles sign-in flows (login redirect, provider callback, dev login, logout)
type Handler struct {
	cfg      *config.Config
	codec    *SessionCodec
	userInfo UserInfoFetcher
	users    UserDirectory
	logger   *zap.Logger
}

// NewHandler creates a new auth handler
func NewHandler(cfg *config.Config, codec *SessionCodec, userInfo UserInfoFetcher, users UserDirectory, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		codec:    codec,
		userInfo: userInfo,
		users:    users,
		logger:   logger,
	}
}

// HandleLogin redirects to the provider portal. The requested destination
// travels through the provider as the state parameter.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	redirect := SafeRedirectPath(r.URL.Query().Get("redirect"))

	if h.cfg.Auth.DevMode {
		http.Redirect(w, r, DevLoginPath+"?"+url.Values{"redirect": {redirect}}.Encode(), http.StatusFound)
		return
	}

	if h.cfg.OAuth.PortalURL == "" {
		h.logger.Error("oauth portal not configured")
		_ = utils.WriteError(w, http.StatusInternalServerError, "Authentication not configured", nil)
		return
	}

	http.Redirect(w, r, BuildLoginURL(h.cfg.OAuth, redirect), http.StatusFound)
}

// HandleCallback exchanges the provider token, upserts the user, sets the
// session cookie and redirects to the original destination. The cookie is
// only written once every step has succeeded.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Auth.DevMode {
		http.Redirect(w, r, DevLoginPath, http.StatusFound)
		return
	}

	query := r.URL.Query()
	token := query.Get("token")
	if token == "" {
		_ = utils.WriteError(w, http.StatusBadRequest, "Missing token", nil)
		return
	}

	ctx := r.Context()

	info, err := h.userInfo.FetchUserInfo(ctx, token)
	if err != nil {
		h.logger.Warn("userinfo exchange failed", zap.Error(err))
		h.authenticationFailed(w)
		return
	}

	now := time.Now().UTC()
	err = h.users.Upsert(ctx, models.UserUpsert{
		OpenID:       info.OpenID,
		Name:         info.Name,
		Email:        info.Email,
		LoginMethod:  info.LoginMethod,
		LastSignedIn: &now,
	})
	if err != nil {
		h.logger.Error("failed to upsert user", zap.String("open_id", info.OpenID), zap.Error(err))
		h.authenticationFailed(w)
		return
	}

	sessionToken, err := h.codec.Issue(info.OpenID)
	if err != nil {
		h.logger.Error("failed to issue session", zap.Error(err))
		h.authenticationFailed(w)
		return
	}

	SetSessionCookie(w, sessionToken, h.cfg.IsProduction())

	h.logger.Info("user signed in", zap.String("open_id", info.OpenID))
	http.Redirect(w, r, StateRedirectPath(query.Get("state")), http.StatusFound)
}

// HandleDevLogin signs in as the development identity. 404 outside dev mode.
func (h *Handler) HandleDevLogin(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.Auth.DevMode {
		_ = utils.WriteError(w, http.StatusNotFound, "Not found", nil)
		return
	}

	user, err := h.users.GetOrCreateDevUser(r.Context())
	if err != nil {
		h.logger.Error("failed to load dev user", zap.Error(err))
		h.authenticationFailed(w)
		return
	}

	redirect := SafeRedirectPath(r.URL.Query().Get("redirect"))

	// An unsaved dev user cannot be found again by subject, so a cookie
	// would resolve to anonymous. The cookie-less dev fallback covers it.
	if user.ID == 0 {
		h.logger.Debug("dev login without storage, no session issued")
		http.Redirect(w, r, redirect, http.StatusFound)
		return
	}

	sessionToken, err := h.codec.Issue(user.OpenID)
	if err != nil {
		h.logger.Error("failed to issue session", zap.Error(err))
		h.authenticationFailed(w)
		return
	}

	SetSessionCookie(w, sessionToken, h.cfg.IsProduction())
	http.Redirect(w, r, redirect, http.StatusFound)
}

// HandleLogout clears the session cookie. Always succeeds.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ClearSessionCookie(w, h.cfg.IsProduction())
	_ = utils.WriteOK(w, map[string]bool{"success": true})
}

func (h *Handler) authenticationFailed(w http.ResponseWriter) {
	_ = utils.WriteError(w, http.StatusInternalServerError, "Authentication failed", nil)
}

// BuildLoginURL returns the provider portal URL for the given destination path
func BuildLoginURL(cfg config.OAuthConfig, redirectPath string) string {
	params := url.Values{
		"app_id":       {cfg.AppID},
		"callback_url": {cfg.LoginCallbackURL()},
		"state":        {SafeRedirectPath(redirectPath)},
	}
	sep := "?"
	if strings.Contains(cfg.PortalURL, "?") {
		sep = "&"
	}
	return cfg.PortalURL + sep + params.Encode()
}

// StateRedirectPath decodes the callback state into a local path
func StateRedirectPath(state string) string {
	if decoded, err := url.PathUnescape(state); err == nil {
		state = decoded
	}
	return SafeRedirectPath(state)
}

// SafeRedirectPath returns p when it is a local absolute path, otherwise "/"
func SafeRedirectPath(p string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	return p
}
