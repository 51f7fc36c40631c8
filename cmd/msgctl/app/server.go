// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"k8s.io/utils/clock"

	"github.com/stacklok/toolhive-messaging/channel"
	"github.com/stacklok/toolhive-messaging/httperr"
	"github.com/stacklok/toolhive-messaging/messages"
	"github.com/stacklok/toolhive-messaging/messaging"
	"github.com/stacklok/toolhive-messaging/oauth"
	"github.com/stacklok/toolhive-messaging/recovery"
)

const (
	codeLifetime        = 10 * time.Minute
	accessTokenLifetime = time.Hour
)

var (
	errUnexpectedMessage = errors.New("unexpected message type for this endpoint")
	errNoRedirectURI     = errors.New("redirect_uri is required")
	errUnknownCode       = errors.New("authorization code is invalid or expired")
	errUnknownRefresh    = errors.New("refresh token is invalid")
	errClientMismatch    = errors.New("grant was issued to another client")
	errRedirectMismatch  = errors.New("redirect_uri does not match the authorization request")
	errVerifierMismatch  = errors.New("code_verifier does not match the code_challenge")
)

// grant is what an authorization code or refresh token stands for.
type grant struct {
	clientID    string
	redirectURI string
	challenge   string
	method      string
	scope       string
	expires     time.Time
}

// authServer is a minimal authorization server exchanging protected
// messages: authorization requests and responses through the user agent and
// signed token requests at the token endpoint. Grants live in memory.
type authServer struct {
	channel  *channel.Channel
	logger   *slog.Logger
	clock    clock.PassiveClock
	newToken func() string

	mu      sync.Mutex
	codes   map[string]grant
	refresh map[string]grant
}

type authServerOption func(*authServer)

func withServerClock(c clock.PassiveClock) authServerOption {
	return func(s *authServer) {
		s.clock = c
	}
}

func withTokenGenerator(gen func() string) authServerOption {
	return func(s *authServer) {
		s.newToken = gen
	}
}

func newAuthServer(ch *channel.Channel, logger *slog.Logger, opts ...authServerOption) *authServer {
	s := &authServer{
		channel:  ch,
		logger:   logger,
		clock:    clock.RealClock{},
		newToken: uuid.NewString,
		codes:    make(map[string]grant),
		refresh:  make(map[string]grant),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newRouter mounts the authorization server endpoints, a health check and
// the metrics handler.
func newRouter(s *authServer, metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		recovery.New(s.logger),
		middleware.Timeout(serverRequestTimeout),
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	r.Get("/authorize", s.authorize)
	r.Post("/authorize", s.authorize)
	r.Post("/token", s.token)
	r.Get("/callback", s.callback)
	r.Post("/callback", s.callback)
	return r
}

func (s *authServer) authorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	msg, err := s.channel.ReadRequest(ctx, r)
	if err != nil {
		s.channel.WriteError(w, err)
		return
	}
	req, ok := msg.(*messages.AuthorizationRequest)
	if !ok {
		s.channel.WriteError(w, unexpected(msg))
		return
	}
	// Without a redirect URI there is nowhere to send an indirect response.
	if req.RedirectURI == "" {
		s.channel.WriteError(w, httperr.WithProtocolCode(errNoRedirectURI, http.StatusBadRequest, oauth.ErrorInvalidRequest))
		return
	}

	if req.CodeChallenge == "" {
		resp, err := messages.NewIndirectErrorResponse(req, oauth.ErrorInvalidRequest, "code_challenge is required")
		if err != nil {
			s.channel.WriteError(w, err)
			return
		}
		s.write(w, r, resp)
		return
	}

	code := s.newToken()
	s.mu.Lock()
	s.codes[code] = grant{
		clientID:    req.ClientID,
		redirectURI: req.RedirectURI,
		challenge:   req.CodeChallenge,
		method:      req.CodeChallengeMethod,
		scope:       req.Scope,
		expires:     s.clock.Now().Add(codeLifetime),
	}
	s.mu.Unlock()

	resp, err := messages.NewAuthorizationResponse(req, code)
	if err != nil {
		s.channel.WriteError(w, err)
		return
	}
	s.write(w, r, resp)
}

func (s *authServer) token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	msg, err := s.channel.ReadRequest(ctx, r)
	if err != nil {
		s.channel.WriteError(w, err)
		return
	}
	req, ok := msg.(*messages.TokenRequest)
	if !ok {
		s.channel.WriteError(w, unexpected(msg))
		return
	}

	var g grant
	switch req.GrantType {
	case oauth.GrantTypeAuthorizationCode:
		g, err = s.redeemCode(req)
	case oauth.GrantTypeRefreshToken:
		g, err = s.redeemRefresh(req)
	default:
		s.write(w, r, tokenError(oauth.ErrorUnsupportedGrantType, "grant_type is not supported"))
		return
	}
	if err != nil {
		s.logger.DebugContext(ctx, "token request refused",
			slog.String("client_id", req.ClientID), slog.Any("error", err))
		s.write(w, r, tokenError(oauth.ErrorInvalidGrant, err.Error()))
		return
	}

	s.write(w, r, s.issue(g))
}

// callback receives indirect responses addressed to this server and echoes
// the verified message as JSON.
func (s *authServer) callback(w http.ResponseWriter, r *http.Request) {
	msg, err := s.channel.ReadRequest(r.Context(), r)
	if err != nil {
		s.channel.WriteError(w, err)
		return
	}
	fields, err := messaging.Fields(msg)
	if err != nil {
		s.channel.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(struct {
		Type   string            `json:"type"`
		Fields map[string]string `json:"fields"`
	}{Type: messaging.NameOf(msg), Fields: fields})
}

func (s *authServer) redeemCode(req *messages.TokenRequest) (grant, error) {
	s.mu.Lock()
	g, ok := s.codes[req.Code]
	// codes are single use, even when redemption fails
	delete(s.codes, req.Code)
	s.mu.Unlock()

	switch {
	case !ok || !s.clock.Now().Before(g.expires):
		return grant{}, errUnknownCode
	case g.clientID != req.ClientID:
		return grant{}, errClientMismatch
	case req.RedirectURI != g.redirectURI:
		return grant{}, errRedirectMismatch
	case !oauth.VerifyCodeChallenge(req.CodeVerifier, g.challenge, g.method):
		return grant{}, errVerifierMismatch
	}
	return g, nil
}

func (s *authServer) redeemRefresh(req *messages.TokenRequest) (grant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.refresh[req.RefreshToken]
	if !ok {
		return grant{}, errUnknownRefresh
	}
	if g.clientID != req.ClientID {
		return grant{}, errClientMismatch
	}
	// rotate
	delete(s.refresh, req.RefreshToken)
	return g, nil
}

func (s *authServer) issue(g grant) *messages.TokenResponse {
	refresh := s.newToken()
	s.mu.Lock()
	s.refresh[refresh] = g
	s.mu.Unlock()

	return &messages.TokenResponse{
		AccessToken:  s.newToken(),
		TokenType:    oauth.TokenTypeBearer,
		ExpiresIn:    int64(accessTokenLifetime / time.Second),
		RefreshToken: refresh,
		Scope:        g.scope,
	}
}

func (s *authServer) write(w http.ResponseWriter, r *http.Request, msg messaging.Message) {
	if err := s.channel.WriteResponse(r.Context(), w, msg); err != nil {
		s.channel.WriteError(w, err)
	}
}

func tokenError(code, description string) *messages.ErrorResponse {
	return &messages.ErrorResponse{
		ErrorFields: messages.ErrorFields{Code: code, Description: description},
	}
}

func unexpected(msg messaging.Message) error {
	return httperr.WithProtocolCode(
		fmt.Errorf("%w: %s", errUnexpectedMessage, messaging.NameOf(msg)),
		http.StatusBadRequest, oauth.ErrorInvalidRequest)
}
