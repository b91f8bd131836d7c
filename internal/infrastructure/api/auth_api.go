package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"shopmetrics-backend/internal/application"
	"shopmetrics-backend/internal/domain"
)

// AuthProvider is the slice of the auth service the handlers need.
type AuthProvider interface {
	Register(ctx context.Context, input application.RegisterInput) (*application.AuthResult, error)
	Login(ctx context.Context, email, password string) (*application.AuthResult, error)
}

// AuthAPI serves registration and login.
type AuthAPI struct {
	auth   AuthProvider
	logger zerolog.Logger
}

// NewAuthAPI creates a new auth API
func NewAuthAPI(auth AuthProvider, logger zerolog.Logger) *AuthAPI {
	return &AuthAPI{auth: auth, logger: logger}
}

type registerRequest struct {
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	ShopDomain  string   `json:"shop_domain"`
	AccessToken string   `json:"access_token"`
	Scopes      []string `json:"scopes"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token  string         `json:"token"`
	User   userResponse   `json:"user"`
	Tenant tenantResponse `json:"tenant"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type tenantResponse struct {
	ID         string `json:"id"`
	ShopDomain string `json:"shop_domain"`
}

func sessionResponseFrom(result *application.AuthResult) sessionResponse {
	return sessionResponse{
		Token: result.Token,
		User: userResponse{
			ID:    result.User.ID.String(),
			Email: result.User.Email,
		},
		Tenant: tenantResponse{
			ID:         result.Tenant.ID.String(),
			ShopDomain: result.Tenant.ShopDomain,
		},
	}
}

// HandleRegister processes POST /api/auth/register.
func (a *AuthAPI) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	result, err := a.auth.Register(r.Context(), application.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		ShopDomain:  req.ShopDomain,
		AccessToken: req.AccessToken,
		Scopes:      req.Scopes,
	})
	if err != nil {
		writeError(w, a.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponseFrom(result))
}

// HandleLogin processes POST /api/auth/login.
func (a *AuthAPI) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, a.logger, domain.ErrValidation)
		return
	}

	result, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, a.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponseFrom(result))
}
