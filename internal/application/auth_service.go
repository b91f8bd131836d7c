package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"shopmetrics-backend/internal/domain"
	"shopmetrics-backend/internal/ports"
)

const (
	sessionTTL        = 7 * 24 * time.Hour
	minPasswordLength = 8
)

// Ingestor runs a full data pull for a tenant. Satisfied by
// *IngestionService; an interface so registration tests can fake it.
type Ingestor interface {
	IngestTenantData(ctx context.Context, tenant *domain.Tenant) error
}

// RegisterInput carries a new storefront registration. Scopes is the access
// scope list granted to the supplied token.
type RegisterInput struct {
	Email       string
	Password    string
	ShopDomain  string
	AccessToken string
	Scopes      []string
}

// AuthResult is a successful registration or login.
type AuthResult struct {
	Token  string
	User   *domain.User
	Tenant *domain.Tenant
}

// AuthService owns registration, login and session-token issuing. A
// registration creates the tenant and its first user, registers webhook
// subscriptions best-effort, and kicks off the initial data ingestion in
// the background.
type AuthService struct {
	tenants      ports.TenantRepository
	users        ports.UserRepository
	registration ports.RegistrationStore
	crypto       ports.EncryptionService
	clients      ports.PlatformClientFactory
	webhooks     *WebhookManager
	ingestor     Ingestor
	jwtSecret    []byte
	logger       zerolog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	tenants ports.TenantRepository,
	users ports.UserRepository,
	registration ports.RegistrationStore,
	crypto ports.EncryptionService,
	clients ports.PlatformClientFactory,
	webhooks *WebhookManager,
	ingestor Ingestor,
	jwtSecret string,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		tenants:      tenants,
		users:        users,
		registration: registration,
		crypto:       crypto,
		clients:      clients,
		webhooks:     webhooks,
		ingestor:     ingestor,
		jwtSecret:    []byte(jwtSecret),
		logger:       logger,
	}
}

// Register creates a tenant and its first dashboard user.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := validateRegisterInput(&input); err != nil {
		return nil, err
	}

	// Check the email up front for a friendly error; the registration
	// store's transaction and the unique indexes backstop races.
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, fmt.Errorf("%w: email %s", domain.ErrDuplicateRegistration, input.Email)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	encryptedToken, err := s.crypto.Encrypt(input.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	tenant := &domain.Tenant{
		ID:          uuid.New(),
		ShopDomain:  input.ShopDomain,
		AccessToken: encryptedToken,
		Scopes:      input.Scopes,
		Status:      domain.TenantStatusActive,
		InstalledAt: now,
	}
	user := &domain.User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: string(passwordHash),
		TenantID:     tenant.ID,
		CreatedAt:    now,
	}
	if err := s.registration.CreateTenantWithUser(ctx, tenant, user); err != nil {
		return nil, err
	}

	s.registerWebhooks(ctx, tenant, input.AccessToken)

	// Initial ingestion runs detached: registration must not block on a
	// full catalog pull.
	go func() {
		if err := s.ingestor.IngestTenantData(context.Background(), tenant); err != nil {
			s.logger.Error().Err(err).
				Str("shop", tenant.ShopDomain).
				Msg("Initial data ingestion failed")
		}
	}()

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("shop", tenant.ShopDomain).
		Str("email", user.Email).
		Msg("Tenant registered")

	return &AuthResult{Token: token, User: user, Tenant: tenant}, nil
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	tenant, err := s.tenants.GetByID(ctx, user.TenantID)
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user, Tenant: tenant}, nil
}

// registerWebhooks subscribes the tenant to the default topics and stores
// the resulting state blob. Failures are recorded on the tenant, never
// surfaced to the registering user.
func (s *AuthService) registerWebhooks(ctx context.Context, tenant *domain.Tenant, accessToken string) {
	client, err := s.clients.ClientFor(tenant.ShopDomain, accessToken)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", tenant.ShopDomain).Msg("Failed to build platform client for webhook registration")
		return
	}

	state, err := s.webhooks.RegisterSubscriptions(ctx, client, tenant.ShopDomain)
	if err != nil {
		s.logger.Warn().Err(err).Str("shop", tenant.ShopDomain).Msg("Webhook registration incomplete")
	}

	if err := s.tenants.UpdateWebhookState(ctx, tenant.ID, state); err != nil {
		s.logger.Error().Err(err).Str("shop", tenant.ShopDomain).Msg("Failed to persist webhook state")
		return
	}
	tenant.WebhookState = state
}

func (s *AuthService) issueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId":   user.ID.String(),
		"email":    user.Email,
		"tenantId": user.TenantID.String(),
		"iat":      now.Unix(),
		"exp":      now.Add(sessionTTL).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

func validateRegisterInput(input *RegisterInput) error {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.ShopDomain = strings.ToLower(strings.TrimSpace(input.ShopDomain))
	input.ShopDomain = strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(input.ShopDomain, "https://"), "http://"), "/")
	input.Scopes = normalizeScopes(input.Scopes)

	switch {
	case input.Email == "" || !strings.Contains(input.Email, "@"):
		return fmt.Errorf("%w: a valid email is required", domain.ErrValidation)
	case len(input.Password) < minPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	case input.ShopDomain == "":
		return fmt.Errorf("%w: shop domain is required", domain.ErrValidation)
	case input.AccessToken == "":
		return fmt.Errorf("%w: access token is required", domain.ErrValidation)
	}
	return nil
}

// normalizeScopes trims entries and drops empty ones; scopes persist as a
// comma-joined list.
func normalizeScopes(scopes []string) []string {
	var out []string
	for _, scope := range scopes {
		if scope = strings.TrimSpace(scope); scope != "" {
			out = append(out, scope)
		}
	}
	return out
}
