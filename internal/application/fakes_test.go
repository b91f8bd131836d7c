package application

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/google/uuid"

	"shopmetrics-backend/internal/domain"
	"shopmetrics-backend/internal/ports"
)

type fakeTenantRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*domain.Tenant
	created []*domain.Tenant
}

func newFakeTenantRepo(tenants ...*domain.Tenant) *fakeTenantRepo {
	repo := &fakeTenantRepo{byID: make(map[uuid.UUID]*domain.Tenant)}
	for _, tenant := range tenants {
		repo.byID[tenant.ID] = tenant
	}
	return repo
}

func (r *fakeTenantRepo) Create(_ context.Context, tenant *domain.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.ShopDomain == tenant.ShopDomain {
			return domain.ErrDuplicateRegistration
		}
	}
	r.byID[tenant.ID] = tenant
	r.created = append(r.created, tenant)
	return nil
}

func (r *fakeTenantRepo) GetByDomain(_ context.Context, shopDomain string) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tenant := range r.byID {
		if tenant.ShopDomain == shopDomain {
			return tenant, nil
		}
	}
	return nil, domain.ErrUnknownTenant
}

func (r *fakeTenantRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tenant, ok := r.byID[id]; ok {
		return tenant, nil
	}
	return nil, domain.ErrUnknownTenant
}

func (r *fakeTenantRepo) remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	for i, tenant := range r.created {
		if tenant.ID == id {
			r.created = append(r.created[:i], r.created[i+1:]...)
			break
		}
	}
}

func (r *fakeTenantRepo) UpdateWebhookState(_ context.Context, id uuid.UUID, state []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tenant, ok := r.byID[id]; ok {
		tenant.WebhookState = state
	}
	return nil
}

type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return domain.ErrDuplicateRegistration
	}
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.byEmail[email]; ok {
		return user, nil
	}
	return nil, domain.ErrNotFound
}

// fakeRegistrationStore commits the tenant and user together, undoing the
// tenant when the user insert fails.
type fakeRegistrationStore struct {
	tenants *fakeTenantRepo
	users   *fakeUserRepo
	userErr error
}

func (s *fakeRegistrationStore) CreateTenantWithUser(ctx context.Context, tenant *domain.Tenant, user *domain.User) error {
	if err := s.tenants.Create(ctx, tenant); err != nil {
		return err
	}
	err := s.userErr
	if err == nil {
		err = s.users.Create(ctx, user)
	}
	if err != nil {
		s.tenants.remove(tenant.ID)
		return err
	}
	return nil
}

type fakeEntityStore struct {
	mu        sync.Mutex
	customers []*domain.Customer
	orders    []*domain.Order
	products  []*domain.Product
	events    []*domain.WebhookEvent

	upsertErr error
	auditErr  error
}

func (s *fakeEntityStore) UpsertCustomer(_ context.Context, customer *domain.Customer) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers = append(s.customers, customer)
	return nil
}

func (s *fakeEntityStore) UpsertOrder(_ context.Context, order *domain.Order) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, order)
	return nil
}

func (s *fakeEntityStore) UpsertProduct(_ context.Context, product *domain.Product) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, product)
	return nil
}

func (s *fakeEntityStore) LogWebhookEvent(_ context.Context, event *domain.WebhookEvent) error {
	if s.auditErr != nil {
		return s.auditErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// fakePlatformClient serves canned listings and records the call order.
type fakePlatformClient struct {
	customers []goshopify.Customer
	orders    []goshopify.Order
	products  []goshopify.Product
	webhooks  []goshopify.Webhook

	customersErr error
	ordersErr    error
	productsErr  error
	webhooksErr  error
	createErr    error

	calls   []string
	created []goshopify.Webhook
	nextID  uint64
}

func (c *fakePlatformClient) ListCustomers(context.Context, int) ([]goshopify.Customer, error) {
	c.calls = append(c.calls, "customers")
	return c.customers, c.customersErr
}

func (c *fakePlatformClient) ListOrders(context.Context, int) ([]goshopify.Order, error) {
	c.calls = append(c.calls, "orders")
	return c.orders, c.ordersErr
}

func (c *fakePlatformClient) ListProducts(context.Context, int) ([]goshopify.Product, error) {
	c.calls = append(c.calls, "products")
	return c.products, c.productsErr
}

func (c *fakePlatformClient) ListWebhooks(context.Context) ([]goshopify.Webhook, error) {
	return c.webhooks, c.webhooksErr
}

func (c *fakePlatformClient) CreateWebhook(_ context.Context, topic, address string) (*goshopify.Webhook, error) {
	if c.createErr != nil {
		return nil, c.createErr
	}
	c.nextID++
	webhook := goshopify.Webhook{Id: c.nextID, Topic: topic, Address: address, Format: "json"}
	c.created = append(c.created, webhook)
	return &webhook, nil
}

func (c *fakePlatformClient) DeleteWebhook(context.Context, uint64) error { return nil }

type fakeClientFactory struct {
	client ports.PlatformClient
	err    error

	lastDomain string
	lastToken  string
}

func (f *fakeClientFactory) ClientFor(shopDomain, accessToken string) (ports.PlatformClient, error) {
	f.lastDomain = shopDomain
	f.lastToken = accessToken
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

// fakeCrypto is a reversible stand-in for the AES service.
type fakeCrypto struct{ err error }

func (c *fakeCrypto) Encrypt(plaintext string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return "enc:" + plaintext, nil
}

func (c *fakeCrypto) Decrypt(ciphertext string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return strings.TrimPrefix(ciphertext, "enc:"), nil
}

type fakeIngestor struct {
	done chan *domain.Tenant
	err  error
}

func newFakeIngestor() *fakeIngestor {
	return &fakeIngestor{done: make(chan *domain.Tenant, 1)}
}

func (i *fakeIngestor) IngestTenantData(_ context.Context, tenant *domain.Tenant) error {
	i.done <- tenant
	return i.err
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
	hits    int
}

func newFakeCache() *fakeCache { return &fakeCache{entries: make(map[string][]byte)} }

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	payload, ok := c.entries[key]
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false
	}
	c.hits++
	return true
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.entries[key] = payload
}
