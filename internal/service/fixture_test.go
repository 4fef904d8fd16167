package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"restaurant-catalog/internal/auth"
	"restaurant-catalog/internal/repository"
	"restaurant-catalog/internal/service"
	"restaurant-catalog/internal/testutil"

	"gorm.io/gorm"
)

var adminP = auth.AdminPrincipal{AdminID: 1, Subject: "admin"}

type fakeStore struct {
	mu      sync.Mutex
	blobs   map[string]string
	puts    int
	failOn  int // 1-based Put call that fails, 0 = never
	byName  bool // url depends only on folder and filename, like the local store
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{blobs: map[string]string{}}
}

func (s *fakeStore) Put(ctx context.Context, folder, filename, contentType string, body io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.failOn == s.puts {
		return "", errors.New("bucket unavailable")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("https://blobs.test/%s/%d_%s", folder, s.puts, filename)
	if s.byName {
		url = fmt.Sprintf("https://blobs.test/%s/%s", folder, filename)
	}
	s.blobs[url] = string(data)
	return url, nil
}

func (s *fakeStore) Delete(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, url)
	s.deleted = append(s.deleted, url)
	return nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []service.CatalogEvent
}

func (r *eventRecorder) Publish(e service.CatalogEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	ctx         context.Context
	db          *gorm.DB
	store       *fakeStore
	events      *eventRecorder
	tokens      *auth.TokenManager
	auth        service.AuthService
	restaurants service.RestaurantService
	categories  service.CategoryService
	products    service.ProductService
	media       service.MediaService
	audit       service.AuditService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	restaurantRepo := repository.NewRestaurantRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	f := &fixture{
		ctx:    context.Background(),
		db:     db,
		store:  newFakeStore(),
		events: &eventRecorder{},
		tokens: auth.NewTokenManager("test-secret", time.Hour),
	}
	f.auth = service.NewAuthService(userRepo, restaurantRepo, f.tokens)
	f.restaurants = service.NewRestaurantService(restaurantRepo, productRepo, auditRepo, txManager, f.events)
	f.categories = service.NewCategoryService(categoryRepo, auditRepo, txManager, f.events)
	f.products = service.NewProductService(productRepo, restaurantRepo, categoryRepo, auditRepo, txManager, f.events)
	f.media = service.NewMediaService(f.store, productRepo, restaurantRepo, auditRepo, txManager, f.events, nil)
	f.audit = service.NewAuditService(auditRepo)
	return f
}

// restaurant creates a restaurant and returns a principal acting for it.
func (f *fixture) restaurant(t *testing.T, email string) (*service.RestaurantResponse, auth.RestaurantPrincipal) {
	t.Helper()
	r, err := f.restaurants.CreateRestaurant(f.ctx, adminP, service.CreateRestaurantRequest{
		Name:        "Restaurant " + email,
		Email:       email,
		Password:    "secret123",
		CountryCode: "IN",
		StateCode:   "KA",
		CityCode:    "BLR",
	})
	if err != nil {
		t.Fatalf("create restaurant %s: %v", email, err)
	}
	return r, auth.RestaurantPrincipal{RestaurantID: r.ID, Subject: r.Email}
}

func (f *fixture) category(t *testing.T, name string) uint {
	t.Helper()
	c, err := f.categories.CreateCategory(f.ctx, adminP, service.CreateCategoryRequest{Name: name})
	if err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return c.ID
}

func (f *fixture) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	if err := f.db.Table(table).Count(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func ptr[T any](v T) *T { return &v }
