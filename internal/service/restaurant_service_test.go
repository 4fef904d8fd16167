package service_test

import (
	"errors"
	"testing"

	"restaurant-catalog/internal/model"
	"restaurant-catalog/internal/service"
	"restaurant-catalog/pkg/apperror"
)

func TestCreateRestaurantDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.restaurant(t, "dup@bistro.test")

	_, err := f.restaurants.CreateRestaurant(f.ctx, adminP, service.CreateRestaurantRequest{
		Name:     "Second",
		Email:    "dup@bistro.test",
		Password: "secret123",
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if n := f.count(t, "restaurants"); n != 1 {
		t.Fatalf("expected 1 restaurant row, got %d", n)
	}
}

func TestCreateRestaurantRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	_, owner := f.restaurant(t, "owner@bistro.test")

	_, err := f.restaurants.CreateRestaurant(f.ctx, owner, service.CreateRestaurantRequest{
		Name: "Sneaky", Email: "sneaky@bistro.test", Password: "secret123",
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.restaurants.CreateRestaurant(f.ctx, nil, service.CreateRestaurantRequest{}); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected ErrForbidden without principal, got %v", err)
	}
}

func TestDeleteRestaurantCascadesToProducts(t *testing.T) {
	f := newFixture(t)
	r, owner := f.restaurant(t, "gone@bistro.test")
	other, _ := f.restaurant(t, "stays@bistro.test")

	product, err := f.products.CreateProduct(f.ctx, owner, r.ID, service.CreateProductRequest{Name: "Dosa"})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if err := f.restaurants.DeleteRestaurant(f.ctx, adminP, r.ID); err != nil {
		t.Fatalf("delete restaurant: %v", err)
	}

	if _, err := f.restaurants.GetRestaurant(f.ctx, r.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("deleted restaurant should be NotFound, got %v", err)
	}
	list, total, err := f.restaurants.ListRestaurants(f.ctx, 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(list) != 1 || list[0].ID != other.ID {
		t.Fatalf("list should only hold the live restaurant, got %+v (total %d)", list, total)
	}
	if _, err := f.products.GetProduct(f.ctx, product.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("product of deleted restaurant should be NotFound, got %v", err)
	}
	if _, err := f.products.ListProductsByRestaurant(f.ctx, r.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("listing products of deleted restaurant should be NotFound, got %v", err)
	}

	// rows survive at storage level, flagged
	var stored model.Restaurant
	if err := f.db.First(&stored, r.ID).Error; err != nil {
		t.Fatalf("restaurant row missing: %v", err)
	}
	if !stored.IsDeleted {
		t.Fatal("restaurant row should be flagged deleted")
	}
	var storedProduct model.Product
	if err := f.db.First(&storedProduct, product.ID).Error; err != nil {
		t.Fatalf("product row missing: %v", err)
	}
	if !storedProduct.IsDeleted {
		t.Fatal("product row should be flagged deleted")
	}

	if err := f.restaurants.DeleteRestaurant(f.ctx, adminP, r.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("second delete should be NotFound, got %v", err)
	}
	if _, err := f.restaurants.UpdateRestaurant(f.ctx, adminP, r.ID, service.UpdateRestaurantRequest{Name: ptr("x")}); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("update of deleted restaurant should be NotFound, got %v", err)
	}
}

func TestDeletedRestaurantEmailStaysTaken(t *testing.T) {
	f := newFixture(t)
	r, _ := f.restaurant(t, "old@bistro.test")
	if err := f.restaurants.DeleteRestaurant(f.ctx, adminP, r.ID); err != nil {
		t.Fatal(err)
	}

	_, err := f.restaurants.CreateRestaurant(f.ctx, adminP, service.CreateRestaurantRequest{
		Name: "Reborn", Email: "old@bistro.test", Password: "secret123",
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUpdateRestaurant(t *testing.T) {
	f := newFixture(t)
	r, _ := f.restaurant(t, "a@bistro.test")
	f.restaurant(t, "b@bistro.test")

	_, err := f.restaurants.UpdateRestaurant(f.ctx, adminP, r.ID, service.UpdateRestaurantRequest{Email: ptr("b@bistro.test")})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected ErrConflict when taking another email, got %v", err)
	}

	updated, err := f.restaurants.UpdateRestaurant(f.ctx, adminP, r.ID, service.UpdateRestaurantRequest{
		Name:        ptr("Renamed"),
		Email:       ptr("a@bistro.test"),
		StaffRating: ptr(4.5),
		PureVeg:     ptr(true),
		Password:    ptr("newsecret"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Renamed" || updated.StaffRating != 4.5 || !updated.PureVeg {
		t.Fatalf("unexpected restaurant %+v", updated)
	}
	if updated.CityCode != "BLR" {
		t.Fatalf("absent fields must be kept, city_code = %q", updated.CityCode)
	}

	if _, err := f.auth.Authenticate(f.ctx, service.LoginRequest{Username: "a@bistro.test", Password: "newsecret"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := f.auth.Authenticate(f.ctx, service.LoginRequest{Username: "a@bistro.test", Password: "secret123"}); !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
}

func TestListRestaurantsWindow(t *testing.T) {
	f := newFixture(t)
	for _, email := range []string{"1@r.test", "2@r.test", "3@r.test"} {
		f.restaurant(t, email)
	}

	page, total, err := f.restaurants.ListRestaurants(f.ctx, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(page) != 1 || page[0].Email != "2@r.test" {
		t.Fatalf("unexpected page %+v (total %d)", page, total)
	}
}

func TestGetPublicProfile(t *testing.T) {
	f := newFixture(t)
	r, owner := f.restaurant(t, "Spice.Route@bistro.test")
	if _, err := f.products.CreateProduct(f.ctx, owner, r.ID, service.CreateProductRequest{Name: "Biryani"}); err != nil {
		t.Fatal(err)
	}

	profile, err := f.restaurants.GetPublicProfile(f.ctx, "in", "ka", "blr", "spice.route")
	if err != nil {
		t.Fatalf("public profile: %v", err)
	}
	if profile.Restaurant.ID != r.ID || len(profile.Products) != 1 || profile.Products[0].Name != "Biryani" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	if _, err := f.restaurants.GetPublicProfile(f.ctx, "in", "ka", "mys", "spice.route"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("wrong city should be NotFound, got %v", err)
	}
}

func TestRestaurantWritesAreAudited(t *testing.T) {
	f := newFixture(t)
	r, _ := f.restaurant(t, "audit@bistro.test")
	if err := f.restaurants.DeleteRestaurant(f.ctx, adminP, r.ID); err != nil {
		t.Fatal(err)
	}

	logs, total, err := f.audit.GetAuditLogs(f.ctx, adminP, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Fatalf("expected 2 audit entries, got %d", total)
	}
	actions := map[string]bool{}
	for _, l := range logs {
		actions[l.Action] = true
		if l.ActorRole != "admin" || l.ActorID != adminP.AdminID || l.EntityID != r.ID {
			t.Fatalf("unexpected audit entry %+v", l)
		}
	}
	if !actions[model.ActionCreateRestaurant] || !actions[model.ActionDeleteRestaurant] {
		t.Fatalf("missing actions in %v", actions)
	}

	want := []string{service.EventRestaurantCreated, service.EventRestaurantDeleted}
	got := f.events.types()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("events = %v, want %v", got, want)
	}
}
