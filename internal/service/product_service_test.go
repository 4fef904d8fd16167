package service_test

import (
	"errors"
	"testing"

	"restaurant-catalog/internal/model"
	"restaurant-catalog/internal/service"
	"restaurant-catalog/pkg/apperror"

	"github.com/shopspring/decimal"
)

func size(label, price string) service.SizePayload {
	return service.SizePayload{SizeLabel: label, Price: ptr(decimal.RequireFromString(price))}
}

func TestCreateProductRoundTrip(t *testing.T) {
	f := newFixture(t)
	r, owner := f.restaurant(t, "roundtrip@bistro.test")
	starter := f.category(t, "Starter")
	drinks := f.category(t, "Drinks")

	created, err := f.products.CreateProduct(f.ctx, owner, r.ID, service.CreateProductRequest{
		Name:        "Masala Chai",
		Veg:         ptr(true),
		Iced:        true,
		Description: "Spiced tea",
		CategoryIDs: []uint{drinks, starter, drinks},
		Sizes:       []service.SizePayload{size("S", "2.5"), size("M", "3.25"), size("L", "4")},
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	got, err := f.products.GetProduct(f.ctx, created.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.Name != "Masala Chai" || got.Veg == nil || !*got.Veg || !got.Iced || !got.Available {
		t.Fatalf("unexpected product %+v", got)
	}
	labels := []string{}
	for _, s := range got.Sizes {
		labels = append(labels, s.SizeLabel)
	}
	if len(labels) != 3 || labels[0] != "S" || labels[1] != "M" || labels[2] != "L" {
		t.Fatalf("sizes must keep insertion order, got %v", labels)
	}
	if !got.Sizes[1].Price.Equal(decimal.RequireFromString("3.25")) {
		t.Fatalf("price = %s", got.Sizes[1].Price)
	}
	if len(got.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %+v", got.Categories)
	}

	list, err := f.products.ListProductsByRestaurant(f.ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestCreateProductDefaultsAvailable(t *testing.T) {
	f := newFixture(t)
	r, owner := f.restaurant(t, "defaults@bistro.test")

	p, err := f.products.CreateProduct(f.ctx, owner, r.ID, service.CreateProductRequest{Name: "Idli"})
	if err != nil {
		t.Fatal(err)
	}
	if !p.Available || p.Veg != nil {
		t.Fatalf("expected available=true and veg unknown, got %+v", p)
	}

	off, err := f.products.CreateProduct(f.ctx, owner, r.ID, service.CreateProductRequest{Name: "Vada", Available: ptr(false)})
	if err != nil {
		t.Fatal(err)
	}
	if off.Available {
		t.Fatal("explicit available=false must be kept")
	}
}

func TestCreateProductDuplicateSizeLabelsRollBack(t *testing.T) {
	f := newFixture(t)
	r, owner := f.restaurant(t, "dupsizes@bistro.test")
	cat := f.category(t, "Mains")

	_, err := f.products.CreateProduct(f.ctx, owner, r.ID, service.CreateProductRequest{
		Name:        "Thali",
		CategoryIDs: []uint{cat},
		Sizes:       []service.SizePayload{size("Regular", "5"), size("Regular", "6")},
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	for _, table := range []string{"products", "product_sizes", "product_category"} {
		if n := f.count(t, table); n != 0 {
			t.Fatalf("%s should be empty after rollback, has %d rows", table, n)
		}
	}
	var audits int64
	f.db.Model(&model.AuditLog{}).Where("action = ?", model.ActionCreateProduct).Count(&audits)
	if audits != 0 {
		t.Fatalf("audit entry must roll back too, got %d", audits)
	}
	for _, e := range f.events.types() {
		if e == service.EventProductCreated {
			t.Fatal("no event may be published for a rolled back write")
		}
	}
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)
	r, owner := f.restaurant(t, "validation@bistro.test")

	tests := []struct {
		name string
		req  service.CreateProductRequest
	}{
		{"unknown category", service.CreateProductRequest{Name: "X", CategoryIDs: []uint{999}}},
		{"negative price", service.CreateProductRequest{Name: "X", Sizes: []service.SizePayload{size("S", "-1")}}},
		{"blank label", service.CreateProductRequest{Name: "X", Sizes: []service.SizePayload{size("  ", "1")}}},
		{"missing price", service.CreateProductRequest{Name: "X", Sizes: []service.SizePayload{size("M", "2"), {SizeLabel: "L"}}}},
		{"long label", service.CreateProductRequest{Name: "X", Sizes: []service.SizePayload{size("this label is far too long", "1")}}},
		{"blank name", service.CreateProductRequest{Name: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.products.CreateProduct(f.ctx, owner, r.ID, tt.req); !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
	if n := f.count(t, "products"); n != 0 {
		t.Fatalf("no product should be stored, got %d", n)
	}
}

func TestCreateProductAuthorization(t *testing.T) {
	f := newFixture(t)
	r, _ := f.restaurant(t, "mine@bistro.test")
	_, intruder := f.restaurant(t, "intruder@bistro.test")

	if _, err := f.products.CreateProduct(f.ctx, intruder, r.ID, service.CreateProductRequest{Name: "X"}); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("other restaurant: expected ErrForbidden, got %v", err)
	}
	if _, err := f.products.CreateProduct(f.ctx, adminP, r.ID, service.CreateProductRequest{Name: "X"}); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("admin: expected ErrForbidden, got %v", err)
	}

	if err := f.restaurants.DeleteRestaurant(f.ctx, adminP, r.ID); err != nil {
		t.Fatal(err)
	}
	owner := intruder
	owner.RestaurantID = r.ID
	if _, err := f.products.CreateProduct(f.ctx, owner, r.ID, service.CreateProductRequest{Name: "X"}); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("deleted restaurant: expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProductSizes(t *testing.T) {
	f := newFixture(t)
	r, owner := f.restaurant(t, "sizes@bistro.test")
	p, err := f.products.CreateProduct(f.ctx, owner, r.ID, service.CreateProductRequest{
		Name:  "Lassi",
		Sizes: []service.SizePayload{size("S", "1.5"), size("L", "3")},
	})
	if err != nil {
		t.Fatal(err)
	}

	// absent sizes are kept
	kept, err := f.products.UpdateProduct(f.ctx, owner, p.ID, service.UpdateProductRequest{Name: ptr("Sweet Lassi")})
	if err != nil {
		t.Fatal(err)
	}
	if kept.Name != "Sweet Lassi" || len(kept.Sizes) != 2 {
		t.Fatalf("sizes must survive an update without sizes, got %+v", kept)
	}

	replaced, err := f.products.UpdateProduct(f.ctx, owner, p.ID, service.UpdateProductRequest{
		Sizes: &[]service.SizePayload{size("M", "2")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(replaced.Sizes) != 1 || replaced.Sizes[0].SizeLabel != "M" {
		t.Fatalf("sizes must be replaced, got %+v", replaced.Sizes)
	}

	cleared, err := f.products.UpdateProduct(f.ctx, owner, p.ID, service.UpdateProductRequest{
		Sizes: &[]service.SizePayload{},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(cleared.Sizes) != 0 {
		t.Fatalf("empty sizes must clear, got %+v", cleared.Sizes)
	}
	if n := f.count(t, "product_sizes"); n != 0 {
		t.Fatalf("product_sizes should be empty, has %d", n)
	}
}

func TestUpdateProductRejectsSizeWithoutPrice(t *testing.T) {
	f := newFixture(t)
	r, owner := f.restaurant(t, "noprice@bistro.test")
	p, err := f.products.CreateProduct(f.ctx, owner, r.ID, service.CreateProductRequest{
		Name:  "Chai",
		Sizes: []service.SizePayload{size("Cup", "0.5")},
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.products.UpdateProduct(f.ctx, owner, p.ID, service.UpdateProductRequest{
		Sizes: &[]service.SizePayload{{SizeLabel: "Kettle"}},
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	got, err := f.products.GetProduct(f.ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Sizes) != 1 || got.Sizes[0].SizeLabel != "Cup" {
		t.Fatalf("sizes must be unchanged, got %+v", got.Sizes)
	}
}

func TestUpdateProductDuplicateSizesKeepsOldState(t *testing.T) {
	f := newFixture(t)
	r, owner := f.restaurant(t, "keep@bistro.test")
	p, err := f.products.CreateProduct(f.ctx, owner, r.ID, service.CreateProductRequest{
		Name:  "Paratha",
		Sizes: []service.SizePayload{size("1pc", "1")},
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.products.UpdateProduct(f.ctx, owner, p.ID, service.UpdateProductRequest{
		Name:  ptr("Renamed"),
		Sizes: &[]service.SizePayload{size("2pc", "2"), size("2pc", "3")},
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	got, err := f.products.GetProduct(f.ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Paratha" || len(got.Sizes) != 1 || got.Sizes[0].SizeLabel != "1pc" {
		t.Fatalf("failed update must not change anything, got %+v", got)
	}
}

func TestUpdateProductCategories(t *testing.T) {
	f := newFixture(t)
	r, owner := f.restaurant(t, "cats@bistro.test")
	a := f.category(t, "A")
	b := f.category(t, "B")

	p, err := f.products.CreateProduct(f.ctx, owner, r.ID, service.CreateProductRequest{Name: "Samosa", CategoryIDs: []uint{a}})
	if err != nil {
		t.Fatal(err)
	}

	got, err := f.products.UpdateProduct(f.ctx, owner, p.ID, service.UpdateProductRequest{CategoryIDs: &[]uint{b}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Categories) != 1 || got.Categories[0].ID != b {
		t.Fatalf("categories must be replaced, got %+v", got.Categories)
	}

	got, err = f.products.UpdateProduct(f.ctx, owner, p.ID, service.UpdateProductRequest{CategoryIDs: &[]uint{}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Categories) != 0 {
		t.Fatalf("empty category_ids must clear, got %+v", got.Categories)
	}
	if n := f.count(t, "categories"); n != 2 {
		t.Fatalf("categories themselves must survive, got %d", n)
	}

	if _, err := f.products.UpdateProduct(f.ctx, owner, p.ID, service.UpdateProductRequest{CategoryIDs: &[]uint{a, 404}}); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown category, got %v", err)
	}
}

func TestUpdateProductOtherRestaurantForbidden(t *testing.T) {
	f := newFixture(t)
	r, owner := f.restaurant(t, "owner@bistro.test")
	_, intruder := f.restaurant(t, "intruder@bistro.test")

	p, err := f.products.CreateProduct(f.ctx, owner, r.ID, service.CreateProductRequest{
		Name:  "Pav Bhaji",
		Sizes: []service.SizePayload{size("Full", "4")},
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.products.UpdateProduct(f.ctx, intruder, p.ID, service.UpdateProductRequest{
		Name:  ptr("Hijacked"),
		Sizes: &[]service.SizePayload{},
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.products.UpdateAvailability(f.ctx, intruder, p.ID, false); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("availability: expected ErrForbidden, got %v", err)
	}
	if err := f.products.DeleteProduct(f.ctx, intruder, p.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("delete: expected ErrForbidden, got %v", err)
	}
	if _, err := f.products.UpdateProduct(f.ctx, adminP, p.ID, service.UpdateProductRequest{Name: ptr("Admin")}); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("admin: expected ErrForbidden, got %v", err)
	}

	got, err := f.products.GetProduct(f.ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Pav Bhaji" || len(got.Sizes) != 1 || !got.Available {
		t.Fatalf("product must be unchanged, got %+v", got)
	}
}

func TestUpdateAvailabilityOnlyTouchesFlag(t *testing.T) {
	f := newFixture(t)
	r, owner := f.restaurant(t, "avail@bistro.test")
	p, err := f.products.CreateProduct(f.ctx, owner, r.ID, service.CreateProductRequest{
		Name:   "Kulfi",
		Remark: "seasonal",
		Sizes:  []service.SizePayload{size("Stick", "1")},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := f.products.UpdateAvailability(f.ctx, owner, p.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Available || got.Remark != "seasonal" || len(got.Sizes) != 1 {
		t.Fatalf("unexpected product %+v", got)
	}
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t)
	r, owner := f.restaurant(t, "del@bistro.test")
	p, err := f.products.CreateProduct(f.ctx, owner, r.ID, service.CreateProductRequest{Name: "Jalebi"})
	if err != nil {
		t.Fatal(err)
	}

	if err := f.products.DeleteProduct(f.ctx, owner, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.products.GetProduct(f.ctx, p.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.products.UpdateProduct(f.ctx, owner, p.ID, service.UpdateProductRequest{Name: ptr("Back")}); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("mutating a deleted product must be NotFound, got %v", err)
	}
	list, err := f.products.ListProductsByRestaurant(f.ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Fatalf("deleted product listed: %+v", list)
	}
	if n := f.count(t, "products"); n != 1 {
		t.Fatalf("row must stay at storage level, got %d", n)
	}
}
