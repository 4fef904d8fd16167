package repository_test

import (
	"context"
	"errors"
	"testing"

	"restaurant-catalog/internal/model"
	"restaurant-catalog/internal/repository"
	"restaurant-catalog/internal/testutil"

	"gorm.io/gorm"
)

func seedProduct(t *testing.T, db *gorm.DB) (*model.Restaurant, *model.Product) {
	t.Helper()
	ctx := context.Background()
	restaurant := &model.Restaurant{Name: "Udupi", Email: "udupi@bistro.test", PasswordHash: "x"}
	if err := repository.NewRestaurantRepository(db).Create(ctx, restaurant); err != nil {
		t.Fatalf("create restaurant: %v", err)
	}
	product := &model.Product{RestaurantID: restaurant.ID, Name: "Idli", Available: true}
	if err := repository.NewProductRepository(db).Create(ctx, product); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return restaurant, product
}

func TestProductUpdateDoesNotResurrectDeleted(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repository.NewProductRepository(db)
	_, product := seedProduct(t, db)

	stale, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.SoftDelete(ctx, product.ID); err != nil {
		t.Fatal(err)
	}

	stale.Name = "Rava Idli"
	if err := repo.Update(ctx, stale, "name"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected gorm.ErrRecordNotFound, got %v", err)
	}

	got, err := repo.FindByIDIncludingDeleted(ctx, product.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsDeleted || got.Name != "Idli" {
		t.Fatalf("deleted product must stay untouched, got deleted=%v name=%q", got.IsDeleted, got.Name)
	}
}

func TestProductUpdateWritesOnlyGivenColumns(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repository.NewProductRepository(db)
	_, product := seedProduct(t, db)

	stale, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.SetAvailability(ctx, product.ID, false); err != nil {
		t.Fatal(err)
	}

	stale.Name = "Mini Idli"
	if err := repo.Update(ctx, stale, "name"); err != nil {
		t.Fatal(err)
	}

	got, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Mini Idli" || got.Available {
		t.Fatalf("expected name change only, got name=%q available=%v", got.Name, got.Available)
	}
}

func TestRestaurantUpdateDoesNotResurrectDeleted(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repository.NewRestaurantRepository(db)
	restaurant, _ := seedProduct(t, db)

	if err := repo.SoftDeleteCascade(ctx, restaurant.ID); err != nil {
		t.Fatal(err)
	}
	restaurant.LogoURL = "/uploads/1_logo.png"
	if err := repo.Update(ctx, restaurant, "logo_url"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected gorm.ErrRecordNotFound, got %v", err)
	}
	if _, err := repo.FindByID(ctx, restaurant.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("restaurant must stay deleted, got %v", err)
	}
}
