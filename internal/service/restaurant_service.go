package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"restaurant-catalog/internal/auth"
	"restaurant-catalog/internal/model"
	"restaurant-catalog/internal/repository"
	"restaurant-catalog/pkg/apperror"
)

// --- Restaurant DTOs ---

type CreateRestaurantRequest struct {
	Name        string   `json:"name" binding:"required,max=255"`
	Email       string   `json:"email" binding:"required,email"`
	Password    string   `json:"password" binding:"required,min=6"`
	CountryCode string   `json:"country_code" binding:"max=5"`
	StateCode   string   `json:"state_code" binding:"max=10"`
	CityCode    string   `json:"city_code" binding:"max=50"`
	Location    string   `json:"location"`
	Type        string   `json:"type"`
	PureVeg     bool     `json:"pure_veg"`
	StaffRating *float64 `json:"staff_rating" binding:"omitempty,gte=0,lte=5"`
	LogoURL     string   `json:"logo_url"`
}

// UpdateRestaurantRequest is a partial update: nil fields are left untouched
type UpdateRestaurantRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=255"`
	Email       *string  `json:"email" binding:"omitempty,email"`
	Password    *string  `json:"password" binding:"omitempty,min=6"`
	CountryCode *string  `json:"country_code" binding:"omitempty,max=5"`
	StateCode   *string  `json:"state_code" binding:"omitempty,max=10"`
	CityCode    *string  `json:"city_code" binding:"omitempty,max=50"`
	Location    *string  `json:"location"`
	Type        *string  `json:"type"`
	PureVeg     *bool    `json:"pure_veg"`
	StaffRating *float64 `json:"staff_rating" binding:"omitempty,gte=0,lte=5"`
	LogoURL     *string  `json:"logo_url"`
}

type RestaurantResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	CountryCode string    `json:"country_code"`
	StateCode   string    `json:"state_code"`
	CityCode    string    `json:"city_code"`
	Location    string    `json:"location"`
	Type        string    `json:"type"`
	PureVeg     bool      `json:"pure_veg"`
	StaffRating float64   `json:"staff_rating"`
	LogoURL     string    `json:"logo_url"`
	DateCreated time.Time `json:"date_created"`
}

// PublicProfileResponse is a restaurant page as shown to diners
type PublicProfileResponse struct {
	Restaurant RestaurantResponse `json:"restaurant"`
	Products   []model.Product    `json:"products"`
}

// --- Interface ---

type RestaurantService interface {
	CreateRestaurant(ctx context.Context, p auth.Principal, req CreateRestaurantRequest) (*RestaurantResponse, error)
	UpdateRestaurant(ctx context.Context, p auth.Principal, id uint, req UpdateRestaurantRequest) (*RestaurantResponse, error)
	DeleteRestaurant(ctx context.Context, p auth.Principal, id uint) error
	GetRestaurant(ctx context.Context, id uint) (*RestaurantResponse, error)
	ListRestaurants(ctx context.Context, skip, limit int) ([]RestaurantResponse, int64, error)
	GetPublicProfile(ctx context.Context, country, state, city, identifier string) (*PublicProfileResponse, error)
}

// --- Implementation ---

type restaurantService struct {
	restaurantRepo repository.RestaurantRepository
	productRepo    repository.ProductRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
	events         EventPublisher
}

func NewRestaurantService(
	restaurantRepo repository.RestaurantRepository,
	productRepo repository.ProductRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
) RestaurantService {
	return &restaurantService{
		restaurantRepo: restaurantRepo,
		productRepo:    productRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		events:         publisherOrNoop(events),
	}
}

// ensureEmailFree fails with ErrConflict when email belongs to a restaurant
// other than selfID, deleted ones included.
func (s *restaurantService) ensureEmailFree(ctx context.Context, email string, selfID uint) error {
	existing, err := s.restaurantRepo.FindByEmailIncludingDeleted(ctx, email)
	if err == nil {
		if existing.ID != selfID {
			return fmt.Errorf("%w: email %s is already registered", apperror.ErrConflict, email)
		}
		return nil
	}
	if !repository.IsNotFound(err) {
		return fmt.Errorf("failed to check email: %w", err)
	}
	return nil
}

func (s *restaurantService) CreateRestaurant(ctx context.Context, p auth.Principal, req CreateRestaurantRequest) (*RestaurantResponse, error) {
	if _, err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" {
		return nil, validationError("name is required")
	}
	if email == "" {
		return nil, validationError("email is required")
	}
	if req.StaffRating != nil && *req.StaffRating < 0 {
		return nil, validationError("staff_rating cannot be negative")
	}

	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	restaurant := &model.Restaurant{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		CountryCode:  req.CountryCode,
		StateCode:    req.StateCode,
		CityCode:     req.CityCode,
		Location:     req.Location,
		Type:         req.Type,
		PureVeg:      req.PureVeg,
		LogoURL:      req.LogoURL,
	}
	if req.StaffRating != nil {
		restaurant.StaffRating = *req.StaffRating
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.restaurantRepo.Create(txCtx, restaurant); err != nil {
			if repository.IsDuplicate(err) {
				return fmt.Errorf("%w: email %s is already registered", apperror.ErrConflict, email)
			}
			return fmt.Errorf("failed to create restaurant: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, p, model.ActionCreateRestaurant, restaurant.ID, restaurant.Name,
			map[string]string{"email": restaurant.Email})
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(CatalogEvent{Type: EventRestaurantCreated, RestaurantID: restaurant.ID, At: time.Now().UTC()})
	res := toRestaurantResponse(*restaurant)
	return &res, nil
}

func (s *restaurantService) UpdateRestaurant(ctx context.Context, p auth.Principal, id uint, req UpdateRestaurantRequest) (*RestaurantResponse, error) {
	if _, err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}

	restaurant, err := s.restaurantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapLookup("restaurant", id, err)
	}

	changed := []string{}
	columns := []string{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validationError("name cannot be empty")
		}
		restaurant.Name = name
		changed = append(changed, "name")
		columns = append(columns, "name")
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email == "" {
			return nil, validationError("email cannot be empty")
		}
		if email != restaurant.Email {
			if err := s.ensureEmailFree(ctx, email, restaurant.ID); err != nil {
				return nil, err
			}
			restaurant.Email = email
			changed = append(changed, "email")
			columns = append(columns, "email")
		}
	}
	if req.Password != nil {
		hashed, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		restaurant.PasswordHash = hashed
		changed = append(changed, "password")
		columns = append(columns, "password_hash")
	}
	if req.CountryCode != nil {
		restaurant.CountryCode = *req.CountryCode
		changed = append(changed, "country_code")
		columns = append(columns, "country_code")
	}
	if req.StateCode != nil {
		restaurant.StateCode = *req.StateCode
		changed = append(changed, "state_code")
		columns = append(columns, "state_code")
	}
	if req.CityCode != nil {
		restaurant.CityCode = *req.CityCode
		changed = append(changed, "city_code")
		columns = append(columns, "city_code")
	}
	if req.Location != nil {
		restaurant.Location = *req.Location
		changed = append(changed, "location")
		columns = append(columns, "location")
	}
	if req.Type != nil {
		restaurant.Type = *req.Type
		changed = append(changed, "type")
		columns = append(columns, "type")
	}
	if req.PureVeg != nil {
		restaurant.PureVeg = *req.PureVeg
		changed = append(changed, "pure_veg")
		columns = append(columns, "pure_veg")
	}
	if req.StaffRating != nil {
		if *req.StaffRating < 0 {
			return nil, validationError("staff_rating cannot be negative")
		}
		restaurant.StaffRating = *req.StaffRating
		changed = append(changed, "staff_rating")
		columns = append(columns, "staff_rating")
	}
	if req.LogoURL != nil {
		restaurant.LogoURL = *req.LogoURL
		changed = append(changed, "logo_url")
		columns = append(columns, "logo_url")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.restaurantRepo.Update(txCtx, restaurant, columns...); err != nil {
			if repository.IsNotFound(err) {
				return fmt.Errorf("%w: restaurant %d", apperror.ErrNotFound, restaurant.ID)
			}
			if repository.IsDuplicate(err) {
				return fmt.Errorf("%w: email %s is already registered", apperror.ErrConflict, restaurant.Email)
			}
			return fmt.Errorf("failed to update restaurant: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, p, model.ActionUpdateRestaurant, restaurant.ID, restaurant.Name,
			map[string][]string{"fields": changed})
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(CatalogEvent{Type: EventRestaurantUpdated, RestaurantID: restaurant.ID, At: time.Now().UTC()})
	res := toRestaurantResponse(*restaurant)
	return &res, nil
}

// DeleteRestaurant soft-deletes the restaurant and all of its products together.
func (s *restaurantService) DeleteRestaurant(ctx context.Context, p auth.Principal, id uint) error {
	if _, err := auth.RequireAdmin(p); err != nil {
		return err
	}

	restaurant, err := s.restaurantRepo.FindByID(ctx, id)
	if err != nil {
		return wrapLookup("restaurant", id, err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.restaurantRepo.SoftDeleteCascade(txCtx, id); err != nil {
			if repository.IsNotFound(err) {
				return wrapLookup("restaurant", id, err)
			}
			return fmt.Errorf("failed to delete restaurant: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, p, model.ActionDeleteRestaurant, id, restaurant.Name, nil)
	})
	if err != nil {
		return err
	}

	s.events.Publish(CatalogEvent{Type: EventRestaurantDeleted, RestaurantID: id, At: time.Now().UTC()})
	return nil
}

func (s *restaurantService) GetRestaurant(ctx context.Context, id uint) (*RestaurantResponse, error) {
	restaurant, err := s.restaurantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapLookup("restaurant", id, err)
	}
	res := toRestaurantResponse(*restaurant)
	return &res, nil
}

func (s *restaurantService) ListRestaurants(ctx context.Context, skip, limit int) ([]RestaurantResponse, int64, error) {
	restaurants, total, err := s.restaurantRepo.List(ctx, skip, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch restaurants: %w", err)
	}

	res := make([]RestaurantResponse, 0, len(restaurants))
	for _, r := range restaurants {
		res = append(res, toRestaurantResponse(r))
	}
	return res, total, nil
}

func (s *restaurantService) GetPublicProfile(ctx context.Context, country, state, city, identifier string) (*PublicProfileResponse, error) {
	if identifier == "" {
		return nil, validationError("identifier is required")
	}

	restaurant, err := s.restaurantRepo.FindByLocation(ctx, country, state, city, identifier)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: restaurant %s/%s/%s/%s", apperror.ErrNotFound, country, state, city, identifier)
		}
		return nil, fmt.Errorf("failed to load restaurant: %w", err)
	}

	products, err := s.productRepo.ListByRestaurant(ctx, restaurant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	return &PublicProfileResponse{
		Restaurant: toRestaurantResponse(*restaurant),
		Products:   products,
	}, nil
}

// --- Response mappers ---

func toRestaurantResponse(r model.Restaurant) RestaurantResponse {
	return RestaurantResponse{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		CountryCode: r.CountryCode,
		StateCode:   r.StateCode,
		CityCode:    r.CityCode,
		Location:    r.Location,
		Type:        r.Type,
		PureVeg:     r.PureVeg,
		StaffRating: r.StaffRating,
		LogoURL:     r.LogoURL,
		DateCreated: r.DateCreated,
	}
}
