package auth

import (
	"fmt"

	"restaurant-catalog/pkg/apperror"
)

// RequireAdmin returns the admin variant of p or ErrForbidden.
func RequireAdmin(p Principal) (AdminPrincipal, error) {
	switch v := p.(type) {
	case AdminPrincipal:
		return v, nil
	case *AdminPrincipal:
		if v != nil {
			return *v, nil
		}
	}
	return AdminPrincipal{}, fmt.Errorf("%w: admin role required", apperror.ErrForbidden)
}

// RequireRestaurant returns the restaurant variant of p or ErrForbidden.
// Admins do not inherit restaurant rights.
func RequireRestaurant(p Principal) (RestaurantPrincipal, error) {
	switch v := p.(type) {
	case RestaurantPrincipal:
		return v, nil
	case *RestaurantPrincipal:
		if v != nil {
			return *v, nil
		}
	}
	return RestaurantPrincipal{}, fmt.Errorf("%w: restaurant role required", apperror.ErrForbidden)
}

// RequireOwnership checks that p is the restaurant owning a resource.
// resourceRestaurantID must come from a fresh read of the resource.
func RequireOwnership(p Principal, resourceRestaurantID uint) error {
	rp, err := RequireRestaurant(p)
	if err != nil {
		return err
	}
	if rp.RestaurantID != resourceRestaurantID {
		return fmt.Errorf("%w: resource belongs to another restaurant", apperror.ErrForbidden)
	}
	return nil
}
