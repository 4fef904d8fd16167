// Package auth issues and decodes access tokens and holds the authorization
// rules every catalog write goes through.
package auth

const (
	RoleAdmin      = "admin"
	RoleRestaurant = "restaurant"
)

// Principal is the authenticated caller. The only implementations are
// AdminPrincipal and RestaurantPrincipal.
type Principal interface {
	Role() string
	LoginSubject() string
	principal()
}

// AdminPrincipal is a platform administrator.
type AdminPrincipal struct {
	AdminID uint   `json:"admin_id"`
	Subject string `json:"sub"`
}

func (AdminPrincipal) Role() string           { return RoleAdmin }
func (p AdminPrincipal) LoginSubject() string { return p.Subject }
func (AdminPrincipal) principal()             {}

// RestaurantPrincipal is a restaurant account acting on its own catalog.
type RestaurantPrincipal struct {
	RestaurantID uint   `json:"restaurant_id"`
	Subject      string `json:"sub"`
}

func (RestaurantPrincipal) Role() string           { return RoleRestaurant }
func (p RestaurantPrincipal) LoginSubject() string { return p.Subject }
func (RestaurantPrincipal) principal()             {}
