// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic   SecurityLevel = iota // No authentication
	SecurityCustomer                      // Customer access token required
	SecurityStaff                         // Staff access token required
)

// EndpointSecurityConfig maps named HTTP routes to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Health and photos - Public
	"Health":   SecurityPublic,
	"GetPhoto": SecurityPublic,

	// Auth - Public
	"Register":   SecurityPublic,
	"Login":      SecurityPublic,
	"StaffLogin": SecurityPublic,

	// Catalog - Public
	"ListItems": SecurityPublic,
	"GetItem":   SecurityPublic,

	// Cart - Public, keyed by the cart cookie
	"ViewCart":        SecurityPublic,
	"CartCount":       SecurityPublic,
	"AddToCart":       SecurityPublic,
	"SetCartQuantity": SecurityPublic,
	"RemoveFromCart":  SecurityPublic,

	// Checkout and history - Customer
	"Checkout":      SecurityCustomer,
	"ListMyRentals": SecurityCustomer,
	"GetMyRental":   SecurityCustomer,

	// Back office - Staff
	"AdminListRentals":   SecurityStaff,
	"AdminGetRental":     SecurityStaff,
	"AdminCreateRental":  SecurityStaff,
	"AdminUpdateRental":  SecurityStaff,
	"AdminDeleteRental":  SecurityStaff,
	"AdminChangeStatus":  SecurityStaff,
	"AdminApplyLines":    SecurityStaff,
	"AdminAddLine":       SecurityStaff,
	"AdminEditLine":      SecurityStaff,
	"AdminRemoveLine":    SecurityStaff,
	"AdminListItems":     SecurityStaff,
	"AdminCreateItem":    SecurityStaff,
	"AdminUpdateItem":    SecurityStaff,
	"AdminDeleteItem":    SecurityStaff,
	"AdminAdjustStock":   SecurityStaff,
	"AdminUploadPhoto":   SecurityStaff,
	"AdminListCustomers": SecurityStaff,

	// Reports - Staff
	"Dashboard":       SecurityStaff,
	"RentalReport":    SecurityStaff,
	"FinancialReport": SecurityStaff,
	"ConditionReport": SecurityStaff,
	"InventoryReport": SecurityStaff,
	"CustomerReport":  SecurityStaff,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityStaff
}
