package http

import (
	"net/http"

	"rental-backend/internal/security"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handlers bundles everything the router dispatches to.
type Handlers struct {
	Catalog  *CatalogHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Auth     *AuthHandler
	Admin    *AdminHandler
	Reports  *ReportHandler
	Photos   *PhotoHandler
}

// NewRouter wires every route. Route names are the keys of
// config.EndpointSecurityConfig and decide which token a route needs.
func NewRouter(h Handlers, tokenManager security.TokenManager, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()
	router.Use(requestLogger)
	router.Use(NewAuthMiddleware(tokenManager).Handler)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET").Name("Health")
	router.PathPrefix("/photos/").HandlerFunc(h.Photos.Download).Methods("GET").Name("GetPhoto")

	api := router.PathPrefix("/api/v1").Subrouter()

	// Auth
	api.HandleFunc("/auth/register", h.Auth.Register).Methods("POST").Name("Register")
	api.HandleFunc("/auth/login", h.Auth.Login).Methods("POST").Name("Login")
	api.HandleFunc("/auth/staff/login", h.Auth.StaffLogin).Methods("POST").Name("StaffLogin")

	// Storefront
	api.HandleFunc("/items", h.Catalog.List).Methods("GET").Name("ListItems")
	api.HandleFunc("/items/{id:[0-9]+}", h.Catalog.Get).Methods("GET").Name("GetItem")
	api.HandleFunc("/cart", h.Cart.View).Methods("GET").Name("ViewCart")
	api.HandleFunc("/cart/count", h.Cart.Count).Methods("GET").Name("CartCount")
	api.HandleFunc("/cart/items", h.Cart.Add).Methods("POST").Name("AddToCart")
	api.HandleFunc("/cart/items/{item_id:[0-9]+}", h.Cart.SetQuantity).Methods("PUT").Name("SetCartQuantity")
	api.HandleFunc("/cart/items/{item_id:[0-9]+}", h.Cart.Remove).Methods("DELETE").Name("RemoveFromCart")
	api.HandleFunc("/checkout", h.Checkout.Submit).Methods("POST").Name("Checkout")
	api.HandleFunc("/me/rentals", h.Checkout.ListMine).Methods("GET").Name("ListMyRentals")
	api.HandleFunc("/me/rentals/{id:[0-9]+}", h.Checkout.GetMine).Methods("GET").Name("GetMyRental")

	// Back office
	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/rentals", h.Admin.ListRentals).Methods("GET").Name("AdminListRentals")
	admin.HandleFunc("/rentals", h.Admin.CreateRental).Methods("POST").Name("AdminCreateRental")
	admin.HandleFunc("/rentals/{id:[0-9]+}", h.Admin.GetRental).Methods("GET").Name("AdminGetRental")
	admin.HandleFunc("/rentals/{id:[0-9]+}", h.Admin.UpdateRental).Methods("PUT").Name("AdminUpdateRental")
	admin.HandleFunc("/rentals/{id:[0-9]+}", h.Admin.DeleteRental).Methods("DELETE").Name("AdminDeleteRental")
	admin.HandleFunc("/rentals/{id:[0-9]+}/status", h.Admin.ChangeStatus).Methods("PUT").Name("AdminChangeStatus")
	admin.HandleFunc("/rentals/{id:[0-9]+}/lines", h.Admin.AddLine).Methods("POST").Name("AdminAddLine")
	admin.HandleFunc("/rentals/{id:[0-9]+}/lines/batch", h.Admin.ApplyLines).Methods("POST").Name("AdminApplyLines")
	admin.HandleFunc("/lines/{id:[0-9]+}", h.Admin.EditLine).Methods("PUT").Name("AdminEditLine")
	admin.HandleFunc("/lines/{id:[0-9]+}", h.Admin.RemoveLine).Methods("DELETE").Name("AdminRemoveLine")
	admin.HandleFunc("/items", h.Admin.ListItems).Methods("GET").Name("AdminListItems")
	admin.HandleFunc("/items", h.Admin.CreateItem).Methods("POST").Name("AdminCreateItem")
	admin.HandleFunc("/items/{id:[0-9]+}", h.Admin.UpdateItem).Methods("PUT").Name("AdminUpdateItem")
	admin.HandleFunc("/items/{id:[0-9]+}", h.Admin.DeleteItem).Methods("DELETE").Name("AdminDeleteItem")
	admin.HandleFunc("/items/{id:[0-9]+}/stock", h.Admin.AdjustStock).Methods("POST").Name("AdminAdjustStock")
	admin.HandleFunc("/items/{id:[0-9]+}/photo", h.Photos.Upload).Methods("POST").Name("AdminUploadPhoto")
	admin.HandleFunc("/customers", h.Admin.ListCustomers).Methods("GET").Name("AdminListCustomers")

	// Reports
	admin.HandleFunc("/dashboard", h.Reports.Dashboard).Methods("GET").Name("Dashboard")
	admin.HandleFunc("/reports/rentals", h.Reports.Rentals).Methods("GET").Name("RentalReport")
	admin.HandleFunc("/reports/financial", h.Reports.Financial).Methods("GET").Name("FinancialReport")
	admin.HandleFunc("/reports/conditions", h.Reports.Conditions).Methods("GET").Name("ConditionReport")
	admin.HandleFunc("/reports/inventory", h.Reports.Inventory).Methods("GET").Name("InventoryReport")
	admin.HandleFunc("/reports/customers", h.Reports.Customers).Methods("GET").Name("CustomerReport")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return otelhttp.NewHandler(c.Handler(router), "rental-api",
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return "HTTP " + r.Method + " " + r.URL.Path
		}))
}
