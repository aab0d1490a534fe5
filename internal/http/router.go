package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"

	"washhub/internal/http/handlers"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	Auth          *handlers.AuthHandlers
	Organizations *handlers.OrganizationHandlers
	Branches      *handlers.BranchHandlers
	Users         *handlers.UserHandlers
	Customers     *handlers.CustomerHandlers
	Vehicles      *handlers.VehicleHandlers
	Catalog       *handlers.CatalogHandlers
	Services      *handlers.ServiceHandlers
	Pricing       *handlers.PricingHandlers
	Board         *handlers.BoardHandler
	Health        http.HandlerFunc
}

// NewRouter wires HTTP routes with middleware. All /api routes except auth
// require a valid token.
func NewRouter(deps RouterDeps, middlewares ...mux.MiddlewareFunc) http.Handler {
	root := mux.NewRouter()
	root.HandleFunc("/health", deps.Health).Methods(http.MethodGet)

	root.HandleFunc("/api/auth/register", deps.Auth.Register).Methods(http.MethodPost)
	root.HandleFunc("/api/auth/login", deps.Auth.Login).Methods(http.MethodPost)

	api := root.PathPrefix("/api").Subrouter()
	for _, mw := range middlewares {
		api.Use(mw)
	}

	api.HandleFunc("/organization", deps.Organizations.Show).Methods(http.MethodGet)
	api.HandleFunc("/organization", deps.Organizations.Update).Methods(http.MethodPut)

	api.HandleFunc("/branches", deps.Branches.List).Methods(http.MethodGet)
	api.HandleFunc("/branches", deps.Branches.Create).Methods(http.MethodPost)
	api.HandleFunc("/branches/{id:[0-9]+}", deps.Branches.Show).Methods(http.MethodGet)
	api.HandleFunc("/branches/{id:[0-9]+}", deps.Branches.Update).Methods(http.MethodPut)
	api.HandleFunc("/branches/{id:[0-9]+}", deps.Branches.Destroy).Methods(http.MethodDelete)
	api.HandleFunc("/branches/{id:[0-9]+}/price-board", deps.Board.Subscribe).Methods(http.MethodGet)

	api.HandleFunc("/users", deps.Users.List).Methods(http.MethodGet)
	api.HandleFunc("/users", deps.Users.Create).Methods(http.MethodPost)
	api.HandleFunc("/users/{id:[0-9]+}", deps.Users.Show).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}", deps.Users.Update).Methods(http.MethodPut)
	api.HandleFunc("/users/{id:[0-9]+}", deps.Users.Destroy).Methods(http.MethodDelete)

	api.HandleFunc("/customers", deps.Customers.List).Methods(http.MethodGet)
	api.HandleFunc("/customers", deps.Customers.Create).Methods(http.MethodPost)
	api.HandleFunc("/customers/{id:[0-9]+}", deps.Customers.Show).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id:[0-9]+}", deps.Customers.Update).Methods(http.MethodPut)
	api.HandleFunc("/customers/{id:[0-9]+}", deps.Customers.Destroy).Methods(http.MethodDelete)

	api.HandleFunc("/vehicles", deps.Vehicles.List).Methods(http.MethodGet)
	api.HandleFunc("/vehicles", deps.Vehicles.Create).Methods(http.MethodPost)
	api.HandleFunc("/vehicles/{id:[0-9]+}", deps.Vehicles.Show).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id:[0-9]+}", deps.Vehicles.Update).Methods(http.MethodPut)
	api.HandleFunc("/vehicles/{id:[0-9]+}", deps.Vehicles.Destroy).Methods(http.MethodDelete)

	api.HandleFunc("/vehicle-types", deps.Catalog.ListTypes).Methods(http.MethodGet)
	api.HandleFunc("/vehicle-types", deps.Catalog.CreateType).Methods(http.MethodPost)
	api.HandleFunc("/vehicle-types/{id:[0-9]+}", deps.Catalog.DestroyType).Methods(http.MethodDelete)
	api.HandleFunc("/vehicle-brands", deps.Catalog.ListBrands).Methods(http.MethodGet)
	api.HandleFunc("/vehicle-brands", deps.Catalog.CreateBrand).Methods(http.MethodPost)
	api.HandleFunc("/vehicle-brands/{id:[0-9]+}", deps.Catalog.DestroyBrand).Methods(http.MethodDelete)
	api.HandleFunc("/vehicle-models", deps.Catalog.ListModels).Methods(http.MethodGet)
	api.HandleFunc("/vehicle-models", deps.Catalog.CreateModel).Methods(http.MethodPost)
	api.HandleFunc("/vehicle-models/{id:[0-9]+}", deps.Catalog.DestroyModel).Methods(http.MethodDelete)

	api.HandleFunc("/services", deps.Services.List).Methods(http.MethodGet)
	api.HandleFunc("/services", deps.Services.Create).Methods(http.MethodPost)
	api.HandleFunc("/services/{id:[0-9]+}", deps.Services.Show).Methods(http.MethodGet)
	api.HandleFunc("/services/{id:[0-9]+}", deps.Services.Update).Methods(http.MethodPut)
	api.HandleFunc("/services/{id:[0-9]+}", deps.Services.Destroy).Methods(http.MethodDelete)

	api.HandleFunc("/pricing-rules", deps.Pricing.List).Methods(http.MethodGet)
	api.HandleFunc("/pricing-rules", deps.Pricing.Create).Methods(http.MethodPost)
	api.HandleFunc("/pricing-rules/{id:[0-9]+}", deps.Pricing.Show).Methods(http.MethodGet)
	api.HandleFunc("/pricing-rules/{id:[0-9]+}", deps.Pricing.Update).Methods(http.MethodPut)
	api.HandleFunc("/pricing-rules/{id:[0-9]+}", deps.Pricing.Destroy).Methods(http.MethodDelete)

	api.HandleFunc("/price-lookup", deps.Pricing.Lookup).Methods(http.MethodGet)

	return root
}
