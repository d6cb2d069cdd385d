package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/mindcare/mindcare-server/internal/api/recovery"
	"github.com/mindcare/mindcare-server/internal/crisis"
	"github.com/mindcare/mindcare-server/internal/services"
)

// Deps carries everything the router needs. Health may be nil in tests.
type Deps struct {
	Users  *services.UserService
	Risks  *services.RiskService
	Alerts *services.AlertService
	Crisis *crisis.Resolver
	Health HealthReporter
	Log    zerolog.Logger
}

// NewRouter wires HTTP routes to handlers.
func NewRouter(d Deps) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	// Users
	user := NewUserHandler(d.Users, d.Log)
	root.HandleFunc("/api/users", user.CreateUser).Methods("POST")
	root.HandleFunc("/api/users/{userId}", user.GetUser).Methods("GET")

	// Risk records
	risk := NewRiskHandler(d.Risks, d.Log)
	root.HandleFunc("/api/risks", risk.RecordRisk).Methods("POST")
	root.HandleFunc("/api/risks", risk.ListRisks).Methods("GET")

	// Emergency alert tracking
	alert := NewAlertHandler(d.Alerts, d.Log)
	root.HandleFunc("/api/alert-tracking", alert.CreateAlert).Methods("POST")
	root.HandleFunc("/api/alert-tracking", alert.ListAlerts).Methods("GET")
	root.HandleFunc("/api/alert-tracking", alert.UpdateStatus).Methods("PATCH")

	// Crisis resources
	cr := NewCrisisHandler(d.Crisis)
	root.HandleFunc("/api/crisis-resources", cr.GetResources).Methods("GET")

	// Health
	healthHandler := NewHealthHandler(d.Health)
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	return root
}
