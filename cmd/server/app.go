package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/auth"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/credential"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/handlers"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/httpx"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/policy"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/services"
)

const profileCacheTTL = 5 * time.Minute

// App is the main application handler that sets up all routes.
type App struct {
	mux      *http.ServeMux
	svc      *services.Services
	sessions *auth.Sessions
	access   *policy.Access
	flows    *credential.Manager
	log      zerolog.Logger
}

// NewApp creates a new application with all routes configured.
func NewApp(svc *services.Services, sessions *auth.Sessions, flows *credential.Manager, log zerolog.Logger) *App {
	app := &App{
		mux:      http.NewServeMux(),
		svc:      svc,
		sessions: sessions,
		access:   policy.NewAccess(svc.Users, profileCacheTTL),
		flows:    flows,
		log:      log,
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// session identity, then the acting user for createdBy
	handler := a.sessions.Middleware(handlers.WithActor(a.mux))
	handler.ServeHTTP(w, r)
}

// collectionPath returns the URL segment of a document kind, e.g. "delivery-notes".
func collectionPath(k models.DocumentKind) string {
	return strings.ReplaceAll(string(k), "_", "-") + "s"
}

func (a *App) setupRoutes() {
	a.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// ─────────────────────────────────────────────────────────────────────────
	// Session and credential reset
	// ─────────────────────────────────────────────────────────────────────────
	ah := handlers.NewAuthHandler(a.svc.Users, a.sessions, a.access, a.log)
	a.mux.HandleFunc("POST /api/login", ah.Login)
	a.mux.HandleFunc("POST /api/logout", ah.Logout)
	a.mux.HandleFunc("GET /api/me/capabilities", ah.Capabilities)

	ch := handlers.NewCredentialHandler(a.flows, a.log)
	a.mux.HandleFunc("POST /api/credential/start", ch.Start)
	a.mux.HandleFunc("POST /api/credential/verify", ch.Verify)
	a.mux.HandleFunc("POST /api/credential/complete", ch.Complete)

	// ─────────────────────────────────────────────────────────────────────────
	// Operator portal
	// ─────────────────────────────────────────────────────────────────────────
	mh := handlers.NewMerchantHandler(a.svc.Merchants)
	a.mux.HandleFunc("GET /api/operator/merchants", mh.List)
	a.mux.HandleFunc("POST /api/operator/merchants", mh.Create)
	a.mux.HandleFunc("GET /api/operator/merchants/{id}", mh.Get)
	a.mux.HandleFunc("PUT /api/operator/merchants/{id}", mh.Update)
	a.mux.HandleFunc("DELETE /api/operator/merchants/{id}", mh.Delete)
	a.mux.HandleFunc("POST /api/operator/merchants/{id}/suspend", mh.Suspend)
	a.mux.HandleFunc("POST /api/operator/merchants/{id}/activate", mh.Activate)

	sh := handlers.NewScheduleHandler(a.svc.Schedules)
	a.mux.HandleFunc("POST /api/operator/schedules/run", sh.RunDue)

	// ─────────────────────────────────────────────────────────────────────────
	// Merchant portal
	// ─────────────────────────────────────────────────────────────────────────
	const base = "/api/merchants/{merchantID}"
	handlers.NewResourceHandler[models.Client, services.ClientRequest](a.svc.Clients).Register(a.mux, base+"/clients")
	handlers.NewResourceHandler[models.Item, services.ItemRequest](a.svc.Items).Register(a.mux, base+"/items")
	handlers.NewResourceHandler[models.BankAccount, services.BankAccountRequest](a.svc.BankAccounts).Register(a.mux, base+"/bank-accounts")
	handlers.NewResourceHandler[models.MerchantCard, services.CardRequest](a.svc.Cards).Register(a.mux, base+"/cards")
	for _, k := range models.DocumentKinds {
		handlers.NewDocumentHandler(a.svc.Document(k)).Register(a.mux, base+"/"+collectionPath(k))
	}
	sh.Register(a.mux, base+"/schedules")
	handlers.NewPaymentHandler(a.svc.Payments).Register(a.mux, base+"/payments")

	uh := handlers.NewUserHandler(a.svc.Users)
	a.mux.HandleFunc("GET "+base+"/users", uh.List)
	a.mux.HandleFunc("POST "+base+"/users", uh.Create)
	a.mux.HandleFunc("GET "+base+"/users/{id}", uh.Get)

	dh := handlers.NewDashboardHandler(a.svc.Dashboard, a.svc.Taxes)
	a.mux.HandleFunc("GET "+base+"/dashboard", dh.Summary)
	a.mux.HandleFunc("GET /api/taxes", dh.Taxes)
}
