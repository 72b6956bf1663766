// Package health implements C13, the Health Publisher (§4.12, §6.4): it
// derives a service status from the most recent terminal RunLog and serves
// it over HTTP. Grounded on the reference's cmd/api (chi router,
// middleware stack, writeJSON helper) mounted here as its own small surface
// instead of the reference's wider expenses/commitments/ingestion API.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/farxc/projetus/internal/response"
	"github.com/farxc/projetus/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Status values match §6.4's enum exactly.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusUnknown   = "unknown"
)

const (
	healthyWithin  = 25 * time.Hour
	degradedWithin = 48 * time.Hour
)

// Report is §6.4's GET /health body.
type Report struct {
	Service          string  `json:"service"`
	Status           string  `json:"status"`
	LastExecution    *string `json:"last_execution"`
	RecordsProcessed *int    `json:"records_processed"`
	Error            *string `json:"error"`
}

// Publisher reads RunLogStore through a plain *sqlx.DB connection — never
// inside the Orchestrator's transaction — so a slow or wedged run never
// blocks the probe a load balancer polls every few seconds (§5: "DB pool
// ... sized for one writer plus reserved connections for the Health
// Publisher").
type Publisher struct {
	storage *store.Storage
	service string
	now     func() time.Time
}

func New(storage *store.Storage, service string) *Publisher {
	return &Publisher{storage: storage, service: service, now: time.Now}
}

// Compute derives a Report from the latest terminal run (§4.12). No prior
// run at all is `unknown`, never `unhealthy` — there is nothing to have
// failed yet.
func (p *Publisher) Compute(ctx context.Context) Report {
	log, err := p.storage.RunLogs.Latest(ctx, p.storage.DB)
	if err != nil || log == nil {
		return Report{Service: p.service, Status: StatusUnknown}
	}
	return deriveReport(p.service, log, p.now())
}

// deriveReport applies §4.12's freshness thresholds to an already-fetched
// RunLog. Split out from Compute so the threshold logic is testable without
// a database.
func deriveReport(service string, log *store.RunLog, now time.Time) Report {
	report := Report{Service: service, Status: StatusUnknown}

	last := log.StartedAt.Format(time.RFC3339)
	report.LastExecution = &last
	records := log.TotalRecords
	report.RecordsProcessed = &records
	if log.ErrorMessage != nil {
		report.Error = log.ErrorMessage
	}

	age := now.Sub(log.StartedAt)
	switch {
	case log.Status == store.StatusFailed:
		report.Status = StatusUnhealthy
	case age <= healthyWithin:
		report.Status = StatusHealthy
	case age <= degradedWithin:
		report.Status = StatusDegraded
	default:
		report.Status = StatusUnhealthy
	}
	return report
}

// Mount builds the chi router serving /health and /ready (§6.4), carrying
// the same middleware stack the reference's cmd/api mounts.
func (p *Publisher) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", p.handleHealth)
	r.Get("/ready", p.handleReady)
	return r
}

// handleHealth always answers 200 per §6.4 — the status field, not the HTTP
// code, carries the signal, so a naive uptime check never flaps on a
// degraded pipeline.
func (p *Publisher) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := p.Compute(r.Context())
	writeJSON(w, http.StatusOK, report)
}

func (p *Publisher) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, response.APIResponse[string]{Success: true, Message: "ready"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
