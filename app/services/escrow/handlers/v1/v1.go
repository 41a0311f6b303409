// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/scholarstream/escrow/app/services/escrow/handlers/v1/progressgrp"
	"github.com/scholarstream/escrow/app/services/escrow/handlers/v1/scholarshipgrp"
	"github.com/scholarstream/escrow/app/services/escrow/handlers/v1/tokengrp"
	"github.com/scholarstream/escrow/business/core/escrow"
	"github.com/scholarstream/escrow/business/sys/metrics"
	"github.com/scholarstream/escrow/foundation/events"
	"github.com/scholarstream/escrow/foundation/nameservice"
	"github.com/scholarstream/escrow/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log     *zap.SugaredLogger
	Metrics *metrics.Metrics
	Core    *escrow.Core
	NS      *nameservice.NameService
	Evts    *events.Events
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	sgh := scholarshipgrp.Handlers{
		Log:     cfg.Log,
		Metrics: cfg.Metrics,
		Core:    cfg.Core,
		NS:      cfg.NS,
		Evts:    cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", sgh.Events)
	app.Handle(http.MethodPost, version, "/scholarships", sgh.Create)
	app.Handle(http.MethodGet, version, "/scholarships", sgh.QueryAll)
	app.Handle(http.MethodGet, version, "/scholarships/count", sgh.QueryCount)
	app.Handle(http.MethodGet, version, "/scholarships/:id", sgh.QueryByID)
	app.Handle(http.MethodGet, version, "/scholarships/:id/milestones", sgh.QueryMilestones)
	app.Handle(http.MethodGet, version, "/scholarships/:id/balance", sgh.QueryBalance)
	app.Handle(http.MethodGet, version, "/scholarships/:id/completion", sgh.QueryCompletion)
	app.Handle(http.MethodPost, version, "/scholarships/:id/deposit", sgh.Deposit)
	app.Handle(http.MethodPost, version, "/scholarships/:id/cancel", sgh.Cancel)
	app.Handle(http.MethodPost, version, "/scholarships/:id/milestones/:mid/complete", sgh.Complete)
	app.Handle(http.MethodGet, version, "/students/:account/scholarships", sgh.QueryByStudent)
	app.Handle(http.MethodGet, version, "/donors/:account/scholarships", sgh.QueryByDonor)
	app.Handle(http.MethodGet, version, "/nonces/:account", sgh.QueryNonce)

	tgh := tokengrp.Handlers{
		Log:  cfg.Log,
		Core: cfg.Core,
		NS:   cfg.NS,
	}

	app.Handle(http.MethodGet, version, "/token", tgh.Info)
	app.Handle(http.MethodGet, version, "/token/balances/:account", tgh.Balance)
	app.Handle(http.MethodPost, version, "/token/mint", tgh.Mint)
	app.Handle(http.MethodPost, version, "/token/transfer", tgh.Transfer)
	app.Handle(http.MethodPost, version, "/token/distribute", tgh.Distribute)

	pgh := progressgrp.Handlers{
		Log:  cfg.Log,
		Core: cfg.Core,
		NS:   cfg.NS,
	}

	app.Handle(http.MethodPost, version, "/progress", pgh.Update)
	app.Handle(http.MethodGet, version, "/progress", pgh.Summary)
	app.Handle(http.MethodGet, version, "/progress/students", pgh.Students)
	app.Handle(http.MethodGet, version, "/progress/students/:account", pgh.Student)
}
