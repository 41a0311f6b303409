// Package scholarshipgrp maintains the group of handlers for scholarship
// escrow access.
package scholarshipgrp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/scholarstream/escrow/business/core/escrow"
	"github.com/scholarstream/escrow/business/sys/metrics"
	"github.com/scholarstream/escrow/business/sys/validate"
	"github.com/scholarstream/escrow/business/web/errs"
	"github.com/scholarstream/escrow/foundation/escrow/database"
	"github.com/scholarstream/escrow/foundation/escrow/state"
	"github.com/scholarstream/escrow/foundation/events"
	"github.com/scholarstream/escrow/foundation/nameservice"
	"github.com/scholarstream/escrow/foundation/web"
	"go.uber.org/zap"
)

// mappings gives every escrow failure the status it is reported with.
var mappings = []errs.Mapping{
	{Err: escrow.ErrBadSignature, Status: http.StatusUnauthorized},
	{Err: state.ErrUnauthorized, Status: http.StatusUnauthorized},
	{Err: state.ErrForbidden, Status: http.StatusForbidden},
	{Err: state.ErrNotFound, Status: http.StatusNotFound},
	{Err: state.ErrInvalidState, Status: http.StatusConflict},
	{Err: state.ErrAlreadyCompleted, Status: http.StatusConflict},
	{Err: state.ErrInsufficientFunds, Status: http.StatusBadRequest},
	{Err: state.ErrInvalidAmount, Status: http.StatusBadRequest},
	{Err: state.ErrInvalidAccount, Status: http.StatusBadRequest},
}

// Handlers manages the set of scholarship endpoints.
type Handlers struct {
	Log     *zap.SugaredLogger
	Metrics *metrics.Metrics
	Core    *escrow.Core
	NS      *nameservice.NameService
	WS      websocket.Upgrader
	Evts    *events.Events
}

// Create records a new scholarship from a donor signed request.
func (h Handlers) Create(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var signed escrow.Signed[escrow.CreateRequest]
	if err := web.Decode(r, &signed); err != nil {
		return errs.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
	}

	if err := validate.Check(signed.Request); err != nil {
		return err
	}

	h.Log.Infow("create scholarship", "traceid", v.TraceID, "from:nonce", signed, "student", signed.Request.Student, "total", signed.Request.TotalAmount, "milestones", len(signed.Request.Milestones), "rewards", signed.Request.Milestones.TotalReward())

	id, err := h.Core.Create(ctx, signed)
	h.record("create", err)
	if err != nil {
		return errs.Map(err, mappings...)
	}

	resp := struct {
		ID uint64 `json:"id"`
	}{
		ID: id,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Deposit adds funds to a scholarship from a donor signed request.
func (h Handlers) Deposit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	id, err := paramID(r)
	if err != nil {
		return err
	}

	var signed escrow.Signed[escrow.DepositRequest]
	if err := web.Decode(r, &signed); err != nil {
		return errs.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
	}

	if err := validate.Check(signed.Request); err != nil {
		return err
	}

	if signed.Request.ScholarshipID != id {
		return errs.BadRequest(fmt.Errorf("scholarship id %d does not match the path %d", signed.Request.ScholarshipID, id))
	}

	h.Log.Infow("deposit funds", "traceid", v.TraceID, "from:nonce", signed, "id", id, "amount", signed.Request.Amount)

	err = h.Core.Deposit(ctx, signed)
	h.record("deposit", err)
	if err != nil {
		return errs.Map(err, mappings...)
	}

	return web.Respond(ctx, w, nil, http.StatusNoContent)
}

// Complete marks a milestone complete and releases its reward.
func (h Handlers) Complete(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	id, err := paramID(r)
	if err != nil {
		return err
	}

	mid, err := strconv.ParseUint(web.Param(r, "mid"), 10, 32)
	if err != nil {
		return errs.BadRequest(fmt.Errorf("invalid milestone id: %w", err))
	}

	// The proof is optional so an empty body completes with no proof.
	var req completeRequest
	if err := web.Decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		return errs.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
	}

	h.Log.Infow("complete milestone", "traceid", v.TraceID, "id", id, "milestone", mid, "proof", len(req.Proof))

	released, err := h.Core.Complete(ctx, id, uint32(mid), []byte(req.Proof))
	h.record("complete", err)
	if err != nil {
		return errs.Map(err, mappings...)
	}

	resp := struct {
		Released string `json:"released"`
	}{
		Released: released.String(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Cancel deactivates a scholarship from a donor signed request.
func (h Handlers) Cancel(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	id, err := paramID(r)
	if err != nil {
		return err
	}

	var signed escrow.Signed[escrow.CancelRequest]
	if err := web.Decode(r, &signed); err != nil {
		return errs.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
	}

	if err := validate.Check(signed.Request); err != nil {
		return err
	}

	if signed.Request.ScholarshipID != id {
		return errs.BadRequest(fmt.Errorf("scholarship id %d does not match the path %d", signed.Request.ScholarshipID, id))
	}

	h.Log.Infow("cancel scholarship", "traceid", v.TraceID, "from:nonce", signed, "id", id)

	err = h.Core.Cancel(ctx, signed)
	h.record("cancel", err)
	if err != nil {
		return errs.Map(err, mappings...)
	}

	return web.Respond(ctx, w, nil, http.StatusNoContent)
}

// =============================================================================

// QueryByID returns the scholarship.
func (h Handlers) QueryByID(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := paramID(r)
	if err != nil {
		return err
	}

	s, err := h.Core.State().QueryScholarship(id)
	if err != nil {
		return errs.Map(err, mappings...)
	}

	return web.Respond(ctx, w, toScholarship(s, h.NS), http.StatusOK)
}

// QueryMilestones returns the milestones of the scholarship.
func (h Handlers) QueryMilestones(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := paramID(r)
	if err != nil {
		return err
	}

	set, err := h.Core.State().QueryMilestones(id)
	if err != nil {
		return errs.Map(err, mappings...)
	}

	return web.Respond(ctx, w, set, http.StatusOK)
}

// QueryBalance returns the deposited balance of the scholarship.
func (h Handlers) QueryBalance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := paramID(r)
	if err != nil {
		return err
	}

	balance, err := h.Core.State().QueryBalance(id)
	if err != nil {
		return err
	}

	resp := struct {
		ID      uint64 `json:"id"`
		Balance string `json:"balance"`
	}{
		ID:      id,
		Balance: balance.String(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// QueryCompletion returns the completion percentage of the scholarship.
func (h Handlers) QueryCompletion(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := paramID(r)
	if err != nil {
		return err
	}

	pct, err := h.Core.State().QueryCompletionPercentage(id)
	if err != nil {
		return err
	}

	resp := struct {
		ID         uint64 `json:"id"`
		Percentage uint32 `json:"percentage"`
	}{
		ID:         id,
		Percentage: pct,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// QueryAll returns every scholarship.
func (h Handlers) QueryAll(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	list, err := h.Core.State().QueryAllScholarships()
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, toScholarships(list, h.NS), http.StatusOK)
}

// QueryCount returns the number of scholarships created.
func (h Handlers) QueryCount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	count, err := h.Core.State().QueryScholarshipCount()
	if err != nil {
		return err
	}

	resp := struct {
		Count uint64 `json:"count"`
	}{
		Count: count,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// QueryByStudent returns the scholarships of a student.
func (h Handlers) QueryByStudent(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	account, err := h.paramAccount(r)
	if err != nil {
		return err
	}

	list, err := h.Core.State().QueryStudentScholarships(account)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, toScholarships(list, h.NS), http.StatusOK)
}

// QueryByDonor returns the scholarships of a donor.
func (h Handlers) QueryByDonor(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	account, err := h.paramAccount(r)
	if err != nil {
		return err
	}

	list, err := h.Core.State().QueryDonorScholarships(account)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, toScholarships(list, h.NS), http.StatusOK)
}

// QueryNonce returns the last nonce used by the account so a client knows
// what to sign next.
func (h Handlers) QueryNonce(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	account, err := h.paramAccount(r)
	if err != nil {
		return err
	}

	nonce, err := h.Core.State().QueryNonce(account)
	if err != nil {
		return err
	}

	resp := struct {
		Account database.AccountID `json:"account"`
		Nonce   uint64             `json:"nonce"`
	}{
		Account: account,
		Nonce:   nonce,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// Events handles a web socket to provide escrow events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// The status is set for the logger since the upgrade took the writer.
	web.SetStatusCode(ctx, http.StatusSwitchingProtocols)

	var topics []string
	if topic := r.URL.Query().Get("topic"); topic != "" {
		topics = append(topics, topic)
	}

	ch := h.Evts.Acquire(v.TraceID, topics...)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(evt); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// =============================================================================

// record counts the outcome of an operation.
func (h Handlers) record(operation string, err error) {
	if h.Metrics == nil {
		return
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
		for _, m := range mappings {
			if errors.Is(err, m.Err) {
				outcome = m.Err.Error()
				break
			}
		}
	}

	h.Metrics.Operation(operation, outcome)
}

func paramID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(web.Param(r, "id"), 10, 64)
	if err != nil {
		return 0, errs.BadRequest(fmt.Errorf("invalid scholarship id: %w", err))
	}
	return id, nil
}

func (h Handlers) paramAccount(r *http.Request) (database.AccountID, error) {
	account, err := h.NS.Resolve(web.Param(r, "account"))
	if err != nil {
		return "", errs.BadRequest(err)
	}
	return account, nil
}
