// Package tokengrp maintains the group of handlers for the reward token.
package tokengrp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/scholarstream/escrow/business/core/escrow"
	"github.com/scholarstream/escrow/business/sys/validate"
	"github.com/scholarstream/escrow/business/web/errs"
	"github.com/scholarstream/escrow/foundation/escrow/database"
	"github.com/scholarstream/escrow/foundation/escrow/state"
	"github.com/scholarstream/escrow/foundation/escrow/token"
	"github.com/scholarstream/escrow/foundation/nameservice"
	"github.com/scholarstream/escrow/foundation/web"
	"go.uber.org/zap"
)

var mappings = []errs.Mapping{
	{Err: escrow.ErrBadSignature, Status: http.StatusUnauthorized},
	{Err: state.ErrForbidden, Status: http.StatusForbidden},
	{Err: token.ErrUnauthorized, Status: http.StatusUnauthorized},
	{Err: token.ErrNotInitialized, Status: http.StatusConflict},
	{Err: token.ErrInvalidAmount, Status: http.StatusBadRequest},
	{Err: token.ErrInsufficientBalance, Status: http.StatusBadRequest},
	{Err: token.ErrInvalidProgress, Status: http.StatusBadRequest},
}

// Handlers manages the set of token endpoints.
type Handlers struct {
	Log  *zap.SugaredLogger
	Core *escrow.Core
	NS   *nameservice.NameService
}

// Info returns the token metadata and the total supply.
func (h Handlers) Info(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	info, err := h.Core.Token().Info()
	if err != nil {
		return errs.Map(err, mappings...)
	}

	supply, err := h.Core.Token().TotalSupply()
	if err != nil {
		return err
	}

	resp := struct {
		token.Info
		AdminName   string `json:"admin_name"`
		TotalSupply string `json:"total_supply"`
	}{
		Info:        info,
		AdminName:   h.NS.Lookup(info.Admin),
		TotalSupply: supply.String(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Balance returns the token balance of the account.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	account, err := h.NS.Resolve(web.Param(r, "account"))
	if err != nil {
		return errs.BadRequest(err)
	}

	balance, err := h.Core.Token().BalanceOf(account)
	if err != nil {
		return err
	}

	resp := struct {
		Account database.AccountID `json:"account"`
		Name    string             `json:"name"`
		Balance string             `json:"balance"`
	}{
		Account: account,
		Name:    h.NS.Lookup(account),
		Balance: balance.String(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mint creates tokens from an admin signed request.
func (h Handlers) Mint(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var signed escrow.Signed[escrow.MintRequest]
	if err := web.Decode(r, &signed); err != nil {
		return errs.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
	}

	if err := validate.Check(signed.Request); err != nil {
		return err
	}

	h.Log.Infow("mint", "traceid", v.TraceID, "from:nonce", signed, "to", signed.Request.To, "amount", signed.Request.Amount)

	if err := h.Core.Mint(ctx, signed); err != nil {
		return errs.Map(err, mappings...)
	}

	return web.Respond(ctx, w, nil, http.StatusNoContent)
}

// Transfer moves tokens from a sender signed request.
func (h Handlers) Transfer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var signed escrow.Signed[escrow.TransferRequest]
	if err := web.Decode(r, &signed); err != nil {
		return errs.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
	}

	if err := validate.Check(signed.Request); err != nil {
		return err
	}

	h.Log.Infow("transfer", "traceid", v.TraceID, "from:nonce", signed, "to", signed.Request.To, "amount", signed.Request.Amount)

	if err := h.Core.Transfer(ctx, signed); err != nil {
		return errs.Map(err, mappings...)
	}

	return web.Respond(ctx, w, nil, http.StatusNoContent)
}

// Distribute rewards progress with tokens from an admin signed request.
func (h Handlers) Distribute(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var signed escrow.Signed[escrow.DistributeRequest]
	if err := web.Decode(r, &signed); err != nil {
		return errs.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
	}

	if err := validate.Check(signed.Request); err != nil {
		return err
	}

	h.Log.Infow("distribute", "traceid", v.TraceID, "from:nonce", signed, "student", signed.Request.Student, "progress", signed.Request.Progress)

	amount, err := h.Core.Distribute(ctx, signed)
	if err != nil {
		return errs.Map(err, mappings...)
	}

	resp := struct {
		Student database.AccountID `json:"student"`
		Amount  string             `json:"amount"`
	}{
		Student: signed.Request.Student,
		Amount:  amount.String(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
