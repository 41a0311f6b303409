// Package progressgrp maintains the group of handlers for student progress.
package progressgrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/scholarstream/escrow/business/core/escrow"
	"github.com/scholarstream/escrow/business/sys/validate"
	"github.com/scholarstream/escrow/business/web/errs"
	"github.com/scholarstream/escrow/foundation/escrow/progress"
	"github.com/scholarstream/escrow/foundation/nameservice"
	"github.com/scholarstream/escrow/foundation/web"
	"go.uber.org/zap"
)

var mappings = []errs.Mapping{
	{Err: progress.ErrNotFound, Status: http.StatusNotFound},
	{Err: progress.ErrOverflow, Status: http.StatusBadRequest},
}

// Handlers manages the set of progress endpoints.
type Handlers struct {
	Log  *zap.SugaredLogger
	Core *escrow.Core
	NS   *nameservice.NameService
}

// Update records a progress report for a student.
func (h Handlers) Update(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req updateRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	h.Log.Infow("update progress", "traceid", v.TraceID, "student", req.Student, "progress", req.Progress)

	if err := h.Core.Progress().UpdateProgress(req.Student, req.Progress); err != nil {
		return errs.Map(err, mappings...)
	}

	info, err := h.Core.Progress().StudentInfo(req.Student)
	if err != nil {
		return errs.Map(err, mappings...)
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// Summary returns the total progress and the student that reported last.
func (h Handlers) Summary(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	total, err := h.Core.Progress().TotalProgress()
	if err != nil {
		return err
	}

	last, err := h.Core.Progress().LastStudent()
	if err != nil && !errors.Is(err, progress.ErrNotFound) {
		return err
	}

	resp := summary{
		TotalProgress: total,
		LastStudent:   last,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Students returns every student that reported progress.
func (h Handlers) Students(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	all, err := h.Core.Progress().AllStudents()
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, all, http.StatusOK)
}

// Student returns the progress recorded for one student.
func (h Handlers) Student(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	account, err := h.NS.Resolve(web.Param(r, "account"))
	if err != nil {
		return errs.BadRequest(err)
	}

	info, err := h.Core.Progress().StudentInfo(account)
	if err != nil {
		return errs.Map(err, mappings...)
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}
