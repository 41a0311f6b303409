// Package viewgrp serves the dashboard page that lists the scholarships and
// follows the escrow event feed.
package viewgrp

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"math/big"
	"net/http"

	"github.com/scholarstream/escrow/business/core/escrow"
	"github.com/scholarstream/escrow/foundation/escrow/database"
	"github.com/scholarstream/escrow/foundation/escrow/milestone"
	"github.com/scholarstream/escrow/foundation/nameservice"
	"github.com/scholarstream/escrow/foundation/web"
)

//go:embed views
var views embed.FS

var index = template.Must(template.ParseFS(views, "views/index.html"))

// Handlers manages the dashboard.
type Handlers struct {
	Build string
	Core  *escrow.Core
	NS    *nameservice.NameService
}

type row struct {
	database.Scholarship
	DonorName   string
	StudentName string
	Milestones  milestone.Set
	Rewards     *big.Int
	Percentage  uint32
}

// Index renders the dashboard.
func (h Handlers) Index(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	list, err := h.Core.State().QueryAllScholarships()
	if err != nil {
		return err
	}

	rows := make([]row, 0, len(list))
	for _, s := range list {
		set, err := h.Core.State().QueryMilestones(s.ID)
		if err != nil {
			return err
		}

		pct, err := h.Core.State().QueryCompletionPercentage(s.ID)
		if err != nil {
			return err
		}

		rows = append(rows, row{
			Scholarship: s,
			DonorName:   h.NS.Lookup(s.Donor),
			StudentName: h.NS.Lookup(s.Student),
			Milestones:  set,
			Rewards:     set.TotalReward(),
			Percentage:  pct,
		})
	}

	data := struct {
		Build        string
		Scholarships []row
	}{
		Build:        h.Build,
		Scholarships: rows,
	}

	if err := web.SetStatusCode(ctx, http.StatusOK); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := index.Execute(w, data); err != nil {
		return fmt.Errorf("rendering index: %w", err)
	}

	return nil
}
