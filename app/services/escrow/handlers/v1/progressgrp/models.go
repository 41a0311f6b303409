package progressgrp

import "github.com/scholarstream/escrow/foundation/escrow/database"

type updateRequest struct {
	Student  database.AccountID `json:"student" validate:"required,account"`
	Progress uint32             `json:"progress"`
}

type summary struct {
	TotalProgress uint32             `json:"total_progress"`
	LastStudent   database.AccountID `json:"last_student,omitempty"`
}
