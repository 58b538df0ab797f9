// Package domain provides core business rules for the leads bounded context.
package domain

import "strings"

// Lead statuses.
const (
	StatusInquiry   = "INQUIRY"
	StatusProposal  = "PROPOSAL"
	StatusBooked    = "BOOKED"
	StatusCompleted = "COMPLETED"
)

// Save statuses. ARCHIVED is orthogonal to the pipeline status.
const (
	SaveStatusDraft     = "DRAFT"
	SaveStatusSubmitted = "SUBMITTED"
	SaveStatusArchived  = "ARCHIVED"
)

// Kanban board ids.
const (
	BoardInquiry   = "inquiry"
	BoardProposal  = "proposal"
	BoardBooked    = "booked"
	BoardCompleted = "completed"
)

// Stage ties a Kanban board id to a lead status and its display label.
type Stage struct {
	BoardID string
	Status  string
	Label   string
}

// Stages lists the pipeline in board order.
var Stages = []Stage{
	{BoardID: BoardInquiry, Status: StatusInquiry, Label: "Inquiry"},
	{BoardID: BoardProposal, Status: StatusProposal, Label: "Proposal"},
	{BoardID: BoardBooked, Status: StatusBooked, Label: "Booked"},
	{BoardID: BoardCompleted, Status: StatusCompleted, Label: "Completed"},
}

var (
	stagesByBoard  = make(map[string]Stage, len(Stages))
	stagesByStatus = make(map[string]Stage, len(Stages))
)

func init() {
	for _, s := range Stages {
		stagesByBoard[s.BoardID] = s
		stagesByStatus[s.Status] = s
	}
}

// StageForBoard resolves a board id. Matching is exact: board ids are lowercase slugs.
func StageForBoard(boardID string) (Stage, bool) {
	s, ok := stagesByBoard[boardID]
	return s, ok
}

// StageForStatus resolves a lead status.
func StageForStatus(status string) (Stage, bool) {
	s, ok := stagesByStatus[status]
	return s, ok
}

// IsValidStatus reports whether status is a pipeline status.
func IsValidStatus(status string) bool {
	_, ok := stagesByStatus[status]
	return ok
}

// IsValidSaveStatus reports whether saveStatus is a known save status.
func IsValidSaveStatus(saveStatus string) bool {
	switch saveStatus {
	case SaveStatusDraft, SaveStatusSubmitted, SaveStatusArchived:
		return true
	}
	return false
}

// Couple renders the two partner names as "A & B", or just one when the other is blank.
func Couple(partnerOne, partnerTwo string) string {
	a := strings.TrimSpace(partnerOne)
	b := strings.TrimSpace(partnerTwo)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " & " + b
}
