package domain

import (
	"slices"
	"time"

	"github.com/samber/lo"
)

// IssueType es la categoría cerrada de un caso.
type IssueType string

const (
	IssueTypeAadhaar            IssueType = "Aadhaar Issue"
	IssueTypePension            IssueType = "Pension Issue"
	IssueTypeLandDispute        IssueType = "Land Dispute"
	IssueTypeCourtSummon        IssueType = "Court Summon"
	IssueTypeCertificateMissing IssueType = "Certificate Missing"
	IssueTypeFraudCase          IssueType = "Fraud Case"
	IssueTypeOther              IssueType = "Other"
)

var issueTypes = []IssueType{
	IssueTypeAadhaar,
	IssueTypePension,
	IssueTypeLandDispute,
	IssueTypeCourtSummon,
	IssueTypeCertificateMissing,
	IssueTypeFraudCase,
	IssueTypeOther,
}

func (t IssueType) Valid() bool {
	return slices.Contains(issueTypes, t)
}

// IssueStatus no impone máquina de estados: cualquier estado puede seguir a otro.
type IssueStatus string

const (
	IssueStatusPending   IssueStatus = "Pending"
	IssueStatusSubmitted IssueStatus = "Submitted"
	IssueStatusEscalated IssueStatus = "Escalated"
	IssueStatusResolved  IssueStatus = "Resolved"
)

func (s IssueStatus) Valid() bool {
	switch s {
	case IssueStatusPending, IssueStatusSubmitted, IssueStatusEscalated, IssueStatusResolved:
		return true
	}
	return false
}

type HistoryEventType string

const (
	HistoryIssueCreated        HistoryEventType = "Issue Created"
	HistoryDocumentUploaded    HistoryEventType = "Document Uploaded"
	HistoryStatusChanged       HistoryEventType = "Status Changed"
	HistoryAssignedToParalegal HistoryEventType = "Assigned to Paralegal"
	HistoryNoteAdded           HistoryEventType = "Note Added"
)

const DefaultHistoryActor = "System"

// HistoryEvent es una entrada del historial; el historial solo admite append.
type HistoryEvent struct {
	Event     HistoryEventType `json:"event"`
	Timestamp time.Time        `json:"timestamp"`
	Details   string           `json:"details,omitempty"`
	Actor     string           `json:"actor"`
}

type LegalIssue struct {
	ID                  string         `json:"id"`
	OwnerID             string         `json:"owner_id"`
	AssignedParalegalID *string        `json:"assigned_paralegal_id,omitempty"`
	IssueType           IssueType      `json:"issue_type"`
	Description         string         `json:"description,omitempty"`
	Status              IssueStatus    `json:"status"`
	History             []HistoryEvent `json:"history"`
	DocumentIDs         []string       `json:"document_ids"`
	IsDeleted           bool           `json:"-"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// Participants devuelve {dueño, paralegal asignado} sin vacíos ni duplicados.
func (i LegalIssue) Participants() []string {
	ids := []string{i.OwnerID}
	if i.AssignedParalegalID != nil {
		ids = append(ids, *i.AssignedParalegalID)
	}
	return lo.Uniq(lo.Compact(ids))
}
