package service

import (
	"context"
	"errors"
	"testing"

	"legal-aid/internal/domain"
)

func newIssueFixture(issues ...domain.LegalIssue) (*IssueService, *fakeIssueRepo) {
	repo := newFakeIssueRepo(issues...)
	users := newFakeUserRepo(
		domain.User{ID: "U1", FullName: "Ravi Kumar", Role: domain.RoleCitizen},
		domain.User{ID: "U2", FullName: "Asha Rao", Role: domain.RoleParalegal},
		domain.User{ID: "U4", FullName: "Meera Admin", Role: domain.RoleAdmin},
	)
	return NewIssueService(nil, repo, users), repo
}

var (
	ownerCaller     = Caller{UserID: "U1", FullName: "Ravi Kumar", Role: domain.RoleCitizen}
	paralegalCaller = Caller{UserID: "U2", FullName: "Asha Rao", Role: domain.RoleParalegal}
	adminCaller     = Caller{UserID: "U4", FullName: "Meera Admin", Role: domain.RoleAdmin}
	outsiderCaller  = Caller{UserID: "U3", Role: domain.RoleCitizen}
)

func TestIssueServiceCreate(t *testing.T) {
	svc, repo := newIssueFixture()

	issue, err := svc.Create(context.Background(), CreateIssueInput{
		OwnerID:     " U1 ",
		IssueType:   domain.IssueTypePension,
		Description: "  pension stopped  ",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if issue.ID == "" || issue.OwnerID != "U1" {
		t.Fatalf("unexpected issue: %+v", issue)
	}
	if issue.Status != domain.IssueStatusPending {
		t.Fatalf("expected Pending status, got %s", issue.Status)
	}
	if issue.Description != "pension stopped" {
		t.Fatalf("expected trimmed description, got %q", issue.Description)
	}
	if len(issue.History) != 1 || issue.History[0].Event != domain.HistoryIssueCreated {
		t.Fatalf("expected creation history event, got %+v", issue.History)
	}
	if _, ok := repo.issues[issue.ID]; !ok {
		t.Fatalf("expected issue persisted")
	}
}

func TestIssueServiceCreate_Validation(t *testing.T) {
	svc, _ := newIssueFixture()

	cases := []CreateIssueInput{
		{OwnerID: "", IssueType: domain.IssueTypeOther},
		{OwnerID: "U1", IssueType: "Parking Ticket"},
	}
	for i, c := range cases {
		if _, err := svc.Create(context.Background(), c); !errors.Is(err, ErrInvalidIssueInput) {
			t.Fatalf("case %d expected ErrInvalidIssueInput, got %v", i, err)
		}
	}
}

func TestIssueServiceGet_Access(t *testing.T) {
	svc, _ := newIssueFixture(assignedIssue())
	ctx := context.Background()

	for _, c := range []Caller{ownerCaller, paralegalCaller, adminCaller} {
		if _, err := svc.Get(ctx, "I1", c); err != nil {
			t.Fatalf("caller %s expected access, got %v", c.UserID, err)
		}
	}
	if _, err := svc.Get(ctx, "I1", outsiderCaller); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if _, err := svc.Get(ctx, "missing", adminCaller); !errors.Is(err, ErrIssueNotFound) {
		t.Fatalf("expected ErrIssueNotFound, got %v", err)
	}
}

func TestIssueServiceUpdateStatus_AnyTransition(t *testing.T) {
	issue := assignedIssue()
	issue.Status = domain.IssueStatusResolved
	svc, _ := newIssueFixture(issue)

	updated, err := svc.UpdateStatus(context.Background(), "I1", domain.IssueStatusPending, paralegalCaller)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Status != domain.IssueStatusPending {
		t.Fatalf("expected Pending, got %s", updated.Status)
	}
	last := updated.History[len(updated.History)-1]
	if last.Event != domain.HistoryStatusChanged || last.Details != "Status changed to Pending" || last.Actor != "Paralegal" {
		t.Fatalf("unexpected history entry: %+v", last)
	}

	if _, err := svc.UpdateStatus(context.Background(), "I1", "Closed", paralegalCaller); !errors.Is(err, ErrInvalidIssueInput) {
		t.Fatalf("expected ErrInvalidIssueInput, got %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), "I1", domain.IssueStatusEscalated, outsiderCaller); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestIssueServiceAssignParalegal(t *testing.T) {
	issue := assignedIssue()
	issue.AssignedParalegalID = nil
	svc, _ := newIssueFixture(issue)
	ctx := context.Background()

	updated, err := svc.AssignParalegal(ctx, "I1", "U2")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.AssignedParalegalID == nil || *updated.AssignedParalegalID != "U2" {
		t.Fatalf("expected U2 assigned, got %v", updated.AssignedParalegalID)
	}
	last := updated.History[len(updated.History)-1]
	if last.Details != "Assigned to Asha Rao" || last.Actor != "Admin" {
		t.Fatalf("unexpected history entry: %+v", last)
	}

	if _, err := svc.AssignParalegal(ctx, "I1", "U1"); !errors.Is(err, ErrInvalidIssueInput) {
		t.Fatalf("expected citizen assignee rejected, got %v", err)
	}
	if _, err := svc.AssignParalegal(ctx, "I1", "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.AssignParalegal(ctx, "missing", "U2"); !errors.Is(err, ErrIssueNotFound) {
		t.Fatalf("expected ErrIssueNotFound, got %v", err)
	}
}

func TestIssueServiceAddNote(t *testing.T) {
	svc, _ := newIssueFixture(assignedIssue())
	ctx := context.Background()

	updated, err := svc.AddNote(ctx, "I1", " called the office ", paralegalCaller)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	last := updated.History[len(updated.History)-1]
	if last.Event != domain.HistoryNoteAdded || last.Details != "called the office" {
		t.Fatalf("unexpected history entry: %+v", last)
	}

	if _, err := svc.AddNote(ctx, "I1", "  ", ownerCaller); !errors.Is(err, ErrInvalidIssueInput) {
		t.Fatalf("expected ErrInvalidIssueInput, got %v", err)
	}
	if _, err := svc.AddNote(ctx, "I1", "hi", outsiderCaller); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestIssueServiceDelete(t *testing.T) {
	svc, repo := newIssueFixture(assignedIssue())
	ctx := context.Background()

	if err := svc.Delete(ctx, "I1", paralegalCaller); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected paralegal delete rejected, got %v", err)
	}
	if err := svc.Delete(ctx, "I1", ownerCaller); err != nil {
		t.Fatalf("expected owner delete, got %v", err)
	}
	if !repo.issues["I1"].IsDeleted {
		t.Fatalf("expected soft delete flag")
	}
	if _, err := svc.Get(ctx, "I1", ownerCaller); !errors.Is(err, ErrIssueNotFound) {
		t.Fatalf("expected deleted issue hidden, got %v", err)
	}
}

func TestIssueServiceListForUser(t *testing.T) {
	other := assignedIssue()
	other.ID = "I9"
	other.OwnerID = "U3"
	other.AssignedParalegalID = nil
	svc, _ := newIssueFixture(assignedIssue(), other)

	issues, err := svc.ListForUser(context.Background(), "U2")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(issues) != 1 || issues[0].ID != "I1" {
		t.Fatalf("expected only I1 for paralegal, got %+v", issues)
	}
}

func TestIssueServiceAttachDocument(t *testing.T) {
	svc, repo := newIssueFixture(assignedIssue())
	ctx := context.Background()

	updated, err := svc.AttachDocument(ctx, "I1", " D1 ", " Aadhaar Card ", ownerCaller)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(updated.DocumentIDs) != 1 || updated.DocumentIDs[0] != "D1" {
		t.Fatalf("expected document D1 attached, got %v", updated.DocumentIDs)
	}
	last := updated.History[len(updated.History)-1]
	if last.Event != domain.HistoryDocumentUploaded || last.Details != "Document: Aadhaar Card" || last.Actor != "User" {
		t.Fatalf("unexpected history entry: %+v", last)
	}

	if _, err := svc.AttachDocument(ctx, "I1", "D2", "Ration Card", paralegalCaller); err != nil {
		t.Fatalf("expected paralegal attach, got %v", err)
	}
	if got := repo.issues["I1"].DocumentIDs; len(got) != 2 || got[1] != "D2" {
		t.Fatalf("expected documents appended in order, got %v", got)
	}

	if _, err := svc.AttachDocument(ctx, "I1", "", "Ration Card", ownerCaller); !errors.Is(err, ErrInvalidIssueInput) {
		t.Fatalf("expected ErrInvalidIssueInput for blank id, got %v", err)
	}
	if _, err := svc.AttachDocument(ctx, "I1", "D3", "  ", ownerCaller); !errors.Is(err, ErrInvalidIssueInput) {
		t.Fatalf("expected ErrInvalidIssueInput for blank type, got %v", err)
	}
	if _, err := svc.AttachDocument(ctx, "I1", "D3", "Other", outsiderCaller); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if _, err := svc.AttachDocument(ctx, "missing", "D3", "Other", ownerCaller); !errors.Is(err, ErrIssueNotFound) {
		t.Fatalf("expected ErrIssueNotFound, got %v", err)
	}
	if n := len(repo.issues["I1"].DocumentIDs); n != 2 {
		t.Fatalf("expected rejected attaches to leave documents untouched, got %d", n)
	}
}
