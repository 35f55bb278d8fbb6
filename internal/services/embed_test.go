package services

import (
	"context"
	"errors"
	"testing"

	"formgate/internal/models"
)

func TestRequestDomainNew(t *testing.T) {
	db := openTestDB(t)
	svc := NewEmbedService(db)
	form := createForm(t, db, true)

	record, err := svc.RequestDomain(context.Background(), form.ID, "Example.COM", "user-1")
	if err != nil {
		t.Fatalf("RequestDomain: %v", err)
	}
	if record.Status != models.EmbedDomainSubmitted {
		t.Errorf("status = %s, want submitted", record.Status)
	}
	if record.Domain != "example.com" {
		t.Errorf("domain = %q, want normalized example.com", record.Domain)
	}
	if record.RequestedBy != "user-1" {
		t.Errorf("requestedBy = %q, want user-1", record.RequestedBy)
	}

	// a fresh request is not a transition, so no history yet
	history, err := svc.DomainHistory(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("DomainHistory: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("new request wrote %d history rows, want 0", len(history))
	}
}

func TestRequestDomainDuplicateInFlight(t *testing.T) {
	db := openTestDB(t)
	svc := NewEmbedService(db)
	form := createForm(t, db, true)

	if _, err := svc.RequestDomain(context.Background(), form.ID, "example.com", "user-1"); err != nil {
		t.Fatalf("first RequestDomain: %v", err)
	}

	_, err := svc.RequestDomain(context.Background(), form.ID, "example.com", "user-2")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("second RequestDomain: got %v, want ConflictError", err)
	}
	if conflict.Status != models.EmbedDomainSubmitted {
		t.Errorf("conflict status = %s, want submitted", conflict.Status)
	}

	var count int64
	db.Model(&models.FormEmbedDomain{}).Where("form_id = ?", form.ID).Count(&count)
	if count != 1 {
		t.Errorf("domain rows = %d, want 1", count)
	}
}

func TestRequestDomainSameDomainOnAnotherForm(t *testing.T) {
	db := openTestDB(t)
	svc := NewEmbedService(db)
	formA := createForm(t, db, true)
	formB := &models.Form{Title: "Other", OwnerID: formA.OwnerID}
	if err := db.Create(formB).Error; err != nil {
		t.Fatalf("create form: %v", err)
	}

	if _, err := svc.RequestDomain(context.Background(), formA.ID, "example.com", "user-1"); err != nil {
		t.Fatalf("RequestDomain on form A: %v", err)
	}
	// uniqueness is scoped per form
	if _, err := svc.RequestDomain(context.Background(), formB.ID, "example.com", "user-1"); err != nil {
		t.Fatalf("RequestDomain on form B: %v", err)
	}
}

func TestReviewDomainRequest(t *testing.T) {
	db := openTestDB(t)
	svc := NewEmbedService(db)
	form := createForm(t, db, true)

	record, err := svc.RequestDomain(context.Background(), form.ID, "example.com", "user-1")
	if err != nil {
		t.Fatalf("RequestDomain: %v", err)
	}

	reviewed, err := svc.ReviewDomainRequest(context.Background(), record.ID, models.EmbedDomainApproved, "admin-1")
	if err != nil {
		t.Fatalf("ReviewDomainRequest: %v", err)
	}
	if reviewed.Status != models.EmbedDomainApproved {
		t.Errorf("status = %s, want approved", reviewed.Status)
	}

	history, err := svc.DomainHistory(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("DomainHistory: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history rows = %d, want exactly 1", len(history))
	}
	if history[0].PreviousStatus != models.EmbedDomainSubmitted || history[0].NewStatus != models.EmbedDomainApproved {
		t.Errorf("history = %s -> %s, want submitted -> approved", history[0].PreviousStatus, history[0].NewStatus)
	}
	if history[0].Actor != "admin-1" {
		t.Errorf("actor = %q, want admin-1", history[0].Actor)
	}
}

func TestReviewTerminalRowRejected(t *testing.T) {
	db := openTestDB(t)
	svc := NewEmbedService(db)
	form := createForm(t, db, true)

	record, _ := svc.RequestDomain(context.Background(), form.ID, "example.com", "user-1")
	if _, err := svc.ReviewDomainRequest(context.Background(), record.ID, models.EmbedDomainApproved, "admin-1"); err != nil {
		t.Fatalf("first review: %v", err)
	}

	_, err := svc.ReviewDomainRequest(context.Background(), record.ID, models.EmbedDomainDenied, "admin-2")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("second review: got %v, want ConflictError", err)
	}
	if conflict.Status != models.EmbedDomainApproved {
		t.Errorf("conflict status = %s, want approved", conflict.Status)
	}

	// the rejected review must not have written an audit row
	history, _ := svc.DomainHistory(context.Background(), record.ID)
	if len(history) != 1 {
		t.Errorf("history rows = %d, want still 1", len(history))
	}
}

func TestReviewInvalidDecision(t *testing.T) {
	db := openTestDB(t)
	svc := NewEmbedService(db)
	form := createForm(t, db, true)

	record, _ := svc.RequestDomain(context.Background(), form.ID, "example.com", "user-1")
	_, err := svc.ReviewDomainRequest(context.Background(), record.ID, models.EmbedDomainPending, "admin-1")
	if !errors.Is(err, ErrInvalidDecision) {
		t.Errorf("review with pending: got %v, want ErrInvalidDecision", err)
	}
}

func TestResubmitAfterDenial(t *testing.T) {
	db := openTestDB(t)
	svc := NewEmbedService(db)
	form := createForm(t, db, true)

	record, _ := svc.RequestDomain(context.Background(), form.ID, "example.com", "user-1")
	if _, err := svc.ReviewDomainRequest(context.Background(), record.ID, models.EmbedDomainDenied, "admin-1"); err != nil {
		t.Fatalf("deny: %v", err)
	}

	resubmitted, err := svc.RequestDomain(context.Background(), form.ID, "example.com", "user-2")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if resubmitted.ID != record.ID {
		t.Errorf("resubmission created a new row")
	}

	var current models.FormEmbedDomain
	if err := db.First(&current, "id = ?", record.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if current.Status != models.EmbedDomainPending {
		t.Errorf("status = %s, want pending", current.Status)
	}
	if current.RequestedBy != "user-2" {
		t.Errorf("requestedBy = %q, want user-2", current.RequestedBy)
	}

	history, _ := svc.DomainHistory(context.Background(), record.ID)
	if len(history) != 2 {
		t.Fatalf("history rows = %d, want 2 (deny + resubmit)", len(history))
	}
	// newest first
	if history[0].PreviousStatus != models.EmbedDomainDenied || history[0].NewStatus != models.EmbedDomainPending {
		t.Errorf("latest history = %s -> %s, want denied -> pending", history[0].PreviousStatus, history[0].NewStatus)
	}
}

func TestResubmittedRequestIsReviewable(t *testing.T) {
	db := openTestDB(t)
	svc := NewEmbedService(db)
	form := createForm(t, db, true)

	record, _ := svc.RequestDomain(context.Background(), form.ID, "example.com", "user-1")
	svc.ReviewDomainRequest(context.Background(), record.ID, models.EmbedDomainDenied, "admin-1")
	svc.RequestDomain(context.Background(), form.ID, "example.com", "user-1")

	reviewed, err := svc.ReviewDomainRequest(context.Background(), record.ID, models.EmbedDomainApproved, "admin-1")
	if err != nil {
		t.Fatalf("review resubmission: %v", err)
	}
	if reviewed.Status != models.EmbedDomainApproved {
		t.Errorf("status = %s, want approved", reviewed.Status)
	}
}

func TestRemoveDomainCascadesHistory(t *testing.T) {
	db := openTestDB(t)
	svc := NewEmbedService(db)
	form := createForm(t, db, true)

	record, _ := svc.RequestDomain(context.Background(), form.ID, "example.com", "user-1")
	svc.ReviewDomainRequest(context.Background(), record.ID, models.EmbedDomainApproved, "admin-1")

	if err := svc.RemoveDomain(context.Background(), record.ID); err != nil {
		t.Fatalf("RemoveDomain: %v", err)
	}

	if _, err := svc.GetDomain(context.Background(), record.ID); !errors.Is(err, ErrDomainNotFound) {
		t.Errorf("GetDomain after remove: got %v, want ErrDomainNotFound", err)
	}

	history, err := svc.DomainHistory(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("DomainHistory after remove: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history rows after remove = %d, want 0", len(history))
	}
}

func TestRemoveDomainNotFound(t *testing.T) {
	db := openTestDB(t)
	svc := NewEmbedService(db)

	err := svc.RemoveDomain(context.Background(), "3b1f5c1e-0000-0000-0000-000000000000")
	if !errors.Is(err, ErrDomainNotFound) {
		t.Errorf("RemoveDomain missing id: got %v, want ErrDomainNotFound", err)
	}
}

func TestListRequestedDomainsFilter(t *testing.T) {
	db := openTestDB(t)
	svc := NewEmbedService(db)
	form := createForm(t, db, true)

	approved, _ := svc.RequestDomain(context.Background(), form.ID, "approved.com", "user-1")
	svc.ReviewDomainRequest(context.Background(), approved.ID, models.EmbedDomainApproved, "admin-1")
	denied, _ := svc.RequestDomain(context.Background(), form.ID, "denied.com", "user-1")
	svc.ReviewDomainRequest(context.Background(), denied.ID, models.EmbedDomainDenied, "admin-1")
	svc.RequestDomain(context.Background(), form.ID, "waiting.com", "user-1")

	all, err := svc.ListRequestedDomains(context.Background(), form.ID, nil)
	if err != nil {
		t.Fatalf("ListRequestedDomains: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("unfiltered count = %d, want 3", len(all))
	}

	awaiting, err := svc.ListRequestedDomains(context.Background(), form.ID, []models.EmbedDomainStatus{
		models.EmbedDomainSubmitted, models.EmbedDomainPending,
	})
	if err != nil {
		t.Fatalf("ListRequestedDomains filtered: %v", err)
	}
	if len(awaiting) != 1 || awaiting[0].Domain != "waiting.com" {
		t.Errorf("awaiting = %+v, want just waiting.com", awaiting)
	}

	allowed, err := svc.ListAllowedDomains(context.Background(), form.ID)
	if err != nil {
		t.Fatalf("ListAllowedDomains: %v", err)
	}
	if len(allowed) != 1 || allowed[0].Domain != "approved.com" {
		t.Errorf("allowed = %+v, want just approved.com", allowed)
	}
}

func TestAllowsOrigin(t *testing.T) {
	db := openTestDB(t)
	svc := NewEmbedService(db)
	form := createForm(t, db, true)

	record, _ := svc.RequestDomain(context.Background(), form.ID, "example.com", "user-1")
	if _, err := svc.ReviewDomainRequest(context.Background(), record.ID, models.EmbedDomainApproved, "admin-1"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	// a merely submitted domain must not grant trust
	svc.RequestDomain(context.Background(), form.ID, "unreviewed.org", "user-1")

	tests := []struct {
		name    string
		origin  string
		want    bool
		wantErr error
	}{
		{name: "absent origin denied without error", origin: "", want: false},
		{name: "exact match", origin: "https://example.com", want: true},
		{name: "subdomain matches registered parent", origin: "https://sub.example.com", want: true},
		{name: "registered domain matches shorter host", origin: "https://example.com:8443", want: true},
		{name: "unrelated host denied", origin: "https://other.net", want: false},
		{name: "unreviewed domain denied", origin: "https://unreviewed.org", want: false},
		{name: "unparseable origin", origin: "http://[::1", want: false, wantErr: ErrInvalidOrigin},
		{name: "origin without host", origin: "null", want: false, wantErr: ErrInvalidOrigin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.AllowsOrigin(context.Background(), form.ID, tt.origin)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("err = %v", err)
			}
			if got != tt.want {
				t.Errorf("AllowsOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestAllowsOriginScopedToForm(t *testing.T) {
	db := openTestDB(t)
	svc := NewEmbedService(db)
	formA := createForm(t, db, true)
	formB := &models.Form{Title: "Other", OwnerID: formA.OwnerID}
	if err := db.Create(formB).Error; err != nil {
		t.Fatalf("create form: %v", err)
	}

	record, _ := svc.RequestDomain(context.Background(), formA.ID, "example.com", "user-1")
	svc.ReviewDomainRequest(context.Background(), record.ID, models.EmbedDomainApproved, "admin-1")

	got, err := svc.AllowsOrigin(context.Background(), formB.ID, "https://example.com")
	if err != nil {
		t.Fatalf("AllowsOrigin: %v", err)
	}
	if got {
		t.Errorf("approval on form A leaked to form B")
	}
}
