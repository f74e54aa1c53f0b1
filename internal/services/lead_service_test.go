package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domain "github.com/landlorddesk/api/internal/domain"
	"github.com/landlorddesk/api/internal/repositories"
)

type fakeLeadRepository struct {
	leads     map[string]domain.Lead
	pages     []domain.CursorPage[domain.Lead]
	pageIndex int
	insertErr error
	listCalls []repositories.LeadListFilter
}

func newFakeLeadRepository() *fakeLeadRepository {
	return &fakeLeadRepository{leads: map[string]domain.Lead{}}
}

func (f *fakeLeadRepository) Insert(_ context.Context, lead domain.Lead) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.leads[lead.ID] = lead
	return nil
}

func (f *fakeLeadRepository) Update(_ context.Context, lead domain.Lead) error {
	f.leads[lead.ID] = lead
	return nil
}

func (f *fakeLeadRepository) FindByID(_ context.Context, leadID string) (domain.Lead, error) {
	lead, ok := f.leads[leadID]
	if !ok {
		return domain.Lead{}, &caseRepoError{notFound: true}
	}
	return lead, nil
}

func (f *fakeLeadRepository) List(_ context.Context, filter repositories.LeadListFilter) (domain.CursorPage[domain.Lead], error) {
	f.listCalls = append(f.listCalls, filter)
	if f.pageIndex >= len(f.pages) {
		return domain.CursorPage[domain.Lead]{Items: []domain.Lead{}}, nil
	}
	page := f.pages[f.pageIndex]
	f.pageIndex++
	return page, nil
}

func newTestLeadService(t *testing.T, repo repositories.LeadRepository) LeadService {
	t.Helper()
	svc, err := NewLeadService(LeadServiceDeps{
		Repository:  repo,
		Clock:       func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) },
		IDGenerator: func() string { return "01TESTLEADID" },
	})
	if err != nil {
		t.Fatalf("NewLeadService: %v", err)
	}
	return svc
}

func TestLeadServiceCapture(t *testing.T) {
	repo := newFakeLeadRepository()
	svc := newTestLeadService(t, repo)

	lead, err := svc.Capture(context.Background(), CaptureLeadCommand{
		Contact: LeadContact{Name: "  John Smith ", Email: "john@example.com", MarketingConsent: true},
		Product: "eviction_pack",
		Source:  "wizard",
		CaseID:  "case_a",
	})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if lead.ID != "lead_01testleadid" {
		t.Fatalf("lead id = %q", lead.ID)
	}
	if lead.Name != "John Smith" {
		t.Fatalf("name not trimmed: %q", lead.Name)
	}
	if lead.Status != domain.LeadStatusNew {
		t.Fatalf("status = %q, want new", lead.Status)
	}
	if !lead.CreatedAt.Equal(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("created at = %v", lead.CreatedAt)
	}
	if _, ok := repo.leads[lead.ID]; !ok {
		t.Fatalf("lead not stored")
	}
}

func TestLeadServiceCaptureRejectsBadEmail(t *testing.T) {
	svc := newTestLeadService(t, newFakeLeadRepository())

	for _, email := range []string{"", "   ", "not-an-email"} {
		if _, err := svc.Capture(context.Background(), CaptureLeadCommand{
			Contact: LeadContact{Email: email},
		}); !errors.Is(err, ErrLeadInvalidInput) {
			t.Fatalf("email %q: err = %v, want ErrLeadInvalidInput", email, err)
		}
	}
}

func TestLeadServiceUpdateStatus(t *testing.T) {
	repo := newFakeLeadRepository()
	repo.leads["lead_a"] = domain.Lead{ID: "lead_a", Status: domain.LeadStatusNew}
	svc := newTestLeadService(t, repo)

	lead, err := svc.UpdateStatus(context.Background(), "lead_a", domain.LeadStatusContacted)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if lead.Status != domain.LeadStatusContacted {
		t.Fatalf("status = %q", lead.Status)
	}

	if _, err := svc.UpdateStatus(context.Background(), "lead_a", domain.LeadStatus("bogus")); !errors.Is(err, ErrLeadInvalidInput) {
		t.Fatalf("err = %v, want ErrLeadInvalidInput", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), "missing", domain.LeadStatusClosed); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("err = %v, want ErrLeadNotFound", err)
	}
}

func TestLeadServiceExportCSVWalksPages(t *testing.T) {
	repo := newFakeLeadRepository()
	repo.pages = []domain.CursorPage[domain.Lead]{
		{
			Items: []domain.Lead{{
				ID:               "lead_a",
				Name:             "John Smith",
				Email:            "john@example.com",
				Product:          "eviction_pack",
				Status:           domain.LeadStatusNew,
				MarketingConsent: true,
				CreatedAt:        time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
			}},
			NextPageToken: "page2",
		},
		{
			Items: []domain.Lead{{
				ID:        "lead_b",
				Email:     "jane@example.com",
				Status:    domain.LeadStatusContacted,
				CreatedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
			}},
		},
	}
	svc := newTestLeadService(t, repo)

	blob, err := svc.ExportCSV(context.Background(), LeadListFilter{})
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(blob)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %d lines: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "id,name,email") {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "lead_a") || !strings.Contains(lines[1], "2026-03-01T09:00:00Z") {
		t.Fatalf("first row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "lead_b") {
		t.Fatalf("second row = %q", lines[2])
	}
	if len(repo.listCalls) != 2 {
		t.Fatalf("expected two list calls, got %d", len(repo.listCalls))
	}
	if repo.listCalls[1].Pagination.PageToken != "page2" {
		t.Fatalf("second call token = %q", repo.listCalls[1].Pagination.PageToken)
	}
}
