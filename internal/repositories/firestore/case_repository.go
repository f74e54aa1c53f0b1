package firestore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/landlorddesk/api/internal/domain"
	"github.com/landlorddesk/api/internal/facts"
	pfirestore "github.com/landlorddesk/api/internal/platform/firestore"
	"github.com/landlorddesk/api/internal/platform/pagination"
	"github.com/landlorddesk/api/internal/repositories"
)

const casesCollection = "cases"

// CaseRepository persists landlord cases. The raw wizard answers are the stored
// source of truth; normalized facts are re-derived on read so every consumer sees
// the current normalization rules.
type CaseRepository struct {
	base *pfirestore.BaseRepository[caseDocument]
}

// NewCaseRepository constructs a Firestore-backed case repository.
func NewCaseRepository(provider *pfirestore.Provider) (*CaseRepository, error) {
	if provider == nil {
		return nil, errors.New("case repository: firestore provider is required")
	}
	base := pfirestore.NewBaseRepository[caseDocument](provider, casesCollection, nil, nil)
	return &CaseRepository{base: base}, nil
}

// Insert stores a new case document. The ID must be unique.
func (r *CaseRepository) Insert(ctx context.Context, kase domain.Case) error {
	if r == nil || r.base == nil {
		return errors.New("case repository not initialised")
	}
	caseID := strings.TrimSpace(kase.ID)
	if caseID == "" {
		return errors.New("case repository: case id is required")
	}
	docRef, err := r.base.DocumentRef(ctx, caseID)
	if err != nil {
		return err
	}
	doc := encodeCaseDocument(kase)
	if _, err := docRef.Create(ctx, doc); err != nil {
		return pfirestore.WrapError("cases.insert", err)
	}
	return nil
}

// Update replaces the persisted case state with the provided snapshot.
func (r *CaseRepository) Update(ctx context.Context, kase domain.Case) error {
	if r == nil || r.base == nil {
		return errors.New("case repository not initialised")
	}
	caseID := strings.TrimSpace(kase.ID)
	if caseID == "" {
		return errors.New("case repository: case id is required")
	}
	docRef, err := r.base.DocumentRef(ctx, caseID)
	if err != nil {
		return err
	}
	doc := encodeCaseDocument(kase)
	if _, err := docRef.Set(ctx, doc); err != nil {
		return pfirestore.WrapError("cases.update", err)
	}
	return nil
}

// FindByID fetches a single case.
func (r *CaseRepository) FindByID(ctx context.Context, caseID string) (domain.Case, error) {
	if r == nil || r.base == nil {
		return domain.Case{}, errors.New("case repository not initialised")
	}
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return domain.Case{}, errors.New("case repository: case id is required")
	}
	doc, err := r.base.Get(ctx, caseID)
	if err != nil {
		return domain.Case{}, err
	}
	return decodeCaseDocument(caseID, doc.Data, doc.CreateTime, doc.UpdateTime), nil
}

// ListByOwner returns cases owned by the specified user ordered by most recent update.
func (r *CaseRepository) ListByOwner(ctx context.Context, ownerID string, filter repositories.CaseListFilter) (domain.CursorPage[domain.Case], error) {
	if r == nil || r.base == nil {
		return domain.CursorPage[domain.Case]{}, errors.New("case repository not initialised")
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return domain.CursorPage[domain.Case]{}, errors.New("case repository: owner id is required")
	}

	limit := filter.Pagination.PageSize
	if limit < 0 {
		limit = 0
	}
	fetchLimit := limit
	if limit > 0 {
		fetchLimit = limit + 1
	}

	var startAfter []any
	if token := strings.TrimSpace(filter.Pagination.PageToken); token != "" {
		cursor, err := pagination.DecodeToken(token)
		if err != nil {
			return domain.CursorPage[domain.Case]{}, fmt.Errorf("case repository: %w", err)
		}
		startAfter = []any{cursor.UpdatedAt, cursor.DocID}
	}

	statusFilters := normaliseFilterValues(filter.Status)
	product := ""
	if filter.Product != nil {
		product = strings.TrimSpace(*filter.Product)
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		q = q.Where("ownerUid", "==", ownerID)
		switch {
		case len(statusFilters) == 1:
			q = q.Where("status", "==", statusFilters[0])
		case len(statusFilters) > 1:
			// Firestore in clause supports up to 10 values.
			if len(statusFilters) > 10 {
				statusFilters = statusFilters[:10]
			}
			q = q.Where("status", "in", statusFilters)
		case !filter.IncludeArchived:
			q = q.Where("status", "in", []string{
				string(domain.CaseStatusDraft),
				string(domain.CaseStatusReady),
			})
		}
		if product != "" {
			q = q.Where("product", "==", product)
		}
		q = q.OrderBy("updatedAt", firestore.Desc).OrderBy(firestore.DocumentID, firestore.Desc)
		if len(startAfter) == 2 {
			q = q.StartAfter(startAfter...)
		}
		if fetchLimit > 0 {
			q = q.Limit(fetchLimit)
		}
		return q
	})
	if err != nil {
		return domain.CursorPage[domain.Case]{}, err
	}

	valueDocs := docs
	nextToken := ""
	if limit > 0 && len(valueDocs) == fetchLimit {
		last := valueDocs[len(valueDocs)-1]
		tokenTime := last.Data.UpdatedAt
		if tokenTime.IsZero() {
			tokenTime = last.UpdateTime
		}
		nextToken = pagination.EncodeToken(pagination.Cursor{UpdatedAt: tokenTime, DocID: last.ID})
		valueDocs = valueDocs[:len(valueDocs)-1]
	}

	items := make([]domain.Case, 0, len(valueDocs))
	for _, doc := range valueDocs {
		items = append(items, decodeCaseDocument(doc.ID, doc.Data, doc.CreateTime, doc.UpdateTime))
	}

	return domain.CursorPage[domain.Case]{
		Items:         items,
		NextPageToken: nextToken,
	}, nil
}

type caseDocument struct {
	OwnerRef   string         `firestore:"ownerRef"`
	OwnerUID   string         `firestore:"ownerUid"`
	Product    string         `firestore:"product"`
	Status     string         `firestore:"status"`
	Answers    map[string]any `firestore:"answers"`
	CreatedAt  time.Time      `firestore:"createdAt"`
	UpdatedAt  time.Time      `firestore:"updatedAt"`
	ArchivedAt *time.Time     `firestore:"archivedAt,omitempty"`
}

func encodeCaseDocument(kase domain.Case) caseDocument {
	return caseDocument{
		OwnerRef:   ownerDocPath(kase.OwnerID),
		OwnerUID:   strings.TrimSpace(kase.OwnerID),
		Product:    strings.TrimSpace(kase.Product),
		Status:     strings.TrimSpace(string(kase.Status)),
		Answers:    cloneAnswers(kase.Answers),
		CreatedAt:  kase.CreatedAt.UTC(),
		UpdatedAt:  kase.UpdatedAt.UTC(),
		ArchivedAt: cleanTimePointer(kase.ArchivedAt),
	}
}

func decodeCaseDocument(id string, doc caseDocument, createdAt, updatedAt time.Time) domain.Case {
	answers := domain.WizardFacts(cloneAnswers(doc.Answers))
	if answers == nil {
		answers = domain.WizardFacts{}
	}
	return domain.Case{
		ID:         strings.TrimSpace(id),
		OwnerID:    ownerFromRef(doc.OwnerRef, doc.OwnerUID),
		Product:    strings.TrimSpace(doc.Product),
		Status:     domain.CaseStatus(strings.TrimSpace(doc.Status)),
		Answers:    answers,
		Facts:      facts.Normalize(answers),
		CreatedAt:  pickTime(doc.CreatedAt, createdAt),
		UpdatedAt:  pickTime(doc.UpdatedAt, updatedAt),
		ArchivedAt: cleanTimePointer(doc.ArchivedAt),
	}
}

func cloneAnswers(values map[string]any) map[string]any {
	if len(values) == 0 {
		return nil
	}
	return maps.Clone(values)
}

func pickTime(primary time.Time, fallback time.Time) time.Time {
	if !primary.IsZero() {
		return primary.UTC()
	}
	if !fallback.IsZero() {
		return fallback.UTC()
	}
	return time.Time{}
}

func cleanTimePointer(value *time.Time) *time.Time {
	if value == nil || value.IsZero() {
		return nil
	}
	ts := value.UTC()
	return &ts
}

func ownerDocPath(ownerID string) string {
	trimmed := strings.TrimSpace(ownerID)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "/users/") {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "users/") {
		return "/" + trimmed
	}
	return "/users/" + trimmed
}

func ownerFromRef(ownerRef string, ownerUID string) string {
	if trimmed := strings.TrimSpace(ownerUID); trimmed != "" {
		return trimmed
	}
	ref := strings.TrimSpace(ownerRef)
	ref = strings.TrimPrefix(ref, "/")
	const prefix = "users/"
	if strings.HasPrefix(ref, prefix) {
		return ref[len(prefix):]
	}
	return ref
}

func normaliseFilterValues(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(values))
	seen := make(map[string]struct{})
	for _, value := range values {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	return normalized
}

var _ repositories.CaseRepository = (*CaseRepository)(nil)
