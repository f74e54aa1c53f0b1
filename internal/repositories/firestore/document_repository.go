package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/landlorddesk/api/internal/domain"
	pfirestore "github.com/landlorddesk/api/internal/platform/firestore"
	"github.com/landlorddesk/api/internal/platform/pagination"
	"github.com/landlorddesk/api/internal/repositories"
)

const documentsCollection = "documents"

// DocumentRepository tracks generated document records and their render lifecycle.
type DocumentRepository struct {
	base *pfirestore.BaseRepository[documentDocument]
}

// NewDocumentRepository constructs a Firestore-backed document repository.
func NewDocumentRepository(provider *pfirestore.Provider) (*DocumentRepository, error) {
	if provider == nil {
		return nil, errors.New("document repository: firestore provider is required")
	}
	base := pfirestore.NewBaseRepository[documentDocument](provider, documentsCollection, nil, nil)
	return &DocumentRepository{base: base}, nil
}

// Insert stores a new document record.
func (r *DocumentRepository) Insert(ctx context.Context, doc domain.Document) error {
	if r == nil || r.base == nil {
		return errors.New("document repository not initialised")
	}
	documentID := strings.TrimSpace(doc.ID)
	if documentID == "" {
		return errors.New("document repository: document id is required")
	}
	docRef, err := r.base.DocumentRef(ctx, documentID)
	if err != nil {
		return err
	}
	payload := encodeDocumentDocument(doc)
	if _, err := docRef.Create(ctx, payload); err != nil {
		return pfirestore.WrapError("documents.insert", err)
	}
	return nil
}

// Update replaces the persisted document state. The render worker uses this to
// move records through pending/rendering/ready.
func (r *DocumentRepository) Update(ctx context.Context, doc domain.Document) error {
	if r == nil || r.base == nil {
		return errors.New("document repository not initialised")
	}
	documentID := strings.TrimSpace(doc.ID)
	if documentID == "" {
		return errors.New("document repository: document id is required")
	}
	docRef, err := r.base.DocumentRef(ctx, documentID)
	if err != nil {
		return err
	}
	payload := encodeDocumentDocument(doc)
	if _, err := docRef.Set(ctx, payload); err != nil {
		return pfirestore.WrapError("documents.update", err)
	}
	return nil
}

// FindByID fetches a single document record.
func (r *DocumentRepository) FindByID(ctx context.Context, documentID string) (domain.Document, error) {
	if r == nil || r.base == nil {
		return domain.Document{}, errors.New("document repository not initialised")
	}
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return domain.Document{}, errors.New("document repository: document id is required")
	}
	doc, err := r.base.Get(ctx, documentID)
	if err != nil {
		return domain.Document{}, err
	}
	return decodeDocumentDocument(documentID, doc.Data, doc.CreateTime, doc.UpdateTime), nil
}

// ListByCase returns document records for a case, newest first.
func (r *DocumentRepository) ListByCase(ctx context.Context, caseID string, pager domain.Pagination) (domain.CursorPage[domain.Document], error) {
	if r == nil || r.base == nil {
		return domain.CursorPage[domain.Document]{}, errors.New("document repository not initialised")
	}
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return domain.CursorPage[domain.Document]{}, errors.New("document repository: case id is required")
	}

	limit := pager.PageSize
	if limit < 0 {
		limit = 0
	}
	fetchLimit := limit
	if limit > 0 {
		fetchLimit = limit + 1
	}

	var startAfter []any
	if token := strings.TrimSpace(pager.PageToken); token != "" {
		cursor, err := pagination.DecodeToken(token)
		if err != nil {
			return domain.CursorPage[domain.Document]{}, fmt.Errorf("document repository: %w", err)
		}
		startAfter = []any{cursor.UpdatedAt, cursor.DocID}
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		q = q.Where("caseId", "==", caseID)
		q = q.OrderBy("requestedAt", firestore.Desc).OrderBy(firestore.DocumentID, firestore.Desc)
		if len(startAfter) == 2 {
			q = q.StartAfter(startAfter...)
		}
		if fetchLimit > 0 {
			q = q.Limit(fetchLimit)
		}
		return q
	})
	if err != nil {
		return domain.CursorPage[domain.Document]{}, err
	}

	valueDocs := docs
	nextToken := ""
	if limit > 0 && len(valueDocs) == fetchLimit {
		last := valueDocs[len(valueDocs)-1]
		tokenTime := last.Data.RequestedAt
		if tokenTime.IsZero() {
			tokenTime = last.CreateTime
		}
		nextToken = pagination.EncodeToken(pagination.Cursor{UpdatedAt: tokenTime, DocID: last.ID})
		valueDocs = valueDocs[:len(valueDocs)-1]
	}

	items := make([]domain.Document, 0, len(valueDocs))
	for _, doc := range valueDocs {
		items = append(items, decodeDocumentDocument(doc.ID, doc.Data, doc.CreateTime, doc.UpdateTime))
	}

	return domain.CursorPage[domain.Document]{
		Items:         items,
		NextPageToken: nextToken,
	}, nil
}

type documentDocument struct {
	CaseID      string     `firestore:"caseId"`
	OwnerUID    string     `firestore:"ownerUid"`
	Kind        string     `firestore:"kind"`
	Status      string     `firestore:"status"`
	StoragePath string     `firestore:"storagePath"`
	ContentType string     `firestore:"contentType"`
	Checksum    string     `firestore:"checksum,omitempty"`
	SizeBytes   int64      `firestore:"sizeBytes,omitempty"`
	Error       string     `firestore:"error,omitempty"`
	RequestedAt time.Time  `firestore:"requestedAt"`
	RenderedAt  *time.Time `firestore:"renderedAt,omitempty"`
	CreatedAt   time.Time  `firestore:"createdAt"`
	UpdatedAt   time.Time  `firestore:"updatedAt"`
}

func encodeDocumentDocument(doc domain.Document) documentDocument {
	return documentDocument{
		CaseID:      strings.TrimSpace(doc.CaseID),
		OwnerUID:    strings.TrimSpace(doc.OwnerID),
		Kind:        strings.TrimSpace(string(doc.Kind)),
		Status:      strings.TrimSpace(string(doc.Status)),
		StoragePath: strings.TrimSpace(doc.StoragePath),
		ContentType: strings.TrimSpace(doc.ContentType),
		Checksum:    strings.TrimSpace(doc.Checksum),
		SizeBytes:   doc.SizeBytes,
		Error:       strings.TrimSpace(doc.Error),
		RequestedAt: doc.RequestedAt.UTC(),
		RenderedAt:  cleanTimePointer(doc.RenderedAt),
		CreatedAt:   doc.CreatedAt.UTC(),
		UpdatedAt:   doc.UpdatedAt.UTC(),
	}
}

func decodeDocumentDocument(id string, doc documentDocument, createdAt, updatedAt time.Time) domain.Document {
	return domain.Document{
		ID:          strings.TrimSpace(id),
		CaseID:      strings.TrimSpace(doc.CaseID),
		OwnerID:     strings.TrimSpace(doc.OwnerUID),
		Kind:        domain.DocumentKind(strings.TrimSpace(doc.Kind)),
		Status:      domain.DocumentStatus(strings.TrimSpace(doc.Status)),
		StoragePath: strings.TrimSpace(doc.StoragePath),
		ContentType: strings.TrimSpace(doc.ContentType),
		Checksum:    strings.TrimSpace(doc.Checksum),
		SizeBytes:   doc.SizeBytes,
		Error:       strings.TrimSpace(doc.Error),
		RequestedAt: pickTime(doc.RequestedAt, createdAt),
		RenderedAt:  cleanTimePointer(doc.RenderedAt),
		CreatedAt:   pickTime(doc.CreatedAt, createdAt),
		UpdatedAt:   pickTime(doc.UpdatedAt, updatedAt),
	}
}

var _ repositories.DocumentRepository = (*DocumentRepository)(nil)
