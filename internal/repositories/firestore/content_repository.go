package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/landlorddesk/api/internal/domain"
	pfirestore "github.com/landlorddesk/api/internal/platform/firestore"
	"github.com/landlorddesk/api/internal/platform/pagination"
	"github.com/landlorddesk/api/internal/repositories"
)

const (
	guidesCollection = "guides"
	pagesCollection  = "landingPages"

	contentStatusPublished = "published"
)

// ContentRepository stores CMS-managed guides and landing pages. Documents are
// keyed by slug and locale so localized variants live side by side.
type ContentRepository struct {
	guides *pfirestore.BaseRepository[guideDocument]
	pages  *pfirestore.BaseRepository[landingPageDocument]
}

// NewContentRepository constructs a Firestore-backed content repository.
func NewContentRepository(provider *pfirestore.Provider) (*ContentRepository, error) {
	if provider == nil {
		return nil, errors.New("content repository: firestore provider is required")
	}
	return &ContentRepository{
		guides: pfirestore.NewBaseRepository[guideDocument](provider, guidesCollection, nil, nil),
		pages:  pfirestore.NewBaseRepository[landingPageDocument](provider, pagesCollection, nil, nil),
	}, nil
}

// ListGuides returns guides matching the filter ordered by most recent update.
func (r *ContentRepository) ListGuides(ctx context.Context, filter repositories.GuideFilter) (domain.CursorPage[domain.Guide], error) {
	if r == nil || r.guides == nil {
		return domain.CursorPage[domain.Guide]{}, errors.New("content repository not initialised")
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
			return domain.CursorPage[domain.Guide]{}, fmt.Errorf("content repository: %w", err)
		}
		startAfter = []any{cursor.UpdatedAt, cursor.DocID}
	}

	category := trimFilterPointer(filter.Category)
	jurisdiction := trimFilterPointer(filter.Jurisdiction)
	locale := trimFilterPointer(filter.Locale)

	docs, err := r.guides.Query(ctx, func(q firestore.Query) firestore.Query {
		if filter.OnlyPublished {
			q = q.Where("status", "==", contentStatusPublished)
		}
		if category != "" {
			q = q.Where("category", "==", category)
		}
		if jurisdiction != "" {
			q = q.Where("jurisdiction", "==", jurisdiction)
		}
		if locale != "" {
			fallback := strings.TrimSpace(filter.FallbackLocale)
			if fallback != "" && fallback != locale {
				q = q.Where("locale", "in", []string{locale, fallback})
			} else {
				q = q.Where("locale", "==", locale)
			}
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
		return domain.CursorPage[domain.Guide]{}, err
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

	items := make([]domain.Guide, 0, len(valueDocs))
	for _, doc := range valueDocs {
		items = append(items, decodeGuideDocument(doc.ID, doc.Data, doc.UpdateTime))
	}

	return domain.CursorPage[domain.Guide]{
		Items:         items,
		NextPageToken: nextToken,
	}, nil
}

// GetGuideBySlug loads a single localized guide.
func (r *ContentRepository) GetGuideBySlug(ctx context.Context, slug string, locale string) (domain.Guide, error) {
	if r == nil || r.guides == nil {
		return domain.Guide{}, errors.New("content repository not initialised")
	}
	docID, err := contentDocID(slug, locale)
	if err != nil {
		return domain.Guide{}, err
	}
	doc, err := r.guides.Get(ctx, docID)
	if err != nil {
		return domain.Guide{}, err
	}
	return decodeGuideDocument(doc.ID, doc.Data, doc.UpdateTime), nil
}

// UpsertGuide writes a localized guide, replacing any existing variant.
func (r *ContentRepository) UpsertGuide(ctx context.Context, guide domain.Guide) error {
	if r == nil || r.guides == nil {
		return errors.New("content repository not initialised")
	}
	docID, err := contentDocID(guide.Slug, guide.Locale)
	if err != nil {
		return err
	}
	docRef, err := r.guides.DocumentRef(ctx, docID)
	if err != nil {
		return err
	}
	if _, err := docRef.Set(ctx, encodeGuideDocument(guide)); err != nil {
		return pfirestore.WrapError("guides.upsert", err)
	}
	return nil
}

// DeleteGuide removes a localized guide variant.
func (r *ContentRepository) DeleteGuide(ctx context.Context, slug string, locale string) error {
	if r == nil || r.guides == nil {
		return errors.New("content repository not initialised")
	}
	docID, err := contentDocID(slug, locale)
	if err != nil {
		return err
	}
	docRef, err := r.guides.DocumentRef(ctx, docID)
	if err != nil {
		return err
	}
	if _, err := docRef.Delete(ctx); err != nil {
		return pfirestore.WrapError("guides.delete", err)
	}
	return nil
}

// GetPage loads a single localized landing page.
func (r *ContentRepository) GetPage(ctx context.Context, slug string, locale string) (domain.LandingPage, error) {
	if r == nil || r.pages == nil {
		return domain.LandingPage{}, errors.New("content repository not initialised")
	}
	docID, err := contentDocID(slug, locale)
	if err != nil {
		return domain.LandingPage{}, err
	}
	doc, err := r.pages.Get(ctx, docID)
	if err != nil {
		return domain.LandingPage{}, err
	}
	return decodeLandingPageDocument(doc.ID, doc.Data, doc.UpdateTime), nil
}

// UpsertPage writes a localized landing page, replacing any existing variant.
func (r *ContentRepository) UpsertPage(ctx context.Context, page domain.LandingPage) error {
	if r == nil || r.pages == nil {
		return errors.New("content repository not initialised")
	}
	docID, err := contentDocID(page.Slug, page.Locale)
	if err != nil {
		return err
	}
	docRef, err := r.pages.DocumentRef(ctx, docID)
	if err != nil {
		return err
	}
	if _, err := docRef.Set(ctx, encodeLandingPageDocument(page)); err != nil {
		return pfirestore.WrapError("pages.upsert", err)
	}
	return nil
}

// DeletePage removes a localized landing page variant.
func (r *ContentRepository) DeletePage(ctx context.Context, slug string, locale string) error {
	if r == nil || r.pages == nil {
		return errors.New("content repository not initialised")
	}
	docID, err := contentDocID(slug, locale)
	if err != nil {
		return err
	}
	docRef, err := r.pages.DocumentRef(ctx, docID)
	if err != nil {
		return err
	}
	if _, err := docRef.Delete(ctx); err != nil {
		return pfirestore.WrapError("pages.delete", err)
	}
	return nil
}

type guideDocument struct {
	Slug         string    `firestore:"slug"`
	Locale       string    `firestore:"locale"`
	Jurisdiction string    `firestore:"jurisdiction,omitempty"`
	Category     string    `firestore:"category,omitempty"`
	Title        string    `firestore:"title"`
	Summary      string    `firestore:"summary,omitempty"`
	BodyRef      string    `firestore:"bodyRef"`
	Status       string    `firestore:"status"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

type landingPageDocument struct {
	Slug         string    `firestore:"slug"`
	Locale       string    `firestore:"locale"`
	Jurisdiction string    `firestore:"jurisdiction,omitempty"`
	Title        string    `firestore:"title"`
	BodyRef      string    `firestore:"bodyRef"`
	Status       string    `firestore:"status"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

func encodeGuideDocument(guide domain.Guide) guideDocument {
	return guideDocument{
		Slug:         strings.TrimSpace(guide.Slug),
		Locale:       strings.TrimSpace(guide.Locale),
		Jurisdiction: strings.TrimSpace(guide.Jurisdiction),
		Category:     strings.TrimSpace(guide.Category),
		Title:        strings.TrimSpace(guide.Title),
		Summary:      strings.TrimSpace(guide.Summary),
		BodyRef:      strings.TrimSpace(guide.BodyRef),
		Status:       strings.TrimSpace(guide.Status),
		UpdatedAt:    guide.UpdatedAt.UTC(),
	}
}

func decodeGuideDocument(id string, doc guideDocument, updatedAt time.Time) domain.Guide {
	return domain.Guide{
		ID:           strings.TrimSpace(id),
		Slug:         strings.TrimSpace(doc.Slug),
		Locale:       strings.TrimSpace(doc.Locale),
		Jurisdiction: strings.TrimSpace(doc.Jurisdiction),
		Category:     strings.TrimSpace(doc.Category),
		Title:        strings.TrimSpace(doc.Title),
		Summary:      strings.TrimSpace(doc.Summary),
		BodyRef:      strings.TrimSpace(doc.BodyRef),
		Status:       strings.TrimSpace(doc.Status),
		UpdatedAt:    pickTime(doc.UpdatedAt, updatedAt),
	}
}

func encodeLandingPageDocument(page domain.LandingPage) landingPageDocument {
	return landingPageDocument{
		Slug:         strings.TrimSpace(page.Slug),
		Locale:       strings.TrimSpace(page.Locale),
		Jurisdiction: strings.TrimSpace(page.Jurisdiction),
		Title:        strings.TrimSpace(page.Title),
		BodyRef:      strings.TrimSpace(page.BodyRef),
		Status:       strings.TrimSpace(page.Status),
		UpdatedAt:    page.UpdatedAt.UTC(),
	}
}

func decodeLandingPageDocument(id string, doc landingPageDocument, updatedAt time.Time) domain.LandingPage {
	return domain.LandingPage{
		ID:           strings.TrimSpace(id),
		Slug:         strings.TrimSpace(doc.Slug),
		Locale:       strings.TrimSpace(doc.Locale),
		Jurisdiction: strings.TrimSpace(doc.Jurisdiction),
		Title:        strings.TrimSpace(doc.Title),
		BodyRef:      strings.TrimSpace(doc.BodyRef),
		Status:       strings.TrimSpace(doc.Status),
		UpdatedAt:    pickTime(doc.UpdatedAt, updatedAt),
	}
}

// contentDocID builds the composite document ID for a localized content variant.
func contentDocID(slug string, locale string) (string, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	locale = strings.ToLower(strings.TrimSpace(locale))
	if slug == "" || locale == "" {
		return "", pfirestore.WrapError("content.id", status.Error(codes.InvalidArgument, "slug and locale are required"))
	}
	return slug + "__" + locale, nil
}

var _ repositories.ContentRepository = (*ContentRepository)(nil)
