package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/text/language"

	domain "github.com/landlorddesk/api/internal/domain"
	"github.com/landlorddesk/api/internal/repositories"
)

const defaultContentLocale = "en-GB"

// supportedContentLocales lists the locales the CMS publishes, most preferred first.
// Welsh is served for pages covering Wales; everything else falls back to en-GB.
var supportedContentLocales = []language.Tag{
	language.MustParse("en-GB"),
	language.MustParse("cy"),
}

// ErrContentRepositoryMissing signals that the content repository dependency is absent.
var ErrContentRepositoryMissing = errors.New("content service: content repository is not configured")

// ErrContentInvalidInput indicates the caller provided invalid data.
var ErrContentInvalidInput = errors.New("content service: invalid input")

// ErrContentNotFound indicates the requested guide or page does not exist.
var ErrContentNotFound = errors.New("content service: not found")

// ErrContentUnavailable indicates the content backend failed.
var ErrContentUnavailable = errors.New("content service: unavailable")

// ContentServiceDeps groups constructor parameters for the content service.
type ContentServiceDeps struct {
	Repository    repositories.ContentRepository
	Clock         func() time.Time
	DefaultLocale string
}

type contentService struct {
	repo          repositories.ContentRepository
	clock         func() time.Time
	defaultLocale string
	matcher       language.Matcher
}

// NewContentService constructs the content service with the supplied dependencies.
func NewContentService(deps ContentServiceDeps) (ContentService, error) {
	if deps.Repository == nil {
		return nil, ErrContentRepositoryMissing
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	defaultLocale := strings.TrimSpace(deps.DefaultLocale)
	if defaultLocale == "" {
		defaultLocale = defaultContentLocale
	}
	return &contentService{
		repo:          deps.Repository,
		clock:         func() time.Time { return clock().UTC() },
		defaultLocale: defaultLocale,
		matcher:       language.NewMatcher(supportedContentLocales),
	}, nil
}

func (s *contentService) ListGuides(ctx context.Context, filter GuideFilter) (domain.CursorPage[Guide], error) {
	locale := s.resolveLocale(stringPointerValue(filter.Locale))
	repoFilter := repositories.GuideFilter{
		Category:       normalizeFilterPointer(filter.Category),
		Jurisdiction:   normalizeFilterPointer(filter.Jurisdiction),
		Locale:         &locale,
		FallbackLocale: s.defaultLocale,
		OnlyPublished:  true,
		Pagination: domain.Pagination{
			PageSize:  filter.Pagination.PageSize,
			PageToken: strings.TrimSpace(filter.Pagination.PageToken),
		},
	}
	page, err := s.repo.ListGuides(ctx, repoFilter)
	if err != nil {
		return domain.CursorPage[Guide]{}, translateContentError(err)
	}
	return page, nil
}

func (s *contentService) GetGuideBySlug(ctx context.Context, slug string, locale string) (Guide, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Guide{}, ErrContentInvalidInput
	}
	resolved := s.resolveLocale(locale)
	guide, err := s.repo.GetGuideBySlug(ctx, slug, resolved)
	if err != nil && resolved != s.defaultLocale && isRepositoryNotFound(err) {
		guide, err = s.repo.GetGuideBySlug(ctx, slug, s.defaultLocale)
	}
	if err != nil {
		return Guide{}, translateContentError(err)
	}
	return guide, nil
}

func (s *contentService) GetPage(ctx context.Context, slug string, locale string) (LandingPage, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return LandingPage{}, ErrContentInvalidInput
	}
	resolved := s.resolveLocale(locale)
	page, err := s.repo.GetPage(ctx, slug, resolved)
	if err != nil && resolved != s.defaultLocale && isRepositoryNotFound(err) {
		page, err = s.repo.GetPage(ctx, slug, s.defaultLocale)
	}
	if err != nil {
		return LandingPage{}, translateContentError(err)
	}
	return page, nil
}

// SaveGuide validates and stores a guide revision, stamping the update time.
func (s *contentService) SaveGuide(ctx context.Context, guide Guide) (Guide, error) {
	guide.Slug = strings.ToLower(strings.TrimSpace(guide.Slug))
	guide.Title = strings.TrimSpace(guide.Title)
	if guide.Slug == "" || guide.Title == "" {
		return Guide{}, ErrContentInvalidInput
	}
	locale, ok := publishedLocale(guide.Locale)
	if !ok {
		return Guide{}, ErrContentInvalidInput
	}
	guide.Locale = locale
	guide.UpdatedAt = s.clock()
	if err := s.repo.UpsertGuide(ctx, guide); err != nil {
		return Guide{}, translateContentError(err)
	}
	return guide, nil
}

// DeleteGuide removes the guide stored under slug and locale.
func (s *contentService) DeleteGuide(ctx context.Context, slug string, locale string) error {
	slug = strings.ToLower(strings.TrimSpace(slug))
	resolved, ok := publishedLocale(locale)
	if slug == "" || !ok {
		return ErrContentInvalidInput
	}
	if err := s.repo.DeleteGuide(ctx, slug, resolved); err != nil {
		return translateContentError(err)
	}
	return nil
}

// SavePage validates and stores a landing page revision, stamping the update time.
func (s *contentService) SavePage(ctx context.Context, page LandingPage) (LandingPage, error) {
	page.Slug = strings.ToLower(strings.TrimSpace(page.Slug))
	page.Title = strings.TrimSpace(page.Title)
	if page.Slug == "" || page.Title == "" {
		return LandingPage{}, ErrContentInvalidInput
	}
	locale, ok := publishedLocale(page.Locale)
	if !ok {
		return LandingPage{}, ErrContentInvalidInput
	}
	page.Locale = locale
	page.UpdatedAt = s.clock()
	if err := s.repo.UpsertPage(ctx, page); err != nil {
		return LandingPage{}, translateContentError(err)
	}
	return page, nil
}

// DeletePage removes the landing page stored under slug and locale.
func (s *contentService) DeletePage(ctx context.Context, slug string, locale string) error {
	slug = strings.ToLower(strings.TrimSpace(slug))
	resolved, ok := publishedLocale(locale)
	if slug == "" || !ok {
		return ErrContentInvalidInput
	}
	if err := s.repo.DeletePage(ctx, slug, resolved); err != nil {
		return translateContentError(err)
	}
	return nil
}

// publishedLocale reports the canonical form of raw when it names a locale the
// CMS publishes. Writes require an exact supported locale; only reads fall
// back to the default.
func publishedLocale(raw string) (string, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), "_", "-")
	tag, err := language.Parse(raw)
	if err != nil {
		return "", false
	}
	for _, supported := range supportedContentLocales {
		if tag == supported {
			return supported.String(), true
		}
	}
	return "", false
}

// resolveLocale matches an arbitrary BCP 47 tag (or the looser wizard spellings)
// against the published locales, falling back to the service default.
func (s *contentService) resolveLocale(raw string) string {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), "_", "-")
	if raw == "" {
		return s.defaultLocale
	}
	requested, err := language.Parse(raw)
	if err != nil {
		return s.defaultLocale
	}
	_, index, confidence := s.matcher.Match(requested)
	if confidence == language.No {
		return s.defaultLocale
	}
	return supportedContentLocales[index].String()
}

func stringPointerValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func normalizeFilterPointer(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isRepositoryNotFound(err error) bool {
	if err == nil {
		return false
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.IsNotFound()
	}
	return false
}

func translateContentError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		if repoErr.IsNotFound() {
			return ErrContentNotFound
		}
		return ErrContentUnavailable
	}
	return err
}
