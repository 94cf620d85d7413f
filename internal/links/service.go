package links

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/cloud"
	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/errs"
	"github.com/MrSnakeDoc/goodnews/internal/events"
	"github.com/MrSnakeDoc/goodnews/internal/i18n"
	"github.com/MrSnakeDoc/goodnews/internal/logger"
	"github.com/MrSnakeDoc/goodnews/internal/metrics"
	"github.com/MrSnakeDoc/goodnews/internal/transfer"
	"github.com/google/uuid"
)

// Input is a link as typed by a user in the add form.
type Input struct {
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Tags     []string `json:"tags"`
	Notes    string   `json:"notes"`
	Language string   `json:"language"`
	Favorite bool     `json:"favorite"`
}

// Service implements the link operations offered to users.
type Service struct {
	store  Store
	remote cloud.Collection
	bus    *events.Bus
	log    logger.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCollection lets Delete remove the remote copy of a link too.
func WithCollection(c cloud.Collection) Option {
	return func(s *Service) { s.remote = c }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a link service. bus may be nil.
func NewService(store Store, bus *events.Bus, log logger.Logger, opts ...Option) *Service {
	s := &Service{store: store, bus: bus, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying link store.
func (s *Service) Store() Store { return s.store }

// Add validates and stores a manually entered link.
func (s *Service) Add(ctx context.Context, in Input) (*domain.Link, error) {
	link, err := s.fromInput(in)
	if err != nil {
		return nil, err
	}
	link.Source = domain.SourceManual

	err = s.store.Put(ctx, link)
	s.record(ctx, "add", err, "link_saved")
	if err != nil {
		return nil, fmt.Errorf("add link: %w", err)
	}
	s.log.Info("link added", logger.String("id", link.ID), logger.String("url", link.URL))
	return link, nil
}

// Share stores a link received through the share target. A URL that is
// already saved returns the existing record with created=false.
func (s *Service) Share(ctx context.Context, rawURL, title string) (link *domain.Link, created bool, err error) {
	if !domain.IsValidHTTPSURL(rawURL) {
		return nil, false, &errs.FieldError{Field: "url", Key: "validate_https", Err: errs.ErrInvalidURL}
	}
	u := domain.NormalizeURL(rawURL)

	existing, err := s.store.GetByURL(ctx, u)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, false, fmt.Errorf("share link: %w", err)
	}

	title = domain.SanitizeText(strings.TrimSpace(title))
	if title == "" {
		title = u
	}
	ts := domain.Millis(s.now())
	link = &domain.Link{
		ID:        uuid.NewString(),
		Title:     title,
		URL:       u,
		Tags:      []string{},
		Language:  domain.LanguageEN,
		CreatedAt: ts,
		UpdatedAt: ts,
		Source:    domain.SourceShareTarget,
	}

	err = s.store.Put(ctx, link)
	if errors.Is(err, errs.ErrDuplicateURL) {
		// Saved concurrently by another request.
		existing, gerr := s.store.GetByURL(ctx, u)
		if gerr == nil {
			return existing, false, nil
		}
	}
	s.record(ctx, "share", err, "shared_link_saved")
	if err != nil {
		return nil, false, fmt.Errorf("share link: %w", err)
	}
	return link, true, nil
}

// Edit applies a validated partial update.
func (s *Service) Edit(ctx context.Context, id string, patch domain.LinkPatch) (*domain.Link, error) {
	if err := cleanPatch(&patch); err != nil {
		return nil, err
	}
	link, err := s.store.Update(ctx, id, patch)
	s.record(ctx, "edit", err, "link_updated")
	if err != nil {
		return nil, fmt.Errorf("edit link: %w", err)
	}
	return link, nil
}

// ToggleFavorite sets the favorite flag; only Favorite and UpdatedAt change.
func (s *Service) ToggleFavorite(ctx context.Context, id string, favorite bool) (*domain.Link, error) {
	link, err := s.store.Update(ctx, id, domain.LinkPatch{Favorite: &favorite})
	s.record(ctx, "favorite", err, "")
	if err != nil {
		return nil, fmt.Errorf("favorite link: %w", err)
	}
	return link, nil
}

// Delete removes a link. When uid is set and a collection is configured,
// the remote document of the same URL is removed first.
func (s *Service) Delete(ctx context.Context, id, uid string) error {
	link, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}

	if uid != "" && s.remote != nil {
		if err := s.remote.Delete(ctx, uid, link.URL); err != nil {
			s.record(ctx, "delete", err, "")
			return fmt.Errorf("delete remote link: %w", err)
		}
	}

	err = s.store.Delete(ctx, id)
	s.record(ctx, "delete", err, "link_deleted")
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	return nil
}

// Clear wipes the local store.
func (s *Service) Clear(ctx context.Context) error {
	err := s.store.Clear(ctx)
	s.record(ctx, "clear", err, "links_cleared")
	if err != nil {
		return fmt.Errorf("clear links: %w", err)
	}
	s.log.Warn("local link store cleared")
	return nil
}

// Get returns one link.
func (s *Service) Get(ctx context.Context, id string) (*domain.Link, error) {
	return s.store.Get(ctx, id)
}

// List returns the links passing f, sorted by title.
func (s *Service) List(ctx context.Context, f domain.Filter) ([]*domain.Link, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return f.Apply(all), nil
}

// Resolve ranks links against a quick-open query, best first.
func (s *Service) Resolve(ctx context.Context, query string) ([]*domain.LinkCandidate, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve links: %w", err)
	}
	return domain.RankLinks(query, all), nil
}

// Import reads a link file and adds its new records.
func (s *Service) Import(ctx context.Context, f transfer.Format, r io.Reader) (domain.ImportResult, error) {
	links, err := transfer.Decode(f, r, s.now())
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("import links: %w", err)
	}
	return s.ImportLinks(ctx, links)
}

// ImportLinks adds already decoded links.
func (s *Service) ImportLinks(ctx context.Context, links []*domain.Link) (domain.ImportResult, error) {
	res, err := s.store.ImportMany(ctx, links)
	metrics.LinkMutationsTotal.WithLabelValues("import", metrics.Status(err)).Inc()
	if err != nil {
		return res, fmt.Errorf("import links: %w", err)
	}
	metrics.RecordImport(res.Added, res.Skipped)
	s.publish(events.LevelSuccess, i18n.T(ctx, "import_result", i18n.Vars{"added": res.Added, "skipped": res.Skipped}))
	s.log.Info("links imported", logger.Int("added", res.Added), logger.Int("skipped", res.Skipped))
	return res, nil
}

// Export writes every link in format f.
func (s *Service) Export(ctx context.Context, f transfer.Format, w io.Writer) error {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("export links: %w", err)
	}
	return transfer.Encode(f, w, all)
}

func (s *Service) fromInput(in Input) (*domain.Link, error) {
	if !domain.IsValidHTTPSURL(in.URL) {
		return nil, &errs.FieldError{Field: "url", Key: "validate_https", Err: errs.ErrInvalidURL}
	}
	lang := domain.LanguageEN
	if in.Language != "" {
		lang = domain.Language(in.Language)
		if !lang.Valid() {
			return nil, &errs.FieldError{Field: "language", Key: "validate_language"}
		}
	}

	u := domain.NormalizeURL(in.URL)
	title := domain.SanitizeText(strings.TrimSpace(in.Title))
	if title == "" {
		title = u
	}
	ts := domain.Millis(s.now())
	return &domain.Link{
		ID:        uuid.NewString(),
		Title:     title,
		URL:       u,
		Tags:      cleanTags(in.Tags),
		Notes:     domain.SanitizeText(strings.TrimSpace(in.Notes)),
		Language:  lang,
		Favorite:  in.Favorite,
		CreatedAt: ts,
		UpdatedAt: ts,
	}, nil
}

func cleanPatch(p *domain.LinkPatch) error {
	if p.URL != nil && !domain.IsValidHTTPSURL(*p.URL) {
		return &errs.FieldError{Field: "url", Key: "validate_https", Err: errs.ErrInvalidURL}
	}
	if p.Language != nil && !p.Language.Valid() {
		return &errs.FieldError{Field: "language", Key: "validate_language"}
	}
	if p.Title != nil {
		t := domain.SanitizeText(strings.TrimSpace(*p.Title))
		if t == "" {
			return &errs.FieldError{Field: "title", Key: "validate_title"}
		}
		p.Title = &t
	}
	if p.Notes != nil {
		n := domain.SanitizeText(strings.TrimSpace(*p.Notes))
		p.Notes = &n
	}
	if p.Tags != nil {
		tags := cleanTags(*p.Tags)
		p.Tags = &tags
	}
	return nil
}

// cleanTags trims, sanitizes and de-duplicates tags, keeping their order.
func cleanTags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = domain.SanitizeText(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// record counts a mutation and raises the matching toast.
func (s *Service) record(ctx context.Context, op string, err error, okKey string) {
	metrics.LinkMutationsTotal.WithLabelValues(op, metrics.Status(err)).Inc()
	switch {
	case err == nil && okKey != "":
		s.publish(events.LevelSuccess, i18n.T(ctx, okKey))
	case errors.Is(err, errs.ErrDuplicateURL):
		s.publish(events.LevelError, i18n.T(ctx, "link_exists"))
	case err != nil && !errors.Is(err, errs.ErrNotFound):
		s.log.Error("link write failed", logger.String("op", op), logger.Error(err))
	}
}

func (s *Service) publish(level events.Level, msg string) {
	if s.bus != nil {
		s.bus.Publish(events.Toast(level, msg))
	}
}
