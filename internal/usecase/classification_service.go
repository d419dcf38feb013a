package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/labelsafe/backend/internal/domain"
)

// ClassificationServiceConfig holds configuration for the orchestrator.
type ClassificationServiceConfig struct {
	CacheTTL time.Duration

	// DefaultLang is the note/display language used when a request does
	// not specify one.
	DefaultLang string

	// ConsultOnNotFound enables the advisory-only fallback when the food
	// database has no record for the code. The heuristic is never run in
	// that case; at best the advisory yields a "maybe".
	ConsultOnNotFound bool
}

// ClassificationService sequences the classification pipeline: product
// lookup, local heuristic, conditional advisory consultation, merge, and
// the terminal history write. Each Classify call is independent, so
// concurrent calls for different codes are safe.
type ClassificationService struct {
	cache    domain.CacheRepository
	products domain.ProductClient
	advisory domain.AdvisoryClient
	history  domain.HistoryRepository
	log      *zap.Logger

	cacheTTL          time.Duration
	defaultLang       string
	consultOnNotFound bool
}

// NewClassificationService creates the orchestrator with its
// collaborators. advisory and history may be nil; the corresponding
// steps are then skipped.
func NewClassificationService(
	cache domain.CacheRepository,
	products domain.ProductClient,
	advisory domain.AdvisoryClient,
	history domain.HistoryRepository,
	log *zap.Logger,
	config ClassificationServiceConfig,
) *ClassificationService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 6 * time.Hour
	}
	defaultLang := config.DefaultLang
	if defaultLang == "" {
		defaultLang = "sk"
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &ClassificationService{
		cache:             cache,
		products:          products,
		advisory:          advisory,
		history:           history,
		log:               log,
		cacheTTL:          cacheTTL,
		defaultLang:       defaultLang,
		consultOnNotFound: config.ConsultOnNotFound,
	}
}

// Classify resolves a barcode to a final verdict.
// Flow: check cache -> fetch product -> heuristic -> advisory if the
// heuristic is inconclusive -> merge -> history + cache -> return.
func (s *ClassificationService) Classify(ctx context.Context, code, lang string) (*domain.ClassificationResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrInvalidRequest
	}
	if lang == "" {
		lang = s.defaultLang
	}

	cacheKey := fmt.Sprintf("verdict:%s:%s", code, lang)
	if cached := s.getFromCache(ctx, cacheKey); cached != nil {
		cached.Source = "cache"
		return cached, nil
	}

	product, err := s.products.GetProduct(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return s.classifyNotFound(ctx, code, lang)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrLookupFailure, err)
	}

	classifier := NewClassifier(lang)
	base := classifier.Evaluate(product)
	s.log.Debug("heuristic verdict",
		zap.String("code", code),
		zap.String("status", string(base.Status)))

	status := base.Status
	notes := base.Notes
	source := "heuristic"

	// Consult the advisory only when the heuristic found no concrete
	// evidence either way. A decisive local verdict is never overridden
	// by an external opinion.
	if base.Status == domain.StatusMaybe && s.advisory != nil {
		reply := s.advisory.Consult(ctx, s.advisoryRequest(code, lang, product))
		if reply.Usable() {
			status = reply.Status
			source = "advisory"
			if len(reply.Notes) > 0 {
				notes = append(notes, reply.Notes...)
			} else {
				notes = append(notes, noteText(lang, noteAdvisoryAdded))
			}
		} else {
			notes = append(notes, s.degradationNotes(lang, reply)...)
		}
	}

	result := &domain.ClassificationResult{
		Code:         code,
		Name:         product.DisplayName(),
		Brand:        product.Brands,
		Status:       status,
		Notes:        notes,
		Source:       source,
		LastModified: product.LastModified,
		EvaluatedAt:  time.Now(),
	}

	s.recordHistory(result)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.log.Warn("verdict cache write failed", zap.String("code", code), zap.Error(err))
		}
	}

	return result, nil
}

// History returns the scan history, newest first.
func (s *ClassificationService) History() []domain.HistoryEntry {
	if s.history == nil {
		return nil
	}
	return s.history.Entries()
}

// classifyNotFound handles codes the food database does not know. The
// heuristic is never attempted on a record that does not exist; at most
// the advisory is asked with empty product fields, which can surface a
// "maybe" with its own reasoning. No history entry is written.
func (s *ClassificationService) classifyNotFound(ctx context.Context, code, lang string) (*domain.ClassificationResult, error) {
	if !s.consultOnNotFound || s.advisory == nil {
		return nil, domain.ErrProductNotFound
	}

	reply := s.advisory.Consult(ctx, domain.AdvisoryRequest{Code: code, Lang: lang})
	if !reply.Usable() {
		return nil, domain.ErrProductNotFound
	}

	notes := reply.Notes
	if len(notes) == 0 {
		notes = []string{noteText(lang, noteAdvisoryAdded)}
	}

	s.log.Info("advisory-only verdict for unknown code", zap.String("code", code))
	return &domain.ClassificationResult{
		Code:        code,
		Status:      reply.Status,
		Notes:       notes,
		Source:      "advisory",
		EvaluatedAt: time.Now(),
	}, nil
}

// advisoryRequest builds the bounded payload for the advisory endpoint.
func (s *ClassificationService) advisoryRequest(code, lang string, p *domain.ProductRecord) domain.AdvisoryRequest {
	classifier := NewClassifier(lang)
	return domain.AdvisoryRequest{
		Code:        code,
		Name:        p.DisplayName(),
		Ingredients: truncate(classifier.ingredientText(p), 1000),
		Allergens:   strings.Join(p.AllergenTags, ", "),
		Lang:        lang,
	}
}

// degradationNotes keeps the advisory's own explanation when it has one
// and otherwise appends the generic unavailability note, so the final
// verdict is transparent about the failed consultation.
func (s *ClassificationService) degradationNotes(lang string, reply domain.AdvisoryResult) []string {
	if len(reply.Notes) > 0 {
		return reply.Notes
	}
	return []string{noteText(lang, noteAdvisoryUnavailable)}
}

func (s *ClassificationService) recordHistory(result *domain.ClassificationResult) {
	if s.history == nil {
		return
	}
	entry := domain.HistoryEntry{
		Code:      result.Code,
		Brand:     result.Brand,
		Name:      result.Name,
		Status:    result.Status,
		Timestamp: result.EvaluatedAt,
	}
	if err := s.history.Append(entry); err != nil {
		s.log.Warn("history write failed", zap.String("code", result.Code), zap.Error(err))
	}
}

// getFromCache retrieves a previously computed result, tolerating the
// map shape the cache stores after its JSON round-trip.
func (s *ClassificationService) getFromCache(ctx context.Context, key string) *domain.ClassificationResult {
	if s.cache == nil {
		return nil
	}
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil
	}

	switch v := value.(type) {
	case *domain.ClassificationResult:
		return v
	case map[string]interface{}:
		return mapToClassificationResult(v)
	}
	return nil
}

// mapToClassificationResult converts a map (from the JSON cache) back
// into a ClassificationResult.
func mapToClassificationResult(data map[string]interface{}) *domain.ClassificationResult {
	result := &domain.ClassificationResult{}

	if v, ok := data["code"].(string); ok {
		result.Code = v
	}
	if v, ok := data["name"].(string); ok {
		result.Name = v
	}
	if v, ok := data["brand"].(string); ok {
		result.Brand = v
	}
	if v, ok := data["status"].(string); ok {
		result.Status = domain.Status(v)
	}
	if v, ok := data["source"].(string); ok {
		result.Source = v
	}
	if v, ok := data["notes"].([]interface{}); ok {
		for _, n := range v {
			if s, ok := n.(string); ok {
				result.Notes = append(result.Notes, s)
			}
		}
	}
	if v, ok := data["evaluatedAt"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			result.EvaluatedAt = ts
		}
	}
	if v, ok := data["lastModified"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			result.LastModified = ts
		}
	}

	if !result.Status.Valid() {
		return nil
	}
	return result
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
