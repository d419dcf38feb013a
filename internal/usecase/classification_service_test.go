package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelsafe/backend/internal/domain"
	"github.com/labelsafe/backend/internal/infrastructure/cache"
)

type stubProducts struct {
	record *domain.ProductRecord
	err    error
}

func (s *stubProducts) GetProduct(ctx context.Context, code string) (*domain.ProductRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

type countingAdvisory struct {
	calls   int
	lastReq domain.AdvisoryRequest
	result  domain.AdvisoryResult
}

func (a *countingAdvisory) Consult(ctx context.Context, req domain.AdvisoryRequest) domain.AdvisoryResult {
	a.calls++
	a.lastReq = req
	return a.result
}

type recordingHistory struct {
	entries []domain.HistoryEntry
}

func (h *recordingHistory) Append(entry domain.HistoryEntry) error {
	h.entries = append(h.entries, entry)
	return nil
}

func (h *recordingHistory) Entries() []domain.HistoryEntry { return h.entries }
func (h *recordingHistory) Len() int                       { return len(h.entries) }

func newTestService(products domain.ProductClient, advisory domain.AdvisoryClient, history domain.HistoryRepository) *ClassificationService {
	return NewClassificationService(nil, products, advisory, history, nil, ClassificationServiceConfig{
		ConsultOnNotFound: true,
	})
}

func avoidRecord() *domain.ProductRecord {
	return &domain.ProductRecord{
		Code:         "111",
		Name:         "Choco bar",
		Brands:       "TestBrand",
		AllergenTags: []string{"en:milk"},
	}
}

func safeRecord() *domain.ProductRecord {
	return &domain.ProductRecord{
		Code:            "222",
		Name:            "Rice cakes",
		LabelTags:       []string{"en:gluten-free"},
		IngredientsText: map[string]string{"en": "rice, water, salt"},
	}
}

func maybeRecord() *domain.ProductRecord {
	return &domain.ProductRecord{
		Code:            "333",
		Name:            "Mystery snack",
		IngredientsText: map[string]string{"en": "rice, water, salt"},
	}
}

func TestClassify_AdvisoryConsultedOnlyOnMaybe(t *testing.T) {
	tests := []struct {
		name      string
		record    *domain.ProductRecord
		wantCalls int
	}{
		{"avoid verdict skips advisory", avoidRecord(), 0},
		{"safe verdict skips advisory", safeRecord(), 0},
		{"maybe verdict consults advisory", maybeRecord(), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advisory := &countingAdvisory{result: domain.AdvisoryResult{Status: domain.StatusMaybe}}
			service := newTestService(&stubProducts{record: tt.record}, advisory, nil)

			_, err := service.Classify(context.Background(), tt.record.Code, "sk")
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, advisory.calls)
		})
	}
}

func TestClassify_MergeAdvisoryStatus(t *testing.T) {
	advisory := &countingAdvisory{result: domain.AdvisoryResult{
		Status: domain.StatusSafe,
		Notes:  []string{"X"},
	}}
	service := newTestService(&stubProducts{record: maybeRecord()}, advisory, nil)

	result, err := service.Classify(context.Background(), "333", "sk")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSafe, result.Status)
	assert.Equal(t, "advisory", result.Source)
	// Base notes first, advisory notes appended, nothing discarded.
	require.Len(t, result.Notes, 2)
	assert.Equal(t, noteTexts["sk"][noteInconclusive], result.Notes[0])
	assert.Equal(t, "X", result.Notes[1])
}

func TestClassify_AdvisoryWithoutNotesGetsGenericNote(t *testing.T) {
	advisory := &countingAdvisory{result: domain.AdvisoryResult{Status: domain.StatusAvoid}}
	service := newTestService(&stubProducts{record: maybeRecord()}, advisory, nil)

	result, err := service.Classify(context.Background(), "333", "sk")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusAvoid, result.Status)
	assert.Contains(t, result.Notes, noteTexts["sk"][noteAdvisoryAdded])
}

func TestClassify_AdvisoryDegradedKeepsHeuristicVerdict(t *testing.T) {
	advisory := &countingAdvisory{result: domain.AdvisoryResult{
		Notes: []string{"advisory endpoint did not respond"},
	}}
	service := newTestService(&stubProducts{record: maybeRecord()}, advisory, nil)

	result, err := service.Classify(context.Background(), "333", "sk")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusMaybe, result.Status)
	assert.Equal(t, "heuristic", result.Source)
	assert.Contains(t, result.Notes, noteTexts["sk"][noteInconclusive])
	assert.Contains(t, result.Notes, "advisory endpoint did not respond")
}

func TestClassify_AdvisoryDegradedWithoutNotes(t *testing.T) {
	advisory := &countingAdvisory{}
	service := newTestService(&stubProducts{record: maybeRecord()}, advisory, nil)

	result, err := service.Classify(context.Background(), "333", "sk")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusMaybe, result.Status)
	assert.Contains(t, result.Notes, noteTexts["sk"][noteAdvisoryUnavailable])
}

func TestClassify_AdvisoryRequestPayload(t *testing.T) {
	advisory := &countingAdvisory{result: domain.AdvisoryResult{Status: domain.StatusMaybe}}
	record := &domain.ProductRecord{
		Code:            "333",
		Name:            "Mystery snack",
		AllergenTags:    []string{"en:soy", "en:nuts"},
		IngredientsText: map[string]string{"en": "rice, soy lecithin"},
	}
	service := newTestService(&stubProducts{record: record}, advisory, nil)

	_, err := service.Classify(context.Background(), "333", "sk")
	require.NoError(t, err)

	require.Equal(t, 1, advisory.calls)
	assert.Equal(t, "333", advisory.lastReq.Code)
	assert.Equal(t, "Mystery snack", advisory.lastReq.Name)
	assert.Equal(t, "en:soy, en:nuts", advisory.lastReq.Allergens)
	assert.Equal(t, "sk", advisory.lastReq.Lang)
	assert.Contains(t, advisory.lastReq.Ingredients, "soy lecithin")
}

func TestClassify_NotFound(t *testing.T) {
	t.Run("advisory-only fallback with usable reply", func(t *testing.T) {
		advisory := &countingAdvisory{result: domain.AdvisoryResult{
			Status: domain.StatusMaybe,
			Notes:  []string{"unknown product, check the label"},
		}}
		history := &recordingHistory{}
		service := newTestService(&stubProducts{err: domain.ErrProductNotFound}, advisory, history)

		result, err := service.Classify(context.Background(), "404404", "sk")
		require.NoError(t, err)

		assert.Equal(t, domain.StatusMaybe, result.Status)
		assert.Equal(t, "advisory", result.Source)
		assert.Empty(t, result.Name)
		// No product means nothing worth remembering.
		assert.Equal(t, 0, history.Len())
		// The advisory got only the code, no product fields.
		assert.Empty(t, advisory.lastReq.Name)
		assert.Empty(t, advisory.lastReq.Ingredients)
	})

	t.Run("usable reply without notes gets the generic note", func(t *testing.T) {
		advisory := &countingAdvisory{result: domain.AdvisoryResult{Status: domain.StatusSafe}}
		service := newTestService(&stubProducts{err: domain.ErrProductNotFound}, advisory, nil)

		result, err := service.Classify(context.Background(), "404404", "sk")
		require.NoError(t, err)

		assert.Equal(t, domain.StatusSafe, result.Status)
		require.NotEmpty(t, result.Notes)
		assert.Contains(t, result.Notes, noteTexts["sk"][noteAdvisoryAdded])
	})

	t.Run("degraded advisory surfaces not found", func(t *testing.T) {
		advisory := &countingAdvisory{}
		service := newTestService(&stubProducts{err: domain.ErrProductNotFound}, advisory, nil)

		_, err := service.Classify(context.Background(), "404404", "sk")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("fallback disabled surfaces not found without consulting", func(t *testing.T) {
		advisory := &countingAdvisory{result: domain.AdvisoryResult{Status: domain.StatusMaybe}}
		service := NewClassificationService(nil, &stubProducts{err: domain.ErrProductNotFound}, advisory, nil, nil,
			ClassificationServiceConfig{ConsultOnNotFound: false})

		_, err := service.Classify(context.Background(), "404404", "sk")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
		assert.Equal(t, 0, advisory.calls)
	})
}

func TestClassify_LookupFailure(t *testing.T) {
	service := newTestService(&stubProducts{err: domain.ErrLookupFailure}, &countingAdvisory{}, nil)

	_, err := service.Classify(context.Background(), "111", "sk")
	assert.ErrorIs(t, err, domain.ErrLookupFailure)
}

func TestClassify_InvalidCode(t *testing.T) {
	service := newTestService(&stubProducts{record: avoidRecord()}, nil, nil)

	_, err := service.Classify(context.Background(), "   ", "sk")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestClassify_HistoryEntryWritten(t *testing.T) {
	history := &recordingHistory{}
	service := newTestService(&stubProducts{record: avoidRecord()}, nil, history)

	result, err := service.Classify(context.Background(), "111", "sk")
	require.NoError(t, err)

	require.Equal(t, 1, history.Len())
	entry := history.Entries()[0]
	assert.Equal(t, "111", entry.Code)
	assert.Equal(t, "Choco bar", entry.Name)
	assert.Equal(t, "TestBrand", entry.Brand)
	assert.Equal(t, domain.StatusAvoid, entry.Status)
	assert.Equal(t, result.EvaluatedAt, entry.Timestamp)
}

func TestClassify_CachedVerdictReused(t *testing.T) {
	memoryCache := cache.NewMemoryCache()
	defer memoryCache.Close()

	advisory := &countingAdvisory{result: domain.AdvisoryResult{Status: domain.StatusSafe, Notes: []string{"X"}}}
	service := NewClassificationService(memoryCache, &stubProducts{record: maybeRecord()}, advisory, nil, nil,
		ClassificationServiceConfig{})

	first, err := service.Classify(context.Background(), "333", "sk")
	require.NoError(t, err)
	require.Equal(t, "advisory", first.Source)

	second, err := service.Classify(context.Background(), "333", "sk")
	require.NoError(t, err)

	assert.Equal(t, "cache", second.Source)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Notes, second.Notes)
	// The advisory was not consulted again for the cached code.
	assert.Equal(t, 1, advisory.calls)
}

func TestClassify_DefaultLangApplied(t *testing.T) {
	advisory := &countingAdvisory{result: domain.AdvisoryResult{Status: domain.StatusMaybe}}
	service := NewClassificationService(nil, &stubProducts{record: maybeRecord()}, advisory, nil, nil,
		ClassificationServiceConfig{DefaultLang: "en"})

	result, err := service.Classify(context.Background(), "333", "")
	require.NoError(t, err)

	assert.Equal(t, "en", advisory.lastReq.Lang)
	assert.Contains(t, result.Notes, noteTexts["en"][noteInconclusive])
}
