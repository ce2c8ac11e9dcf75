package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/meridianhealth/comorbid/internal/charlson"
	"github.com/meridianhealth/comorbid/internal/config"
	"github.com/meridianhealth/comorbid/internal/events"
	"github.com/meridianhealth/comorbid/internal/mapping"
	"github.com/meridianhealth/comorbid/internal/store"
)

// MockStore implements store.Store for testing
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateScoreRecord(ctx context.Context, rec *store.ScoreRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockStore) GetScoreRecord(ctx context.Context, id uuid.UUID) (*store.ScoreRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.ScoreRecord), args.Error(1)
}

func (m *MockStore) ListScoreRecords(ctx context.Context, filter store.RecordFilter) ([]*store.ScoreRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*store.ScoreRecord), args.Error(1)
}

func (m *MockStore) GetStats(ctx context.Context) (*store.ScoreStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.ScoreStats), args.Error(1)
}

func (m *MockStore) Close() error { return nil }

// fakeEvents records published events
type fakeEvents struct {
	subjects []string
}

func (f *fakeEvents) Publish(subject string, data interface{}) error {
	f.subjects = append(f.subjects, subject)
	return nil
}

func (f *fakeEvents) Close() {}

func testRegistry() *mapping.Registry {
	return &mapping.Registry{Versions: map[string]mapping.CategoryTable{
		"icdtest": {
			"liver_mild": {
				Name:      "Mild liver disease",
				Weight:    3,
				DependsOn: []string{"liver_severe"},
				Codes: []mapping.CodeGroup{
					{Condition: mapping.ConditionAny, Codes: []string{"K74.6"}},
				},
			},
			"liver_severe": {
				Name:   "Severe liver disease",
				Weight: 10,
				Codes: []mapping.CodeGroup{
					{Condition: mapping.ConditionAny, Codes: []string{"K74.7"}},
				},
			},
		},
	}}
}

func testConfig() *config.Config {
	return &config.Config{
		Scoring: config.ScoringConfig{
			DefaultMode:        "prefix",
			MaxCodes:           16,
			RateLimitPerMinute: 1000,
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(ms *MockStore, ev events.Client) http.Handler {
	cfg := testConfig()
	source := mapping.NewStatic(testRegistry())
	scorer := charlson.NewScorer(source, testLogger())
	return NewRouter(scorer, source, ms, ev, nil, cfg, testLogger())
}

func postScore(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/v1/score", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", "test-client")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestComputeScore(t *testing.T) {
	ms := &MockStore{}
	ev := &fakeEvents{}
	ms.On("CreateScoreRecord", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*store.ScoreRecord).ID = uuid.New()
	}).Return(nil)

	router := newTestRouter(ms, ev)
	rec := postScore(t, router, `{"codes":["K74.6","K74.7"],"mapping":"icdtest","list_categories":true}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ScoreResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 10, resp.Score)
	assert.Equal(t, "icdtest", resp.Mapping)
	assert.Equal(t, "prefix", resp.Mode)
	assert.Equal(t, []string{"Severe liver disease"}, resp.Categories)
	assert.NotEmpty(t, resp.RecordID)

	ms.AssertCalled(t, "CreateScoreRecord", mock.Anything, mock.Anything)
	assert.Equal(t, []string{"comorbid.score.computed"}, ev.subjects)
}

func TestComputeScoreSingleStringCode(t *testing.T) {
	ms := &MockStore{}
	ms.On("CreateScoreRecord", mock.Anything, mock.Anything).Return(nil)

	router := newTestRouter(ms, nil)
	rec := postScore(t, router, `{"codes":"K74.6","mapping":"icdtest"}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ScoreResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Score)
	assert.Empty(t, resp.Categories)
}

func TestComputeScoreExactMode(t *testing.T) {
	ms := &MockStore{}
	ms.On("CreateScoreRecord", mock.Anything, mock.Anything).Return(nil)

	router := newTestRouter(ms, nil)
	rec := postScore(t, router, `{"codes":["K74.71"],"mapping":"icdtest","exact_codes":true}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ScoreResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 0, resp.Score)
	assert.Equal(t, "exact", resp.Mode)
}

func TestComputeScoreInvalidCodes(t *testing.T) {
	ms := &MockStore{}
	router := newTestRouter(ms, nil)

	rec := postScore(t, router, `{"codes":[123,"A00"],"mapping":"icdtest"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ms.AssertNotCalled(t, "CreateScoreRecord", mock.Anything, mock.Anything)
}

func TestComputeScoreUnknownMapping(t *testing.T) {
	ms := &MockStore{}
	router := newTestRouter(ms, nil)

	rec := postScore(t, router, `{"codes":["K74.6"],"mapping":"icd1999"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComputeScoreMissingMapping(t *testing.T) {
	ms := &MockStore{}
	router := newTestRouter(ms, nil)

	rec := postScore(t, router, `{"codes":["K74.6"]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComputeScoreTooManyCodes(t *testing.T) {
	ms := &MockStore{}
	router := newTestRouter(ms, nil)

	codes := make([]string, 17)
	for i := range codes {
		codes[i] = "A00"
	}
	body, _ := json.Marshal(map[string]interface{}{"codes": codes, "mapping": "icdtest"})
	rec := postScore(t, router, string(body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetScoreRecord(t *testing.T) {
	id := uuid.New()
	ms := &MockStore{}
	ms.On("GetScoreRecord", mock.Anything, id).Return(&store.ScoreRecord{
		ID:             id,
		MappingVersion: "icdtest",
		Score:          10,
	}, nil)

	router := newTestRouter(ms, nil)
	req := httptest.NewRequest("GET", "/api/v1/scores/"+id.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got store.ScoreRecord
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, id, got.ID)
	assert.Equal(t, 10, got.Score)
}

func TestGetScoreRecordNotFound(t *testing.T) {
	ms := &MockStore{}
	ms.On("GetScoreRecord", mock.Anything, mock.Anything).Return(nil, nil)

	router := newTestRouter(ms, nil)
	req := httptest.NewRequest("GET", "/api/v1/scores/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
