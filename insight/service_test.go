package insight

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"estately/db"
	"estately/property"
)

type fakePropRepo struct {
	props   map[string]property.Property
	written map[string]property.AIContent
}

func newFakePropRepo() *fakePropRepo {
	return &fakePropRepo{
		props:   map[string]property.Property{},
		written: map[string]property.AIContent{},
	}
}

func (f *fakePropRepo) Create(ctx context.Context, q db.Querier, p property.Property) (property.Property, error) {
	panic("not implemented")
}

func (f *fakePropRepo) GetByID(ctx context.Context, q db.Querier, id string) (property.Property, error) {
	p, ok := f.props[id]
	if !ok {
		return property.Property{}, property.ErrPropertyNotFound
	}
	return p, nil
}

func (f *fakePropRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (property.Property, error) {
	panic("not implemented")
}

func (f *fakePropRepo) GetPublishedByID(ctx context.Context, q db.Querier, id string) (property.Property, error) {
	panic("not implemented")
}

func (f *fakePropRepo) ListPublished(ctx context.Context, q db.Querier, filter property.ListFilter) ([]property.Property, error) {
	panic("not implemented")
}

func (f *fakePropRepo) ListByAgent(ctx context.Context, q db.Querier, agentID string) ([]property.Property, error) {
	panic("not implemented")
}

func (f *fakePropRepo) Update(ctx context.Context, q db.Querier, p property.Property) (property.Property, error) {
	panic("not implemented")
}

func (f *fakePropRepo) SetStatus(ctx context.Context, q db.Querier, id string, status property.Status, at time.Time) error {
	panic("not implemented")
}

func (f *fakePropRepo) SetPublished(ctx context.Context, q db.Querier, id string, published bool, at time.Time) error {
	panic("not implemented")
}

func (f *fakePropRepo) SetAIContent(ctx context.Context, q db.Querier, id string, content property.AIContent, at time.Time) error {
	f.written[id] = content
	p := f.props[id]
	p.AIContentGenerated = true
	f.props[id] = p
	return nil
}

func (f *fakePropRepo) AddViews(ctx context.Context, q db.Querier, id string, delta int64) error {
	panic("not implemented")
}

type fakeStore struct {
	insights map[string]CityInsight
}

func newFakeStore() *fakeStore {
	return &fakeStore{insights: map[string]CityInsight{}}
}

func (f *fakeStore) Get(ctx context.Context, q db.Querier, city string) (CityInsight, error) {
	ci, ok := f.insights[strings.ToLower(city)]
	if !ok {
		return CityInsight{}, ErrInsightNotFound
	}
	return ci, nil
}

func (f *fakeStore) Upsert(ctx context.Context, q db.Querier, ci CityInsight) error {
	f.insights[strings.ToLower(ci.City)] = ci
	return nil
}

type fakeLLM struct {
	configured bool
	response   string
	err        error
	calls      int
}

func (f *fakeLLM) Configured() bool {
	return f.configured
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newTestService(props *fakePropRepo, store *fakeStore, gateway *fakeLLM) *Service {
	svc := NewService(nil, props, store, gateway, nil, zap.NewNop())
	svc.WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	})
	return svc
}

func listedProperty() property.Property {
	return property.Property{
		ID:          "prop-1",
		Name:        "Sunrise Villa",
		City:        "Pune",
		Price:       2500000,
		PlotArea:    1200,
		IsPublished: true,
	}
}

func TestGenerateContentWritesAllFiveFragments(t *testing.T) {
	props := newFakePropRepo()
	props.props["prop-1"] = listedProperty()
	gateway := &fakeLLM{
		configured: true,
		response: "```json\n" + `{
			"key_highlights": ["Gated community", "Corner plot"],
			"investment_data": ["8% annual appreciation"],
			"nearby_places": ["Metro station 1km"],
			"unique_features": [],
			"lifestyle_benefits": ["Parks nearby"]
		}` + "\n```",
	}
	svc := newTestService(props, newFakeStore(), gateway)

	ok, err := svc.GenerateContent(context.Background(), "prop-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !ok {
		t.Fatal("expected generation to succeed")
	}

	content, written := props.written["prop-1"]
	if !written {
		t.Fatal("expected content persisted")
	}
	if !strings.Contains(content.KeyHighlights, "<li>Gated community</li>") {
		t.Errorf("key highlights not rendered: %q", content.KeyHighlights)
	}
	if !strings.HasPrefix(content.InvestmentData, "<ul>") {
		t.Errorf("expected list markup, got %q", content.InvestmentData)
	}
	if !strings.Contains(content.UniqueFeatures, "Information not available") {
		t.Errorf("empty array must render the placeholder, got %q", content.UniqueFeatures)
	}
}

func TestGenerateContentMalformedJSONIsNoOp(t *testing.T) {
	props := newFakePropRepo()
	props.props["prop-1"] = listedProperty()
	gateway := &fakeLLM{configured: true, response: "here are some highlights: great location"}
	svc := newTestService(props, newFakeStore(), gateway)

	ok, err := svc.GenerateContent(context.Background(), "prop-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ok {
		t.Fatal("expected soft failure on malformed json")
	}
	if _, written := props.written["prop-1"]; written {
		t.Fatal("expected no mutation on parse failure")
	}
	if props.props["prop-1"].AIContentGenerated {
		t.Fatal("generated flag must stay false")
	}
}

func TestGenerateContentWithoutAPIKey(t *testing.T) {
	props := newFakePropRepo()
	props.props["prop-1"] = listedProperty()
	gateway := &fakeLLM{configured: false}
	svc := newTestService(props, newFakeStore(), gateway)

	ok, err := svc.GenerateContent(context.Background(), "prop-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ok {
		t.Fatal("expected soft failure without api key")
	}
	if gateway.calls != 0 {
		t.Fatal("expected no gateway call without api key")
	}
}

func TestGenerateIfMissingSkipsGeneratedAndUnpublished(t *testing.T) {
	props := newFakePropRepo()
	done := listedProperty()
	done.AIContentGenerated = true
	props.props["prop-1"] = done

	unpublished := listedProperty()
	unpublished.ID = "prop-2"
	unpublished.IsPublished = false
	props.props["prop-2"] = unpublished

	gateway := &fakeLLM{configured: true, response: "{}"}
	svc := newTestService(props, newFakeStore(), gateway)

	svc.GenerateIfMissing(context.Background(), &done)
	svc.GenerateIfMissing(context.Background(), &unpublished)
	if gateway.calls != 0 {
		t.Fatalf("expected no gateway calls, got %d", gateway.calls)
	}
}

func TestCityInvestmentInfoCachesAcrossGatewayFailure(t *testing.T) {
	store := newFakeStore()
	gateway := &fakeLLM{
		configured: true,
		response: `{
			"investment_reasons": ["IT corridor demand"],
			"growth_potential": ["New airport planned"],
			"infrastructure": ["Ring road"],
			"market_trends": ["Steady appreciation"]
		}`,
	}
	svc := newTestService(newFakePropRepo(), store, gateway)

	first, err := svc.CityInvestmentInfo(context.Background(), "Pune")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if first == nil || !strings.Contains(first.InvestmentReasons, "IT corridor demand") {
		t.Fatalf("unexpected first result: %+v", first)
	}

	// The gateway now fails; the cached row must still be served.
	gateway.err = errors.New("provider down")
	second, err := svc.CityInvestmentInfo(context.Background(), "Pune")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if second == nil {
		t.Fatal("expected cache hit despite gateway failure")
	}
	if second.InvestmentReasons != first.InvestmentReasons {
		t.Error("expected identical cached fragments")
	}
	if gateway.calls != 1 {
		t.Fatalf("expected exactly one gateway call, got %d", gateway.calls)
	}
}

func TestCityInvestmentInfoEmptyCity(t *testing.T) {
	svc := newTestService(newFakePropRepo(), newFakeStore(), &fakeLLM{configured: true})
	ci, err := svc.CityInvestmentInfo(context.Background(), "")
	if err != nil {
		t.Fatalf("empty city: %v", err)
	}
	if ci != nil {
		t.Fatal("expected nil for empty city")
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"  ```json\n[1,2]\n```  ", "[1,2]"},
	}
	for _, tc := range cases {
		if got := stripFences(tc.in); got != tc.want {
			t.Errorf("stripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestListFragmentEscapesAndFallsBack(t *testing.T) {
	if got := listFragment([]string{"<b>bold</b>"}); strings.Contains(got, "<b>") {
		t.Errorf("expected escaped markup, got %q", got)
	}
	if got := listFragment(nil); !strings.Contains(got, "Information not available") {
		t.Errorf("expected placeholder, got %q", got)
	}
}
