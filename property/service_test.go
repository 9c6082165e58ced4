package property

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"estately/db"
	"estately/geocode"
)

type fakeRepo struct {
	props     map[string]Property
	statuses  map[string]Status
	published map[string]bool
}

func newFakePropRepo() *fakeRepo {
	return &fakeRepo{
		props:     map[string]Property{},
		statuses:  map[string]Status{},
		published: map[string]bool{},
	}
}

func (f *fakeRepo) Create(ctx context.Context, q db.Querier, p Property) (Property, error) {
	if p.Status == "" {
		p.Status = StatusAvailable
	}
	f.props[p.ID] = p
	return p, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, q db.Querier, id string) (Property, error) {
	p, ok := f.props[id]
	if !ok {
		return Property{}, ErrPropertyNotFound
	}
	return p, nil
}

func (f *fakeRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Property, error) {
	p, ok := f.props[id]
	if !ok {
		return Property{}, ErrPropertyNotFound
	}
	return p, nil
}

func (f *fakeRepo) GetPublishedByID(ctx context.Context, q db.Querier, id string) (Property, error) {
	p, ok := f.props[id]
	if !ok || !p.IsPublished {
		return Property{}, ErrPropertyNotFound
	}
	return p, nil
}

func (f *fakeRepo) ListPublished(ctx context.Context, q db.Querier, filter ListFilter) ([]Property, error) {
	var out []Property
	for _, p := range f.props {
		if p.IsPublished && p.Status != StatusSold {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByAgent(ctx context.Context, q db.Querier, agentID string) ([]Property, error) {
	var out []Property
	for _, p := range f.props {
		if p.AgentID != nil && *p.AgentID == agentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(ctx context.Context, q db.Querier, p Property) (Property, error) {
	if _, ok := f.props[p.ID]; !ok {
		return Property{}, ErrPropertyNotFound
	}
	f.props[p.ID] = p
	return p, nil
}

func (f *fakeRepo) SetStatus(ctx context.Context, q db.Querier, id string, status Status, at time.Time) error {
	p := f.props[id]
	p.Status = status
	f.props[id] = p
	f.statuses[id] = status
	return nil
}

func (f *fakeRepo) SetPublished(ctx context.Context, q db.Querier, id string, published bool, at time.Time) error {
	p := f.props[id]
	p.IsPublished = published
	f.props[id] = p
	f.published[id] = published
	return nil
}

func (f *fakeRepo) SetAIContent(ctx context.Context, q db.Querier, id string, content AIContent, at time.Time) error {
	return nil
}

func (f *fakeRepo) AddViews(ctx context.Context, q db.Querier, id string, delta int64) error {
	p := f.props[id]
	p.Views += delta
	f.props[id] = p
	return nil
}

type fakeGeocoder struct {
	structuredCalls int
	searchCalls     int
	structuredErr   error
	searchErr       error
	point           geocode.Point
}

func (f *fakeGeocoder) Structured(ctx context.Context, addr geocode.Address) (*geocode.Point, error) {
	f.structuredCalls++
	if f.structuredErr != nil {
		return nil, f.structuredErr
	}
	p := f.point
	return &p, nil
}

func (f *fakeGeocoder) Search(ctx context.Context, query string) (*geocode.Point, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	p := f.point
	return &p, nil
}

type fakePool struct {
	tx *fakeTx
}

func (f *fakePool) Begin(ctx context.Context) (pgx.Tx, error) {
	f.tx = &fakeTx{}
	return f.tx, nil
}

func (f *fakePool) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("SELECT 0"), nil
}

func (f *fakePool) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("not implemented")
}

func (f *fakePool) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("not implemented")
}

type fakeTx struct {
	rolled    bool
	committed bool
}

func (f *fakeTx) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("fakeTx does not support nested transactions")
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolled = true
	return nil
}

func (f *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}

func (f *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}

func (f *fakeTx) LargeObjects() pgx.LargeObjects {
	panic("not implemented")
}

func (f *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}

func (f *fakeTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("not implemented")
}

func (f *fakeTx) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("not implemented")
}

func (f *fakeTx) Conn() *pgx.Conn {
	return nil
}

func newTestPropertyService(repo *fakeRepo, geo *fakeGeocoder) *Service {
	svc := NewService(&fakePool{}, repo, geo, "India", 7.0, nil, zap.NewNop())
	ids := 0
	svc.WithIDGenerator(func() string {
		ids++
		return fmt.Sprintf("prop-%d", ids)
	})
	svc.WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	})
	return svc
}

func TestCreateComputesDerivedFields(t *testing.T) {
	repo := newFakePropRepo()
	geo := &fakeGeocoder{point: geocode.Point{Latitude: 18.52, Longitude: 73.85}}
	svc := newTestPropertyService(repo, geo)

	p, err := svc.Create(context.Background(), CreateRequest{
		Name:     "Sunrise Villa",
		Price:    250000,
		PlotArea: 1000,
		City:     "Pune",
	}, nil, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.PricePerSqft != 250.0 {
		t.Errorf("price per sqft: got %v, want 250.0", p.PricePerSqft)
	}
	if p.RegistrationAmount != 17500 {
		t.Errorf("registration amount: got %v, want 17500", p.RegistrationAmount)
	}
	if p.Latitude == nil || *p.Latitude != 18.52 {
		t.Errorf("expected geocoded latitude, got %v", p.Latitude)
	}
	if p.Status != StatusAvailable {
		t.Errorf("expected default status available, got %q", p.Status)
	}
	if p.IsPublished {
		t.Error("expected new listing unpublished")
	}
}

func TestCreateZeroAreaYieldsZeroUnitPrice(t *testing.T) {
	repo := newFakePropRepo()
	svc := newTestPropertyService(repo, &fakeGeocoder{})

	p, err := svc.Create(context.Background(), CreateRequest{
		Name:  "Plotless",
		Price: 250000,
	}, nil, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.PricePerSqft != 0 {
		t.Errorf("price per sqft: got %v, want 0", p.PricePerSqft)
	}
}

func TestEmptyAddressSkipsGeocoding(t *testing.T) {
	repo := newFakePropRepo()
	geo := &fakeGeocoder{}
	svc := newTestPropertyService(repo, geo)

	p, err := svc.Create(context.Background(), CreateRequest{Name: "No Address"}, nil, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if geo.structuredCalls != 0 || geo.searchCalls != 0 {
		t.Errorf("expected no geocode calls, got %d structured %d search",
			geo.structuredCalls, geo.searchCalls)
	}
	if p.Latitude != nil || p.Longitude != nil {
		t.Error("expected nil coordinates for empty address")
	}
}

func TestGeocodeFallsBackToFreeText(t *testing.T) {
	repo := newFakePropRepo()
	geo := &fakeGeocoder{
		structuredErr: errors.New("no results"),
		point:         geocode.Point{Latitude: 19.07, Longitude: 72.87},
	}
	svc := newTestPropertyService(repo, geo)

	p, err := svc.Create(context.Background(), CreateRequest{
		Name:   "Seaside Flat",
		Street: "Marine Drive",
		City:   "Mumbai",
	}, nil, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if geo.structuredCalls != 1 || geo.searchCalls != 1 {
		t.Errorf("expected structured then free-text, got %d/%d",
			geo.structuredCalls, geo.searchCalls)
	}
	if p.Latitude == nil || *p.Latitude != 19.07 {
		t.Errorf("expected fallback coordinates, got %v", p.Latitude)
	}
}

func TestGeocodeTotalFailureClearsCoordinatesWithoutError(t *testing.T) {
	repo := newFakePropRepo()
	geo := &fakeGeocoder{
		structuredErr: errors.New("down"),
		searchErr:     errors.New("still down"),
	}
	svc := newTestPropertyService(repo, geo)

	p, err := svc.Create(context.Background(), CreateRequest{
		Name: "Unlocatable",
		City: "Nowhere",
	}, nil, false)
	if err != nil {
		t.Fatalf("geocode failure must not block the save: %v", err)
	}
	if p.Latitude != nil || p.Longitude != nil || p.GeocodedAt != nil {
		t.Error("expected cleared coordinates after total geocode failure")
	}
}

func TestUpdateRecomputesAndRegeocodesOnAddressChange(t *testing.T) {
	repo := newFakePropRepo()
	geo := &fakeGeocoder{point: geocode.Point{Latitude: 12.97, Longitude: 77.59}}
	svc := newTestPropertyService(repo, geo)

	created, err := svc.Create(context.Background(), CreateRequest{
		Name:     "Tech Park Plot",
		Price:    500000,
		PlotArea: 2000,
		City:     "Bengaluru",
	}, nil, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	callsAfterCreate := geo.structuredCalls

	newPrice := 600000.0
	updated, err := svc.Update(context.Background(), created.ID, UpdateRequest{Price: &newPrice})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PricePerSqft != 300.0 {
		t.Errorf("expected recomputed unit price 300.0, got %v", updated.PricePerSqft)
	}
	if geo.structuredCalls != callsAfterCreate {
		t.Error("price-only update must not trigger geocoding")
	}

	newCity := "Mysuru"
	if _, err := svc.Update(context.Background(), created.ID, UpdateRequest{City: &newCity}); err != nil {
		t.Fatalf("update city: %v", err)
	}
	if geo.structuredCalls != callsAfterCreate+1 {
		t.Error("address change must trigger geocoding")
	}
}

func TestSetStatusValidation(t *testing.T) {
	repo := newFakePropRepo()
	svc := newTestPropertyService(repo, &fakeGeocoder{})

	if err := svc.SetStatus(context.Background(), "prop-x", Status("archived"), "staff-1", nil); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestSetStatusEnforcesOwnership(t *testing.T) {
	repo := newFakePropRepo()
	owner := "agent-1"
	repo.props["prop-1"] = Property{ID: "prop-1", Status: StatusAvailable, AgentID: &owner}
	svc := newTestPropertyService(repo, &fakeGeocoder{})

	other := "agent-2"
	if err := svc.SetStatus(context.Background(), "prop-1", StatusSold, "agent-2", &other); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	if err := svc.SetStatus(context.Background(), "prop-1", StatusSold, "agent-1", &owner); err != nil {
		t.Fatalf("owner status change: %v", err)
	}
	if repo.statuses["prop-1"] != StatusSold {
		t.Errorf("expected sold, got %q", repo.statuses["prop-1"])
	}
}
