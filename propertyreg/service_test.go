package propertyreg

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"estately/category"
	"estately/db"
	"estately/property"
)

type fakeRepo struct {
	regs     map[string]Registration
	approved map[string]string
	rejected map[string]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		regs:     map[string]Registration{},
		approved: map[string]string{},
		rejected: map[string]string{},
	}
}

func (f *fakeRepo) Create(ctx context.Context, q db.Querier, reg Registration) (Registration, error) {
	reg.Status = StatusSubmitted
	f.regs[reg.ID] = reg
	return reg, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, q db.Querier, id string) (Registration, error) {
	reg, ok := f.regs[id]
	if !ok {
		return Registration{}, ErrRegistrationNotFound
	}
	return reg, nil
}

func (f *fakeRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Registration, error) {
	reg, ok := f.regs[id]
	if !ok {
		return Registration{}, ErrRegistrationNotFound
	}
	return reg, nil
}

func (f *fakeRepo) List(ctx context.Context, q db.Querier, status Status) ([]Registration, error) {
	var out []Registration
	for _, reg := range f.regs {
		if status == "" || reg.Status == status {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (f *fakeRepo) MarkApproved(ctx context.Context, q db.Querier, id, propertyID, reviewerID string, at time.Time) error {
	reg := f.regs[id]
	reg.Status = StatusApproved
	reg.PropertyID = &propertyID
	f.regs[id] = reg
	f.approved[id] = propertyID
	return nil
}

func (f *fakeRepo) MarkRejected(ctx context.Context, q db.Querier, id, reason, reviewerID string, at time.Time) error {
	reg := f.regs[id]
	reg.Status = StatusRejected
	reg.RejectionReason = &reason
	f.regs[id] = reg
	f.rejected[id] = reason
	return nil
}

type fakeCategoryRepo struct {
	ensured []string
}

func (f *fakeCategoryRepo) GetByName(ctx context.Context, q db.Querier, name string) (category.Category, error) {
	return category.Category{}, category.ErrCategoryNotFound
}

func (f *fakeCategoryRepo) Create(ctx context.Context, q db.Querier, cat category.Category) (category.Category, error) {
	return cat, nil
}

func (f *fakeCategoryRepo) EnsureByName(ctx context.Context, q db.Querier, name string) (category.Category, error) {
	f.ensured = append(f.ensured, name)
	return category.Category{ID: "cat-" + name, Name: name}, nil
}

func (f *fakeCategoryRepo) List(ctx context.Context, q db.Querier) ([]category.Category, error) {
	return nil, nil
}

type fakeListings struct {
	created   []property.CreateRequest
	published []bool
	err       error
}

func (f *fakeListings) CreateIn(ctx context.Context, q db.Querier, req property.CreateRequest, agentID *string, pub bool) (*property.Property, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	f.published = append(f.published, pub)
	p := property.Property{ID: fmt.Sprintf("prop-%d", len(f.created)), Name: req.Name, CategoryID: req.CategoryID, IsPublished: pub}
	return &p, nil
}

type fakeNotifier struct {
	rejections []string
	err        error
}

func (f *fakeNotifier) PasswordReset(ctx context.Context, email string) error {
	return nil
}

func (f *fakeNotifier) RegistrationRejected(ctx context.Context, email, name, reason string) error {
	f.rejections = append(f.rejections, email)
	return f.err
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

func newTestService(repo *fakeRepo, cats *fakeCategoryRepo, listings *fakeListings, notifier *fakeNotifier) (*Service, *fakePool) {
	pool := &fakePool{}
	svc := NewService(pool, repo, cats, listings, notifier, nil, zap.NewNop())
	ids := 0
	svc.WithIDGenerator(func() string {
		ids++
		return fmt.Sprintf("preg-%d", ids)
	})
	svc.WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	})
	return svc, pool
}

func submittedRegistration() Registration {
	return Registration{
		ID:           "preg-1",
		CustomerName: "Ravi Kumar",
		PropertyName: "Green Acres Plot 12",
		PhoneNumber:  "+91-90000-00000",
		Email:        "ravi@example.com",
		CategoryName: "Residential Plots",
		SqYards:      200,
		Price:        1500000,
		Location:     "Survey 42, Wagholi",
		City:         "Pune",
		Status:       StatusSubmitted,
	}
}

func TestApproveCreatesListingWithCategory(t *testing.T) {
	repo := newFakeRepo()
	repo.regs["preg-1"] = submittedRegistration()
	cats := &fakeCategoryRepo{}
	listings := &fakeListings{}
	svc, pool := newTestService(repo, cats, listings, &fakeNotifier{})

	created, err := svc.Approve(context.Background(), "preg-1", "staff-1", true)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if len(cats.ensured) != 1 || cats.ensured[0] != "Residential Plots" {
		t.Errorf("expected category ensured, got %v", cats.ensured)
	}
	if len(listings.created) != 1 {
		t.Fatalf("expected one listing created, got %d", len(listings.created))
	}
	draft := listings.created[0]
	if draft.CategoryID == nil || *draft.CategoryID != "cat-Residential Plots" {
		t.Error("expected ensured category wired into the draft")
	}
	if !listings.published[0] {
		t.Error("expected reviewer's publish flag honoured")
	}
	if repo.approved["preg-1"] != created.ID {
		t.Error("expected registration linked to created listing")
	}
	if !pool.tx.committed {
		t.Error("expected commit")
	}
}

func TestApproveGuardsSettledRegistrations(t *testing.T) {
	repo := newFakeRepo()
	reg := submittedRegistration()
	reg.Status = StatusApproved
	repo.regs["preg-1"] = reg
	svc, _ := newTestService(repo, &fakeCategoryRepo{}, &fakeListings{}, &fakeNotifier{})

	if _, err := svc.Approve(context.Background(), "preg-1", "staff-1", false); !errors.Is(err, ErrAlreadyApproved) {
		t.Fatalf("expected ErrAlreadyApproved, got %v", err)
	}

	reg.Status = StatusRejected
	repo.regs["preg-1"] = reg
	if _, err := svc.Approve(context.Background(), "preg-1", "staff-1", false); !errors.Is(err, ErrAlreadyRejected) {
		t.Fatalf("expected ErrAlreadyRejected, got %v", err)
	}
}

func TestApproveRollsBackWhenListingFails(t *testing.T) {
	repo := newFakeRepo()
	repo.regs["preg-1"] = submittedRegistration()
	listings := &fakeListings{err: errors.New("insert failed")}
	svc, pool := newTestService(repo, &fakeCategoryRepo{}, listings, &fakeNotifier{})

	if _, err := svc.Approve(context.Background(), "preg-1", "staff-1", false); err == nil {
		t.Fatal("expected error")
	}
	if pool.tx.committed {
		t.Error("expected no commit when listing creation fails")
	}
	if repo.regs["preg-1"].Status != StatusSubmitted {
		t.Error("expected registration untouched after failure")
	}
}

func TestRejectNotifiesSubmitter(t *testing.T) {
	repo := newFakeRepo()
	repo.regs["preg-1"] = submittedRegistration()
	notifier := &fakeNotifier{}
	svc, _ := newTestService(repo, &fakeCategoryRepo{}, &fakeListings{}, notifier)

	if err := svc.Reject(context.Background(), "preg-1", "staff-1", "duplicate submission"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if repo.rejected["preg-1"] != "duplicate submission" {
		t.Errorf("expected reason recorded, got %q", repo.rejected["preg-1"])
	}
	if len(notifier.rejections) != 1 || notifier.rejections[0] != "ravi@example.com" {
		t.Errorf("expected submitter notified, got %v", notifier.rejections)
	}
}

func TestRejectWithoutEmailSkipsNotification(t *testing.T) {
	repo := newFakeRepo()
	reg := submittedRegistration()
	reg.Email = ""
	repo.regs["preg-1"] = reg
	notifier := &fakeNotifier{}
	svc, _ := newTestService(repo, &fakeCategoryRepo{}, &fakeListings{}, notifier)

	if err := svc.Reject(context.Background(), "preg-1", "staff-1", "spam"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if len(notifier.rejections) != 0 {
		t.Errorf("expected no notification, got %v", notifier.rejections)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	repo := newFakeRepo()
	repo.regs["preg-1"] = submittedRegistration()
	svc, _ := newTestService(repo, &fakeCategoryRepo{}, &fakeListings{}, &fakeNotifier{})

	if err := svc.Reject(context.Background(), "preg-1", "staff-1", ""); !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}
}

func TestBuildListingDraftDefaults(t *testing.T) {
	reg := Registration{
		CustomerName: "Ravi Kumar",
		PropertyName: "Green Acres Plot 12",
		SqYards:      200,
		Price:        1500000,
		Place:        "Wagholi",
		City:         "Pune",
	}
	draft := BuildListingDraft(reg)

	if draft.ZipCode != "000000" {
		t.Errorf("zip: got %q", draft.ZipCode)
	}
	if draft.FacingDirection != "north" {
		t.Errorf("facing: got %q", draft.FacingDirection)
	}
	if draft.RoadWidth != 30.0 {
		t.Errorf("road width: got %v", draft.RoadWidth)
	}
	if draft.TitleStatus != "pending" {
		t.Errorf("title status: got %q", draft.TitleStatus)
	}
	if draft.Street != "Wagholi" {
		t.Errorf("expected place as street fallback, got %q", draft.Street)
	}
	if draft.SEOTitle != "Green Acres Plot 12" {
		t.Errorf("seo title: got %q", draft.SEOTitle)
	}
}
