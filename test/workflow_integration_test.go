package test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"estately/agent"
	"estately/agentreg"
	"estately/category"
	"estately/geocode"
	"estately/notify"
	"estately/portal"
	"estately/property"
	"estately/propertyreg"
	"estately/test/infra"
)

// fixedGeocoder keeps the integration run hermetic; the real client is
// covered by its own httptest suite.
type fixedGeocoder struct{}

func (fixedGeocoder) Structured(ctx context.Context, addr geocode.Address) (*geocode.Point, error) {
	return &geocode.Point{Latitude: 18.5204, Longitude: 73.8567}, nil
}

func (fixedGeocoder) Search(ctx context.Context, query string) (*geocode.Point, error) {
	return &geocode.Point{Latitude: 18.5204, Longitude: 73.8567}, nil
}

func dockerAvailable(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, "docker", "info")
	return cmd.Run() == nil
}

func setupDatabase(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()
	if os.Getenv("ESTATELY_TEST_PG_DSN") == "" && !dockerAvailable(ctx) {
		t.Skip("no docker and no ESTATELY_TEST_PG_DSN; skipping integration test")
	}
	pgC, dsn, err := infra.StartPostgres16(ctx, "")
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

	pool, teardown, err := infra.ApplyMigrations(ctx, dsn, os.Getenv("ESTATELY_TEST_PG_DSN") != "")
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	t.Cleanup(pool.Close)
	t.Cleanup(func() { _ = teardown(context.Background()) })
	return pool
}

func TestWorkflowsEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()
	testPool := setupDatabase(t, ctx)

	logger := zap.NewNop()
	notifier := notify.NewLogNotifier(logger)

	agentRepo := agent.NewRepository()
	identity := portal.NewService(portal.NewRepository(), "integration-secret")
	agentRegs := agentreg.NewService(testPool, agentreg.NewRepository(), agentRepo, identity, notifier, nil, logger)
	listings := property.NewService(testPool, property.NewRepository(), fixedGeocoder{}, "India", 7.0, nil, logger)
	propRegs := propertyreg.NewService(testPool, propertyreg.NewRepository(), category.NewRepository(), listings, notifier, nil, logger)

	t.Run("agent registration through approval", func(t *testing.T) {
		reg, err := agentRegs.Submit(ctx, agentreg.SubmitRequest{
			Name:  "Kavya Nair",
			Email: "kavya@example.com",
			Phone: "9876500001",
			City:  "Kochi",
		})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if reg.Status != agentreg.StatusSubmitted {
			t.Fatalf("status = %s", reg.Status)
		}
		if reg.RegistrationNo == "" {
			t.Fatal("expected registration number")
		}

		if err := agentRegs.StartReview(ctx, reg.ID, "staff-1"); err != nil {
			t.Fatalf("start review: %v", err)
		}

		created, err := agentRegs.Approve(ctx, reg.ID, "staff-1")
		if err != nil {
			t.Fatalf("approve: %v", err)
		}
		if created.PortalUserID == nil {
			t.Fatal("expected portal identity attached")
		}
		if created.ShortBio == "" {
			t.Fatal("expected bio fallback applied")
		}

		// The new identity can be resolved back to the profile.
		back, err := agentRepo.GetByPortalUser(ctx, testPool, *created.PortalUserID)
		if err != nil {
			t.Fatalf("get by portal user: %v", err)
		}
		if back.ID != created.ID {
			t.Fatalf("profile mismatch: %s != %s", back.ID, created.ID)
		}

		if _, err := agentRegs.Approve(ctx, reg.ID, "staff-2"); !errors.Is(err, agentreg.ErrAlreadyApproved) {
			t.Fatalf("replay approve err = %v", err)
		}
	})

	t.Run("property registration approval publishes a listing", func(t *testing.T) {
		reg, err := propRegs.Submit(ctx, propertyreg.SubmitRequest{
			CustomerName: "Suresh Patil",
			PropertyName: "Green Acres Plot 14",
			CategoryName: "Open Plots",
			SqYards:      200,
			Price:        1400000,
			Place:        "Wagholi",
			City:         "Pune",
		})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}

		created, err := propRegs.Approve(ctx, reg.ID, "staff-1", true)
		if err != nil {
			t.Fatalf("approve: %v", err)
		}
		if created.ZipCode != "000000" || created.FacingDirection != "north" || created.RoadWidth != 30.0 {
			t.Fatalf("defaults not applied: %+v", created)
		}
		if created.CategoryID == nil {
			t.Fatal("expected category created on demand")
		}
		if created.PricePerSqft != 7000 {
			t.Fatalf("price_per_sqft = %v", created.PricePerSqft)
		}
		if created.Latitude == nil {
			t.Fatal("expected coordinates from geocoder")
		}

		catalogue, err := listings.ListPublished(ctx, property.ListFilter{City: "Pune"})
		if err != nil {
			t.Fatalf("list published: %v", err)
		}
		if len(catalogue) != 1 {
			t.Fatalf("catalogue size = %d", len(catalogue))
		}

		// Sold listings drop out of the public catalogue.
		if err := listings.SetStatus(ctx, created.ID, property.StatusSold, "staff-1", nil); err != nil {
			t.Fatalf("set status: %v", err)
		}
		catalogue, err = listings.ListPublished(ctx, property.ListFilter{City: "Pune"})
		if err != nil {
			t.Fatalf("list published: %v", err)
		}
		if len(catalogue) != 0 {
			t.Fatalf("sold listing still in catalogue")
		}
	})
}
