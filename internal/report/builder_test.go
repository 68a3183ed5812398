package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"

	"github.com/fleetver/fleetver/internal/model"
)

// strPtr is a test helper for building optional fields.
func strPtr(s string) *string { return &s }

// fakeFetcher is an in-memory Fetcher that records which organizations were
// queried for users. It is safe for concurrent use because the builder fans
// user fetches out.
type fakeFetcher struct {
	orgs    []model.Organization
	orgsErr error

	usersByOrg map[string][]model.User
	usersErr   map[string]error

	mu          sync.Mutex
	fetchedOrgs []string
}

func (f *fakeFetcher) Organizations(_ context.Context) ([]model.Organization, error) {
	if f.orgsErr != nil {
		return nil, f.orgsErr
	}
	return f.orgs, nil
}

func (f *fakeFetcher) Users(_ context.Context, orgID string) ([]model.User, error) {
	f.mu.Lock()
	f.fetchedOrgs = append(f.fetchedOrgs, orgID)
	f.mu.Unlock()

	if err := f.usersErr[orgID]; err != nil {
		return nil, err
	}
	return f.usersByOrg[orgID], nil
}

// testLogger silences builder progress output in tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// acmeFetcher reproduces the canonical single-match dataset.
func acmeFetcher() *fakeFetcher {
	return &fakeFetcher{
		orgs: []model.Organization{{ID: "o1", Domain: strPtr("acme.com")}},
		usersByOrg: map[string][]model.User{
			"o1": {{
				ID:   "u1",
				Name: strPtr("Ann"),
				Info: &model.UserInfo{Email: strPtr("a@acme.com")},
				Devices: []model.Device{
					{ID: strPtr("d1"), IP: strPtr("1.2.3.4"), UserAgent: strPtr("5.5.09.04")},
				},
			}},
		},
	}
}

// TestBuilderBuild covers the core matching and flattening behavior.
func TestBuilderBuild(t *testing.T) {
	t.Parallel()

	t.Run("single matching device yields one flattened row", func(t *testing.T) {
		t.Parallel()

		b := NewBuilder(acmeFetcher(), "5.5.09.04", WithBuilderLogger(testLogger()))
		rows, err := b.Build(context.Background())
		if err != nil {
			t.Fatalf("Build() error: %v", err)
		}

		want := []model.ReportRow{{
			OrgDomain:  "acme.com",
			OrgID:      "o1",
			UserID:     "u1",
			UserName:   "Ann",
			UserEmail:  "a@acme.com",
			DeviceID:   "d1",
			DeviceIP:   "1.2.3.4",
			AppVersion: "5.5.09.04",
		}}
		if !reflect.DeepEqual(rows, want) {
			t.Errorf("Build() = %+v, want %+v", rows, want)
		}
	})

	t.Run("non-matching pattern yields zero rows", func(t *testing.T) {
		t.Parallel()

		b := NewBuilder(acmeFetcher(), "9.9.9.9", WithBuilderLogger(testLogger()))
		rows, err := b.Build(context.Background())
		if err != nil {
			t.Fatalf("Build() error: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("expected zero rows, got %+v", rows)
		}
	})

	t.Run("match is substring containment, not equality", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{
			orgs: []model.Organization{{ID: "o1"}},
			usersByOrg: map[string][]model.User{
				"o1": {{
					ID: "u1",
					Devices: []model.Device{
						{ID: strPtr("d1"), UserAgent: strPtr("5.5.09.04")},
						{ID: strPtr("d2"), UserAgent: strPtr("5.5.09.99")},
						{ID: strPtr("d3"), UserAgent: strPtr("5.6.00.01")},
					},
				}},
			},
		}

		b := NewBuilder(f, "5.5.09", WithBuilderLogger(testLogger()))
		rows, err := b.Build(context.Background())
		if err != nil {
			t.Fatalf("Build() error: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("got %d rows, want 2 (version-family match)", len(rows))
		}
		if rows[0].DeviceID != "d1" || rows[1].DeviceID != "d2" {
			t.Errorf("rows out of device order: %+v", rows)
		}
	})

	t.Run("devices without version and users without devices contribute nothing", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{
			orgs: []model.Organization{{ID: "o1"}},
			usersByOrg: map[string][]model.User{
				"o1": {
					{ID: "u1"}, // no devices at all
					{ID: "u2", Devices: []model.Device{{ID: strPtr("d1")}}},                             // device without ua
					{ID: "u3", Devices: []model.Device{{ID: strPtr("d2"), UserAgent: strPtr("7.0")}}}, // match
				},
			},
		}

		b := NewBuilder(f, "7.0", WithBuilderLogger(testLogger()))
		rows, err := b.Build(context.Background())
		if err != nil {
			t.Fatalf("Build() error: %v", err)
		}
		if len(rows) != 1 || rows[0].UserID != "u3" {
			t.Errorf("Build() = %+v, want only u3's device", rows)
		}
	})

	t.Run("missing target version is the only fatal precondition", func(t *testing.T) {
		t.Parallel()

		b := NewBuilder(acmeFetcher(), "", WithBuilderLogger(testLogger()))
		if _, err := b.Build(context.Background()); !errors.Is(err, ErrNoTargetVersion) {
			t.Errorf("expected ErrNoTargetVersion, got %v", err)
		}
	})
}

// TestBuilderOrdering verifies rows keep API order at every level even when
// fetches run concurrently.
func TestBuilderOrdering(t *testing.T) {
	t.Parallel()

	orgCount := 20
	f := &fakeFetcher{usersByOrg: map[string][]model.User{}}
	var wantOrgIDs []string
	for i := 0; i < orgCount; i++ {
		id := string(rune('a'+i%26)) + "-org"
		id = id + "-" + string(rune('0'+i/10)) + string(rune('0'+i%10))
		f.orgs = append(f.orgs, model.Organization{ID: id})
		f.usersByOrg[id] = []model.User{{
			ID:      "u-" + id,
			Devices: []model.Device{{ID: strPtr("d-" + id), UserAgent: strPtr("3.1.4")}},
		}}
		wantOrgIDs = append(wantOrgIDs, id)
	}

	b := NewBuilder(f, "3.1.4", WithConcurrency(8), WithBuilderLogger(testLogger()))
	rows, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if len(rows) != orgCount {
		t.Fatalf("got %d rows, want %d", len(rows), orgCount)
	}
	for i, row := range rows {
		if row.OrgID != wantOrgIDs[i] {
			t.Fatalf("row %d has org %s, want %s (order not preserved)", i, row.OrgID, wantOrgIDs[i])
		}
	}
}

// TestBuilderIdempotence verifies two builds over an unchanged dataset yield
// identical row sequences.
func TestBuilderIdempotence(t *testing.T) {
	t.Parallel()

	f := acmeFetcher()
	b := NewBuilder(f, "5.5.09.04", WithBuilderLogger(testLogger()))

	first, err := b.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("builds differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

// TestBuilderLimit verifies limit-k semantics: exactly the first k
// organizations are queried and the rest are never fetched.
func TestBuilderLimit(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{
		orgs: []model.Organization{
			{ID: "o1"}, {ID: "o2"}, {ID: "o3"}, {ID: "o4"}, {ID: "o5"},
		},
		usersByOrg: map[string][]model.User{},
	}

	b := NewBuilder(f, "1.0", WithLimit(2), WithConcurrency(1), WithBuilderLogger(testLogger()))
	if _, err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !reflect.DeepEqual(f.fetchedOrgs, []string{"o1", "o2"}) {
		t.Errorf("fetched orgs = %v, want exactly the first two", f.fetchedOrgs)
	}
}

// TestBuilderFailureIsolation verifies a failed user fetch degrades that one
// organization to zero rows without affecting siblings.
func TestBuilderFailureIsolation(t *testing.T) {
	t.Parallel()

	mkUsers := func(org string) []model.User {
		return []model.User{{
			ID:      "u-" + org,
			Devices: []model.Device{{ID: strPtr("d-" + org), UserAgent: strPtr("2.0")}},
		}}
	}
	f := &fakeFetcher{
		orgs: []model.Organization{{ID: "o1"}, {ID: "o2"}, {ID: "o3"}},
		usersByOrg: map[string][]model.User{
			"o1": mkUsers("o1"),
			"o3": mkUsers("o3"),
		},
		usersErr: map[string]error{"o2": errors.New("boom")},
	}

	b := NewBuilder(f, "2.0", WithBuilderLogger(testLogger()))
	rows, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error: %v (per-org failures must not be fatal)", err)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].OrgID != "o1" || rows[1].OrgID != "o3" {
		t.Errorf("rows = %+v, want o1 then o3 with o2 absent", rows)
	}
}

// TestBuilderEmptyAndFailedListing verifies both terminal states yield an
// empty report without error.
func TestBuilderEmptyAndFailedListing(t *testing.T) {
	t.Parallel()

	t.Run("zero organizations", func(t *testing.T) {
		t.Parallel()

		b := NewBuilder(&fakeFetcher{}, "1.0", WithBuilderLogger(testLogger()))
		rows, err := b.Build(context.Background())
		if err != nil {
			t.Fatalf("Build() error: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("expected empty report, got %+v", rows)
		}
	})

	t.Run("organization listing failure collapses to empty", func(t *testing.T) {
		t.Parallel()

		b := NewBuilder(&fakeFetcher{orgsErr: errors.New("boom")}, "1.0", WithBuilderLogger(testLogger()))
		rows, err := b.Build(context.Background())
		if err != nil {
			t.Fatalf("Build() error: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("expected empty report, got %+v", rows)
		}
	})
}

// TestBuilderCancellation verifies a cancelled context is fatal, unlike
// per-scope fetch failures.
func TestBuilderCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBuilder(&fakeFetcher{orgsErr: context.Canceled}, "1.0", WithBuilderLogger(testLogger()))
	if _, err := b.Build(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
