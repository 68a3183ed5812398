package report

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/fleetver/fleetver/internal/model"
)

// ErrNoTargetVersion is returned by Build when no target version pattern is
// configured. This is the report's only fatal precondition; it is checked
// before any network activity.
var ErrNoTargetVersion = errors.New("no target version pattern configured")

// defaultConcurrency bounds the user-fetch fan-out when the caller does
// not configure one.
const defaultConcurrency = 4

// Fetcher is the slice of the API client the builder needs.
// Accepting an interface keeps the builder testable against fakes while
// *api.Client satisfies it in production.
type Fetcher interface {
	// Organizations lists all organizations visible to the credential.
	Organizations(ctx context.Context) ([]model.Organization, error)

	// Users lists one organization's users with nested device records.
	Users(ctx context.Context, orgID string) ([]model.User, error)
}

// Builder assembles the version-match report.
//
// Failure semantics: per-scope fetch failures are absorbed, not propagated.
// A failed organization listing means "nothing to process" and yields an
// empty report; a failed user fetch degrades that one organization to zero
// rows without touching its siblings. Only a missing target pattern and
// context cancellation are fatal.
type Builder struct {
	// fetcher performs the remote calls.
	fetcher Fetcher

	// targetVersion is the substring pattern devices are matched against.
	// Matching is case-sensitive containment, deliberately not a version
	// comparison: "5.5.09" selects the whole 5.5.09.x family.
	targetVersion string

	// limit caps how many leading organizations are queried for users.
	// Zero means all. Organizations past the limit are never fetched.
	limit int

	// concurrency is the maximum number of user fetches in flight.
	concurrency int

	// logger receives progress at each fetch boundary. This is
	// observability only, never part of the return contract.
	logger *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLimit caps the number of organizations processed, in API-returned
// order. Non-positive values mean no cap.
func WithLimit(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.limit = n
		}
	}
}

// WithConcurrency sets the user-fetch fan-out width. Default is 4.
func WithConcurrency(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBuilderLogger sets a custom logger for progress output.
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a Builder for the given fetcher and target pattern.
func NewBuilder(fetcher Fetcher, targetVersion string, opts ...BuilderOption) *Builder {
	b := &Builder{
		fetcher:       fetcher,
		targetVersion: targetVersion,
		concurrency:   defaultConcurrency,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// Build produces the ordered report rows.
//
// The organization listing completes first. User fetches then fan out with
// at most the configured concurrency; per-organization results are stored
// by index and concatenated afterwards, so rows keep API order at every
// level (organizations, users within an organization, devices within a
// user) no matter how the fetches interleave.
func (b *Builder) Build(ctx context.Context) ([]model.ReportRow, error) {
	if b.targetVersion == "" {
		return nil, ErrNoTargetVersion
	}

	orgs, err := b.fetcher.Organizations(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Absence of organizations is a valid terminal state, not an error.
		b.logger.Warn("organization listing failed, nothing to process", "error", err)
		return []model.ReportRow{}, nil
	}

	if b.limit > 0 && len(orgs) > b.limit {
		b.logger.Info("limiting organizations", "total", len(orgs), "limit", b.limit)
		orgs = orgs[:b.limit]
	}

	b.logger.Info("organizations fetched", "count", len(orgs))
	if len(orgs) == 0 {
		return []model.ReportRow{}, nil
	}

	// Pre-allocated by index so concurrent completion cannot reorder output.
	perOrg := make([][]model.ReportRow, len(orgs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, org := range orgs {
		i, org := i, org
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			users, err := b.fetcher.Users(gctx, org.ID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				// One organization's failure must not abort its siblings.
				b.logger.Warn("user listing failed, organization contributes no rows",
					"org_id", org.ID,
					"error", err,
				)
				return nil
			}

			b.logger.Info("users fetched",
				"org_id", org.ID,
				"count", len(users),
			)

			perOrg[i] = b.matchRows(org, users)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]model.ReportRow, 0)
	for _, orgRows := range perOrg {
		rows = append(rows, orgRows...)
	}

	b.logger.Info("report built",
		"target_version", b.targetVersion,
		"rows", len(rows),
	)
	return rows, nil
}

// matchRows filters one organization's users against the target pattern.
// Users without devices and devices without a reported version contribute
// no rows; neither is an error.
func (b *Builder) matchRows(org model.Organization, users []model.User) []model.ReportRow {
	var rows []model.ReportRow
	for _, user := range users {
		for _, dev := range user.Devices {
			if dev.UserAgent == nil {
				continue
			}
			if !strings.Contains(*dev.UserAgent, b.targetVersion) {
				continue
			}
			rows = append(rows, model.NewReportRow(org, user, dev))
		}
	}
	return rows
}
