package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"animalrescue/internal/utils"
	"animalrescue/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileTableName = "profiles"

var profileColumns = utils.StructTagValues(types.Profile{})

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Profile(ctx context.Context, reviewerID string) (*types.Profile, error) {
	query, args, err := psql().
		Select(profileColumns...).
		From(profileTableName).
		Where(sq.Eq{"id": reviewerID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate profile query: %w", err)
	}

	var profile types.Profile
	err = pgxscan.Get(ctx, r.pool, &profile, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	return &profile, nil
}

// UpsertProfile inserts the profile or, when one already exists for the same
// reviewer, overwrites its organization fields.
func (r *ProfileRepository) UpsertProfile(ctx context.Context, profile *types.Profile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	query, args, err := upsertProfileQuery(profile)
	if err != nil {
		return fmt.Errorf("failed to generate upsert profile query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return nil
}

func upsertProfileQuery(profile *types.Profile) (string, []any, error) {
	return psql().
		Insert(profileTableName).
		Columns(profileColumns...).
		Values(
			profile.ID,
			strings.TrimSpace(profile.Name),
			strings.TrimSpace(profile.Organization),
			strings.TrimSpace(profile.Phone),
			strings.TrimSpace(profile.RegistrationNumber),
			strings.TrimSpace(profile.Address),
			strings.TrimSpace(profile.Description),
			profile.CreatedAt,
			profile.UpdatedAt,
		).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, organization = EXCLUDED.organization, phone = EXCLUDED.phone, registration_number = EXCLUDED.registration_number, address = EXCLUDED.address, description = EXCLUDED.description, updated_at = EXCLUDED.updated_at").
		ToSql()
}
