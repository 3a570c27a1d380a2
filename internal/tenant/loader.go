package tenant

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/guncelgiris/platform/internal/config"
	"github.com/guncelgiris/platform/internal/site"
)

// loadTenant turns host → *Tenant.  Steps:
//
//  1. Fetch site row (active only).
//  2. Fetch key-value config rows.
//  3. Classify the host once; the flags are host-static.
func loadTenant(ctx context.Context, global *sqlx.DB, host string, adm config.Admin) (*Tenant, error) {
	rec, err := site.ByHost(ctx, global, host)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	cfg, err := site.ConfigBySite(ctx, global, rec.ID)
	if err != nil {
		return nil, err
	}

	return &Tenant{
		Site:   *rec,
		Config: cfg,
		Flags:  Classify(host, adm),
	}, nil
}
