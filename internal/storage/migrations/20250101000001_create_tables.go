package migrations

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/xaenox/comment-triage/internal/models"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		if _, err := db.NewCreateTable().
			Model((*models.Comment)(nil)).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}

		for _, model := range []interface{}{
			(*models.Analysis)(nil),
			(*models.Response)(nil),
		} {
			if _, err := db.NewCreateTable().
				Model(model).
				IfNotExists().
				WithForeignKeys().
				Exec(ctx); err != nil {
				return err
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		for _, model := range []interface{}{
			(*models.Response)(nil),
			(*models.Analysis)(nil),
			(*models.Comment)(nil),
		} {
			if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
				return err
			}
		}

		return nil
	})
}
