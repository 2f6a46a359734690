package export

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"skej/src-cal/engine"
)

// One exported event row. The series token is carried so a reader can tell
// which events were born from the same recurrence expansion.
type EventRow struct {
	bun.BaseModel `bun:"table:events"`

	ID          string `bun:"id,pk,notnull"`
	Subject     string `bun:"subject,notnull"`
	StartUnix   int64  `bun:"start_unix,notnull"`
	EndUnix     int64  `bun:"end_unix,notnull"`
	Description string `bun:"description"`
	Location    string `bun:"location"`
	Status      string `bun:"status,notnull"`
	SeriesToken string `bun:"series_token"`
}

// SQLite writes a one-shot snapshot of the calendar into a SQLite file at
// path. The file is never read back by this program; it exists for external
// tooling.
func SQLite(ctx context.Context, eng *engine.Engine, path string) error {
	sqldb, err := sql.Open(sqliteshim.ShimName, path+"?mode=rwc")
	if err != nil {
		return fmt.Errorf("export.SQLite: can't open %q: %w", path, err)
	}
	defer sqldb.Close()
	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.NewCreateTable().
		Model((*EventRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("export.SQLite: can't create schema: %w", err)
	}

	events := eng.AllEvents()
	if len(events) == 0 {
		return nil
	}
	rows := make([]EventRow, 0, len(events))
	for _, ev := range events {
		row := EventRow{
			ID:          string(ev.ID()),
			Subject:     ev.Subject(),
			StartUnix:   ev.Start().Unix(),
			EndUnix:     ev.End().Unix(),
			Description: ev.Description(),
			Location:    ev.Location(),
			Status:      string(ev.Status()),
		}
		if token, ok := eng.SeriesOf(ev.ID()); ok {
			row.SeriesToken = string(token)
		}
		rows = append(rows, row)
	}
	if _, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("subject = EXCLUDED.subject").
		Set("start_unix = EXCLUDED.start_unix").
		Set("end_unix = EXCLUDED.end_unix").
		Set("description = EXCLUDED.description").
		Set("location = EXCLUDED.location").
		Set("status = EXCLUDED.status").
		Set("series_token = EXCLUDED.series_token").
		Exec(ctx); err != nil {
		return fmt.Errorf("export.SQLite: can't insert events: %w", err)
	}
	return nil
}
