// Command generate writes a synthetic multi-observation dataset into a sqlengine database and
// a filesystem blob store, for local runs of vodf-split.
//
//	go run ./testutil/cmd/generate -dsn file:vodf.db -blob-root ./blobdata -observations 20
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite" // sqlite driver for database/sql

	"github.com/vodfgo/vodf/vodf/blobstore/fs"
	"github.com/vodfgo/vodf/vodf/sqlengine"
)

func main() {
	params := DefaultParams()

	dsn := flag.String("dsn", "file:vodf.db", "SQLite file DSN or postgres:// URL")
	blobRoot := flag.String("blob-root", "./blobdata", "Filesystem blob store root for component payloads")
	csvPath := flag.String("csv", "", "Also write all events to this CSV file")
	flag.IntVar(&params.Observations, "observations", params.Observations, "Number of observations")
	flag.IntVar(&params.Bundles, "bundles", params.Bundles, "Validity windows per observation")
	flag.IntVar(&params.Categories, "categories", params.Categories, "Event categories per window, 0 for untagged")
	flag.IntVar(&params.EventsPerBundle, "events", params.EventsPerBundle, "Events per window and category")
	flag.Uint64Var(&params.Seed, "seed", params.Seed, "Random seed")
	flag.Parse()

	ctx := context.Background()

	engine, closeEngine, err := openEngine(ctx, *dsn)
	if err != nil {
		log.Fatalf("open engine: %v", err)
	}
	defer closeEngine()

	store, err := fs.New(*blobRoot)
	if err != nil {
		log.Fatalf("open blob store: %v", err)
	}

	dataset := BuildDataset(params)

	if err = Store(ctx, engine, store, dataset); err != nil {
		log.Fatalf("store dataset: %v", err)
	}

	if *csvPath != "" {
		if err = writeCSV(*csvPath, dataset); err != nil {
			log.Fatalf("write csv: %v", err)
		}
	}

	fmt.Printf("Successfully generated %d observations with %d events\n", len(dataset), dataset.TotalEvents())
}

func openEngine(ctx context.Context, dsn string) (sqlengine.Engine, func(), error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return sqlengine.Engine{}, nil, err
		}

		engine, err := sqlengine.NewEngineFromPGXPool(pool)
		if err != nil {
			pool.Close()
			return sqlengine.Engine{}, nil, err
		}

		return engine, pool.Close, engine.Migrate(ctx)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return sqlengine.Engine{}, nil, err
	}
	db.SetMaxOpenConns(1)

	engine, err := sqlengine.NewEngineFromSQLDB(db, sqlengine.WithDialect(sqlengine.DialectSQLite))
	if err != nil {
		_ = db.Close()
		return sqlengine.Engine{}, nil, err
	}

	return engine, func() { _ = db.Close() }, engine.Migrate(ctx)
}

func writeCSV(path string, dataset Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err = w.Write(csvHeader); err != nil {
		return err
	}

	for _, obs := range dataset {
		for _, ev := range obs.Events {
			if err = w.Write(csvRecord(obs.ObsID, ev)); err != nil {
				return err
			}
		}
	}

	w.Flush()

	return w.Error()
}
