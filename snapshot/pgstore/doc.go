// Package pgstore keeps reference artifacts in a PostgreSQL table instead of files.
//
// It fits setups where references are shared between machines without committing them,
// for example when snapshot tests run against many environments. Artifacts are addressed by
// the same slash-separated locations the file-system store uses, so both stores are interchangeable.
//
// The table is created with CreateTable:
//
//	CREATE TABLE IF NOT EXISTS snapshot_references (
//		location       TEXT PRIMARY KEY,
//		kind           TEXT NOT NULL,
//		payload        BYTEA NOT NULL,
//		file_extension TEXT NOT NULL,
//		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
package pgstore
