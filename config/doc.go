// Package config loads the run-wide settings of the snapshot engine from the environment
// and from YAML or TOML files.
//
// Environment variables:
//
//	SNAPSHOT_CONFIG            path of a .yaml, .yml or .toml file loaded before the variables below
//	SNAPSHOT_RECORD            record references instead of comparing ("true"/"false")
//	SNAPSHOT_RECORD_SEVERITY   "fail" (default) or "warn"
//	SNAPSHOT_DIFF_TOOL         diff tool command, e.g. "ksdiff" or "code --diff"
//	SNAPSHOT_LAUNCH_DIFF_TOOL  launch the diff tool on mismatch instead of only printing the command
//	SNAPSHOT_DIR               reference directory, default "testdata/__snapshots__"
//	SNAPSHOT_FAILURE_DIR       failure directory below SNAPSHOT_DIR, default "__failures__"
//	SNAPSHOT_TIMEOUT           timeout of deferred snapshot production, default "5s"
//	SNAPSHOT_PERSIST_FAILURES  keep mismatching candidates for inspection, default "true"
package config
