// Package snapshotctl implements the snapshotctl command line tool, which inspects and maintains
// the reference artifacts of a file-system snapshot store: listing references and failure
// artifacts, showing their differences, accepting failures as new references and cleaning up.
package snapshotctl
