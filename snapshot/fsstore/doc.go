// Package fsstore is the file-system Artifact Store and the default store of the snaptest package.
//
// Locations are slash-separated paths relative to the store root, as produced by snapshot.ResolvePath.
// Writes are atomic: the payload goes to a hidden temp file in the target directory, which is then
// renamed over the reference. Reading a missing reference reports found == false and no error.
package fsstore
