package fsstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
)

const (
	defaultDirPermissions  fs.FileMode = 0o755
	defaultFilePermissions fs.FileMode = 0o644
	tempFilePrefix                     = "."
	tempFileSuffix                     = ".tmp"

	logMsgArtifactWritten  = "reference artifact written"
	logMsgArtifactRemoved  = "reference artifact removed"
	logMsgArtifactIOFailed = "reference artifact i/o failed"
	logMsgTempCleanup      = "failed to remove temporary file"
	logAttrError           = "error"
	logAttrLocation        = "location"
	logAttrBytes           = "bytes"
	logAttrDurationMS      = "duration_ms"
	logAttrOperation       = "operation"
	operationRead          = "read"
	operationWrite         = "write"
	operationExists        = "exists"
	operationList          = "list"
	operationRemove        = "remove"
)

// ErrEmptyRoot is returned when the store is created without a root directory.
var ErrEmptyRoot = errors.New("store root directory must not be empty")

// Store keeps reference artifacts as plain files below a root directory.
type Store struct {
	root             string
	dirPermissions   fs.FileMode
	filePermissions  fs.FileMode
	logger           snapshot.Logger
	contextualLogger snapshot.ContextualLogger
}

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithLogger sets the logger for the Store.
//
// Debug level: artifacts written and removed
// Error level: i/o failures other than a missing artifact.
func WithLogger(logger snapshot.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger for the Store; it takes precedence over WithLogger.
func WithContextualLogger(logger snapshot.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithPermissions sets the permissions of created directories and files.
func WithPermissions(dirPermissions, filePermissions fs.FileMode) Option {
	return func(s *Store) error {
		s.dirPermissions = dirPermissions
		s.filePermissions = filePermissions

		return nil
	}
}

// New creates a Store rooted at root. The directory is created on the first write.
func New(root string, options ...Option) (Store, error) {
	if strings.TrimSpace(root) == "" {
		return Store{}, ErrEmptyRoot
	}

	s := Store{
		root:            filepath.Clean(root),
		dirPermissions:  defaultDirPermissions,
		filePermissions: defaultFilePermissions,
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	return s, nil
}

// Root returns the root directory of the store.
func (s Store) Root() string {
	return s.root
}

// FilePath returns the file system path of the artifact at location.
func (s Store) FilePath(location string) (string, error) {
	if err := validateLocation(location); err != nil {
		return "", err
	}

	return filepath.Join(s.root, filepath.FromSlash(location)), nil
}

// Exists reports whether an artifact is stored at location.
func (s Store) Exists(ctx context.Context, location string) (bool, error) {
	file, err := s.prepare(ctx, location)
	if err != nil {
		return false, err
	}

	info, statErr := os.Stat(file)
	switch {
	case statErr == nil:
		return info.Mode().IsRegular(), nil
	case errors.Is(statErr, fs.ErrNotExist):
		return false, nil
	default:
		return false, s.ioFailure(ctx, operationExists, location, statErr)
	}
}

// Read loads the artifact at location as a Format of the given kind.
// A missing artifact yields found == false and no error.
func (s Store) Read(
	ctx context.Context,
	location string,
	kind snapshot.Kind,
	fileExtension string,
) (snapshot.Format, bool, error) {

	file, err := s.prepare(ctx, location)
	if err != nil {
		return snapshot.Format{}, false, err
	}

	payload, readErr := os.ReadFile(file)
	if readErr != nil {
		if errors.Is(readErr, fs.ErrNotExist) {
			return snapshot.Format{}, false, nil
		}

		return snapshot.Format{}, false, s.ioFailure(ctx, operationRead, location, readErr)
	}

	format, formatErr := snapshot.NewFormat(kind, payload, fileExtension)
	if formatErr != nil {
		return snapshot.Format{}, false, formatErr
	}

	return format, true, nil
}

// Write stores format at location, creating intermediate directories and replacing an existing artifact.
func (s Store) Write(ctx context.Context, location string, format snapshot.Format) error {
	file, err := s.prepare(ctx, location)
	if err != nil {
		return err
	}

	start := time.Now()

	if mkdirErr := os.MkdirAll(filepath.Dir(file), s.dirPermissions); mkdirErr != nil {
		return s.ioFailure(ctx, operationWrite, location, mkdirErr)
	}

	tempFile := filepath.Join(
		filepath.Dir(file),
		tempFilePrefix+filepath.Base(file)+"."+uuid.NewString()+tempFileSuffix,
	)

	if writeErr := os.WriteFile(tempFile, format.Bytes(), s.filePermissions); writeErr != nil {
		s.removeTemp(ctx, tempFile)
		return s.ioFailure(ctx, operationWrite, location, writeErr)
	}

	if renameErr := os.Rename(tempFile, file); renameErr != nil {
		s.removeTemp(ctx, tempFile)
		return s.ioFailure(ctx, operationWrite, location, renameErr)
	}

	s.logDebug(ctx, logMsgArtifactWritten,
		logAttrLocation, location,
		logAttrBytes, format.Len(),
		logAttrDurationMS, toMilliseconds(time.Since(start)),
	)

	return nil
}

// List returns the locations of all artifacts below dir, sorted. An empty dir lists the whole store.
// A missing directory yields an empty list.
func (s Store) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := s.root
	if dir != "" {
		if err := validateLocation(dir); err != nil {
			return nil, err
		}

		start = filepath.Join(s.root, filepath.FromSlash(dir))
	}

	locations := make([]string, 0)

	walkErr := filepath.WalkDir(start, func(file string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() || isTempFile(entry.Name()) {
			return nil
		}

		relative, relErr := filepath.Rel(s.root, file)
		if relErr != nil {
			return relErr
		}

		locations = append(locations, filepath.ToSlash(relative))

		return nil
	})

	if walkErr != nil {
		if errors.Is(walkErr, fs.ErrNotExist) {
			return []string{}, nil
		}

		return nil, s.ioFailure(ctx, operationList, dir, walkErr)
	}

	slices.Sort(locations)

	return locations, nil
}

// Remove deletes the artifact at location. Removing a missing artifact is not an error.
// Directories left empty below the store root are removed as well.
func (s Store) Remove(ctx context.Context, location string) error {
	file, err := s.prepare(ctx, location)
	if err != nil {
		return err
	}

	if removeErr := os.Remove(file); removeErr != nil && !errors.Is(removeErr, fs.ErrNotExist) {
		return s.ioFailure(ctx, operationRemove, location, removeErr)
	}

	s.pruneEmptyDirs(path.Dir(location))
	s.logDebug(ctx, logMsgArtifactRemoved, logAttrLocation, location)

	return nil
}

func (s Store) prepare(ctx context.Context, location string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	return s.FilePath(location)
}

// pruneEmptyDirs removes empty directories from dir up to, but excluding, the root.
func (s Store) pruneEmptyDirs(dir string) {
	for dir != "." && dir != "/" && dir != "" {
		if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(dir))); err != nil {
			return
		}

		dir = path.Dir(dir)
	}
}

func (s Store) removeTemp(ctx context.Context, tempFile string) {
	if err := os.Remove(tempFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		if s.contextualLogger != nil {
			s.contextualLogger.WarnContext(ctx, logMsgTempCleanup, logAttrError, err.Error(), logAttrLocation, tempFile)
		} else if s.logger != nil {
			s.logger.Warn(logMsgTempCleanup, logAttrError, err.Error(), logAttrLocation, tempFile)
		}
	}
}

// ioFailure logs an i/o error and wraps it with snapshot.ErrArtifactIO.
func (s Store) ioFailure(ctx context.Context, operation, location string, err error) error {
	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, logMsgArtifactIOFailed,
			logAttrError, err.Error(), logAttrOperation, operation, logAttrLocation, location)
	} else if s.logger != nil {
		s.logger.Error(logMsgArtifactIOFailed,
			logAttrError, err.Error(), logAttrOperation, operation, logAttrLocation, location)
	}

	return errors.Join(snapshot.ErrArtifactIO, err)
}

func (s Store) logDebug(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, msg, args...)
	} else if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func validateLocation(location string) error {
	if location == "" || strings.Contains(location, `\`) || !filepath.IsLocal(filepath.FromSlash(location)) {
		return fmt.Errorf("%w: %q", snapshot.ErrInvalidLocation, location)
	}

	return nil
}

func isTempFile(name string) bool {
	return strings.HasPrefix(name, tempFilePrefix) && strings.HasSuffix(name, tempFileSuffix)
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

var (
	_ snapshot.Store       = Store{}
	_ snapshot.FileLocator = Store{}
	_ snapshot.Remover     = Store{}
)
