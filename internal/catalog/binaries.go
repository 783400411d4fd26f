package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	dErrors "aiproxy/pkg/domain-errors"
	"aiproxy/pkg/platform/sentinel"
)

// Supported CLI platforms.
const (
	PlatformWindows    = "win"
	PlatformMacIntel   = "mac-intel"
	PlatformMacMSeries = "mac-m-series"
	PlatformLinux      = "linux"
)

var platforms = []string{PlatformLinux, PlatformMacIntel, PlatformMacMSeries, PlatformWindows}

// placeholderBinary is served when no real build is present for a platform.
var placeholderBinary = []byte("MOCK_CLI_BINARY_PLACEHOLDER_v1.0.0")

// Binary is an open CLI build. Close releases the underlying file, if any.
type Binary struct {
	Filename string
	ModTime  time.Time
	Content  io.ReadSeeker
	closer   io.Closer
}

func (b *Binary) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// Filename is the download name for platform: claude-<platform>, with .exe
// on Windows.
func Filename(platform string) string {
	if platform == PlatformWindows {
		return "claude-" + platform + ".exe"
	}
	return "claude-" + platform
}

// BinaryStore serves CLI builds from a directory, falling back to a
// placeholder when a platform's build is missing.
type BinaryStore struct {
	dir string
}

func NewBinaryStore(dir string) *BinaryStore {
	return &BinaryStore{dir: dir}
}

// Open returns the build for platform. Unknown platforms are a not-found
// domain error.
func (s *BinaryStore) Open(platform string) (*Binary, error) {
	if !slices.Contains(platforms, platform) {
		return nil, dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound,
			fmt.Sprintf("Unknown platform '%s'. Supported: %s", platform, strings.Join(platforms, ", ")))
	}
	name := Filename(platform)

	if s.dir != "" {
		f, err := os.Open(filepath.Join(s.dir, name))
		switch {
		case err == nil:
			info, statErr := f.Stat()
			if statErr == nil && info.Mode().IsRegular() {
				return &Binary{Filename: name, ModTime: info.ModTime(), Content: f, closer: f}, nil
			}
			_ = f.Close()
			if statErr != nil {
				return nil, dErrors.Wrap(statErr, dErrors.CodeInternal, "failed to stat cli binary")
			}
		case !errors.Is(err, fs.ErrNotExist):
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to open cli binary")
		}
	}

	return &Binary{Filename: name, Content: bytes.NewReader(placeholderBinary)}, nil
}
