package site

import (
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"git.home.luguber.info/inful/loki/internal/foundation/errors"
	"git.home.luguber.info/inful/loki/internal/logfields"
	"git.home.luguber.info/inful/loki/internal/metrics"
)

const assetsDir = "assets"

func assetPath(rel string) string {
	return path.Join(assetsDir, rel)
}

// assetStore copies files from <source>/assets to <dest>/assets on first reference.
type assetStore struct {
	source   string
	dest     string
	logger   *slog.Logger
	recorder metrics.Recorder
	copied   map[string]bool
}

func newAssetStore(source, dest string, logger *slog.Logger, recorder metrics.Recorder) *assetStore {
	return &assetStore{
		source:   source,
		dest:     dest,
		logger:   logger,
		recorder: recorder,
		copied:   make(map[string]bool),
	}
}

func (a *assetStore) sourcePath(rel string) (string, bool) {
	if rel == "" || !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", false
	}
	return filepath.Join(a.source, assetsDir, filepath.FromSlash(rel)), true
}

// Exists reports whether rel names a regular file inside the asset directory.
func (a *assetStore) Exists(rel string) bool {
	src, ok := a.sourcePath(rel)
	if !ok {
		return false
	}
	info, err := os.Stat(src)
	return err == nil && info.Mode().IsRegular()
}

// Copy copies rel unless an earlier reference already did.
func (a *assetStore) Copy(rel string) error {
	if a.copied[rel] {
		return nil
	}
	src, ok := a.sourcePath(rel)
	if !ok || !a.Exists(rel) {
		return errors.ReferenceError("error copying file: %s doesn't exist", filepath.Join(a.source, assetsDir, rel)).
			WithContext("asset", rel).
			Build()
	}
	dst := filepath.Join(a.dest, assetsDir, filepath.FromSlash(rel))

	n, err := copyFile(src, dst)
	if err != nil {
		return errors.FileSystemError(err, "error copying file %s", src).Build()
	}
	a.copied[rel] = true
	a.recorder.IncAssetsCopied(n)
	a.logger.Debug("Copied asset",
		logfields.Source(src),
		logfields.Dest(dst),
		logfields.Bytes(humanize.Bytes(uint64(n))))
	return nil
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}
