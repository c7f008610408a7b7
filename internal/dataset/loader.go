package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "f1insights/internal/errors"
	"f1insights/internal/infrastructure"
)

// Load reads, cleans and validates the nine dataset files in dir. Any
// missing or malformed file fails the whole load.
func Load(ctx context.Context, dir string) (*Tables, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, apperrors.NewStorageError("dataset directory unavailable", err).
			WithContext("dir", dir)
	}
	if !info.IsDir() {
		return nil, apperrors.NewStorageError("dataset path is not a directory", nil).
			WithContext("dir", dir)
	}
	return LoadFS(ctx, os.DirFS(dir))
}

// LoadFS is Load over an arbitrary file system. The files are read
// concurrently; the first failure cancels the rest.
func LoadFS(ctx context.Context, fsys fs.FS) (*Tables, error) {
	logger := infrastructure.LoggerFromContext(ctx)
	start := time.Now()

	var (
		mu  sync.Mutex
		raw = make(map[string]*Table, len(Specs))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, spec := range Specs {
		g.Go(func() error {
			t, err := loadOne(gctx, fsys, spec)
			if err != nil {
				return err
			}
			mu.Lock()
			raw[spec.Name] = t
			mu.Unlock()

			logger.DebugContext(gctx, "dataset loaded",
				slog.String("dataset", spec.Name),
				slog.Int("rows", t.Len()),
				slog.Int("columns", len(t.Columns)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.ErrorContext(ctx, "dataset load failed", slog.String("error", err.Error()))
		return nil, err
	}

	tables := FromTables(raw)
	logger.InfoContext(ctx, "datasets loaded",
		slog.Int("datasets", len(raw)),
		slog.Int("results", len(tables.Results)),
		slog.Duration("duration", time.Since(start)))
	return tables, nil
}

func loadOne(ctx context.Context, fsys fs.FS, spec Spec) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := fsys.Open(spec.FileName())
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("cannot open %s", spec.FileName()), err).
			WithContext("dataset", spec.Name)
	}
	defer f.Close()

	raw, err := ReadCSV(spec.Name, f)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("malformed %s", spec.FileName()), err).
			WithContext("dataset", spec.Name)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cleaned := Clean(raw)
	if err := spec.Validate(cleaned); err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("malformed %s", spec.FileName()), err).
			WithContext("dataset", spec.Name)
	}
	return cleaned, nil
}

// IsMissingFile reports whether err was caused by an absent dataset file
func IsMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
