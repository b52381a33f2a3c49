package report

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
)

var _ Archiver = GzipArchiver{}

// GzipArchiver compresses a single file with parallel gzip.
type GzipArchiver struct{}

// Archive gzips src into dst. The source file is kept.
func (GzipArchiver) Archive(_ context.Context, src, dst string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", errors.Wrapf(err, "open %s", src)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return "", errors.Wrapf(err, "create %s", dst)
	}
	defer func() { _ = out.Close() }()

	gz := pgzip.NewWriter(out)
	gz.Name = filepath.Base(src)
	if _, err := io.Copy(gz, in); err != nil {
		return "", errors.Wrapf(err, "compress %s", src)
	}
	if err := gz.Close(); err != nil {
		return "", errors.Wrapf(err, "finish gzip stream for %s", dst)
	}
	if err := out.Close(); err != nil {
		return "", errors.Wrapf(err, "close %s", dst)
	}
	return dst, nil
}
