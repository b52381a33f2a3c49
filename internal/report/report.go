// Package report exports orders as an archived JSON bundle with an audit
// trail.
package report

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/kart-orders/internal/domain/order"
)

// ErrInvalidArgument is returned for missing export parameters.
var ErrInvalidArgument = errors.New("invalid argument")

// Document is the data written to a bundle.
type Document struct {
	GeneratedAt time.Time
	Orders      []*order.Order
}

// Writer writes a document into dir and returns the written file path.
type Writer interface {
	Write(ctx context.Context, doc *Document, dir, baseName string) (string, error)
}

// Archiver compresses src into dst and returns the archive path.
type Archiver interface {
	Archive(ctx context.Context, src, dst string) (string, error)
}

// AuditLog records completed exports.
type AuditLog interface {
	Exported(ctx context.Context, archivePath string, orders int)
}

// Exporter writes, archives and audits report bundles.
type Exporter struct {
	writer   Writer
	archiver Archiver
	audit    AuditLog
	now      func() time.Time
}

// NewExporter creates an Exporter. All collaborators are required.
func NewExporter(writer Writer, archiver Archiver, audit AuditLog) (*Exporter, error) {
	switch {
	case writer == nil:
		return nil, errors.Wrap(ErrInvalidArgument, "writer is nil")
	case archiver == nil:
		return nil, errors.Wrap(ErrInvalidArgument, "archiver is nil")
	case audit == nil:
		return nil, errors.Wrap(ErrInvalidArgument, "audit log is nil")
	}
	return &Exporter{
		writer:   writer,
		archiver: archiver,
		audit:    audit,
		now:      time.Now,
	}, nil
}

// Export writes <dir>/<baseName>.json, archives it to
// <dir>/<baseName>.json.gz and records the export. It returns the archive
// path.
func (e *Exporter) Export(ctx context.Context, orders []*order.Order, dir, baseName string) (string, error) {
	if dir == "" {
		return "", errors.Wrap(ErrInvalidArgument, "output dir is empty")
	}
	if baseName == "" {
		return "", errors.Wrap(ErrInvalidArgument, "base name is empty")
	}

	doc := &Document{
		GeneratedAt: e.now().UTC(),
		Orders:      orders,
	}
	jsonPath, err := e.writer.Write(ctx, doc, dir, baseName)
	if err != nil {
		return "", errors.Wrap(err, "write document")
	}

	archivePath, err := e.archiver.Archive(ctx, jsonPath, jsonPath+".gz")
	if err != nil {
		return "", errors.Wrap(err, "archive document")
	}

	e.audit.Exported(ctx, archivePath, len(orders))
	return archivePath, nil
}
