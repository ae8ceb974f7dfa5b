package references

import (
	"context"
	"depgraph/internal/engine/parser"
)

// NoopService reports no references. Used when no language server is configured.
type NoopService struct{}

func (NoopService) FindReferences(context.Context, string, parser.Location) ([]parser.Location, error) {
	return nil, nil
}

func (NoopService) OpenDocument(context.Context, string, []byte) error { return nil }

func (NoopService) Close() error { return nil }
