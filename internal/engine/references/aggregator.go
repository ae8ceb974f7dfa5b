package references

import (
	"context"
	"depgraph/internal/core/errors"
	"depgraph/internal/core/ports"
	"depgraph/internal/engine/parser"
	"depgraph/internal/shared/observability"
	"log/slog"
)

// Aggregator attaches grouped usage locations to exported symbols.
type Aggregator struct {
	service ports.ReferenceService
}

func NewAggregator(service ports.ReferenceService) *Aggregator {
	if service == nil {
		service = NoopService{}
	}
	return &Aggregator{service: service}
}

// Attach looks up references for each export in turn and stores them grouped
// by file. A failed or empty lookup leaves an export with no references.
func (a *Aggregator) Attach(ctx context.Context, exports []*parser.ExportRecord, source []byte, filePath string) {
	var lines []string
	for _, exp := range exports {
		exp.References = parser.ReferenceGroups{}

		pos := exp.Position
		if pos == nil {
			if lines == nil {
				lines = splitLines(source)
			}
			pos = FindDeclarationPosition(lines, exp.Name, filePath)
		}
		if pos == nil {
			slog.Warn("export declaration not found", "file", filePath, "symbol", exp.Name)
			observability.ReferenceLookupsTotal.WithLabelValues("position_miss").Inc()
			continue
		}

		locs, err := a.service.FindReferences(ctx, filePath, *pos)
		if err != nil {
			err = errors.AddContext(errors.AddContext(err, errors.CtxSymbol, exp.Name), errors.CtxPath, filePath)
			slog.Warn("reference lookup failed", "error", err)
			observability.ReferenceLookupsTotal.WithLabelValues("error").Inc()
			continue
		}
		if len(locs) == 0 {
			observability.ReferenceLookupsTotal.WithLabelValues("empty").Inc()
			continue
		}

		exp.References = parser.GroupReferences(locs)
		observability.ReferenceLookupsTotal.WithLabelValues("found").Inc()
	}
}
