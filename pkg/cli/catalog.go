package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/nomagicln/seedgen/pkg/catalog"
	"github.com/nomagicln/seedgen/pkg/config"
	"github.com/nomagicln/seedgen/pkg/schema"
)

// BuildRegistry creates a registry holding the builtin generators plus the
// component schemas of every document listed in cfg. Components that cannot
// be compiled are logged and left out; a document that cannot be loaded is
// an error.
func BuildRegistry(ctx context.Context, mgr *config.Manager, cfg *config.Config, loader *schema.Loader, logger *slog.Logger) (*catalog.Registry, error) {
	registry := catalog.NewDefaultRegistry()

	for _, src := range cfg.Schemas {
		source := mgr.ResolveSource(src.Source)
		logger.Debug("loading schema document", "name", src.Name, "source", source)

		doc, err := loader.Load(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("failed to load schema '%s': %w", src.Name, err)
		}

		report, err := registry.RegisterDocument(src.Name, doc, src.Components...)
		if err != nil {
			return nil, fmt.Errorf("failed to register schema '%s': %w", src.Name, err)
		}

		skipped := make([]string, 0, len(report.Skipped))
		for name := range report.Skipped {
			skipped = append(skipped, name)
		}
		sort.Strings(skipped)
		for _, name := range skipped {
			logger.Warn("skipping component schema", "schema", src.Name, "component", name, "reason", report.Skipped[name])
		}

		logger.Debug("registered schema document", "name", src.Name, "generators", len(report.Registered))
	}

	return registry, nil
}
