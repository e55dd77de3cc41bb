package iopull

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/gnames/gnpull/pkg/config"
	"github.com/gnames/gnpull/pkg/copier"
	"github.com/gnames/gnpull/pkg/record"
	"github.com/gnames/gnpull/pkg/schema"
)

// engineOptions converts the copy section of the configuration to
// options of the copy engine.
func engineOptions(cfg config.CopyConfig, cat *schema.Catalog) []copier.Option {
	var res []copier.Option

	models := make([]string, 0, len(cfg.Reuse))
	for k := range cfg.Reuse {
		models = append(models, k)
	}
	slices.Sort(models)
	for _, model := range models {
		attrs := splitAttrs(cfg.Reuse[model])
		if len(attrs) == 0 {
			continue
		}
		res = append(res, copier.OptReuse(model, copier.AttributeFinder(attrs...)))
	}

	for model, names := range cfg.Exclude {
		res = append(res, copier.OptExclude(model, names...))
	}

	res = append(res,
		copier.OptIgnoreModel(cfg.IgnoreModel...),
		copier.OptUpdateLocalModel(cfg.UpdateLocalModel...),
		copier.OptUpdateOptionalLocalModel(cfg.UpdateOptionalLocalModel...),
		copier.OptNamespace(namespace(cfg)),
	)

	if cat != nil {
		for _, model := range cat.Names() {
			res = append(res, copier.OptAfterEach(model, logCopied))
		}
	}
	return res
}

func namespace(cfg config.CopyConfig) record.Namespace {
	return record.Namespace{Prefix: cfg.TypePrefix, Map: cfg.TypeMap}
}

// splitAttrs reads a comma-separated list of attributes.
func splitAttrs(s string) []string {
	var res []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			res = append(res, v)
		}
	}
	return res
}

func logCopied(
	_ context.Context,
	local *record.Local,
	src *record.Source,
) error {
	slog.Debug("copied record",
		"type", local.Type,
		"id", local.ID,
		"source_type", src.Model,
		"source_id", src.ID,
	)
	return nil
}

// parseID converts integer IDs given on the command line to int64, so
// they match IDs read from the database. Other IDs stay strings.
func parseID(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return s
}
