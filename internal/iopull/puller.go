// Package iopull implements the gnpull.Puller interface. It connects to
// the remote and local databases and runs the copy engine for every
// requested record.
package iopull

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnpull/internal/iodb"
	"github.com/gnames/gnpull/internal/ioschema"
	"github.com/gnames/gnpull/internal/iosource"
	"github.com/gnames/gnpull/internal/iostore"
	"github.com/gnames/gnpull/pkg/config"
	"github.com/gnames/gnpull/pkg/copier"
	"github.com/gnames/gnpull/pkg/db"
	"github.com/gnames/gnpull/pkg/gnpull"
	"github.com/gnames/gnpull/pkg/record"
	"github.com/gnames/gnpull/pkg/schema"
)

type puller struct {
	cfg *config.Config

	cat    *schema.Catalog
	remote db.Operator
	local  db.Operator
	src    *iosource.Source
	uow    *iostore.UnitOfWork
}

// New creates a Puller. Connections are opened on first use.
func New(cfg *config.Config) gnpull.Puller {
	return &puller{cfg: cfg}
}

// Pull copies every ID of the model in its own unit of work.
func (p *puller) Pull(
	ctx context.Context,
	model string,
	ids []string,
) (gnpull.Result, error) {
	var res gnpull.Result
	if len(ids) == 0 {
		return res, NoRootsError(model)
	}

	if err := p.loadCatalog(); err != nil {
		return res, err
	}
	if err := p.connectRemote(ctx, p.cat); err != nil {
		return res, err
	}
	if err := p.connectLocal(ctx); err != nil {
		return res, err
	}
	if !p.cat.Has(model) {
		return res, iosource.UnknownModelError(model)
	}
	p.announce()

	start := time.Now()
	engine := copier.New(p.cat, p.src, engineOptions(p.cfg.Copy, p.cat)...)
	base := p.cat.BaseType(model)

	var bar *pb.ProgressBar
	if len(ids) > 1 {
		bar = newProgressBar(len(ids), "Records: ")
		defer bar.Finish()
	}

	for _, v := range ids {
		id := record.NewIdentity(base, parseID(v))
		local, stats, err := engine.CopyIn(ctx, p.uow, id)
		if bar != nil {
			bar.Increment()
		}
		if err != nil {
			res.Failed++
			slog.Error("Cannot copy record", "type", model, "id", v, "error", err)
			if len(ids) == 1 {
				return res, err
			}
			continue
		}

		res.Roots++
		res.Stats.Add(stats)
		slog.Info("Record copied",
			"type", model,
			"id", v,
			"local_id", local.ID,
			"created", stats.Created,
			"updated", stats.Updated,
			"adopted", stats.Adopted,
			"max_depth", stats.MaxDepth,
			"duration", gnfmt.TimeString(stats.Duration.Seconds()),
		)
	}

	p.report(res, time.Since(start))
	if res.Failed > 0 {
		return res, FailedRootsError(res.Failed, len(ids))
	}
	return res, nil
}

func (p *puller) announce() {
	r, l := p.cfg.Remote, p.cfg.Local
	remote := fmt.Sprintf("%s@%s:%d/%s", r.User, r.Host, r.Port, r.Database)
	if r.Driver == "sqlite" {
		remote = r.Path
	}
	gn.Info("Copying from <em>%s</em> to <em>%s@%s:%d/%s</em>",
		remote, l.User, l.Host, l.Port, l.Database)
}

func (p *puller) report(res gnpull.Result, dur time.Duration) {
	dry := ""
	if p.cfg.DryRun {
		dry = " (dry run, nothing saved)"
	}
	gn.Info(`Copied <em>%s</em> of <em>%s</em> records%s
Local records created: %s, updated: %s, reused: %s, links: %s
Skipped attributes: %s, max depth: %d
Elapsed time: <em>%s</em>`,
		humanize.Comma(int64(res.Roots)),
		humanize.Comma(int64(res.Roots+res.Failed)),
		dry,
		humanize.Comma(int64(res.Stats.Created)),
		humanize.Comma(int64(res.Stats.Updated)),
		humanize.Comma(int64(res.Stats.Adopted)),
		humanize.Comma(int64(res.Stats.Attached)),
		humanize.Comma(int64(res.Stats.SkippedAttrs)),
		res.Stats.MaxDepth,
		gnfmt.TimeString(dur.Seconds()),
	)
}

// Schema returns the catalog from schema.yaml or a catalog guessed from
// remote tables.
func (p *puller) Schema(
	ctx context.Context,
	fromDB bool,
) (*schema.Catalog, error) {
	if !fromDB {
		if err := p.loadCatalog(); err != nil {
			return nil, err
		}
		return p.cat, nil
	}

	cat := p.cat
	if cat == nil {
		cat, _ = schema.New()
		// the source is bound to the empty catalog, Pull opens its own
		defer p.closeRemote()
	}
	if err := p.connectRemote(ctx, cat); err != nil {
		return nil, err
	}
	tables, err := p.src.Tables(ctx)
	if err != nil {
		return nil, err
	}
	return ioschema.FromTables(tables)
}

func (p *puller) loadCatalog() error {
	if p.cat != nil {
		return nil
	}
	path := p.cfg.SchemaPath()
	cat, err := ioschema.Load(path)
	if err != nil {
		return err
	}
	slog.Info("Schema catalog loaded", "path", path, "models", len(cat.Models))
	p.cat = cat
	return nil
}

// connectRemote opens the remote source. An empty catalog is enough to
// read table names.
func (p *puller) connectRemote(ctx context.Context, cat *schema.Catalog) error {
	if p.src != nil {
		return nil
	}

	opts := []iosource.Option{
		iosource.OptNamespace(namespace(p.cfg.Copy)),
		iosource.OptBatchSize(p.cfg.Remote.BatchSize),
	}

	rcfg := &p.cfg.Remote
	if rcfg.Driver == "sqlite" {
		src, err := iosource.OpenSQLite(rcfg.Path, cat, opts...)
		if err != nil {
			return err
		}
		slog.Info("Remote snapshot opened", "path", rcfg.Path)
		p.src = src
		return nil
	}

	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, rcfg); err != nil {
		return err
	}
	gdb, err := op.GORM()
	if err != nil {
		op.Close()
		return err
	}
	slog.Info("Connected to remote database",
		"host", rcfg.Host, "database", rcfg.Database)
	p.remote = op
	p.src = iosource.NewGORM(gdb, cat, opts...)
	return nil
}

func (p *puller) connectLocal(ctx context.Context) error {
	if p.uow != nil {
		return nil
	}
	lcfg := &p.cfg.Local
	if lcfg.Driver != "postgres" {
		return LocalDriverError(lcfg.Driver)
	}

	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, lcfg); err != nil {
		return err
	}
	p.local = op

	if err := p.checkTables(ctx); err != nil {
		return err
	}

	gdb, err := op.GORM()
	if err != nil {
		return err
	}
	slog.Info("Connected to local database",
		"host", lcfg.Host, "database", lcfg.Database)
	p.uow = iostore.NewUnitOfWork(gdb, p.cat, p.cfg.DryRun)
	return nil
}

// checkTables makes sure every table of the catalog exists locally.
func (p *puller) checkTables(ctx context.Context) error {
	var tables []string
	for _, name := range p.cat.Names() {
		tables = append(tables, p.cat.Table(name))
		edges, err := p.cat.Edges(name)
		if err != nil {
			return err
		}
		for _, e := range edges {
			if e.Kind == record.ManyToMany && !e.Virtual {
				tables = append(tables, e.JoinTable)
			}
		}
	}
	slices.Sort(tables)

	var missing []string
	for _, table := range slices.Compact(tables) {
		ok, err := p.local.TableExists(ctx, table)
		if err != nil {
			return err
		}
		if !ok {
			missing = append(missing, table)
		}
	}
	if len(missing) > 0 {
		return MissingTablesError(missing)
	}
	return nil
}

func (p *puller) closeRemote() {
	if p.src != nil {
		p.src.Close()
		p.src = nil
	}
	if p.remote != nil {
		p.remote.Close()
		p.remote = nil
	}
}

// Close releases all connections.
func (p *puller) Close() error {
	p.closeRemote()
	if p.local != nil {
		p.local.Close()
		p.local = nil
	}
	p.uow = nil
	return nil
}
