package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rohits-web03/modvault/internal/hash"
	"github.com/rohits-web03/modvault/internal/repositories"
	"github.com/rohits-web03/modvault/internal/wabbajack"
)

// Scope selects which buckets a bootstrap scans.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeModlists Scope = "modlists"
	ScopeMods     Scope = "mods"
)

func (s Scope) buckets() []repositories.Bucket {
	switch s {
	case ScopeModlists:
		return []repositories.Bucket{repositories.BucketModlists}
	case ScopeMods:
		return []repositories.Bucket{repositories.BucketMods}
	default:
		return []repositories.Bucket{repositories.BucketModlists, repositories.BucketMods}
	}
}

type FileError struct {
	Bucket repositories.Bucket `json:"bucket"`
	Name   string              `json:"name"`
	Err    string              `json:"error"`
}

// Report summarizes one bootstrap run.
type Report struct {
	Scope      Scope         `json:"scope"`
	Scanned    int           `json:"scanned"`
	Ingested   int           `json:"ingested"`
	Duplicates int           `json:"duplicates"`
	Failures   []FileError   `json:"failures"`
	// Missing lists cataloged files found gone and marked unavailable.
	Missing  []string      `json:"missing"`
	Duration time.Duration `json:"duration"`
}

// Bootstrapper reconciles stored files with the catalog. Running it again
// over unchanged storage changes nothing.
type Bootstrapper struct {
	engine  *Engine
	store   repositories.BlobStore
	workers int
	log     *zap.SugaredLogger

	mu   sync.Mutex
	last *Report
}

func NewBootstrapper(engine *Engine, store repositories.BlobStore, workers int, log *zap.SugaredLogger) *Bootstrapper {
	if workers < 1 {
		workers = 1
	}
	return &Bootstrapper{engine: engine, store: store, workers: workers, log: log}
}

// Last returns the report of the most recently finished run, if any.
func (b *Bootstrapper) Last() *Report {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// Start runs a bootstrap in the background. The run is detached from ctx's
// cancellation.
func (b *Bootstrapper) Start(ctx context.Context, scope Scope) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		if _, err := b.Run(ctx, scope); err != nil {
			b.log.Errorw("Bootstrap failed", "scope", scope, "error", err)
		}
	}()
}

// Run scans the buckets of scope. Files are hashed concurrently and then
// ingested one by one, each in its own transaction. A file that fails is
// recorded in the report and the scan moves on.
func (b *Bootstrapper) Run(ctx context.Context, scope Scope) (*Report, error) {
	start := time.Now()
	report := &Report{Scope: scope}
	b.log.Infow("Bootstrap started", "scope", scope)

	for _, bucket := range scope.buckets() {
		if err := b.scan(ctx, bucket, report); err != nil {
			return report, err
		}
	}

	report.Duration = time.Since(start)
	b.mu.Lock()
	b.last = report
	b.mu.Unlock()

	b.log.Infow("Bootstrap complete", "scope", scope, "scanned", report.Scanned,
		"ingested", report.Ingested, "duplicates", report.Duplicates,
		"failures", len(report.Failures), "missing", len(report.Missing), "duration", report.Duration)
	return report, nil
}

type scanned struct {
	name     string
	hash     string
	size     int64
	manifest *wabbajack.Manifest
	err      error
}

func (b *Bootstrapper) scan(ctx context.Context, bucket repositories.Bucket, report *Report) error {
	names, err := b.store.List(ctx, bucket)
	if err != nil {
		return storageErr("list "+string(bucket), err)
	}

	present := make(map[string]bool, len(names))
	var files []string
	for _, name := range names {
		present[name] = true
		if skip, why := skipFile(bucket, name); skip {
			b.log.Debugw("Skipping file", "bucket", bucket, "file", name, "reason", why)
			continue
		}
		files = append(files, name)
	}

	results := make([]scanned, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, name := range files {
		g.Go(func() error {
			results[i] = b.inspect(gctx, bucket, name)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		report.Scanned++
		if r.err == nil {
			r.err = b.ingest(ctx, bucket, r)
		}
		switch {
		case r.err == nil:
			report.Ingested++
		case errors.Is(r.err, ErrDuplicateContent):
			report.Duplicates++
			b.log.Warnw("Skipping duplicate file", "bucket", bucket, "file", r.name, "error", r.err)
		default:
			report.Failures = append(report.Failures, FileError{Bucket: bucket, Name: r.name, Err: r.err.Error()})
			b.log.Errorw("Failed to bootstrap file", "bucket", bucket, "file", r.name, "error", r.err)
		}
	}

	missing, err := b.engine.ReleaseMissing(ctx, bucket, present)
	report.Missing = append(report.Missing, missing...)
	return err
}

func (b *Bootstrapper) ingest(ctx context.Context, bucket repositories.Bucket, r scanned) error {
	if bucket == repositories.BucketModlists {
		_, err := b.engine.IngestPackage(ctx, r.name, r.hash, r.size, r.manifest)
		return err
	}
	_, err := b.engine.IngestContent(ctx, r.name, r.hash, r.size)
	return err
}

func skipFile(bucket repositories.Bucket, name string) (bool, string) {
	switch bucket {
	case repositories.BucketModlists:
		if !strings.EqualFold(extension(name), wabbajack.Extension) {
			return true, "not a modlist package"
		}
	case repositories.BucketMods:
		if strings.EqualFold(extension(name), ".meta") {
			return true, "meta file"
		}
	}
	return false, ""
}

// inspect hashes a stored file and, for modlists, reads its manifest.
func (b *Bootstrapper) inspect(ctx context.Context, bucket repositories.Bucket, name string) scanned {
	out := scanned{name: name}
	rc, err := b.store.Open(ctx, bucket, name)
	if err != nil {
		out.err = storageErr("open "+name, err)
		return out
	}
	defer rc.Close()

	if bucket != repositories.BucketModlists {
		out.hash, out.size, out.err = hash.Reader(rc)
		return out
	}

	// Manifests need random access; spool remote blobs to a temp file.
	f, ok := rc.(*os.File)
	if !ok {
		tmp, err := os.CreateTemp(b.store.TempDir(), "bootstrap-*"+wabbajack.Extension)
		if err != nil {
			out.err = storageErr("spool "+name, err)
			return out
		}
		defer os.Remove(tmp.Name())
		defer tmp.Close()
		if _, err := io.Copy(tmp, rc); err != nil {
			out.err = storageErr("spool "+name, err)
			return out
		}
		f = tmp
	}
	out.hash, out.size, out.manifest, out.err = InspectPackage(f)
	return out
}

// InspectPackage hashes a modlist package and reads its manifest.
func InspectPackage(f *os.File) (string, int64, *wabbajack.Manifest, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", 0, nil, err
	}
	h, size, err := hash.Reader(f)
	if err != nil {
		return "", 0, nil, fmt.Errorf("hash %s: %w", f.Name(), err)
	}
	manifest, err := wabbajack.Read(f, size)
	if err != nil {
		return "", 0, nil, fmt.Errorf("%w: %v", ErrManifest, err)
	}
	return h, size, manifest, nil
}
