package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/rohits-web03/modvault/internal/hash"
	"github.com/rohits-web03/modvault/internal/models"
	"github.com/rohits-web03/modvault/internal/repositories"
	"github.com/rohits-web03/modvault/internal/wabbajack"
)

type fixture struct {
	cat       *repositories.Catalog
	store     *repositories.LocalStore
	engine    *Engine
	validator *Validator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	db, err := repositories.OpenSQLite(filepath.Join(dir, "db.db"), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := repositories.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	store, err := repositories.NewLocalStore(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	cat := repositories.NewCatalog(db)
	return &fixture{
		cat:       cat,
		store:     store,
		engine:    NewEngine(cat, store, zap.NewNop().Sugar()),
		validator: NewValidator(cat, store),
	}
}

func strPtr(s string) *string { return &s }

func httpArchive(name, h string, size int64) wabbajack.Archive {
	return wabbajack.Archive{
		Filename: name, Hash: h, Size: size,
		State: wabbajack.State{Source: &wabbajack.HttpDownloader{URL: "https://example.com/" + name}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		in   ValidationInput
		want Decision
	}{
		{
			name: "missing hash",
			in:   ValidationInput{Filename: "a.7z"},
			want: RejectUserError,
		},
		{
			name: "filename cataloged with other hash",
			in: ValidationInput{ClaimedHash: "H3", Filename: "a.7z",
				ByFilename: &Entry{Hash: "H2", Filename: strPtr("a.7z"), Available: true}},
			want: RejectUserError,
		},
		{
			name: "available under same name",
			in: ValidationInput{ClaimedHash: "H", Filename: "a.7z", ExistsOnDisk: true,
				ByFilename: &Entry{Hash: "H", Filename: strPtr("a.7z"), Available: true},
				ByHash:     &Entry{Hash: "H", Filename: strPtr("a.7z"), Available: true}},
			want: NotModified,
		},
		{
			name: "available under other name",
			in: ValidationInput{ClaimedHash: "H", Filename: "b.7z",
				ByHash: &Entry{Hash: "H", Filename: strPtr("a.7z"), Available: true}},
			want: RejectCorruptedState,
		},
		{
			name: "unavailable but present on disk",
			in: ValidationInput{ClaimedHash: "H", Filename: "a.7z", ExistsOnDisk: true,
				ByHash: &Entry{Hash: "H"}},
			want: RejectNeedsBootstrap,
		},
		{
			name: "unavailable under other name",
			in: ValidationInput{ClaimedHash: "H", Filename: "b.7z",
				ByHash: &Entry{Hash: "H", Filename: strPtr("a.wabbajack")}},
			want: RejectCorruptedState,
		},
		{
			name: "unavailable, resurrect",
			in: ValidationInput{ClaimedHash: "H", Filename: "a.7z",
				ByHash: &Entry{Hash: "H"}},
			want: AcceptUpload,
		},
		{
			name: "orphan on disk",
			in:   ValidationInput{ClaimedHash: "H", Filename: "a.7z", ExistsOnDisk: true},
			want: RejectNeedsBootstrap,
		},
		{
			name: "brand new",
			in:   ValidationInput{ClaimedHash: "H", Filename: "a.7z"},
			want: AcceptUpload,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.in)
			if got.Decision != tt.want {
				t.Errorf("Validate() = %s, want %s", got, tt.want)
			}
			if got.Decision >= RejectUserError && got.Reason == "" {
				t.Error("rejections must carry a reason")
			}
		})
	}
}

func TestUploadScenarios(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const (
		h1 = "AAAAAAAAAAE="
		h2 = "AAAAAAAAAAI="
		h3 = "AAAAAAAAAAM="
	)
	manifest := &wabbajack.Manifest{
		Name: "Pack", Version: "1.0",
		Archives: []wabbajack.Archive{httpArchive("textures.7z", h2, 7)},
	}

	// A: new package
	out, err := f.validator.Check(ctx, KindModlist, "pack.wabbajack", h1)
	if err != nil || out.Decision != AcceptUpload {
		t.Fatalf("A: Check = %s, %v", out, err)
	}
	ml, err := f.engine.IngestPackage(ctx, "pack.wabbajack", h1, 100, manifest)
	if err != nil {
		t.Fatalf("A: IngestPackage: %v", err)
	}
	if !ml.Available || ml.Muted {
		t.Errorf("A: modlist = %+v, want available and unmuted", ml)
	}
	mod, _ := f.cat.Mods.FindByIdentity(ctx, h2, 7)
	if mod == nil || mod.Available() {
		t.Fatalf("A: mod = %+v, want unavailable", mod)
	}
	if n, _ := f.cat.Associations.CountByModlist(ctx, ml.ID); n != 1 {
		t.Errorf("A: %d associations, want 1", n)
	}
	if r, _ := f.engine.Readiness(ctx, ml.ID); r != MissingFiles {
		t.Errorf("A: readiness = %s, want %s", r, MissingFiles)
	}

	// B: the required mod arrives
	out, err = f.validator.Check(ctx, KindMod, "textures.7z", h2)
	if err != nil || out.Decision != AcceptUpload {
		t.Fatalf("B: Check = %s, %v", out, err)
	}
	if _, err := f.engine.IngestContent(ctx, "textures.7z", h2, 7); err != nil {
		t.Fatalf("B: IngestContent: %v", err)
	}
	mod, _ = f.cat.Mods.FindByIdentity(ctx, h2, 7)
	if !mod.Available() {
		t.Errorf("B: mod still unavailable")
	}
	if r, _ := f.engine.Readiness(ctx, ml.ID); r != Ready {
		t.Errorf("B: readiness = %s, want %s", r, Ready)
	}

	// C: same package again
	before, _ := f.cat.Modlists.FindByID(ctx, ml.ID)
	out, err = f.validator.Check(ctx, KindModlist, "pack.wabbajack", h1)
	if err != nil || out.Decision != NotModified {
		t.Fatalf("C: Check = %s, %v", out, err)
	}
	after, _ := f.cat.Modlists.FindByID(ctx, ml.ID)
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Error("C: validation mutated the catalog")
	}

	// D: same name, different content
	out, err = f.validator.Check(ctx, KindMod, "textures.7z", h3)
	if err != nil || out.Decision != RejectUserError {
		t.Fatalf("D: Check = %s, %v", out, err)
	}

	// E: lost forever on an available mod
	_, err = f.engine.ToggleLostForever(ctx, mod.ID)
	if !errors.Is(err, ErrModHasDiskFilename) {
		t.Fatalf("E: ToggleLostForever error = %v, want ErrModHasDiskFilename", err)
	}
	mod, _ = f.cat.Mods.FindByID(ctx, mod.ID)
	if mod.LostForever || !mod.Available() {
		t.Errorf("E: mod changed: %+v", mod)
	}
}

func TestValidatorChecksDiskAndNames(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	staged := filepath.Join(f.store.TempDir(), "orphan")
	if err := os.WriteFile(staged, []byte("orphan"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := f.store.Commit(ctx, repositories.BucketMods, "orphan.7z", staged); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		kind     Kind
		filename string
		hash     string
		want     Decision
	}{
		{"orphan file", KindMod, "orphan.7z", "H", RejectNeedsBootstrap},
		{"path traversal", KindMod, "../x.7z", "H", RejectUserError},
		{"modlist without extension", KindModlist, "pack.zip", "H", RejectUserError},
		{"no hash", KindMod, "new.7z", "", RejectUserError},
		{"new mod", KindMod, "new.7z", "H", AcceptUpload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := f.validator.Check(ctx, tt.kind, tt.filename, tt.hash)
			if err != nil {
				t.Fatal(err)
			}
			if out.Decision != tt.want {
				t.Errorf("Check = %s, want %s", out, tt.want)
			}
		})
	}
}

func TestIngestContentIntegrity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.engine.IngestContent(ctx, "a.7z", "H", 10); err != nil {
		t.Fatal(err)
	}
	_, err := f.engine.IngestContent(ctx, "b.7z", "H", 11)
	if !errors.Is(err, ErrIntegrity) {
		t.Fatalf("error = %v, want ErrIntegrity", err)
	}
	mods, _ := f.cat.Mods.ListByHash(ctx, "H")
	if len(mods) != 1 {
		t.Errorf("%d mods for H, want 1", len(mods))
	}
}

func (f *fixture) put(t *testing.T, bucket repositories.Bucket, name string, content []byte) {
	t.Helper()
	path, err := f.store.Path(bucket, name)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestIngestContentSecondCopy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.put(t, repositories.BucketMods, "a.7z", []byte("0123456789"))

	if _, err := f.engine.IngestContent(ctx, "a.7z", "H", 10); err != nil {
		t.Fatal(err)
	}
	if _, err := f.engine.IngestContent(ctx, "a.7z", "H", 10); err != nil {
		t.Fatalf("re-ingesting the same file: %v", err)
	}
	_, err := f.engine.IngestContent(ctx, "copy.7z", "H", 10)
	if !errors.Is(err, ErrDuplicateContent) {
		t.Fatalf("error = %v, want ErrDuplicateContent", err)
	}
	mod, _ := f.cat.Mods.FindByIdentity(ctx, "H", 10)
	if *mod.PhysicalName != "a.7z" {
		t.Errorf("physical name = %s, want a.7z", *mod.PhysicalName)
	}
}

func TestIngestContentFollowsMovedFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.engine.IngestContent(ctx, "a.7z", "H", 10); err != nil {
		t.Fatal(err)
	}
	// a.7z was never written to storage, so b.7z is where the bytes live now.
	mod, err := f.engine.IngestContent(ctx, "b.7z", "H", 10)
	if err != nil {
		t.Fatalf("IngestContent after move: %v", err)
	}
	if *mod.PhysicalName != "b.7z" {
		t.Errorf("physical name = %s, want b.7z", *mod.PhysicalName)
	}
	if m, _ := f.cat.Mods.FindByPhysicalName(ctx, "a.7z"); m != nil {
		t.Error("a mod still claims the old name")
	}
	mods, _ := f.cat.Mods.List(ctx, repositories.ModsAll)
	if len(mods) != 1 {
		t.Errorf("%d mods, want 1", len(mods))
	}
}

func TestIngestContentReplacesStaleClaim(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// x.7z was cataloged while empty, then the real bytes landed under it.
	empty, err := f.engine.IngestContent(ctx, "x.7z", hash.Bytes(nil), 0)
	if err != nil {
		t.Fatal(err)
	}
	full, err := f.engine.IngestContent(ctx, "x.7z", "H", 10)
	if err != nil {
		t.Fatal(err)
	}

	stored, err := f.cat.Mods.ListStored(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].ID != full.ID {
		t.Fatalf("mods claiming a file = %+v, want only the 10 byte mod", stored)
	}
	if m, _ := f.cat.Mods.FindByID(ctx, empty.ID); m.Available() {
		t.Error("the empty mod still claims x.7z")
	}
}

func TestIngestContentClearsLostForever(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	m := &models.Mod{ContentHash: "H", Size: 3}
	if _, err := f.cat.Mods.Insert(ctx, m); err != nil {
		t.Fatal(err)
	}
	if _, err := f.engine.ToggleLostForever(ctx, m.ID); err != nil {
		t.Fatal(err)
	}
	mod, err := f.engine.IngestContent(ctx, "h.7z", "H", 3)
	if err != nil {
		t.Fatal(err)
	}
	if mod.LostForever || !mod.Available() {
		t.Errorf("mod = %+v, want available and not lost", mod)
	}
	stored, _ := f.cat.Mods.FindByID(ctx, m.ID)
	if stored.LostForever {
		t.Error("lost_forever not cleared in the catalog")
	}
}

func TestIngestPackageIntegrityRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.engine.IngestContent(ctx, "b.7z", "HB", 5); err != nil {
		t.Fatal(err)
	}
	manifest := &wabbajack.Manifest{
		Name: "Broken",
		Archives: []wabbajack.Archive{
			httpArchive("a.7z", "HA", 1),
			httpArchive("b.7z", "HB", 6),
		},
	}
	_, err := f.engine.IngestPackage(ctx, "broken.wabbajack", "HP", 50, manifest)
	if !errors.Is(err, ErrIntegrity) {
		t.Fatalf("error = %v, want ErrIntegrity", err)
	}
	if ml, _ := f.cat.Modlists.FindByFilename(ctx, "broken.wabbajack"); ml != nil {
		t.Error("modlist created despite integrity error")
	}
	if m, _ := f.cat.Mods.FindByIdentity(ctx, "HA", 1); m != nil {
		t.Error("mod created despite integrity error")
	}
}

func TestIngestPackageReingest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	v1 := &wabbajack.Manifest{
		Name: "Pack", Version: "1.0",
		Archives: []wabbajack.Archive{{
			Filename: "mod.7z", Hash: "HM", Size: 4,
			State: wabbajack.State{Source: &wabbajack.NexusDownloader{Name: "Mod", Version: "1.0"}},
		}},
	}
	ml, err := f.engine.IngestPackage(ctx, "pack.wabbajack", "H1", 10, v1)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.cat.Modlists.SetMuted(ctx, ml.ID, true); err != nil {
		t.Fatal(err)
	}

	v2 := &wabbajack.Manifest{
		Name: "Pack", Version: "2.0",
		Archives: []wabbajack.Archive{{
			Filename: "mod-renamed.7z", Hash: "HM", Size: 4,
			State: wabbajack.State{Source: &wabbajack.NexusDownloader{Name: "Mod Renamed", Version: "2.0"}},
		}},
	}
	ml2, err := f.engine.IngestPackage(ctx, "pack.wabbajack", "H2", 11, v2)
	if err != nil {
		t.Fatal(err)
	}
	if ml2.ID != ml.ID {
		t.Errorf("re-ingest created a new modlist: %d != %d", ml2.ID, ml.ID)
	}

	stored, _ := f.cat.Modlists.FindByID(ctx, ml.ID)
	if !stored.Muted {
		t.Error("ingestion unmuted the modlist")
	}
	if stored.ContentHash != "H2" || stored.Version != "2.0" || stored.Size != 11 {
		t.Errorf("modlist not updated: %+v", stored)
	}

	assocs, _ := f.cat.Associations.ListByModlist(ctx, ml.ID)
	if len(assocs) != 1 {
		t.Fatalf("%d associations, want 1", len(assocs))
	}
	a := assocs[0]
	if a.Filename != "mod-renamed.7z" || a.Name == nil || *a.Name != "Mod Renamed" || *a.Version != "2.0" {
		t.Errorf("association not updated: %+v", a.ModAssociation)
	}
}

func TestIngestPackageFilenameIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	m := &wabbajack.Manifest{Name: "Pack"}
	first, err := f.engine.IngestPackage(ctx, "pack.wabbajack", "H1", 10, m)
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.engine.IngestPackage(ctx, "pack-renamed.wabbajack", "H1", 10, m)
	if err != nil {
		t.Fatalf("same content under a new filename: %v", err)
	}
	if first.ID == second.ID || !second.Available {
		t.Errorf("second = %+v, want a new available modlist", second)
	}

	_, err = f.engine.IngestPackage(ctx, "x.wabbajack", "H9", 10, nil)
	if !errors.Is(err, ErrManifest) {
		t.Fatalf("nil manifest error = %v, want ErrManifest", err)
	}
}

func TestSharedContentAcrossModlists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a := &wabbajack.Manifest{Name: "A", Archives: []wabbajack.Archive{httpArchive("shared.7z", "HS", 9)}}
	b := &wabbajack.Manifest{Name: "B", Archives: []wabbajack.Archive{httpArchive("Shared Mod 1.2.7z", "HS", 9)}}
	if _, err := f.engine.IngestPackage(ctx, "a.wabbajack", "HA", 1, a); err != nil {
		t.Fatal(err)
	}
	if _, err := f.engine.IngestPackage(ctx, "b.wabbajack", "HB", 1, b); err != nil {
		t.Fatal(err)
	}
	mods, _ := f.cat.Mods.ListByHash(ctx, "HS")
	if len(mods) != 1 {
		t.Fatalf("%d mods for shared content, want 1", len(mods))
	}
	assocs, _ := f.cat.Associations.ListByMod(ctx, mods[0].ID)
	if len(assocs) != 2 {
		t.Fatalf("%d associations, want 2", len(assocs))
	}
	if assocs[0].Filename == assocs[1].Filename {
		t.Error("each modlist should keep its own declared filename")
	}
}

func TestReadinessOf(t *testing.T) {
	available := models.Mod{PhysicalName: strPtr("x.7z")}
	missing := models.Mod{}
	lost := models.Mod{LostForever: true}
	web := wabbajack.State{Source: &wabbajack.HttpDownloader{}}
	game := wabbajack.State{Source: &wabbajack.GameFileSourceDownloader{}}

	assoc := func(m models.Mod, s wabbajack.State) models.AssociatedMod {
		return models.AssociatedMod{ModAssociation: models.ModAssociation{Source: s}, Mod: m}
	}

	tests := []struct {
		name   string
		assocs []models.AssociatedMod
		want   Readiness
	}{
		{"empty", nil, Ready},
		{"all available", []models.AssociatedMod{assoc(available, web)}, Ready},
		{"one missing", []models.AssociatedMod{assoc(available, web), assoc(missing, web)}, MissingFiles},
		{"lost beats missing", []models.AssociatedMod{assoc(missing, web), assoc(lost, web)}, Uninstallable},
		{"lost with others available", []models.AssociatedMod{assoc(available, web), assoc(lost, web)}, Uninstallable},
		{"game files ignored", []models.AssociatedMod{assoc(available, web), assoc(missing, game)}, Ready},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReadinessOf(tt.assocs); got != tt.want {
				t.Errorf("ReadinessOf() = %s, want %s", got, tt.want)
			}
		})
	}

	required := FilesStillRequired([]models.AssociatedMod{assoc(available, web), assoc(missing, web), assoc(missing, game)})
	if len(required) != 1 {
		t.Errorf("FilesStillRequired returned %d entries, want 1", len(required))
	}
}

func TestToggleLostForever(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	manifest := &wabbajack.Manifest{Name: "Pack", Archives: []wabbajack.Archive{httpArchive("gone.7z", "HG", 2)}}
	ml, err := f.engine.IngestPackage(ctx, "pack.wabbajack", "H1", 10, manifest)
	if err != nil {
		t.Fatal(err)
	}
	mod, _ := f.cat.Mods.FindByIdentity(ctx, "HG", 2)

	toggled, err := f.engine.ToggleLostForever(ctx, mod.ID)
	if err != nil || !toggled.LostForever {
		t.Fatalf("first toggle = %+v, %v", toggled, err)
	}
	if r, _ := f.engine.Readiness(ctx, ml.ID); r != Uninstallable {
		t.Errorf("readiness = %s, want %s", r, Uninstallable)
	}

	toggled, err = f.engine.ToggleLostForever(ctx, mod.ID)
	if err != nil || toggled.LostForever {
		t.Fatalf("second toggle = %+v, %v", toggled, err)
	}
	if r, _ := f.engine.Readiness(ctx, ml.ID); r != MissingFiles {
		t.Errorf("readiness = %s, want %s", r, MissingFiles)
	}

	if _, err := f.engine.ToggleLostForever(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown mod error = %v, want ErrNotFound", err)
	}
}

func TestModlistSummaries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	m := &wabbajack.Manifest{Name: "Pack", Archives: []wabbajack.Archive{
		httpArchive("a.7z", "HA", 1),
		httpArchive("b.7z", "HB", 2),
	}}
	ml, err := f.engine.IngestPackage(ctx, "pack.wabbajack", "H1", 10, m)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.engine.IngestContent(ctx, "a.7z", "HA", 1); err != nil {
		t.Fatal(err)
	}

	summaries, err := f.engine.Modlists(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 {
		t.Fatalf("%d summaries, want 1", len(summaries))
	}
	s := summaries[0]
	if s.ModCount != 2 || s.AvailableCount != 1 || s.Readiness != MissingFiles {
		t.Errorf("summary = %+v", s)
	}

	details, err := f.engine.ModlistDetails(ctx, ml.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(details.Required) != 1 || details.Required[0].Filename != "b.7z" {
		t.Errorf("required = %+v", details.Required)
	}

	if _, err := f.engine.ModlistDetails(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown modlist error = %v, want ErrNotFound", err)
	}
}

func TestCommitUnique(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	h := hash.Bytes([]byte("x"))
	suffix := hash.ToBase64URL(h)

	want := []string{
		"a.7z",
		"a-" + suffix + ".7z",
		"a-" + suffix + "_1.7z",
		"a-" + suffix + "_2.7z",
	}
	for i, w := range want {
		src := filepath.Join(f.store.TempDir(), "stage")
		if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		got, err := CommitUnique(ctx, f.store, repositories.BucketMods, "a.7z", h, src)
		if err != nil {
			t.Fatalf("commit %d: %v", i, err)
		}
		if got != w {
			t.Errorf("commit %d: name = %s, want %s", i, got, w)
		}
	}

	if got := candidateName("README", h, 1); got != "README-"+suffix {
		t.Errorf("candidateName without extension = %s", got)
	}
}

func writePackage(t *testing.T, path string, m *wabbajack.Manifest) {
	t.Helper()
	body, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := zip.NewWriter(f)
	ew, err := w.Create("modlist")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ew.Write(body); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	root := filepath.Dir(f.store.TempDir())

	content := []byte("texture bytes")
	contentHash := hash.Bytes(content)
	modsDir := filepath.Join(root, string(repositories.BucketMods))
	modlistsDir := filepath.Join(root, string(repositories.BucketModlists))

	if err := os.WriteFile(filepath.Join(modsDir, "textures.7z"), content, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(modsDir, "textures.7z.meta"), []byte("[General]"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(modlistsDir, "notes.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(modlistsDir, "broken.wabbajack"), []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	writePackage(t, filepath.Join(modlistsDir, "pack.wabbajack"), &wabbajack.Manifest{
		Name: "Pack", Version: "1.0",
		Archives: []wabbajack.Archive{httpArchive("textures.7z", contentHash, int64(len(content)))},
	})

	b := NewBootstrapper(f.engine, f.store, 2, zap.NewNop().Sugar())
	report, err := b.Run(ctx, ScopeAll)
	if err != nil {
		t.Fatal(err)
	}
	if report.Scanned != 3 || report.Ingested != 2 || len(report.Failures) != 1 {
		t.Fatalf("report = %+v", report)
	}
	if report.Failures[0].Name != "broken.wabbajack" {
		t.Errorf("failure = %+v", report.Failures[0])
	}

	ml, _ := f.cat.Modlists.FindByFilename(ctx, "pack.wabbajack")
	if ml == nil {
		t.Fatal("modlist not cataloged")
	}
	if r, _ := f.engine.Readiness(ctx, ml.ID); r != Ready {
		t.Errorf("readiness = %s, want %s", r, Ready)
	}
	if m, _ := f.cat.Mods.FindByPhysicalName(ctx, "textures.7z.meta"); m != nil {
		t.Error("meta file was cataloged")
	}

	again, err := b.Run(ctx, ScopeAll)
	if err != nil {
		t.Fatal(err)
	}
	if again.Ingested != report.Ingested {
		t.Errorf("second run ingested %d, want %d", again.Ingested, report.Ingested)
	}
	mods, _ := f.cat.Mods.List(ctx, repositories.ModsAll)
	if len(mods) != 1 {
		t.Errorf("%d mods after two runs, want 1", len(mods))
	}
	if b.Last() != again {
		t.Error("Last() should return the latest report")
	}
}

func TestBootstrapReconciles(t *testing.T) {
	content := []byte("texture bytes")
	contentHash := hash.Bytes(content)

	storePath := func(t *testing.T, f *fixture, bucket repositories.Bucket, name string) string {
		t.Helper()
		path, err := f.store.Path(bucket, name)
		if err != nil {
			t.Fatal(err)
		}
		return path
	}
	physical := func(t *testing.T, f *fixture) []string {
		t.Helper()
		mods, err := f.cat.Mods.ListStored(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		var names []string
		for _, m := range mods {
			names = append(names, *m.PhysicalName)
		}
		return names
	}

	tests := []struct {
		name   string
		before func(t *testing.T, f *fixture)
		change func(t *testing.T, f *fixture)
		check  func(t *testing.T, f *fixture, r *Report)
	}{
		{
			name:   "mod renamed on disk",
			before: func(t *testing.T, f *fixture) { f.put(t, repositories.BucketMods, "a.7z", content) },
			change: func(t *testing.T, f *fixture) {
				if err := os.Rename(storePath(t, f, repositories.BucketMods, "a.7z"),
					storePath(t, f, repositories.BucketMods, "b.7z")); err != nil {
					t.Fatal(err)
				}
			},
			check: func(t *testing.T, f *fixture, r *Report) {
				if r.Ingested != 1 || r.Duplicates != 0 || len(r.Missing) != 0 {
					t.Errorf("report = %+v", r)
				}
				if got := physical(t, f); len(got) != 1 || got[0] != "b.7z" {
					t.Errorf("stored mods = %v, want [b.7z]", got)
				}
			},
		},
		{
			name:   "mod removed from disk",
			before: func(t *testing.T, f *fixture) { f.put(t, repositories.BucketMods, "a.7z", content) },
			change: func(t *testing.T, f *fixture) {
				if err := os.Remove(storePath(t, f, repositories.BucketMods, "a.7z")); err != nil {
					t.Fatal(err)
				}
			},
			check: func(t *testing.T, f *fixture, r *Report) {
				if r.Scanned != 0 || len(r.Missing) != 1 || r.Missing[0] != "a.7z" {
					t.Errorf("report = %+v", r)
				}
				mod, _ := f.cat.Mods.FindByIdentity(context.Background(), contentHash, int64(len(content)))
				if mod == nil || mod.Available() {
					t.Errorf("mod = %+v, want cataloged and unavailable", mod)
				}
			},
		},
		{
			name:   "second copy of stored content",
			before: func(t *testing.T, f *fixture) { f.put(t, repositories.BucketMods, "a.7z", content) },
			change: func(t *testing.T, f *fixture) { f.put(t, repositories.BucketMods, "copy.7z", content) },
			check: func(t *testing.T, f *fixture, r *Report) {
				if r.Scanned != 2 || r.Duplicates != 1 || len(r.Failures) != 0 {
					t.Errorf("report = %+v", r)
				}
				if got := physical(t, f); len(got) != 1 || got[0] != "a.7z" {
					t.Errorf("stored mods = %v, want [a.7z]", got)
				}
			},
		},
		{
			name: "modlist renamed on disk",
			before: func(t *testing.T, f *fixture) {
				writePackage(t, storePath(t, f, repositories.BucketModlists, "pack.wabbajack"), &wabbajack.Manifest{Name: "Pack"})
			},
			change: func(t *testing.T, f *fixture) {
				if err := os.Rename(storePath(t, f, repositories.BucketModlists, "pack.wabbajack"),
					storePath(t, f, repositories.BucketModlists, "pack-1.1.wabbajack")); err != nil {
					t.Fatal(err)
				}
			},
			check: func(t *testing.T, f *fixture, r *Report) {
				ctx := context.Background()
				if len(r.Missing) != 1 || r.Missing[0] != "pack.wabbajack" {
					t.Errorf("report = %+v", r)
				}
				old, _ := f.cat.Modlists.FindByFilename(ctx, "pack.wabbajack")
				renamed, _ := f.cat.Modlists.FindByFilename(ctx, "pack-1.1.wabbajack")
				if old == nil || old.Available {
					t.Errorf("old modlist = %+v, want unavailable", old)
				}
				if renamed == nil || !renamed.Available {
					t.Errorf("renamed modlist = %+v, want available", renamed)
				}
			},
		},
		{
			name:   "upload in flight during the scan",
			before: func(t *testing.T, f *fixture) { f.put(t, repositories.BucketMods, "a.7z", content) },
			change: func(t *testing.T, f *fixture) {
				staged := filepath.Join(f.store.TempDir(), "upload-inflight.tmp")
				if err := os.WriteFile(staged, []byte("new bytes"), 0644); err != nil {
					t.Fatal(err)
				}
			},
			check: func(t *testing.T, f *fixture, r *Report) {
				ctx := context.Background()
				if r.Scanned != 1 || len(r.Missing) != 0 {
					t.Errorf("report = %+v", r)
				}
				staged := filepath.Join(f.store.TempDir(), "upload-inflight.tmp")
				if err := f.store.Commit(ctx, repositories.BucketMods, "new.7z", staged); err != nil {
					t.Fatal(err)
				}
				if _, err := f.engine.IngestContent(ctx, "new.7z", hash.Bytes([]byte("new bytes")), 9); err != nil {
					t.Fatal(err)
				}
				if got := physical(t, f); len(got) != 2 {
					t.Errorf("stored mods = %v, want a.7z and new.7z", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			b := NewBootstrapper(f.engine, f.store, 2, zap.NewNop().Sugar())

			tt.before(t, f)
			if _, err := b.Run(ctx, ScopeAll); err != nil {
				t.Fatal(err)
			}
			tt.change(t, f)
			report, err := b.Run(ctx, ScopeAll)
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, f, report)

			settled := physical(t, f)
			again, err := b.Run(ctx, ScopeAll)
			if err != nil {
				t.Fatal(err)
			}
			if len(again.Missing) != 0 || len(again.Failures) != 0 {
				t.Errorf("follow-up run = %+v, want nothing to reconcile", again)
			}
			if got := physical(t, f); !slices.Equal(got, settled) {
				t.Errorf("follow-up run changed stored mods: %v -> %v", settled, got)
			}
		})
	}
}
