package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/rohits-web03/modvault/internal/catalog"
	"github.com/rohits-web03/modvault/internal/config"
	"github.com/rohits-web03/modvault/internal/hash"
	"github.com/rohits-web03/modvault/internal/repositories"
	"github.com/rohits-web03/modvault/internal/utils"
)

const testManifest = `{
  "Name": "Test Pack",
  "Version": "1.0",
  "Archives": [
    {"Hash": "aaaa", "Name": "textures.7z", "Size": 10,
     "State": {"$type": "HttpDownloader, Wabbajack.Lib", "Url": "https://example.com/textures.7z"}},
    {"Hash": "bbbb", "Name": "SkyUI.7z", "Size": 20,
     "State": {"$type": "NexusDownloader, Wabbajack.Lib", "Name": "SkyUI", "Version": "5.2", "ModID": 1, "FileID": 2}},
    {"Hash": "cccc", "Name": "Skyrim.esm", "Size": 30,
     "State": {"$type": "GameFileSourceDownloader, Wabbajack.Lib", "GameFile": "Data/Skyrim.esm"}}
  ]
}`

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func writeModlist(t *testing.T, path string) {
	t.Helper()
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
	if _, err := ew.Write([]byte(testManifest)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestCompareFiles(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		present  []string
		want     Comparison
	}{
		{
			name:     "all present",
			required: []string{"b.7z", "a.7z"},
			present:  []string{"a.7z", "b.7z"},
			want:     Comparison{Satisfied: []string{"a.7z", "b.7z"}},
		},
		{
			name:     "missing and extraneous",
			required: []string{"a.7z", "c.7z"},
			present:  []string{"a.7z", "old.zip"},
			want: Comparison{
				Missing:    []string{"c.7z"},
				Satisfied:  []string{"a.7z"},
				Extraneous: []string{"old.zip"},
			},
		},
		{
			name:     "duplicate requirement counted once",
			required: []string{"a.7z", "a.7z"},
			present:  nil,
			want:     Comparison{Missing: []string{"a.7z"}},
		},
		{
			name:     "empty directory",
			required: nil,
			present:  []string{"x.7z"},
			want:     Comparison{Extraneous: []string{"x.7z"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compareFiles(tt.required, tt.present)
			if !slices.Equal(got.Missing, tt.want.Missing) ||
				!slices.Equal(got.Satisfied, tt.want.Satisfied) ||
				!slices.Equal(got.Extraneous, tt.want.Extraneous) {
				t.Errorf("compareFiles() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDownloadedFilesSkipsMeta(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(first, "a.7z"), "a")
	writeFile(t, filepath.Join(first, "a.7z.meta"), "[General]")
	writeFile(t, filepath.Join(second, "b.zip"), "b")
	if err := os.Mkdir(filepath.Join(second, "nested"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := downloadedFiles([]string{first, second})
	if err != nil {
		t.Fatal(err)
	}
	slices.Sort(files)
	if want := []string{"a.7z", "b.zip"}; !slices.Equal(files, want) {
		t.Errorf("downloadedFiles() = %v, want %v", files, want)
	}

	if _, err := downloadedFiles([]string{filepath.Join(first, "missing")}); err == nil {
		t.Error("expected error for a missing directory")
	}
}

func TestRunValidate(t *testing.T) {
	dir := t.TempDir()
	modlist := filepath.Join(dir, "pack.wabbajack")
	writeModlist(t, modlist)

	downloads := t.TempDir()
	writeFile(t, filepath.Join(downloads, "textures.7z"), "t")
	writeFile(t, filepath.Join(downloads, "stale.7z"), "s")

	var out bytes.Buffer
	err := runValidate(&out, modlist, []string{downloads}, true)
	if err == nil {
		t.Fatal("expected an error while SkyUI.7z is missing")
	}
	report := out.String()
	for _, want := range []string{"Test Pack", "1 missing", "SkyUI.7z", "textures.7z", "stale.7z"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
	if strings.Contains(report, "Skyrim.esm") {
		t.Errorf("game files are not downloads:\n%s", report)
	}

	writeFile(t, filepath.Join(downloads, "SkyUI.7z"), "u")
	out.Reset()
	if err := runValidate(&out, modlist, []string{downloads}, false); err != nil {
		t.Fatalf("runValidate() = %v, want nil", err)
	}
	if strings.Contains(out.String(), "stale.7z") {
		t.Error("extraneous files listed without --all")
	}
}

func TestSubmitURL(t *testing.T) {
	got := submitURL("http://host:8080/", catalog.KindMod, "My Mod 1.0.7z")
	want := "http://host:8080/api/v1/submit/mod/My%20Mod%201.0.7z"
	if got != want {
		t.Errorf("submitURL() = %q, want %q", got, want)
	}
}

func TestUpload(t *testing.T) {
	dir := t.TempDir()
	modPath := filepath.Join(dir, "textures.7z")
	writeFile(t, modPath, "texture bytes")
	modlistPath := filepath.Join(dir, "pack.wabbajack")
	writeModlist(t, modlistPath)

	stored := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claimed := utils.ParseETag(r.Header.Get("If-None-Match"))
		if r.URL.Path == "/api/v1/submit/mod/broken.7z" {
			utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Message: "nope"})
			return
		}
		if stored[r.URL.Path] == claimed {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		body := new(bytes.Buffer)
		if _, err := body.ReadFrom(r.Body); err != nil {
			t.Error(err)
		}
		if hash.Bytes(body.Bytes()) != claimed {
			utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{Message: "hash mismatch"})
			return
		}
		stored[r.URL.Path] = claimed
		utils.JSONResponse(w, http.StatusOK, utils.Payload{Success: true})
	}))
	defer srv.Close()

	ctx := context.Background()
	t.Run("mod uploads then is already present", func(t *testing.T) {
		res, err := upload(ctx, srv.Client(), srv.URL, modPath)
		if err != nil || res != uploaded {
			t.Fatalf("first upload = %q, %v", res, err)
		}
		res, err = upload(ctx, srv.Client(), srv.URL, modPath)
		if err != nil || res != alreadyPresent {
			t.Fatalf("second upload = %q, %v", res, err)
		}
	})

	t.Run("modlist goes to the modlist route", func(t *testing.T) {
		if _, err := upload(ctx, srv.Client(), srv.URL, modlistPath); err != nil {
			t.Fatal(err)
		}
		if _, ok := stored["/api/v1/submit/modlist/pack.wabbajack"]; !ok {
			t.Errorf("stored = %v", stored)
		}
	})

	t.Run("rejection carries the server message", func(t *testing.T) {
		broken := filepath.Join(dir, "broken.7z")
		writeFile(t, broken, "x")
		_, err := upload(ctx, srv.Client(), srv.URL, broken)
		if err == nil || !strings.Contains(err.Error(), "nope") {
			t.Errorf("upload() error = %v", err)
		}
	})
}

func TestRunBootstrap(t *testing.T) {
	dataDir := t.TempDir()
	modsDir := filepath.Join(dataDir, string(repositories.BucketMods))
	if err := os.MkdirAll(modsDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(modsDir, "textures.7z"), "texture bytes")
	writeFile(t, filepath.Join(modsDir, "textures.7z.meta"), "[General]")

	cfg := config.Config{DataDir: dataDir, StorageBackend: "r2", BootstrapWorkers: 2}
	report, err := runBootstrap(context.Background(), cfg, catalog.ScopeMods)
	if err != nil {
		t.Fatal(err)
	}
	if report.Scanned != 1 || report.Ingested != 1 {
		t.Errorf("report = %+v", report)
	}

	again, err := runBootstrap(context.Background(), cfg, catalog.ScopeAll)
	if err != nil {
		t.Fatal(err)
	}
	if again.Scanned != 1 || len(again.Failures) != 0 || again.Duplicates != 0 {
		t.Errorf("second run report = %+v", again)
	}

	if _, err := runBootstrap(context.Background(), cfg, catalog.Scope("everything")); err == nil {
		t.Error("expected an error for an unknown scope")
	}
}
