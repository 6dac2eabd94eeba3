// Package wabbajack reads .wabbajack modlist packages: the manifest of
// required archives and the provenance declared for each of them.
package wabbajack

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"
)

// manifestEntry is the zip member holding the JSON manifest.
const manifestEntry = "modlist"

// Extension identifies modlist packages by filename.
const Extension = ".wabbajack"

var ErrNoManifest = errors.New("package has no modlist manifest")

// Archive is one file a modlist requires.
type Archive struct {
	Hash     string `json:"Hash"`
	Meta     string `json:"Meta"`
	Filename string `json:"Name"`
	Size     int64  `json:"Size"`
	State    State  `json:"State"`
}

func (a Archive) Name() (string, bool) {
	if a.State.Source == nil {
		return "", false
	}
	return a.State.DisplayName()
}

func (a Archive) Version() (string, bool) {
	if a.State.Source == nil {
		return "", false
	}
	return a.State.DisplayVersion()
}

// Manifest is the package metadata and its ordered archive list.
type Manifest struct {
	Archives         []Archive `json:"Archives"`
	Author           string    `json:"Author"`
	Description      string    `json:"Description"`
	Version          string    `json:"Version"`
	GameType         string    `json:"GameType"`
	Image            string    `json:"Image"`
	Name             string    `json:"Name"`
	Readme           string    `json:"Readme"`
	WabbajackVersion string    `json:"WabbajackVersion"`
	Website          string    `json:"Website"`
	IsNSFW           bool      `json:"IsNSFW"`
}

// Load reads the manifest out of the package at path.
func Load(path string) (*Manifest, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open package %s: %w", path, err)
	}
	defer r.Close()

	return fromZip(&r.Reader)
}

// Read reads the manifest from an in-memory or seekable package.
func Read(ra io.ReaderAt, size int64) (*Manifest, error) {
	r, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}
	return fromZip(r)
}

func fromZip(r *zip.Reader) (*Manifest, error) {
	for _, f := range r.File {
		if f.Name != manifestEntry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open manifest: %w", err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read manifest: %w", err)
		}
		return Parse(data)
	}
	return nil, ErrNoManifest
}

// Parse decodes manifest JSON and checks every archive carries an identity.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	for i, a := range m.Archives {
		if a.Hash == "" {
			return nil, fmt.Errorf("archive %d (%q) has no hash", i, a.Filename)
		}
		if a.Size < 0 {
			return nil, fmt.Errorf("archive %d (%q) has negative size", i, a.Filename)
		}
		if a.State.Source == nil {
			m.Archives[i].State.Source = &UnknownDownloader{}
		}
	}
	return &m, nil
}

// RequiredArchives lists the archives a user has to download.
func (m *Manifest) RequiredArchives() []Archive {
	var out []Archive
	for _, a := range m.Archives {
		if a.State.RequiresDownload() {
			out = append(out, a)
		}
	}
	return out
}

// RequiredFiles lists the filenames of RequiredArchives.
func (m *Manifest) RequiredFiles() []string {
	var out []string
	for _, a := range m.RequiredArchives() {
		out = append(out, a.Filename)
	}
	return out
}

// FilesFromUnknownDownloaders lists archives whose provenance was not
// recognized. Required-file reports may be inaccurate when this is non-empty.
func (m *Manifest) FilesFromUnknownDownloaders() []string {
	var out []string
	for _, a := range m.Archives {
		if a.State.Source != nil && a.State.Kind() == KindUnknown {
			out = append(out, a.Filename)
		}
	}
	return out
}
