package wabbajack

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Kind names an archive source variant.
type Kind string

const (
	KindNexus          Kind = "NexusDownloader"
	KindHTTP           Kind = "HttpDownloader"
	KindGameFileSource Kind = "GameFileSourceDownloader"
	KindWabbajackCDN   Kind = "WabbajackCDNDownloader"
	KindManual         Kind = "ManualDownloader"
	KindMega           Kind = "MegaDownloader"
	KindGoogleDrive    Kind = "GoogleDriveDownloader"
	KindMediaFire      Kind = "MediaFireDownloader"
	KindOAuthForum     Kind = "OAuthForumDownloader"
	KindUnknown        Kind = "UnknownDownloader"
)

// typeTags maps the manifest "$type" discriminator to a variant.
var typeTags = map[string]Kind{
	"NexusDownloader, Wabbajack.Lib":              KindNexus,
	"HttpDownloader, Wabbajack.Lib":               KindHTTP,
	"GameFileSourceDownloader, Wabbajack.Lib":     KindGameFileSource,
	"WabbajackCDNDownloader+State, Wabbajack.Lib": KindWabbajackCDN,
	"ManualDownloader, Wabbajack.Lib":             KindManual,
	"MegaDownloader, Wabbajack.Lib":               KindMega,
	"GoogleDriveDownloader, Wabbajack.Lib":        KindGoogleDrive,
	"MediaFireDownloader+State, Wabbajack.Lib":    KindMediaFire,
	"LoversLabOAuthDownloader, Wabbajack.Lib":     KindOAuthForum,
}

// Source is the declared provenance of one manifest archive. The set of
// implementations is closed; anything unrecognized decodes as *UnknownDownloader.
type Source interface {
	Kind() Kind
	// RequiresDownload reports whether the user has to obtain the bytes.
	// Only content shipped with the base game is exempt.
	RequiresDownload() bool
	DisplayName() (string, bool)
	DisplayVersion() (string, bool)
	tag() string
}

// downloaded supplies the conservative defaults shared by most variants.
type downloaded struct{}

func (downloaded) RequiresDownload() bool          { return true }
func (downloaded) DisplayName() (string, bool)    { return "", false }
func (downloaded) DisplayVersion() (string, bool) { return "", false }

type NexusDownloader struct {
	downloaded
	Author      *string `json:"Author,omitempty"`
	Description string  `json:"Description"`
	FileID      uint64  `json:"FileID"`
	GameName    string  `json:"GameName"`
	ImageURL    *string `json:"ImageURL,omitempty"`
	IsNSFW      bool    `json:"IsNSFW"`
	ModID       uint64  `json:"ModID"`
	Name        string  `json:"Name"`
	Version     string  `json:"Version"`
}

func (*NexusDownloader) Kind() Kind                       { return KindNexus }
func (*NexusDownloader) tag() string                      { return "NexusDownloader, Wabbajack.Lib" }
func (s *NexusDownloader) DisplayName() (string, bool)    { return s.Name, true }
func (s *NexusDownloader) DisplayVersion() (string, bool) { return s.Version, true }

type HttpDownloader struct {
	downloaded
	URL     string          `json:"Url"`
	Headers json.RawMessage `json:"Headers,omitempty"`
}

func (*HttpDownloader) Kind() Kind  { return KindHTTP }
func (*HttpDownloader) tag() string { return "HttpDownloader, Wabbajack.Lib" }

// GameFileSourceDownloader points at a file that ships with the game itself.
type GameFileSourceDownloader struct {
	downloaded
	Game        string `json:"Game"`
	GameFile    string `json:"GameFile"`
	GameVersion string `json:"GameVersion"`
	Hash        string `json:"Hash"`
}

func (*GameFileSourceDownloader) Kind() Kind             { return KindGameFileSource }
func (*GameFileSourceDownloader) tag() string            { return "GameFileSourceDownloader, Wabbajack.Lib" }
func (*GameFileSourceDownloader) RequiresDownload() bool { return false }

type WabbajackCDNDownloader struct {
	downloaded
	URL string `json:"Url"`
}

func (*WabbajackCDNDownloader) Kind() Kind  { return KindWabbajackCDN }
func (*WabbajackCDNDownloader) tag() string { return "WabbajackCDNDownloader+State, Wabbajack.Lib" }

type ManualDownloader struct {
	downloaded
	Prompt string `json:"Prompt"`
	URL    string `json:"Url"`
}

func (*ManualDownloader) Kind() Kind  { return KindManual }
func (*ManualDownloader) tag() string { return "ManualDownloader, Wabbajack.Lib" }

type MegaDownloader struct {
	downloaded
	URL string `json:"Url"`
}

func (*MegaDownloader) Kind() Kind  { return KindMega }
func (*MegaDownloader) tag() string { return "MegaDownloader, Wabbajack.Lib" }

type GoogleDriveDownloader struct {
	downloaded
	ID string `json:"Id"`
}

func (*GoogleDriveDownloader) Kind() Kind  { return KindGoogleDrive }
func (*GoogleDriveDownloader) tag() string { return "GoogleDriveDownloader, Wabbajack.Lib" }

type MediaFireDownloader struct {
	downloaded
	URL string `json:"Url"`
}

func (*MediaFireDownloader) Kind() Kind  { return KindMediaFire }
func (*MediaFireDownloader) tag() string { return "MediaFireDownloader+State, Wabbajack.Lib" }

// OAuthForumDownloader is an IPS4 forum download behind an OAuth login
// (LoversLab in practice).
type OAuthForumDownloader struct {
	downloaded
	Author           *string `json:"Author,omitempty"`
	Description      *string `json:"Description,omitempty"`
	IPS4File         *string `json:"IPS4File,omitempty"`
	IPS4Mod          uint64  `json:"IPS4Mod"`
	IPS4URL          string  `json:"IPS4Url"`
	ImageURL         *string `json:"ImageURL,omitempty"`
	IsAttachment     bool    `json:"IsAttachment"`
	IsNSFW           bool    `json:"IsNSFW"`
	Name             *string `json:"Name,omitempty"`
	PrimaryKeyString string  `json:"PrimaryKeyString"`
	URL              string  `json:"URL"`
	Version          *string `json:"Version,omitempty"`
}

func (*OAuthForumDownloader) Kind() Kind  { return KindOAuthForum }
func (*OAuthForumDownloader) tag() string { return "LoversLabOAuthDownloader, Wabbajack.Lib" }

func (s *OAuthForumDownloader) DisplayName() (string, bool) {
	if s.Name == nil {
		return "", false
	}
	return *s.Name, true
}

func (s *OAuthForumDownloader) DisplayVersion() (string, bool) {
	if s.Version == nil {
		return "", false
	}
	return *s.Version, true
}

// UnknownDownloader keeps the original tag and payload of a source this
// package does not recognize.
type UnknownDownloader struct {
	downloaded
	Tag string
	Raw json.RawMessage
}

func (*UnknownDownloader) Kind() Kind    { return KindUnknown }
func (s *UnknownDownloader) tag() string { return s.Tag }

func newSource(k Kind) Source {
	switch k {
	case KindNexus:
		return &NexusDownloader{}
	case KindHTTP:
		return &HttpDownloader{}
	case KindGameFileSource:
		return &GameFileSourceDownloader{}
	case KindWabbajackCDN:
		return &WabbajackCDNDownloader{}
	case KindManual:
		return &ManualDownloader{}
	case KindMega:
		return &MegaDownloader{}
	case KindGoogleDrive:
		return &GoogleDriveDownloader{}
	case KindMediaFire:
		return &MediaFireDownloader{}
	case KindOAuthForum:
		return &OAuthForumDownloader{}
	}
	return nil
}

// ParseSource decodes a "$type"-tagged source object. Unrecognized or missing
// tags yield *UnknownDownloader; only malformed JSON is an error.
func ParseSource(data []byte) (Source, error) {
	var head struct {
		Type string `json:"$type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode archive state: %w", err)
	}

	kind, ok := typeTags[head.Type]
	if !ok {
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		return &UnknownDownloader{Tag: head.Type, Raw: raw}, nil
	}

	src := newSource(kind)
	if err := json.Unmarshal(data, src); err != nil {
		return nil, fmt.Errorf("decode %s state: %w", kind, err)
	}
	return src, nil
}

// MarshalSource encodes a source with its "$type" tag so that ParseSource
// returns an equivalent value.
func MarshalSource(src Source) ([]byte, error) {
	if u, ok := src.(*UnknownDownloader); ok {
		if len(u.Raw) > 0 {
			return u.Raw, nil
		}
		return json.Marshal(map[string]string{"$type": u.Tag})
	}

	body, err := json.Marshal(src)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	tag, err := json.Marshal(src.tag())
	if err != nil {
		return nil, err
	}
	fields["$type"] = tag
	return json.Marshal(fields)
}

// State wraps a Source so it can be carried through JSON documents and
// stored in a text column.
type State struct {
	Source
}

func (s *State) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		s.Source = nil
		return nil
	}
	src, err := ParseSource(data)
	if err != nil {
		return err
	}
	s.Source = src
	return nil
}

func (s State) MarshalJSON() ([]byte, error) {
	if s.Source == nil {
		return []byte("null"), nil
	}
	return MarshalSource(s.Source)
}

func (s State) Value() (driver.Value, error) {
	if s.Source == nil {
		return nil, nil
	}
	b, err := MarshalSource(s.Source)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *State) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		s.Source = nil
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("scan archive state: unsupported type %T", value)
	}
	return s.UnmarshalJSON(data)
}

// RequiresDownload treats a missing source like an unknown one.
func (s State) RequiresDownload() bool {
	if s.Source == nil {
		return true
	}
	return s.Source.RequiresDownload()
}
