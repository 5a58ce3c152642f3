// Package metainfo maps torrent metainfo documents and tracker responses
// onto the bencode value model.
package metainfo

import (
	"fmt"

	bencode "github.com/multiversx/mx-bencode-go"
)

// Metainfo is the top-level dictionary of a .torrent document.
type Metainfo struct {
	Announce     string     `bencode:"announce"`
	AnnounceList [][]string `bencode:"announce-list"`
	CreationDate int64      `bencode:"creation date,omitempty"`
	Comment      string     `bencode:"comment,omitempty"`
	CreatedBy    string     `bencode:"created by,omitempty"`
	Encoding     string     `bencode:"encoding,omitempty"`
	Info         Info       `bencode:"info"`
}

// Info is the info dictionary of a metainfo document. A single-file torrent
// carries Length (and optionally MD5Sum); a multi-file torrent carries Files.
// The two layouts are mutually exclusive.
type Info struct {
	PieceLength int64
	Pieces      []byte
	Private     *bool
	Name        string
	Length      int64
	MD5Sum      []byte
	Files       []FileInfo
}

// FileInfo describes one file of a multi-file torrent.
type FileInfo struct {
	Name   string `bencode:"name"`
	Length int64  `bencode:"length"`
	MD5Sum []byte `bencode:"md5sum"`
}

// Decode parses a complete metainfo document. The document must hold the
// announce URL and a well-formed info dictionary.
func Decode(data []byte) (*Metainfo, error) {
	decoded := &Metainfo{}
	err := bencode.Unmarshal(decoded, data)
	if err != nil {
		return nil, fmt.Errorf("cannot decode metainfo: %w", err)
	}

	if decoded.Announce == "" {
		return nil, fmt.Errorf("%w: announce", ErrMissingField)
	}
	if decoded.Info.Pieces == nil {
		return nil, fmt.Errorf("%w: info", ErrMissingField)
	}

	return decoded, nil
}

// Encode serializes the document back to its canonical byte form.
func (m *Metainfo) Encode() ([]byte, error) {
	return bencode.Marshal(m)
}

// IsSingleFile returns true for torrents that describe one file in place of
// a files list.
func (i *Info) IsSingleFile() bool {
	return i.Files == nil
}

// IsMultiFile returns true for torrents that carry a files list.
func (i *Info) IsMultiFile() bool {
	return !i.IsSingleFile()
}

// UnmarshalBencodeValue extracts the info dictionary. Unlike the generic
// bridge it is strict: required keys must be present and unknown keys are
// rejected, so a digest of the re-encoded dictionary stays faithful to the
// document it came from.
func (i *Info) UnmarshalBencodeValue(value bencode.Value) error {
	if !value.IsDictionary() {
		return fmt.Errorf("%w: got %s", ErrInvalidInfo, value.Kind())
	}

	seenPieceLength := false
	seenPieces := false
	seenName := false
	seenLength := false

	for key, entry := range value.Entries() {
		var err error
		switch key {
		case "piece length":
			seenPieceLength = true
			err = bencode.FromValue(entry, &i.PieceLength)
		case "pieces":
			seenPieces = true
			err = bencode.FromValue(entry, &i.Pieces)
		case "private":
			private := false
			err = bencode.FromValue(entry, &private)
			i.Private = &private
		case "name":
			seenName = true
			err = bencode.FromValue(entry, &i.Name)
		case "length":
			seenLength = true
			err = bencode.FromValue(entry, &i.Length)
		case "md5sum":
			err = bencode.FromValue(entry, &i.MD5Sum)
		case "files":
			err = bencode.FromValue(entry, &i.Files)
		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, key)
		}

		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
	}

	if !seenPieceLength {
		return fmt.Errorf("%w: piece length", ErrMissingField)
	}
	if !seenPieces {
		return fmt.Errorf("%w: pieces", ErrMissingField)
	}
	if !seenName {
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	if !seenLength && i.Files == nil {
		return fmt.Errorf("%w: length", ErrMissingField)
	}
	if seenLength && i.Files != nil {
		return fmt.Errorf("%w: length and files are mutually exclusive", ErrInvalidInfo)
	}

	return nil
}

// MarshalBencodeValue builds the info dictionary, emitting the single-file
// or multi-file layout depending on which of Length and Files is in use.
func (i Info) MarshalBencodeValue() (bencode.Value, error) {
	entries := map[string]bencode.Value{
		"piece length": bencode.NewInteger(i.PieceLength),
		"pieces":       bencode.NewBinary(append([]byte(nil), i.Pieces...)),
		"name":         bencode.NewText(i.Name),
	}

	if i.Private != nil {
		flag := int64(0)
		if *i.Private {
			flag = 1
		}
		entries["private"] = bencode.NewInteger(flag)
	}

	if i.IsSingleFile() {
		entries["length"] = bencode.NewInteger(i.Length)
		if len(i.MD5Sum) > 0 {
			entries["md5sum"] = bencode.NewBinary(append([]byte(nil), i.MD5Sum...))
		}
	} else {
		files, err := bencode.ToValue(i.Files)
		if err != nil {
			return bencode.Value{}, err
		}
		entries["files"] = files
	}

	return bencode.NewDictionary(entries), nil
}
