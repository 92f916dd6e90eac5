package lode

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pithecene-io/relay/types"
)

// Artifact file names written by FileSink.
const (
	FragmentsJSONFile    = "messages.json"
	FragmentsMsgpackFile = "messages.msgpack"
	PhraseFile           = "full_message.txt"
)

// Format selects the fragment dump encoding.
type Format string

const (
	// FormatJSON writes an indented JSON array.
	FormatJSON Format = "json"
	// FormatMsgpack writes a msgpack array.
	FormatMsgpack Format = "msgpack"
)

// ParseFormat validates a format name. Empty means json.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatMsgpack:
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("invalid artifact format: %s (must be json or msgpack)", s)
	}
}

// FileSink writes artifacts as plain files into a directory.
//
// Layout:
//
//	<dir>/messages.json      (or messages.msgpack)
//	<dir>/full_message.txt
type FileSink struct {
	dir    string
	format Format
}

// NewFileSink creates a file sink. The directory is created on first write.
func NewFileSink(dir string, format Format) (*FileSink, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifact directory is required")
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	if format == "" {
		format = FormatJSON
	}
	return &FileSink{dir: dir, format: format}, nil
}

// Dir returns the artifact directory.
func (s *FileSink) Dir() string {
	return s.dir
}

// FragmentsPath returns the path of the fragment dump.
func (s *FileSink) FragmentsPath() string {
	if s.format == FormatMsgpack {
		return filepath.Join(s.dir, FragmentsMsgpackFile)
	}
	return filepath.Join(s.dir, FragmentsJSONFile)
}

// PhrasePath returns the path of the phrase file.
func (s *FileSink) PhrasePath() string {
	return filepath.Join(s.dir, PhraseFile)
}

// WriteFragments implements Sink. Missing fields are kept as nulls.
func (s *FileSink) WriteFragments(_ context.Context, fragments types.FragmentSet) error {
	if fragments == nil {
		fragments = types.FragmentSet{}
	}

	var (
		data []byte
		err  error
	)
	if s.format == FormatMsgpack {
		data, err = msgpack.Marshal([]types.Fragment(fragments))
	} else {
		data, err = json.MarshalIndent(fragments, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode fragments: %w", err)
	}

	return s.writeFile(s.FragmentsPath(), data)
}

// WritePhrase implements Sink. The file holds the phrase and a trailing newline.
func (s *FileSink) WritePhrase(_ context.Context, phrase string) error {
	return s.writeFile(s.PhrasePath(), []byte(phrase+"\n"))
}

// Close implements Sink.
func (s *FileSink) Close() error {
	return nil
}

func (s *FileSink) writeFile(path string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return WrapWriteError(err, s.dir)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return WrapWriteError(err, path)
	}
	return nil
}

// ReadFragmentsFile loads a fragment dump written by FileSink.
// The encoding is chosen by file extension; anything but .msgpack is JSON.
func ReadFragmentsFile(path string) (types.FragmentSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapReadError(err, path)
	}

	var set types.FragmentSet
	if strings.EqualFold(filepath.Ext(path), ".msgpack") {
		err = msgpack.Unmarshal(data, &set)
	} else {
		err = json.Unmarshal(data, &set)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return set, nil
}

// Verify FileSink implements Sink.
var _ Sink = (*FileSink)(nil)
