// Package textenc decodes raw input bytes into text according to a named
// encoding and a decode-error policy.
package textenc

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Decode-error policies.
const (
	// PolicyStrict fails on bytes that cannot be decoded. For non-UTF-8
	// encodings the failure is detected by scanning the decoded text for
	// U+FFFD, so input that legitimately encodes that rune is rejected too.
	PolicyStrict = "strict"
	// PolicyReplace substitutes U+FFFD for undecodable bytes.
	PolicyReplace = "replace"
	// PolicyRaw adopts input bytes verbatim without transcoding, so invalid
	// sequences survive round-trips into the built command.
	PolicyRaw = "raw"
)

// DecodeError reports input bytes that are not representable under the
// strict policy.
type DecodeError struct {
	Encoding string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("input is not valid %s (use --errors replace or raw)", e.Encoding)
}

// ExitCode returns the process exit code for a decode failure. No code is
// reserved for it, so it maps to the generic failure.
func (e *DecodeError) ExitCode() int { return 1 }

// Decoder converts raw input bytes to text. A nil enc means UTF-8, which is
// validated directly without a transform pass.
type Decoder struct {
	name   string
	policy string
	enc    encoding.Encoding
}

// NewDecoder resolves an IANA encoding name and a policy name into a Decoder.
func NewDecoder(name, policy string) (*Decoder, error) {
	switch policy {
	case PolicyStrict, PolicyReplace, PolicyRaw:
	default:
		return nil, fmt.Errorf("unknown decode-error policy %q", policy)
	}

	d := &Decoder{name: name, policy: policy}
	switch strings.ToLower(name) {
	case "utf-8", "utf8":
		return d, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
	if enc != unicode.UTF8 {
		d.enc = enc
	}
	return d, nil
}

// Decode converts raw bytes to a string under the decoder's policy.
func (d *Decoder) Decode(raw []byte) (string, error) {
	if d.policy == PolicyRaw {
		return string(raw), nil
	}

	if d.enc == nil {
		if utf8.Valid(raw) {
			return string(raw), nil
		}
		if d.policy == PolicyStrict {
			return "", &DecodeError{Encoding: d.name}
		}
		return string(bytes.ToValidUTF8(raw, []byte("�"))), nil
	}

	out, err := d.enc.NewDecoder().Bytes(raw)
	if err != nil {
		if d.policy == PolicyStrict {
			return "", &DecodeError{Encoding: d.name}
		}
		return string(bytes.ToValidUTF8(out, []byte("�"))), nil
	}
	// The transform decoders substitute U+FFFD instead of returning errors,
	// so strictness is recovered by scanning for the replacement rune.
	if d.policy == PolicyStrict && bytes.ContainsRune(out, utf8.RuneError) {
		return "", &DecodeError{Encoding: d.name}
	}
	return string(out), nil
}
