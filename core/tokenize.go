package core

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/bmtlab/each/core/config"
	"github.com/bmtlab/each/core/textenc"
)

// Tokenize splits raw input bytes into the ordered token sequence the
// dispatcher will consume. Splitting happens over the fully materialized
// input; delimiter matching needs the whole text anyway.
func Tokenize(raw []byte, cfg *config.Config) ([]string, error) {
	dec, err := textenc.NewDecoder(cfg.Encoding, cfg.ErrorPolicy)
	if err != nil {
		return nil, err
	}

	var parts []string
	if cfg.NullDelimited {
		for _, chunk := range bytes.Split(raw, []byte{0}) {
			part, err := dec.Decode(chunk)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		}
	} else {
		text, err := dec.Decode(raw)
		if err != nil {
			return nil, err
		}
		if len(cfg.Delimiters) > 0 {
			parts = splitAny(text, cfg.Delimiters)
		} else {
			parts = splitLines(text)
		}
	}

	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if cfg.Strip {
			part = strings.TrimSpace(part)
		}
		if part == "" && !cfg.KeepEmpty {
			continue
		}
		tokens = append(tokens, part)
	}
	return tokens, nil
}

// splitAny splits text on any occurrence of any literal delimiter. The
// delimiters are combined into one union pattern so that adjacent differing
// delimiters each produce exactly one boundary.
func splitAny(text string, delimiters []string) []string {
	escaped := make([]string, 0, len(delimiters))
	for _, d := range delimiters {
		if d == "" {
			continue
		}
		escaped = append(escaped, regexp.QuoteMeta(d))
	}
	if len(escaped) == 0 {
		return []string{text}
	}
	return regexp.MustCompile(strings.Join(escaped, "|")).Split(text, -1)
}

// splitLines splits text on \n, \r\n, or bare \r without retaining the
// terminators. A trailing terminator does not produce a final empty part.
func splitLines(text string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			parts = append(parts, text[start:i])
			start = i + 1
		case '\r':
			parts = append(parts, text[start:i])
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}
