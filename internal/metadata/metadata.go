// Package metadata implements C2: extraction of a PEP-723-shaped inline
// dependency manifest from a script's leading comment block.
//
// Grounded on spec §4.2's exact delimiter grammar; the block's interior,
// once the "# " prefix is stripped from each line, is itself a small
// TOML document, so it is decoded with the same
// github.com/BurntSushi/toml library C1 uses rather than a second
// hand-rolled parser.
package metadata

import (
	"strings"

	"github.com/BurntSushi/toml"

	pterrors "github.com/pt-run/pt/internal/errors"
)

const (
	blockStart = "# /// script"
	blockEnd   = "# ///"
)

// Metadata is the recognized content of an inline script metadata block.
type Metadata struct {
	Dependencies   []string `toml:"dependencies"`
	RequiresPython string   `toml:"requires-python"`
}

// Parse scans content for the first "# /// script" ... "# ///" block and
// decodes its interior. Returns a zero Metadata, no error, if no block
// is present.
func Parse(content string) (Metadata, error) {
	lines := strings.Split(content, "\n")

	startIdx := -1
	for i, line := range lines {
		if strings.TrimRight(line, " \t\r") == blockStart {
			startIdx = i
			break
		}
	}
	if startIdx < 0 {
		return Metadata{}, nil
	}

	endIdx := -1
	for i := startIdx + 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t\r") == blockEnd {
			endIdx = i
			break
		}
	}
	if endIdx < 0 {
		return Metadata{}, pterrors.Newf(pterrors.CodeConfigMalformed,
			"inline metadata block starting at line %d has no closing %q", startIdx+1, blockEnd)
	}

	var doc strings.Builder
	for i := startIdx + 1; i < endIdx; i++ {
		line := lines[i]
		stripped, ok := stripCommentPrefix(line)
		if !ok {
			return Metadata{}, pterrors.ConfigMalformed("<script>", i+1, "inline metadata line must start with \"# \"")
		}
		doc.WriteString(stripped)
		doc.WriteByte('\n')
	}

	var m Metadata
	if _, err := toml.Decode(doc.String(), &m); err != nil {
		return Metadata{}, pterrors.Wrapf(pterrors.CodeConfigMalformed, err,
			"malformed inline metadata block starting at line %d", startIdx+1)
	}

	return m, nil
}

// stripCommentPrefix removes the leading "# " (or bare "#" on an
// otherwise empty line) the spec requires every interior line to carry.
func stripCommentPrefix(line string) (string, bool) {
	if line == "#" {
		return "", true
	}
	if strings.HasPrefix(line, "# ") {
		return line[2:], true
	}
	return "", false
}
