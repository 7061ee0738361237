package task

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	pterrors "github.com/pt-run/pt/internal/errors"
)

// pyProjectWrapper lets pyproject.toml's [tool.pt] table decode into the
// same ProjectFile shape a standalone pt.toml would.
type pyProjectWrapper struct {
	Tool struct {
		Pt ProjectFile `toml:"pt"`
	} `toml:"tool"`
}

// Load reads and strictly validates the project file at path. isPyProject
// selects whether the document is expected to carry its tables under a
// [tool.pt] table (pyproject.toml) or at the top level (pt.toml).
//
// Unknown keys anywhere in pt's own document (the whole pt.toml, or
// everything under [tool.pt] of a pyproject.toml) are rejected, per C1
// ("any key not in the declared schema is rejected with a configuration
// error naming the offending field"), using toml.MetaData.Undecoded() —
// the library's own mechanism for strict-schema decoding, used here in
// place of a hand-rolled second validation pass. The other tables of a
// pyproject.toml are left alone.
func Load(path string, isPyProject bool) (*ProjectFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pterrors.Wrap(pterrors.CodeConfigNotFound, "reading config file", err).
			WithDetail("file", path)
	}

	var pf ProjectFile
	var meta toml.MetaData

	if isPyProject {
		var wrapper pyProjectWrapper
		meta, err = toml.Decode(string(data), &wrapper)
		pf = wrapper.Tool.Pt
	} else {
		meta, err = toml.Decode(string(data), &pf)
	}
	if err != nil {
		return nil, pterrors.Wrap(pterrors.CodeConfigMalformed, "parsing TOML", err).
			WithDetail("file", path)
	}

	for _, key := range meta.Undecoded() {
		if isPyProject {
			if len(key) < 3 || key[0] != "tool" || key[1] != "pt" {
				continue
			}
			key = key[2:]
		}
		return nil, pterrors.ConfigUnknownField(path, parentTable(key.String()), leafField(key.String()))
	}

	if err := validateProjectFile(&pf, path); err != nil {
		return nil, err
	}

	return &pf, nil
}

func parentTable(key string) string {
	idx := strings.LastIndex(key, ".")
	if idx < 0 {
		return "project"
	}
	return key[:idx]
}

func leafField(key string) string {
	idx := strings.LastIndex(key, ".")
	if idx < 0 {
		return key
	}
	return key[idx+1:]
}
