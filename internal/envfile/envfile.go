// Package envfile implements C3: a line-oriented KEY=VALUE parser with
// shell-like variable expansion. Grounded directly on spec §4.3's
// grammar — no donor or sibling example repo in the corpus parses this
// exact format (none carry a dotenv-style library such as
// github.com/joho/godotenv), and its quoting rules are narrow and fully
// specified enough that hand-rolling them is both simpler and more
// precise than adapting a general-purpose library's different
// semantics.
package envfile

import (
	"os"
	"strings"

	pterrors "github.com/pt-run/pt/internal/errors"
)

// Parse reads path and returns its KEY=VALUE pairs as a map, expanding
// $VAR and ${VAR} references against the current process environment.
func Parse(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pterrors.Wrap(pterrors.CodeConfigMalformed, "reading env file", err).
			WithDetail("file", path)
	}
	return ParseString(string(data), path)
}

// ParseString parses env-file content already in memory; file is used
// only for error messages.
func ParseString(content, file string) (map[string]string, error) {
	result := make(map[string]string)

	for i, rawLine := range strings.Split(content, "\n") {
		lineNum := i + 1
		line := stripComment(rawLine)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		eq := strings.Index(line, "=")
		if eq < 0 {
			return nil, pterrors.ConfigMalformed(file, lineNum, "expected KEY=VALUE")
		}

		key := strings.TrimSpace(line[:eq])
		if key == "" {
			return nil, pterrors.ConfigMalformed(file, lineNum, "empty key")
		}
		value := strings.TrimSpace(line[eq+1:])

		expanded, err := parseValue(value)
		if err != nil {
			return nil, pterrors.ConfigMalformed(file, lineNum, err.Error())
		}
		result[key] = expanded
	}

	return result, nil
}

// stripComment removes a trailing "# ..." comment, respecting that a
// '#' starting a line, or preceded by whitespace, begins a comment. It
// runs before parseValue and tracks single/double quote state itself, so
// a '#' inside a quoted value is kept.
func stripComment(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return ""
	}

	inSingle, inDouble := false, false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case '#':
			if !inSingle && !inDouble && i > 0 && (line[i-1] == ' ' || line[i-1] == '\t') {
				return line[:i]
			}
		}
	}
	return line
}

// parseValue strips matching surrounding quotes and expands variable
// references in unquoted or double-quoted values; single-quoted values
// are returned literal.
func parseValue(value string) (string, error) {
	if len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'' {
		return value[1 : len(value)-1], nil
	}
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		return expandVars(value[1 : len(value)-1]), nil
	}
	return expandVars(value), nil
}

// expandVars replaces $VAR and ${VAR} with the process environment's
// value for VAR, as it exists at the moment the file is parsed;
// undefined references expand to empty.
func expandVars(s string) string {
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '$' || i == len(s)-1 {
			out.WriteByte(s[i])
			continue
		}

		if s[i+1] == '{' {
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				out.WriteByte(s[i])
				continue
			}
			name := s[i+2 : i+2+end]
			out.WriteString(os.Getenv(name))
			i += 2 + end
			continue
		}

		j := i + 1
		for j < len(s) && isVarNameByte(s[j]) {
			j++
		}
		if j == i+1 {
			out.WriteByte(s[i])
			continue
		}
		out.WriteString(os.Getenv(s[i+1 : j]))
		i = j - 1
	}
	return out.String()
}

func isVarNameByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
