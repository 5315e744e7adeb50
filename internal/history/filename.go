package history

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// A filename is the trailing run of path characters that follows whitespace
// and ends the message with ".json".
var filenameRegex = regexp.MustCompile(`\s([\pL\pN\pM_\s\\/\-.:]+\.json)$`)

var ErrOutsideDir = errors.New("path escapes the history directory")

// ExtractFilename pulls a .json path off the end of a chat message.
func ExtractFilename(content string) (string, bool) {
	m := filenameRegex.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return "", false
	}
	return name, true
}

// Resolver maps user supplied filenames onto the filesystem. With an empty
// directory names are used as given; otherwise they are confined to it.
type Resolver struct {
	dir string
}

func NewResolver(dir string) Resolver {
	return Resolver{dir: strings.TrimSpace(dir)}
}

func (r Resolver) Resolve(name string) (string, error) {
	if r.dir == "" {
		return name, nil
	}

	base, err := filepath.Abs(r.dir)
	if err != nil {
		return "", err
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	path = filepath.Clean(path)

	if !within(base, path) {
		return "", ErrOutsideDir
	}

	// symlinks inside the directory must not lead out of it
	realBase, err := evalExisting(base)
	if err != nil {
		return "", err
	}
	realPath, err := evalExisting(path)
	if err != nil {
		return "", err
	}
	if !within(realBase, realPath) {
		return "", ErrOutsideDir
	}
	return path, nil
}

func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// evalExisting resolves symlinks in the longest existing prefix of path and
// appends the part that does not exist yet.
func evalExisting(path string) (string, error) {
	rest := ""
	for {
		resolved, err := filepath.EvalSymlinks(path)
		if err == nil {
			return filepath.Join(resolved, rest), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		// a dangling link would be followed on write
		if _, lerr := os.Lstat(path); lerr == nil {
			return "", ErrOutsideDir
		}
		parent := filepath.Dir(path)
		if parent == path {
			return filepath.Join(path, rest), nil
		}
		rest = filepath.Join(filepath.Base(path), rest)
		path = parent
	}
}
