package core

import (
	"context"
	_ "embed"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/voidshard/otto/pkg/errors"
	"github.com/voidshard/otto/pkg/structs"
)

//go:embed pytables.yaml
var defaultTables []byte

const pipTimeout = 10 * time.Second

// InstalledPackages returns a snapshot of installed package names
// (lowercased). Called once per validation so environment changes between
// installs are picked up.
type InstalledPackages func() (map[string]bool, error)

// DependencyValidator statically scans a script's imports and compares them
// against what is installed. It never executes any script code.
type DependencyValidator struct {
	installed InstalledPackages
	remap     map[string]string
	stdlib    map[string]bool
}

type validatorTables struct {
	Remap  map[string]string `yaml:"remap"`
	Stdlib []string          `yaml:"stdlib"`
}

// NewDependencyValidator builds a validator with the embedded remap / stdlib
// tables. A nil installed func defaults to querying pip via the given
// interpreter.
func NewDependencyValidator(interpreter string, installed InstalledPackages) (*DependencyValidator, error) {
	return NewDependencyValidatorTables(interpreter, installed, defaultTables)
}

// NewDependencyValidatorTables is NewDependencyValidator with caller-supplied
// YAML tables (see pytables.yaml for the format).
func NewDependencyValidatorTables(interpreter string, installed InstalledPackages, raw []byte) (*DependencyValidator, error) {
	t := validatorTables{}
	err := yaml.Unmarshal(raw, &t)
	if err != nil {
		return nil, err
	}
	if installed == nil {
		installed = pipInstalledPackages(interpreter)
	}
	stdlib := map[string]bool{}
	for _, m := range t.Stdlib {
		stdlib[m] = true
	}
	return &DependencyValidator{installed: installed, remap: t.Remap, stdlib: stdlib}, nil
}

// Validate scans the script source and reports which of its declared
// dependencies are installed. Pure with respect to the script: the only side
// effect is refreshing the installed-package snapshot.
func (v *DependencyValidator) Validate(src string) (*structs.DependencyReport, error) {
	imports, err := extractImports(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrParseFailed, err)
	}

	snapshot, err := v.installed()
	if err != nil {
		return nil, err
	}

	report := &structs.DependencyReport{
		Imports: []string{},
		Missing: []string{},
		Present: []string{},
	}
	seen := map[string]bool{}
	for _, name := range imports {
		if v.stdlib[name] {
			continue
		}
		pkg, ok := v.remap[name]
		if !ok {
			pkg = name
		}
		if seen[pkg] {
			continue
		}
		seen[pkg] = true
		report.Imports = append(report.Imports, pkg)
		if snapshot[strings.ToLower(pkg)] {
			report.Present = append(report.Present, pkg)
		} else {
			report.Missing = append(report.Missing, pkg)
		}
	}
	return report, nil
}

// InstallCommand returns the copy-pasteable command that installs the given
// packages.
func InstallCommand(missing []string) string {
	return "pip install " + strings.Join(missing, " ")
}

// MissingPackagesMessage builds the user-facing error for missing packages.
func MissingPackagesMessage(missing []string) string {
	if len(missing) == 0 {
		return ""
	}
	return fmt.Sprintf(`Missing Python packages detected!

Your script requires the following packages that are not installed:
%s

To install these packages, run:
%s

Or ask your administrator to install them in the backend environment.`,
		strings.Join(missing, ", "), InstallCommand(missing))
}

// extractImports returns the top-level import targets declared by the
// script, in first-seen order. This is a syntax-level scan: comments and
// triple-quoted strings are skipped, and malformed import statements (or an
// unterminated string) are an error.
func extractImports(src string) ([]string, error) {
	if strings.ContainsRune(src, 0) {
		return nil, fmt.Errorf("source contains NUL bytes")
	}

	out := []string{}
	seen := map[string]bool{}
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	inString := "" // open triple-quote delimiter, if any
	for n, line := range strings.Split(src, "\n") {
		if inString != "" {
			i := strings.Index(line, inString)
			if i < 0 {
				continue
			}
			line = line[i+len(inString):]
			inString = ""
		}

		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}

		switch {
		case t == "import" || strings.HasPrefix(t, "import "):
			names, err := parseImport(t)
			if err != nil {
				return nil, fmt.Errorf("line %d: %v", n+1, err)
			}
			for _, name := range names {
				add(name)
			}
		case t == "from" || strings.HasPrefix(t, "from "):
			name, err := parseFromImport(t)
			if err != nil {
				return nil, fmt.Errorf("line %d: %v", n+1, err)
			}
			if name != "" {
				add(name)
			}
		default:
			inString = openTripleQuote(line)
		}
	}

	if inString != "" {
		return nil, fmt.Errorf("unterminated string literal")
	}
	return out, nil
}

// parseImport handles `import a.b, c as d` and returns the top-level names.
func parseImport(t string) ([]string, error) {
	t = stripComment(t)
	rest := strings.TrimSpace(strings.TrimPrefix(t, "import"))
	if rest == "" {
		return nil, fmt.Errorf("import statement names no module")
	}
	names := []string{}
	for _, part := range strings.Split(rest, ",") {
		part = strings.TrimSpace(part)
		if i := strings.Index(part, " as "); i >= 0 {
			part = strings.TrimSpace(part[:i])
		}
		top := strings.SplitN(part, ".", 2)[0]
		if !isPyIdentifier(top) {
			return nil, fmt.Errorf("bad module name %q", part)
		}
		names = append(names, top)
	}
	return names, nil
}

// parseFromImport handles `from a.b import c` and returns the top-level
// name, or "" for relative imports (those are script-local).
func parseFromImport(t string) (string, error) {
	t = stripComment(t)
	rest := strings.TrimSpace(strings.TrimPrefix(t, "from"))
	mod, _, found := strings.Cut(rest, " import ")
	if !found {
		// tolerate `from x import(y)` spacing; anything else is malformed
		mod, _, found = strings.Cut(rest, " import(")
		if !found {
			return "", fmt.Errorf("from statement missing import clause")
		}
	}
	mod = strings.TrimSpace(mod)
	if strings.HasPrefix(mod, ".") {
		return "", nil
	}
	top := strings.SplitN(mod, ".", 2)[0]
	if !isPyIdentifier(top) {
		return "", fmt.Errorf("bad module name %q", mod)
	}
	return top, nil
}

func stripComment(t string) string {
	if i := strings.Index(t, "#"); i >= 0 {
		return strings.TrimSpace(t[:i])
	}
	return t
}

func isPyIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		ok := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9')
		if !ok {
			return false
		}
	}
	return true
}

// openTripleQuote returns the delimiter of a triple-quoted string opened on
// this line and not closed on it, or "". Ordinary string literals and
// comments are skipped so their contents cannot open a block, eg.
// x = "'''" is a one-line string, not an opener.
func openTripleQuote(line string) string {
	i := 0
	for i < len(line) {
		c := line[i]
		if c == '#' {
			return ""
		}
		if c != '"' && c != '\'' {
			i++
			continue
		}
		d := strings.Repeat(string(c), 3)
		if strings.HasPrefix(line[i:], d) {
			j := strings.Index(line[i+3:], d)
			if j < 0 {
				return d
			}
			i += 3 + j + 3
			continue
		}
		// ordinary string literal; skip to its closing quote
		for i++; i < len(line); i++ {
			if line[i] == '\\' {
				i++
				continue
			}
			if line[i] == c {
				i++
				break
			}
		}
	}
	return ""
}

// pipInstalledPackages queries the interpreter's pip for installed packages.
func pipInstalledPackages(interpreter string) InstalledPackages {
	return func() (map[string]bool, error) {
		ctx, cancel := context.WithTimeout(context.Background(), pipTimeout)
		defer cancel()

		out, err := exec.CommandContext(ctx, interpreter, "-m", "pip", "list", "--format=freeze").Output()
		if err != nil {
			return nil, fmt.Errorf("listing installed packages: %v", err)
		}

		pkgs := map[string]bool{}
		for _, line := range strings.Split(string(out), "\n") {
			name, _, found := strings.Cut(line, "==")
			if found && name != "" {
				pkgs[strings.ToLower(strings.TrimSpace(name))] = true
			}
		}
		return pkgs, nil
	}
}
