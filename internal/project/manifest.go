package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
)

// Output formats understood by [output].format.
var Formats = []string{"c", "go", "llvm", "asm", "json", "bundle"}

// Normalization forms understood by normalize keys.
var NormalizeForms = []string{"none", "nfc"}

var (
	// ErrPackageSectionMissing indicates that [package] is missing.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameMissing indicates that [package].name is missing or blank.
	ErrPackageNameMissing = errors.New("missing [package].name")
)

// Manifest is a loaded cstrlit.toml.
type Manifest struct {
	Path    string
	Root    string
	Content []byte
	Config  Config
}

type Config struct {
	Package  PackageConfig   `toml:"package"`
	Output   OutputConfig    `toml:"output"`
	Defaults DefaultsConfig  `toml:"defaults"`
	Literals []LiteralConfig `toml:"literal"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type OutputConfig struct {
	Dir       string `toml:"dir"`
	Format    string `toml:"format"`
	GoPackage string `toml:"go_package"`
}

type DefaultsConfig struct {
	Width     string `toml:"width"`
	Normalize string `toml:"normalize"`
}

// LiteralConfig is one [[literal]] table. Text is already unescaped by the TOML decoder.
type LiteralConfig struct {
	Name      string  `toml:"name"`
	Text      *string `toml:"text"`
	File      string  `toml:"file"`
	Width     string  `toml:"width"`
	Normalize string  `toml:"normalize"`
}

// LiteralSpec is a literal with defaults applied. Exactly one of HasText/File is set
// for well-formed entries; the driver reports the rest.
type LiteralSpec struct {
	Index     int
	Name      string
	Text      string
	HasText   bool
	File      string // absolute path when set
	Width     string
	Normalize string
}

// Load parses and validates a manifest file.
func Load(path string) (*Manifest, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, content)
}

// Parse validates manifest content read from path.
func Parse(path string, content []byte) (*Manifest, error) {
	var cfg Config
	meta, err := toml.Decode(string(content), &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageNameMissing)
	}
	cfg.Package.Name = strings.TrimSpace(cfg.Package.Name)
	if !IsValidName(cfg.Package.Name) {
		return nil, fmt.Errorf("%s: invalid [package].name %q", path, cfg.Package.Name)
	}
	applyDefaults(&cfg)
	if !slices.Contains(Formats, cfg.Output.Format) {
		return nil, fmt.Errorf("%s: invalid [output].format %q (expected %s)", path, cfg.Output.Format, strings.Join(Formats, "|"))
	}
	if !slices.Contains(NormalizeForms, cfg.Defaults.Normalize) {
		return nil, fmt.Errorf("%s: invalid [defaults].normalize %q (expected %s)", path, cfg.Defaults.Normalize, strings.Join(NormalizeForms, "|"))
	}
	if filepath.IsAbs(cfg.Output.Dir) {
		return nil, fmt.Errorf("%s: invalid [output].dir %q: must be relative", path, cfg.Output.Dir)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &Manifest{
		Path:    abs,
		Root:    filepath.Dir(abs),
		Content: content,
		Config:  cfg,
	}, nil
}

func applyDefaults(cfg *Config) {
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	if cfg.Output.Format == "" {
		cfg.Output.Format = "c"
	}
	if strings.TrimSpace(cfg.Output.Dir) == "" {
		cfg.Output.Dir = "."
	}
	if strings.TrimSpace(cfg.Output.GoPackage) == "" {
		cfg.Output.GoPackage = strings.ToLower(cfg.Package.Name)
	}
	if strings.TrimSpace(cfg.Defaults.Width) == "" {
		cfg.Defaults.Width = "narrow"
	}
	cfg.Defaults.Normalize = strings.ToLower(strings.TrimSpace(cfg.Defaults.Normalize))
	if cfg.Defaults.Normalize == "" {
		cfg.Defaults.Normalize = "none"
	}
}

// OutputDir returns the absolute output directory.
func (m *Manifest) OutputDir() string {
	return filepath.Join(m.Root, filepath.FromSlash(m.Config.Output.Dir))
}

// Literals returns every [[literal]] entry with defaults applied, in file order.
func (m *Manifest) Literals() []LiteralSpec {
	out := make([]LiteralSpec, 0, len(m.Config.Literals))
	for i, lit := range m.Config.Literals {
		spec := LiteralSpec{
			Index:     i,
			Name:      strings.TrimSpace(lit.Name),
			Width:     strings.TrimSpace(lit.Width),
			Normalize: strings.ToLower(strings.TrimSpace(lit.Normalize)),
		}
		if lit.Text != nil {
			spec.Text = *lit.Text
			spec.HasText = true
		}
		if f := strings.TrimSpace(lit.File); f != "" {
			spec.File = filepath.Join(m.Root, filepath.FromSlash(f))
		}
		if spec.Width == "" {
			spec.Width = m.Config.Defaults.Width
		}
		if spec.Normalize == "" {
			spec.Normalize = m.Config.Defaults.Normalize
		}
		out = append(out, spec)
	}
	return out
}

// FileWithinRoot reports whether a literal file stays inside the manifest directory.
func (m *Manifest) FileWithinRoot(path string) bool {
	return pathWithin(m.Root, path)
}

var literalNameRe = regexp.MustCompile(`(?m)^[ \t]*name[ \t]*=[ \t]*["']([^"'\n]*)["']`)

// LiteralOffsets maps each literal name to the byte offset and length of its
// `name = "..."` line in the manifest. The TOML decoder keeps no positions, so diagnostics
// for inline literals point at the name line instead.
func (m *Manifest) LiteralOffsets() map[string][2]int {
	out := make(map[string][2]int)
	base := bytes.Index(m.Content, []byte("[[literal]]"))
	if base < 0 {
		return out
	}
	body := m.Content[base:]
	for _, loc := range literalNameRe.FindAllSubmatchIndex(body, -1) {
		name := strings.TrimSpace(string(body[loc[2]:loc[3]]))
		if _, seen := out[name]; seen {
			continue
		}
		out[name] = [2]int{base + loc[0], loc[1] - loc[0]}
	}
	return out
}

// LiteralHeaders returns the byte offset of every `[[literal]]` header in file
// order, so entry i of Literals() starts at LiteralHeaders()[i].
func (m *Manifest) LiteralHeaders() []int {
	var out []int
	for _, loc := range literalHeaderRe.FindAllIndex(m.Content, -1) {
		out = append(out, loc[0]+bytes.Index(m.Content[loc[0]:loc[1]], []byte("[[")))
	}
	return out
}

var literalHeaderRe = regexp.MustCompile(`(?m)^[ \t]*\[\[literal\]\]`)

// IsValidName reports whether name is usable as a C and Go identifier fragment.
func IsValidName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Starter is written by `cstrlit init`.
const Starter = `[package]
name = "%s"

[output]
dir = "gen"
format = "c"

[defaults]
width = "narrow"

[[literal]]
name = "greeting"
text = "Hello world!"

[[literal]]
name = "greeting_wide"
text = "Привет world!"
width = "wide"
`
