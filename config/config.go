// Package config binds the CLI surface of component design §6 to a
// Config value: flag parsing, an optional YAML settings file (freeing the
// on-disk format from the original INI syntax per spec's Non-goals),
// pattern-set compilation, and formatter-token normalization.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/linkchecker-go/linkcheck/urlitem"
	"github.com/linkchecker-go/linkcheck/urlutil"
	"gopkg.in/yaml.v3"
)

// FormatterSpec is one `-F fmt/file` entry: a formatter name and its
// output destination ("-" for stdout).
type FormatterSpec struct {
	Format string
	Dest   string
}

// Config is the fully resolved set of options driving a run, after
// merging defaults, an optional config file, and CLI flags (CLI wins).
type Config struct {
	Seeds []string

	RecursionLevel int // -1 = unbounded
	Threads        int // 0 = synchronous
	Timeout        time.Duration
	UserAgent      string

	NoWarnings bool
	IgnoreURLs []string
	CheckExtern bool
	CheckAnchors bool

	Formatters []FormatterSpec

	DebugAreas []string

	CookiesPolicy string
	SaveCookies   string
	LoginURL      string

	ConfigFile string

	IgnoreWarnings []string
	InternPatterns []string
	ExternPatterns []string

	Interactive bool
}

const defaultUserAgent = "linkchecker-go/1.0"

// fileSettings mirrors the subset of Config that can come from the YAML
// config file's sections (component design §6: "[checking], [filtering],
// [authentication], [output], [logger-*]").
type fileSettings struct {
	Checking struct {
		RecursionLevel int    `yaml:"recursionlevel"`
		Threads        int    `yaml:"threads"`
		Timeout        int    `yaml:"timeout"`
		UserAgent      string `yaml:"useragent"`
	} `yaml:"checking"`
	Filtering struct {
		IgnoreURLs     []string `yaml:"ignoreurl"`
		InternPatterns []string `yaml:"intern"`
		ExternPatterns []string `yaml:"extern"`
		CheckExtern    bool     `yaml:"checkextern"`
	} `yaml:"filtering"`
	Authentication struct {
		LoginURL string `yaml:"loginurl"`
	} `yaml:"authentication"`
	Output struct {
		IgnoreWarnings []string `yaml:"ignorewarnings"`
		NoWarnings     bool     `yaml:"nowarnings"`
	} `yaml:"output"`
}

// Parse builds a Config from argv, merging a YAML config file (if named
// by --config or present at the default path) beneath CLI flags.
func Parse(argv []string) (*Config, error) {
	fs := flag.NewFlagSet("linkcheck", flag.ContinueOnError)

	cfg := &Config{}
	var formatterFlags multiFlag
	var ignoreURLFlags multiFlag
	var debugAreaFlags multiFlag

	fs.IntVar(&cfg.RecursionLevel, "r", -1, "max recursion depth, -1 = unbounded")
	fs.IntVar(&cfg.RecursionLevel, "recursionlevel", -1, "max recursion depth, -1 = unbounded")
	fs.IntVar(&cfg.Threads, "t", 10, "worker count, 0 = synchronous")
	fs.IntVar(&cfg.Threads, "threads", 10, "worker count, 0 = synchronous")
	timeoutSeconds := fs.Int("timeout", 60, "per-request timeout, seconds")
	fs.StringVar(&cfg.UserAgent, "user-agent", defaultUserAgent, "User-Agent header override")
	fs.BoolVar(&cfg.NoWarnings, "no-warnings", false, "suppress warnings")
	fs.Var(&ignoreURLFlags, "ignore-url", "extern/no-recurse pattern (repeatable)")
	fs.Var(&ignoreURLFlags, "no-follow-url", "extern/no-recurse pattern (repeatable)")
	fs.BoolVar(&cfg.CheckExtern, "check-extern", false, "also check extern links (one level)")
	fs.BoolVar(&cfg.CheckAnchors, "check-anchors", false, "verify #anchor fragments")
	fs.Var(&formatterFlags, "F", "output formatter, fmt/file (repeatable)")
	fs.Var(&debugAreaFlags, "D", "enable debug logging for an area (repeatable)")
	fs.StringVar(&cfg.CookiesPolicy, "cookies", "", "cookie policy")
	fs.StringVar(&cfg.SaveCookies, "save-cookies", "", "cookie jar save path")
	fs.StringVar(&cfg.ConfigFile, "config", defaultConfigPath(), "config file path")
	fs.BoolVar(&cfg.Interactive, "interactive", false, "show a live terminal progress view instead of streaming formatter output")

	if err := fs.Parse(argv); err != nil {
		return nil, err
	}

	cfg.Seeds = fs.Args()
	cfg.Timeout = time.Duration(*timeoutSeconds) * time.Second
	cfg.IgnoreURLs = []string(ignoreURLFlags)
	cfg.DebugAreas = []string(debugAreaFlags)
	cfg.Formatters = make([]FormatterSpec, 0, len(formatterFlags))
	for _, spec := range formatterFlags {
		cfg.Formatters = append(cfg.Formatters, parseFormatterSpec(spec))
	}
	if len(cfg.Formatters) == 0 {
		cfg.Formatters = []FormatterSpec{{Format: "text", Dest: "-"}}
	}

	if err := cfg.mergeFile(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".linkchecker", "linkcheckerrc")
}

// mergeFile loads cfg.ConfigFile (if it exists) and fills in any value the
// CLI left at its zero/default; CLI-supplied values always win.
func (c *Config) mergeFile() error {
	if c.ConfigFile == "" {
		return nil
	}
	data, err := os.ReadFile(c.ConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", c.ConfigFile, err)
	}

	var fileCfg fileSettings
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", c.ConfigFile, err)
	}

	if fileCfg.Checking.UserAgent != "" && c.UserAgent == defaultUserAgent {
		c.UserAgent = fileCfg.Checking.UserAgent
	}
	if len(fileCfg.Filtering.IgnoreURLs) > 0 {
		c.IgnoreURLs = append(c.IgnoreURLs, fileCfg.Filtering.IgnoreURLs...)
	}
	c.InternPatterns = append(c.InternPatterns, fileCfg.Filtering.InternPatterns...)
	c.ExternPatterns = append(c.ExternPatterns, fileCfg.Filtering.ExternPatterns...)
	if fileCfg.Filtering.CheckExtern {
		c.CheckExtern = true
	}
	if fileCfg.Authentication.LoginURL != "" {
		c.LoginURL = fileCfg.Authentication.LoginURL
	}
	c.IgnoreWarnings = append(c.IgnoreWarnings, fileCfg.Output.IgnoreWarnings...)
	if fileCfg.Output.NoWarnings {
		c.NoWarnings = true
	}
	return nil
}

// CompileIgnoreURL compiles the configured no-follow patterns.
func (c *Config) CompileIgnoreURL() (urlutil.PatternSet, error) {
	return urlutil.CompileSet(c.IgnoreURLs, false)
}

// CompileIntern compiles the configured intern patterns.
func (c *Config) CompileIntern() (urlutil.PatternSet, error) {
	return urlutil.CompileSet(c.InternPatterns, false)
}

// CompileExtern compiles the configured extern patterns.
func (c *Config) CompileExtern() (urlutil.PatternSet, error) {
	return urlutil.CompileSet(c.ExternPatterns, false)
}

// IgnoredWarningTags resolves the configured --ignorewarnings tokens
// (arbitrary-case, possibly hyphen- or snake-cased) to the closed
// WarningTag enumeration via strcase normalization, rejecting unknown
// tokens so a typo'd tag doesn't silently do nothing.
func (c *Config) IgnoredWarningTags() (map[urlitem.WarningTag]bool, error) {
	out := make(map[urlitem.WarningTag]bool, len(c.IgnoreWarnings))
	for _, raw := range c.IgnoreWarnings {
		tag := urlitem.WarningTag(strcase.ToKebab(raw))
		if !urlitem.KnownTag(tag) {
			return nil, fmt.Errorf("unknown warning tag %q", raw)
		}
		out[tag] = true
	}
	return out, nil
}

func parseFormatterSpec(spec string) FormatterSpec {
	format, dest := spec, "-"
	for i := 0; i < len(spec); i++ {
		if spec[i] == '/' {
			format, dest = spec[:i], spec[i+1:]
			break
		}
	}
	return FormatterSpec{Format: strcase.ToSnake(format), Dest: dest}
}

// multiFlag collects repeated occurrences of a string flag.
type multiFlag []string

func (m *multiFlag) String() string { return fmt.Sprintf("%v", []string(*m)) }
func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}
