package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/mfroeh/bgrep/regex"
)

const (
	exitMatch   = 0
	exitNoMatch = 1
	exitError   = 2
)

type cli struct {
	Extended     bool            `short:"E" required:"" help:"Interpret PATTERN as an extended regular expression."`
	OnlyMatching bool            `short:"o" name:"only-matching" help:"Print only the matched parts of a line, one per line."`
	Count        bool            `short:"c" help:"Print only the number of matching lines per input."`
	Color        string          `enum:"auto,always,never" default:"auto" env:"BGREP_COLOR" help:"When to highlight matches (${enum})."`
	Tree         bool            `help:"Print the parsed expression tree and exit."`
	Verbose      bool            `help:"Log debug information to stderr."`
	Config       kong.ConfigFlag `help:"Read flag defaults from a YAML file."`
	Pattern      string          `arg:"" name:"pattern" help:"Regex pattern to search for."`
	Paths        []string        `arg:"" optional:"" name:"path" help:"Files or directories to search. Reads stdin when omitted." type:"path"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var c cli
	exitCode := -1
	parser, err := kong.New(&c,
		kong.Name("bgrep"),
		kong.Description("Searches lines for a pattern using a backtracking regex engine."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
		kong.Configuration(yamlConfig),
	)
	if err != nil {
		fmt.Fprintf(stderr, "bgrep: %v\n", err)
		return exitError
	}

	_, err = parser.Parse(args)
	if exitCode >= 0 {
		// --help and friends
		return exitCode
	}
	if err != nil {
		fmt.Fprintf(stderr, "bgrep: %v\nRun 'bgrep --help' for usage.\n", err)
		return exitError
	}

	level := slog.LevelWarn
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	re, err := regex.Compile(c.Pattern)
	if err != nil {
		fmt.Fprintf(stderr, "bgrep: %v\n", err)
		return exitError
	}
	logger.Debug("compiled pattern", "pattern", re.String(), "tree", re.Expr().String(), "groups", re.NumGroups())

	if c.Tree {
		fmt.Fprintln(stdout, re.Expr())
		return exitMatch
	}

	s := &searcher{
		re:      re,
		out:     newPrinter(stdout, c.Color),
		logger:  logger,
		only:    c.OnlyMatching,
		count:   c.Count,
		headers: len(c.Paths) > 1,
	}

	if len(c.Paths) == 0 {
		err = s.search("(standard input)", stdin)
	} else {
		err = s.searchPaths(c.Paths)
	}
	if err != nil {
		fmt.Fprintf(stderr, "bgrep: %v\n", err)
		return exitError
	}

	if s.matched {
		return exitMatch
	}
	return exitNoMatch
}

type searcher struct {
	re      *regex.Regex
	out     *printer
	logger  *slog.Logger
	only    bool
	count   bool
	headers bool
	matched bool
}

func (s *searcher) searchPaths(paths []string) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			s.headers = true
			err = s.recursivelySearchDir(path)
		} else {
			err = s.searchFile(path)
		}

		if err != nil {
			return err
		}
	}
	return nil
}

func (s *searcher) recursivelySearchDir(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		// resolve symlinks, broken ones are skipped
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				s.logger.Debug("skipping broken symlink", "path", path)
				return nil
			}
			return err
		}

		// symlink may resolve to a directory, in which case we just ignore it
		if info.IsDir() {
			return nil
		}

		return s.searchFile(path)
	})
}

func (s *searcher) searchFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return s.search(path, f)
}

func (s *searcher) search(name string, r io.Reader) error {
	s.logger.Debug("searching", "input", name)

	matchingLines := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		matches := s.re.FindAllSubmatches(line, -1)
		if len(matches) == 0 {
			continue
		}
		matchingLines++

		if s.count {
			continue
		}
		if s.only {
			for _, match := range matches {
				if match[0].Str != "" {
					s.out.line(s.prefix(name), s.out.highlight(match))
				}
			}
			continue
		}
		s.out.line(s.prefix(name), s.out.highlightLine(line, matches))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	if s.count {
		s.out.line(s.prefix(name), fmt.Sprint(matchingLines))
	}
	if matchingLines > 0 {
		s.matched = true
	}
	s.logger.Debug("searched", "input", name, "matching_lines", matchingLines)
	return nil
}

func (s *searcher) prefix(name string) string {
	if !s.headers {
		return ""
	}
	return name + ":"
}

var submatchAttrs = [][]color.Attribute{
	{color.FgRed, color.Bold},
	{color.FgGreen},
	{color.FgYellow},
	{color.FgBlue},
	{color.FgMagenta},
	{color.FgCyan},
}

type printer struct {
	w      io.Writer
	colors []*color.Color
	name   *color.Color
}

func newPrinter(w io.Writer, mode string) *printer {
	p := &printer{w: w, name: color.New(color.FgMagenta)}
	for _, attrs := range submatchAttrs {
		p.colors = append(p.colors, color.New(attrs...))
	}

	enable := mode == "always" || (mode == "auto" && !color.NoColor)
	for _, c := range append(p.colors, p.name) {
		if enable {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) line(prefix, text string) {
	if prefix != "" {
		prefix = p.name.Sprint(prefix)
	}
	fmt.Fprintln(p.w, prefix+text)
}

func (p *printer) highlightLine(line string, matches [][]regex.Submatch) string {
	out := strings.Builder{}
	lastMatchEnd := 0
	for _, match := range matches {
		if match[0].Offset < lastMatchEnd {
			continue
		}
		out.WriteString(line[lastMatchEnd:match[0].Offset])
		out.WriteString(p.highlight(match))
		lastMatchEnd = match[0].Offset + len(match[0].Str)
	}
	out.WriteString(line[lastMatchEnd:])
	return out.String()
}

// highlight colors the whole match and each top-level group in its own color.
func (p *printer) highlight(match []regex.Submatch) string {
	fullMatch := match[0].Str
	if len(match) == 1 || len(match) > len(p.colors) {
		return p.colors[0].Sprint(fullMatch)
	}

	out := strings.Builder{}
	matchOff := 0
	for i, sm := range match[1:] {
		if sm.Offset < 0 {
			continue
		}
		offRelativeToMatch := sm.Offset - match[0].Offset
		// nested groups are drawn as part of their parent
		if offRelativeToMatch < matchOff || offRelativeToMatch+len(sm.Str) > len(fullMatch) {
			continue
		}
		p.colors[0].Fprint(&out, fullMatch[matchOff:offRelativeToMatch])
		p.colors[i+1].Fprint(&out, sm.Str)
		matchOff = offRelativeToMatch + len(sm.Str)
	}
	p.colors[0].Fprint(&out, fullMatch[matchOff:])
	return out.String()
}
