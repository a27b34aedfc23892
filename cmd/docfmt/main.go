// Command docfmt checks .docx files against formatting rules and infers
// rules from samples.
//
//	docfmt check [-rules rules.yaml] [-preset academic] [-out dir] files...
//	docfmt extract [-yaml] [-o rules.json] sample.docx
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/tsawler/docfmt"
	"github.com/tsawler/docfmt/internal/services"
	"github.com/tsawler/docfmt/rules"
)

const usage = `usage:
  docfmt check [flags] files...
  docfmt extract [flags] file
`

// Exit codes.
const (
	exitOK         = 0
	exitViolations = 1
	exitError      = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitError
	}
	switch args[0] {
	case "check":
		return runCheck(args[1:], stdout, stderr)
	case "extract":
		return runExtract(args[1:], stdout, stderr)
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return exitOK
	}
	fmt.Fprintf(stderr, "unknown command %q\n%s", args[0], usage)
	return exitError
}

type checkOutcome struct {
	file       string
	out        string
	violations int
	err        error
}

func runCheck(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	rulesFile := fs.String("rules", "", "rule record (JSON or YAML)")
	preset := fs.String("preset", "", "built-in rule set when -rules is not given (none, academic)")
	outDir := fs.String("out", "", "directory for annotated copies (default: next to each input)")
	lang := fs.String("lang", "", "comment language (default: the rule set's)")
	author := fs.String("author", "", "comment author")
	jobs := fs.Int("j", runtime.NumCPU(), "files checked in parallel")
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(stderr, "check: no input files")
		return exitError
	}

	checker, err := newChecker(*rulesFile, *preset, *lang, *author)
	if err != nil {
		fmt.Fprintf(stderr, "check: %v\n", err)
		return exitError
	}
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			fmt.Fprintf(stderr, "check: %v\n", err)
			return exitError
		}
	}

	outcomes := make([]checkOutcome, len(files))
	now := time.Now()

	p := pool.New().WithMaxGoroutines(max(*jobs, 1))
	for i, file := range files {
		p.Go(func() {
			outcomes[i] = checkFile(checker, file, *outDir, now)
		})
	}
	p.Wait()

	code := exitOK
	for _, o := range outcomes {
		switch {
		case o.err != nil:
			fmt.Fprintf(stderr, "%s: %v\n", o.file, o.err)
			code = exitError
		case o.violations > 0:
			fmt.Fprintf(stdout, "%s: %d violation(s), annotated copy at %s\n", o.file, o.violations, o.out)
			if code == exitOK {
				code = exitViolations
			}
		default:
			fmt.Fprintf(stdout, "%s: ok\n", o.file)
		}
	}
	return code
}

func newChecker(rulesFile, preset, lang, author string) (*docfmt.Checker, error) {
	opts := []docfmt.Option{}
	if author != "" {
		opts = append(opts, docfmt.WithAuthor(author, ""))
	}
	if lang != "" {
		opts = append(opts, docfmt.WithLanguage(lang))
	}
	if preset != "" {
		s, ok := rules.Preset(preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", preset)
		}
		opts = append(opts, docfmt.WithDefaultSchema(s))
	}

	c := docfmt.New(opts...)
	if rulesFile == "" {
		return c, nil
	}
	record, err := os.ReadFile(rulesFile)
	if err != nil {
		return nil, err
	}
	// Parse now so a bad record is reported once, not per file.
	s, err := rules.Parse(record)
	if err != nil {
		return nil, err
	}
	return c.Schema(s), nil
}

func checkFile(c *docfmt.Checker, file, outDir string, now time.Time) checkOutcome {
	o := checkOutcome{file: file}
	data, err := os.ReadFile(file)
	if err != nil {
		o.err = err
		return o
	}
	res, err := c.Check(data)
	if err != nil {
		o.err = err
		return o
	}
	o.violations = len(res.Violations)
	if o.violations == 0 {
		return o
	}

	dir := outDir
	if dir == "" {
		dir = filepath.Dir(file)
	}
	o.out = filepath.Join(dir, services.CheckedFileName(file, now))
	o.err = os.WriteFile(o.out, res.Document, 0o644)
	return o
}

func runExtract(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asYAML := fs.Bool("yaml", false, "write YAML instead of JSON")
	out := fs.String("o", "", "output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "extract: exactly one sample file expected")
		return exitError
	}

	if err := extract(fs.Arg(0), *asYAML, *out, stdout); err != nil {
		fmt.Fprintf(stderr, "extract: %v\n", err)
		return exitError
	}
	return exitOK
}

func extract(file string, asYAML bool, out string, stdout io.Writer) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	s, err := docfmt.New().Extract(data)
	if err != nil {
		return err
	}

	var record []byte
	if asYAML {
		record, err = s.YAML()
	} else {
		record, err = s.MarshalJSON()
		record = append(record, '\n')
	}
	if err != nil {
		return err
	}
	if s.IsEmpty() {
		return errors.New("no formatting could be sampled from " + file)
	}

	if out == "" {
		_, err = stdout.Write(record)
		return err
	}
	return os.WriteFile(out, record, 0o644)
}
