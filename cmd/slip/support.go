package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/zintix-labs/slipdesk"
	"github.com/zintix-labs/slipdesk/catalog"
	"github.com/zintix-labs/slipdesk/demo"
	"github.com/zintix-labs/slipdesk/errs"
	"github.com/zintix-labs/slipdesk/report"
	"github.com/zintix-labs/slipdesk/slip"
)

var cfg *config = new(config)

type config struct {
	mode      string
	format    string
	workers   int
	color     string
	quiet     bool
	progress  bool
	types     string
	pprofmode string
	files     []string
}

func bindVar() {
	flag.StringVar(&cfg.mode, "mode", "Open", "market mode: Open|Close")
	flag.StringVar(&cfg.format, "format", "table", "summary format: table|json|yaml")
	flag.IntVar(&cfg.workers, "worker", 4, "number of workers")
	flag.StringVar(&cfg.color, "color", "auto", "highlight colors: auto|always|never")
	flag.BoolVar(&cfg.quiet, "q", false, "only print the summary")
	flag.BoolVar(&cfg.progress, "pb", false, "show progress bar")
	flag.StringVar(&cfg.types, "types", "", "directory of type seed files (default: embedded demo types)")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [file ...]\n", filepath.Base(os.Args[0]))
		fmt.Fprintln(flag.CommandLine.Output(), "  '-' reads stdin; no files runs the embedded sample slips.")
		flag.PrintDefaults()
	}
	flag.Parse()
	cfg.files = flag.Args()
}

func (cfg *config) valid() error {
	if cfg.workers < 1 {
		return errs.NewWarn("value err : workers must > 0")
	}
	if _, err := slip.ParseMode(cfg.mode); err != nil {
		return err
	}
	switch cfg.format {
	case "table", "json", "yaml", "yml":
	default:
		return errs.Warnf("value err : unknown format %q", cfg.format)
	}
	switch cfg.color {
	case "auto", "always", "never":
	default:
		return errs.Warnf("value err : unknown color mode %q", cfg.color)
	}
	return nil
}

// useColor 決定是否輸出 ANSI；auto 時只有 out 是終端機才上色
func (cfg *config) useColor(out io.Writer) bool {
	switch cfg.color {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := out.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func run(out io.Writer, stdin io.Reader) error {
	if err := cfg.valid(); err != nil {
		return err
	}
	docs, err := loadDocs(cfg.files, stdin)
	if err != nil {
		return err
	}
	desk, err := newDesk(cfg.types)
	if err != nil {
		return err
	}
	defer desk.Close()

	results, total, used, err := desk.Batch(docs, cfg.mode, cfg.workers, cfg.progress)
	if err != nil {
		return err
	}

	p := report.Printer()
	marker := newANSIMarker(cfg.useColor(out))
	if !cfg.quiet {
		for _, r := range results {
			writeDoc(out, marker, r)
		}
	}
	if err := report.RenderFor(cfg.format).Write(out, total); err != nil {
		return err
	}
	if cfg.format == "table" {
		p.Fprintf(out, "%d slips, %d entries, stake %d, %v\n", len(results), total.Entries, total.TotalStake, used)
	}
	if total.Invalid > 0 {
		return errs.Warnf("%d invalid lines", total.Invalid)
	}
	return nil
}

func writeDoc(out io.Writer, m *ansiMarker, r slipdesk.DocResult) {
	fmt.Fprintf(out, "== %s ==\n", r.Name)
	issues := slip.BuildIssues(r.Result.Invalid, r.Result.Ambiguous)
	body := slip.Render(r.Text, issues, m)
	fmt.Fprint(out, body)
	if !strings.HasSuffix(body, "\n") {
		fmt.Fprintln(out)
	}
	state, text := slip.Banner(r.Result)
	fmt.Fprintf(out, "-- %s: %s\n\n", m.state(state), text)
}

// loadDocs 讀取檔案；"-" 代表 stdin，沒有檔案時使用內嵌範例
func loadDocs(files []string, stdin io.Reader) ([]slipdesk.Doc, error) {
	if len(files) == 0 {
		slips := demo.Slips()
		docs := make([]slipdesk.Doc, 0, len(slips))
		for _, name := range demo.SlipNames() {
			docs = append(docs, slipdesk.Doc{Name: name, Text: slips[name]})
		}
		return docs, nil
	}
	docs := make([]slipdesk.Doc, 0, len(files))
	for _, name := range files {
		var raw []byte
		var err error
		if name == "-" {
			raw, err = io.ReadAll(stdin)
		} else {
			raw, err = os.ReadFile(name)
		}
		if err != nil {
			return nil, errs.WrapWithExtra(err, "read slip error", name)
		}
		docs = append(docs, slipdesk.Doc{Name: name, Text: string(raw)})
	}
	return docs, nil
}

func newDesk(typesDir string) (*slipdesk.Desk, error) {
	if typesDir == "" {
		return demo.NewDesk()
	}
	c, err := catalog.New(os.DirFS(typesDir))
	if err != nil {
		return nil, err
	}
	if err := c.LoadSeeds(); err != nil {
		return nil, err
	}
	return slipdesk.New(slipdesk.WithCatalog(c))
}

// ansiMarker 是終端機版本的 slip.Marker
type ansiMarker struct {
	invalid *color.Color
	ambig   *color.Color
	ok      *color.Color
}

func newANSIMarker(enabled bool) *ansiMarker {
	m := &ansiMarker{
		invalid: color.New(color.FgWhite, color.BgRed),
		ambig:   color.New(color.FgBlack, color.BgYellow),
		ok:      color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{m.invalid, m.ambig, m.ok} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return m
}

func (m *ansiMarker) Escape(s string) string { return s }

func (m *ansiMarker) Wrap(kind slip.IssueKind, escaped string) string {
	if kind == slip.IssueInvalid {
		return m.invalid.Sprint(escaped)
	}
	return m.ambig.Sprint(escaped)
}

func (m *ansiMarker) Frame(body string) string { return body }

func (m *ansiMarker) Empty() string { return "" }

func (m *ansiMarker) state(s slip.BannerState) string {
	switch s {
	case slip.BannerError:
		return m.invalid.Sprint(string(s))
	case slip.BannerWarn:
		return m.ambig.Sprint(string(s))
	default:
		return m.ok.Sprint(string(s))
	}
}
