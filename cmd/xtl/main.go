package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-json"
	"github.com/mattn/go-isatty"
	"github.com/sanity-io/litter"

	xtl "github.com/reoring/xtl"
	"github.com/reoring/xtl/decl"
	"github.com/reoring/xtl/i18n"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "check":
		checkCmd(os.Args[2:])
	case "layout":
		layoutCmd(os.Args[2:])
	case "cast":
		castCmd(os.Args[2:])
	case "watch":
		watchCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "xtl CLI\n\nUsage:\n  xtl check  -f universe.yaml S T\n  xtl layout -f universe.yaml T\n  xtl cast   -f universe.yaml -object T -from S -to U\n  xtl watch  -f universe.yaml S T\n\nCommon flags:\n  -v         verbose logs on stderr\n  -lang      message language (en, ja)\n  -no-color  disable colour (also NO_COLOR)\n  -dump      dump the resolved types involved")
}

// common holds the flags shared by every subcommand.
type common struct {
	file    string
	verbose bool
	lang    string
	noColor bool
	dump    bool
	align   int
	redecl  bool
}

func newFlagSet(name string) (*flag.FlagSet, *common) {
	c := &common{}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&c.file, "f", "", "universe file (YAML, or JSON with a .json extension)")
	fs.BoolVar(&c.verbose, "v", false, "enable verbose logs")
	fs.StringVar(&c.lang, "lang", "en", "message language (en, ja)")
	fs.BoolVar(&c.noColor, "no-color", false, "disable colour output")
	fs.BoolVar(&c.dump, "dump", false, "dump the resolved types involved")
	fs.IntVar(&c.align, "align", 0, "default class alignment (0 = pointer size)")
	fs.BoolVar(&c.redecl, "allow-redeclare", false, "accept identical redeclarations across documents")
	return fs, c
}

func (c *common) logf(format string, a ...any) {
	if c.verbose {
		fmt.Fprintf(os.Stderr, format+"\n", a...)
	}
}

func (c *common) load() *decl.Universe {
	if c.file == "" {
		fatalf("missing -f")
	}
	i18n.SetLanguage(c.lang)
	c.logf("loading %s", c.file)
	u, err := decl.Load(c.file, decl.Options{DefaultAlign: c.align, AllowRedeclare: c.redecl})
	if err != nil {
		fatalIssues(err)
	}
	c.logf("loaded %d types", len(u.Types()))
	return u
}

func (c *common) color() bool {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok || c.noColor {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func paint(on bool, code, s string) string {
	if !on {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func checkCmd(args []string) {
	fs, c := newFlagSet("check")
	_ = fs.Parse(args)
	if fs.NArg() != 2 {
		fs.Usage()
		os.Exit(2)
	}
	u := c.load()
	if c.dump {
		dump(u, fs.Arg(0), fs.Arg(1))
	}
	if !check(os.Stdout, u, fs.Arg(0), fs.Arg(1), c.color()) {
		os.Exit(1)
	}
}

// check prints whether s <: t and whether a cast from s to t is possible,
// and reports the latter.
func check(w io.Writer, u *decl.Universe, s, t string, color bool) bool {
	ok, err := u.IsSubtype(s, t)
	if err != nil {
		fmt.Fprintln(w, err)
		return false
	}
	fmt.Fprintf(w, "%s <: %s: %v\n", s, t, ok)
	if err := u.Check(s, t); err != nil {
		fmt.Fprintln(w, paint(color, "31", "cast: "+err.Error()))
		return false
	}
	fmt.Fprintln(w, paint(color, "32", "cast: ok"))
	return true
}

func layoutCmd(args []string) {
	fs, c := newFlagSet("layout")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	u := c.load()
	if c.dump {
		dump(u, fs.Arg(0))
	}
	if err := layout(os.Stdout, u, fs.Arg(0)); err != nil {
		fatalIssues(err)
	}
}

func layout(w io.Writer, u *decl.Universe, name string) error {
	l, err := u.Layout(name)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func castCmd(args []string) {
	fs, c := newFlagSet("cast")
	var object, from, to string
	fs.StringVar(&object, "object", "", "class of the complete object to allocate")
	fs.StringVar(&from, "from", "", "static class to view the object as first")
	fs.StringVar(&to, "to", "", "class to recover with a checked downcast")
	_ = fs.Parse(args)
	if object == "" || to == "" {
		fs.Usage()
		os.Exit(2)
	}
	if from == "" {
		from = object
	}
	u := c.load()
	if c.dump {
		dump(u, object, from, to)
	}
	found, err := cast(os.Stdout, u, object, from, to)
	if err != nil {
		fatalIssues(err)
	}
	if !found {
		os.Exit(1)
	}
}

// cast allocates an object, upcasts its pointer to from and downcasts the
// result to to, printing each address.
func cast(w io.Writer, u *decl.Universe, object, from, to string) (bool, error) {
	o, err := u.New(object)
	if err != nil {
		return false, err
	}
	p, err := u.Upcast(o.Ptr(), from)
	if err != nil {
		return false, err
	}
	fmt.Fprintf(w, "upcast:   %s\n", p)
	q, ok := u.Downcast(p, to)
	if !ok {
		fmt.Fprintln(w, "downcast: absent")
		return false, nil
	}
	fmt.Fprintf(w, "downcast: %s\n", q)
	return true, nil
}

func watchCmd(args []string) {
	fs, c := newFlagSet("watch")
	_ = fs.Parse(args)
	if fs.NArg() != 2 || c.file == "" {
		fs.Usage()
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := watch(ctx, c, fs.Arg(0), fs.Arg(1)); err != nil {
		fatalf("watch: %v", err)
	}
}

// watch re-runs check every time the universe file is written, until ctx is
// done. The directory is watched so editors that replace the file are seen.
func watch(ctx context.Context, c *common, s, t string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(c.file)); err != nil {
		return err
	}
	run := func() {
		u, err := decl.Load(c.file, decl.Options{DefaultAlign: c.align, AllowRedeclare: c.redecl})
		if err != nil {
			fmt.Fprintln(os.Stdout, err)
			return
		}
		check(os.Stdout, u, s, t, c.color())
	}
	i18n.SetLanguage(c.lang)
	run()
	target := filepath.Clean(c.file)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			c.logf("changed: %s", ev)
			run()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logf("watch error: %v", err)
		}
	}
}

func dump(u *decl.Universe, names ...string) {
	for _, n := range names {
		t, ok := u.Lookup(n)
		if !ok {
			continue
		}
		fmt.Fprintln(os.Stderr, litter.Sdump(t))
	}
}

// fatalIssues prints one line per issue when err carries xtl.Issues.
func fatalIssues(err error) {
	if iss, ok := xtl.AsIssues(err); ok {
		for _, it := range iss {
			fmt.Fprintf(os.Stderr, "%s: %s: %s\n", it.Path, it.Code, it.Message)
		}
		os.Exit(1)
	}
	fatalf("%v", err)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
