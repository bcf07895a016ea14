package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"jsbind/pkg/bindgen"
	"jsbind/pkg/driver"
)

const usage = `Usage:
  jsbind -e "eq 1, \"1\""          run one playground line and exit
  jsbind [repl]                    start the operator playground
  jsbind run <file>                run a playground script
  jsbind gen -manifest m.yaml [-o out.go] [-package name]
                                   generate typed wrappers from a manifest`

func main() {
	exprFlag := flag.String("e", "", "Run the given playground line and exit")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	if *exprFlag != "" {
		session := driver.NewSession(os.Stdout)
		if !session.DisplayResult(session.Eval(*exprFlag)) {
			os.Exit(70) // Exit code 70: internal software error
		}
		return
	}

	switch flag.Arg(0) {
	case "", "repl":
		runRepl()
	case "run":
		if flag.NArg() != 2 {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(64) // Exit code 64: command line usage error
		}
		runFile(flag.Arg(1))
	case "gen":
		runGen(flag.Args()[1:])
	default:
		fmt.Fprintf(os.Stderr, "jsbind: unknown command %q\n%s\n", flag.Arg(0), usage)
		os.Exit(64)
	}
}

// runRepl starts the interactive playground on a terminal and falls back to
// line-by-line evaluation when stdin is piped.
func runRepl() {
	session := driver.NewSession(os.Stdout)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		if !session.RunLines(os.Stdin) {
			os.Exit(70)
		}
		return
	}
	if err := session.RunRepl(driver.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "jsbind: %s\n", err)
		os.Exit(70)
	}
}

func runFile(filename string) {
	if !runScript(filename) {
		os.Exit(70)
	}
}

// runScript evaluates a playground script and reports whether every line
// succeeded.
func runScript(filename string) bool {
	f, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read file '%s': %s\n", filename, err.Error())
		return false
	}
	defer f.Close()
	return driver.NewSession(os.Stdout).RunLines(f)
}

func runGen(argv []string) {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	manifestFlag := fs.String("manifest", "", "YAML manifest describing the wrappers")
	outFlag := fs.String("o", "", "Output file (default: stdout)")
	pkgFlag := fs.String("package", "", "Package name when the manifest names none")
	_ = fs.Parse(argv)

	if *manifestFlag == "" || fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(64)
	}

	f, err := os.Open(*manifestFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read manifest '%s': %s\n", *manifestFlag, err.Error())
		os.Exit(70)
	}
	m, err := bindgen.LoadManifest(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", *manifestFlag, err)
		os.Exit(70)
	}

	cfg := bindgen.DefaultConfig()
	if *pkgFlag != "" {
		cfg.Package = strings.TrimSpace(*pkgFlag)
	}
	src, err := bindgen.Generate(cfg, m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", *manifestFlag, err)
		os.Exit(70)
	}

	if *outFlag == "" {
		os.Stdout.Write(src)
		return
	}
	if err := os.WriteFile(*outFlag, src, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write '%s': %s\n", *outFlag, err.Error())
		os.Exit(70)
	}
}
