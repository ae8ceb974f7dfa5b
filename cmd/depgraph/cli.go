package main

import "flag"

const versionString = "0.1.0"
const defaultConfigPath = "./depgraph.toml"

type cliOptions struct {
	configPath string
	format     string
	out        string
	noLSP      bool
	verbose    bool
	version    bool
	files      []string
}

func parseOptions(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("depgraph", flag.ContinueOnError)

	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.StringVar(&opts.format, "format", "", "Output format: json, dot, mermaid, plantuml, tsv or tree")
	fs.StringVar(&opts.out, "out", "", "Write output to this path instead of stdout (a directory when several files are given)")
	fs.BoolVar(&opts.noLSP, "no-lsp", false, "Skip the language server; exports get no references")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.files = fs.Args()
	return opts, nil
}
