/*
lrgen is a console utility translating grammar description to parser tables in Go or JSON file.
Usage is

	lrgen [-c <file>] ([-j] | [-p <name>] [-v <name>]) [-o <name>] [--strict] [--workers <n>] [--goal <name>]... <file>
	lrgen --check <tables.json> <file>

-c <file> loads TOML configuration, flags override configuration values;

-j flag instructs lrgen to output JSON file instead of Go source;

-o <name> defines output file name, default is the name of input file with .go or .json suffix;

-p <name> defines Go package name, default is directory name of output file;

-v <name> defines generated Go variable name of type *tables.Tables, default is the first goal name;

--check compares tables compiled from grammar with stored JSON tables, exits with code 1 if they differ;

<file> defines grammar definition file parsable by langdef.Parse().
*/
package main

import (
	"fmt"
	"os"

	"github.com/pingcap/errors"
	"github.com/spf13/cobra"

	"github.com/ava12/lrx/config"
	"github.com/ava12/lrx/log"
	"github.com/ava12/lrx/lrgen"
)

type options struct {
	configFile string
	json       bool
	output     string
	pkg        string
	varName    string
	strict     bool
	workers    int
	goals      []string
	check      string
	logLevel   string
}

// errMismatch is returned when stored tables differ from compiled ones.
var errMismatch = errors.New("stored tables are out of date")

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "lrgen [flags] <file>",
		Short:         "Translates grammar description to LR parser tables",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "TOML configuration file")
	flags.BoolVarP(&opts.json, "json", "j", false, "output JSON instead of Go")
	flags.StringVarP(&opts.output, "output", "o", "", "output file name, default is the name of input file with .go or .json suffix")
	flags.StringVarP(&opts.pkg, "package", "p", "", "Go package name, default is dir name of output file")
	flags.StringVarP(&opts.varName, "var", "v", "", "Go variable name, default is the first goal name")
	flags.BoolVar(&opts.strict, "strict", false, "report every shift/reduce and reduce/reduce conflict as error")
	flags.IntVar(&opts.workers, "workers", 0, "number of goroutines computing action rows, default is GOMAXPROCS")
	flags.StringSliceVar(&opts.goals, "goal", nil, "goal nonterminal, overrides goal declarations")
	flags.StringVar(&opts.check, "check", "", "compare compiled tables with stored JSON tables instead of writing output")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	return cmd
}

func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	conf := config.Default()
	if opts.configFile != "" {
		var e error
		conf, e = config.Load(opts.configFile)
		if e != nil {
			return nil, e
		}
	}

	flags := cmd.Flags()
	if flags.Changed("json") {
		conf.Emit.Format = config.FormatGo
		if opts.json {
			conf.Emit.Format = config.FormatJSON
		}
	}
	if flags.Changed("output") {
		conf.Emit.Output = opts.output
	}
	if flags.Changed("package") {
		conf.Emit.Package = opts.pkg
	}
	if flags.Changed("var") {
		conf.Emit.Var = opts.varName
	}
	if flags.Changed("strict") {
		conf.Build.Strict = opts.strict
	}
	if flags.Changed("workers") {
		conf.Build.Workers = opts.workers
	}
	if flags.Changed("goal") {
		conf.Build.Goals = opts.goals
	}
	if flags.Changed("log-level") {
		conf.Log.Level = opts.logLevel
	}

	return conf, conf.Validate()
}

func run(cmd *cobra.Command, opts *options, grammarPath string) error {
	conf, e := loadConfig(cmd, opts)
	if e != nil {
		return e
	}

	e = log.InitLogger(&conf.Log)
	if e != nil {
		return e
	}

	if opts.check != "" {
		same, e := lrgen.Check(grammarPath, opts.check, conf)
		if e != nil {
			return e
		}
		if !same {
			return errMismatch
		}
		fmt.Fprintln(cmd.OutOrStdout(), opts.check, "is up to date")
		return nil
	}

	outputPath, e := lrgen.Generate(grammarPath, conf)
	if e != nil {
		return e
	}
	fmt.Fprintln(cmd.OutOrStdout(), "written", outputPath)
	return nil
}

func main() {
	e := newRootCommand().Execute()
	if e == errMismatch {
		fmt.Fprintln(os.Stderr, e.Error())
		os.Exit(1)
	}
	if e != nil {
		fmt.Fprintln(os.Stderr, e.Error())
		os.Exit(3)
	}
}
