package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raymyers/cminus/pkg/cabs"
	"github.com/raymyers/cminus/pkg/config"
	"github.com/raymyers/cminus/pkg/diag"
	"github.com/raymyers/cminus/pkg/lexer"
	"github.com/raymyers/cminus/pkg/parser"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var version = "0.1.0"

// Debug flags for dumping front end output
var (
	dTokens bool
	dParse  bool
	dYAML   bool
)

var (
	noFold     bool
	colorOut   bool
	configPath string
)

// ErrFailed is returned when the input has lexical or syntax errors. The
// diagnostics themselves have already been written.
var ErrFailed = errors.New("compilation failed")

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cminus: %v\n", err)
		return 1
	}
	return 0
}

// debugFlagNames lists the dump flags that also accept a single dash
var debugFlagNames = []string{"dtokens", "dparse", "dyaml"}

// normalizeFlags converts single-dash dump flags like -dparse to --dparse
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		for _, flagName := range debugFlagNames {
			if arg == "-"+flagName {
				result[i] = "--" + flagName
				break
			}
		}
		if result[i] == "" {
			result[i] = arg
		}
	}
	return result
}

// dashedNames lets --no_fold mean --no-fold
func dashedNames(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cminus [file]",
		Short: "cminus parses C-Minus programs",
		Long: `cminus tokenizes and parses a C-Minus source file with an
LALR(1) parser, folds constant expressions and optionally dumps the
tokens, the reprinted source or the syntax tree as YAML.

Use "-" as the file to read standard input.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				cmd.Help()
				return nil
			}
			filename := args[0]

			src, err := readSource(filename, cmd.InOrStdin())
			if err != nil {
				return err
			}

			format := cfg.Output.Format
			switch {
			case dTokens:
				format = "tokens"
			case dParse:
				format = "source"
			case dYAML:
				format = "yaml"
			}

			styles := newDiagStyles(errOut, cfg.Output.Color)
			lexOpts := []lexer.Option{
				lexer.WithErrorHandler(styles.handler(errOut, filename)),
				lexer.WithLineComments(cfg.Lexer.LineComments),
				lexer.WithUnterminatedCommentError(cfg.Lexer.UnterminatedComment),
			}

			if format == "tokens" {
				return doTokens(src, lexOpts, out)
			}

			tu, err := parseSource(filename, src, cfg, lexOpts, styles.handler(errOut, filename))
			if err != nil {
				return err
			}

			switch format {
			case "source":
				return doParse(filename, tu, out, errOut)
			case "yaml":
				return cabs.FprintYAML(out, tu)
			}
			fmt.Fprintf(errOut, "cminus: %s: %d definitions\n", filename, len(tu.Decls))
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.Flags().SetNormalizeFunc(dashedNames)

	rootCmd.Flags().BoolVarP(&dTokens, "dtokens", "", false, "Dump tokens")
	rootCmd.Flags().BoolVarP(&dParse, "dparse", "", false, "Dump after parsing")
	rootCmd.Flags().BoolVarP(&dYAML, "dyaml", "", false, "Dump the syntax tree as YAML")

	rootCmd.Flags().BoolVar(&noFold, "no-fold", false, "Disable constant folding")
	rootCmd.Flags().BoolVar(&colorOut, "color", false, "Color diagnostics")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Read settings from a TOML file")

	return rootCmd
}

// loadConfig reads --config, or the defaults, and applies the flags on top
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, err
		}
	}
	if noFold {
		cfg.Parser.Fold = false
	}
	if cmd.Flags().Changed("color") {
		cfg.Output.Color = colorOut
	}
	return cfg, nil
}

func readSource(filename string, stdin io.Reader) (string, error) {
	var content []byte
	var err error
	if filename == "-" {
		content, err = io.ReadAll(stdin)
	} else {
		content, err = os.ReadFile(filename)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", filename, err)
	}
	return string(content), nil
}

// parseSource parses src, reporting diagnostics through h
func parseSource(filename, src string, cfg *config.Config, lexOpts []lexer.Option, h diag.Handler) (*cabs.TranslationUnit, error) {
	opts := []parser.Option{parser.WithErrorHandler(h)}
	if !cfg.Parser.Fold {
		opts = append(opts, parser.WithFolder(nil))
	}
	p := parser.New(lexer.New(src, lexOpts...), opts...)
	tu, err := p.ParseTranslationUnit()
	if err != nil {
		return nil, fmt.Errorf("%s: %w with %d errors", filename, ErrFailed, len(p.Errors()))
	}
	return tu, nil
}

func doTokens(src string, lexOpts []lexer.Option, out io.Writer) error {
	l := lexer.New(src, lexOpts...)
	if err := lexer.Dump(out, l.All()); err != nil {
		return err
	}
	if n := len(l.Errors()); n > 0 {
		return fmt.Errorf("%w with %d errors", ErrFailed, n)
	}
	return nil
}

// doParse prints the tree as source to a .parsed.c file and to out
func doParse(filename string, tu *cabs.TranslationUnit, out, errOut io.Writer) error {
	if filename != "-" {
		outputFilename := parsedOutputFilename(filename)
		outFile, err := os.Create(outputFilename)
		if err != nil {
			fmt.Fprintf(errOut, "cminus: error creating %s: %v\n", outputFilename, err)
			return err
		}
		defer outFile.Close()
		cabs.NewPrinter(outFile).PrintTranslationUnit(tu)
	}

	cabs.NewPrinter(out).PrintTranslationUnit(tu)
	return nil
}

// parsedOutputFilename returns the output filename for -dparse:
// input.c -> input.parsed.c
func parsedOutputFilename(filename string) string {
	for _, ext := range []string{".cm", ".c"} {
		if base, ok := strings.CutSuffix(filename, ext); ok {
			return base + ".parsed.c"
		}
	}
	return filename + ".parsed.c"
}
