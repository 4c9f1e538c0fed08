// Package cmd implements the filtx command line interface: an interactive
// filter prompt over a schema file, an offline check command, and version
// output.
package cmd

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/filtx/pkg/logger"
	"github.com/oakwood-commons/filtx/pkg/settings"
	"github.com/oakwood-commons/filtx/pkg/tui"
)

var (
	schemaPath   string
	filtersPath  string
	outputFormat string
	themeName    string
	noColor      bool
	widgetWidth  int
	debug        bool

	rootCtx = context.Background()
)

var rootCmd = &cobra.Command{
	Use:   "filtx",
	Short: "Build filter expressions interactively",
	Long: `filtx runs the filter builder against a schema file and prints the
committed filters when you leave (ctrl+d, or esc at an empty prompt).

Schema files declare the filterable fields, their operators, candidate
values, and optional CEL rules; they load from YAML, JSON, or TOML.`,
	Example: "\n  filtx --schema examples/schema.yaml\n  filtx --schema schema.yaml --filters saved.json --output query\n  filtx --schema schema.yaml --output toml --no-color\n  filtx check --schema schema.yaml --filters saved.json\n  filtx describe --schema schema.yaml\n",
	Args:    cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		// Map CLI debug flag to log level: debug => zap.DebugLevel (-1), else zap.InfoLevel (0)
		var level int8 = 0
		if debug {
			level = -1
		}
		lgr := logger.Get(level)
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())
		rootCtx = logger.WithLogger(context.Background(), lgr)
	},
	RunE: runRoot,
}

func runRoot(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(schemaPath) == "" {
		return cmd.Help()
	}
	if err := validateOutputFormat(outputFormat); err != nil {
		return err
	}

	schema, err := loadSchema(rootCtx, schemaPath)
	if err != nil {
		return err
	}
	exprs, err := loadFilters(rootCtx, filtersPath, schema)
	if err != nil {
		return err
	}

	list, err := tui.Run(tui.Config{
		Schema:      schema,
		Expressions: exprs,
		ThemeName:   themeName,
		NoColor:     noColor,
		Width:       widgetWidth,
	})
	if err != nil {
		return err
	}

	out, err := renderFilters(list, schema, outputFormat)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print filtx version",
	RunE: func(_ *cobra.Command, _ []string) error {
		fmt.Println(cliVersionString()) //nolint:forbidigo
		return nil
	},
}

func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, go %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, runtime.Version())
}

func init() { //nolint:gochecknoinits
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "", "path to a schema file (YAML, JSON, or TOML)")
	rootCmd.PersistentFlags().StringVar(&filtersPath, "filters", "", "path to a saved filter list to preload")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "json", "output format: json|yaml|toml|query|display")
	rootCmd.Flags().StringVar(&themeName, "theme", "", "theme preset or YAML theme file (presets: "+tui.ThemeNames()+"; default dark)")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable color output")
	rootCmd.Flags().IntVar(&widgetWidth, "width", 0, "widget width in columns (0 = auto-detect)")
	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(describeCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
