package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/catch-arcade/internal/config"
)

var flagDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after the search order and environment
overrides have been applied.

Search order:
  --config <path> -> ~/.catch/config.yaml -> ./configs/catch.yaml -> built-in

Environment:
  CATCH_API_BASE   remote service base URL
  CATCH_LOG_LEVEL  log level
  CATCH_DB         local database path

Examples:
  catch config
  catch config --defaults > ~/.catch/config.yaml`,
	Args: cobra.NoArgs,
	Run:  runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagDefaults, "defaults", false, "Print the built-in defaults instead")
}

func runConfig(_ *cobra.Command, _ []string) {
	if flagDefaults {
		os.Stdout.Write(config.DefaultYAML())
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		fail("encoding config: %v", err)
	}
	fmt.Print(string(out))
	fmt.Println("# database:", dbPath())
}
