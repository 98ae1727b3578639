package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/quotegen/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize quotegen configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to pick a provider, model and admin secret, and writes a .quotegen.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.RunWizard(cfgFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %s (provider=%s, model=%s)\n", cfgFile, cfg.Provider, cfg.Model)
		if env := config.APIKeyEnvVar(cfg.Provider); env != "" && os.Getenv(env) == "" && cfg.APIKey == "" {
			fmt.Fprintf(os.Stderr, "Remember to export %s before generating quotes.\n", env)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
