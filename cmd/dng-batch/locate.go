package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dng-batch/internal/converter"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Print the Adobe DNG Converter binary that convert would use",
	Long: `Locate resolves the converter the same way convert does: the configured
converter_path, then $` + converter.EnvPath + `, then the standard install
location for this OS, then PATH. It exits non-zero when nothing is found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := converter.Locate(viper.GetString("converter_path"))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(locateCmd)
}
