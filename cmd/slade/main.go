// Command slade is a CLI over the archive/mapdata/mapformat packages:
// list, extract, and convert the contents of WAD/ZIP/VWAD/directory
// archives, mirroring the teacher's cmd/sqfs tool but spanning four
// archive formats instead of one (spec.md §6).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	sladeconfig "github.com/sirjuddington/slade-core/config"
)

var (
	cfgFile string
	cfg     sladeconfig.Config
)

var rootCmd = &cobra.Command{
	Use:   "slade",
	Short: "Inspect and edit SLADE-compatible archives and maps from the command line",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := sladeconfig.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml)")
	rootCmd.AddCommand(lsCmd, catCmd, infoCmd, extractCmd, convertCmd)
	if mountCmd != nil {
		rootCmd.AddCommand(mountCmd)
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
