//go:build fuse

package main

import (
	"github.com/spf13/cobra"

	"github.com/sirjuddington/slade-core/archive"
)

var mountCmd = &cobra.Command{
	Use:   "mount <archive> <mountpoint>",
	Short: "Mount an archive read-only onto a host directory via FUSE",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArchive(args[0])
		if err != nil {
			return err
		}
		server, err := archive.Mount(a, args[1])
		if err != nil {
			return err
		}
		server.Wait()
		return nil
	},
}
