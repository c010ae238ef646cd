package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sirjuddington/slade-core/archive"
)

var lsCmd = &cobra.Command{
	Use:   "ls <archive> [path]",
	Short: "List entries in an archive",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArchive(args[0])
		if err != nil {
			return err
		}
		dir := a.Root()
		if len(args) == 2 {
			if c := a.Root().Child(args[1]); c != nil {
				dir = c
			} else {
				return fmt.Errorf("no such directory: %s", args[1])
			}
		}
		for _, d := range dir.Dirs() {
			fmt.Printf("%s/\n", d.Name())
		}
		for _, e := range dir.Entries() {
			fmt.Printf("%-40s %10d\n", e.Name(), e.Size())
		}
		return nil
	},
}

func openArchive(path string) (*archive.Archive, error) {
	return archive.Open(path, archive.OpenOptions{
		IwadLock:          cfg.IwadLock,
		ZipMaxEntrySizeMB: cfg.MaxEntrySizeMB,
		DirIgnoreHidden:   cfg.ArchiveDirIgnoreHidden,
	}, archive.NoopProgress)
}
