package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sirjuddington/slade-core/archive"
)

var extractCmd = &cobra.Command{
	Use:   "extract <archive> <destdir>",
	Short: "Extract every entry in an archive to a destination directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArchive(args[0])
		if err != nil {
			return err
		}
		dest := args[1]
		for _, e := range a.EntryTreeAsList(nil) {
			if e.ParentDir() == nil {
				continue
			}
			rel := filepath.Join(append(dirParts(e.ParentDir()), e.Name())...)
			out := filepath.Join(dest, rel)
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}
			data, err := e.Data()
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
		}
		return nil
	},
}

func dirParts(d *archive.Dir) []string {
	if d == nil || d.Parent() == nil {
		return nil
	}
	return append(dirParts(d.Parent()), d.Name())
}
