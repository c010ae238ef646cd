package main

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:   "cat <archive> <entry path>",
	Short: "Print an entry's contents to stdout",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArchive(args[0])
		if err != nil {
			return err
		}
		dirPath, name := path.Split(strings.Trim(args[1], "/"))
		dir := a.Root()
		if dirPath != "" {
			if c := a.Root().Child(strings.TrimSuffix(dirPath, "/")); c != nil {
				dir = c
			} else {
				return fmt.Errorf("no such directory: %s", dirPath)
			}
		}
		for _, e := range dir.Entries() {
			if e.Name() == name {
				data, err := e.Data()
				if err != nil {
					return err
				}
				_, err = os.Stdout.Write(data)
				return err
			}
		}
		return fmt.Errorf("no such entry: %s", args[1])
	},
}
