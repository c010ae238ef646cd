package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <archive>",
	Short: "Show format, entry count, and detected maps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArchive(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("format:   %s\n", a.FormatID())
		fmt.Printf("entries:  %d\n", a.NumEntries())
		fmt.Printf("readonly: %v\n", a.ReadOnly())
		maps := a.DetectMaps()
		if len(maps) == 0 {
			return nil
		}
		fmt.Println("maps:")
		for _, m := range maps {
			fmt.Printf("  %-20s %s\n", m.Name, m.Format)
		}
		return nil
	},
}
