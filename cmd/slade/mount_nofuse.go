//go:build !fuse

package main

import "github.com/spf13/cobra"

// mountCmd is nil when built without the fuse tag; main skips adding
// it, matching archive/fusefs.go's own //go:build fuse gate.
var mountCmd *cobra.Command
