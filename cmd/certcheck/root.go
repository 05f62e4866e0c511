package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for certcheck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certcheck",
		Short: "Check HTTP and HTTPS availability of domains",
		Long: `certcheck sends a GET request to http://, https://, http://www. and
https://www. of every domain at the same time and prints each result as
soon as it arrives: status codes, redirect targets, timeouts and
certificate errors.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
