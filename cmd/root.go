package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mailsift",
	Short: "Bulk email verification",
	Long:  "Verifies bulk lists of email addresses via syntax, disposable-domain, MX and optional live SMTP checks, as a one-shot batch command or an asynchronous job service.",
}

// Execute runs the root Cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
