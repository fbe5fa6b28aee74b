package main

import (
	"github.com/spf13/cobra"
)

type cliOptions struct {
	serverURL string
	timeout   int
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "kbctl",
		Short: "CLI for the CTO coach knowledge base",
		Long: `kbctl talks to the knowledge base HTTP API.
It uploads documents, searches them, and runs coaching chat sessions.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.serverURL, "server", "http://localhost:8080", "knowledge base API URL")
	root.PersistentFlags().IntVar(&opts.timeout, "timeout", 120, "request timeout in seconds")

	root.AddCommand(
		newHealthCmd(opts),
		newUploadCmd(opts),
		newListCmd(opts),
		newSearchCmd(opts),
		newCategoriesCmd(opts),
		newSessionCmd(opts),
		newAskCmd(opts),
		newHistoryCmd(opts),
		newWatchCmd(),
	)
	return root
}
