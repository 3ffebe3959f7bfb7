package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/webforum/forumui/devapi"
)

var (
	httpAddr   string
	bcryptCost int
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "forumdev",
		Short:        "In-memory forum API for local development",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := devapi.NewServer(devapi.NewStore(bcryptCost))
			e.HideBanner = true
			fmt.Printf("forum API listening on %s\n", httpAddr)
			return e.Start(httpAddr)
		},
	}
	flags := rootCmd.Flags()
	flags.StringVar(&httpAddr, "addr", ":8080", "HTTP server address")
	flags.IntVar(&bcryptCost, "bcrypt-cost", 0, "bcrypt cost for stored passwords, 0 for the default")
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
