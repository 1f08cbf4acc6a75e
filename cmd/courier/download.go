package main

import (
	"crypto/sha256"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/adamwoolhether/courier/client/download"
)

func newDownloadCmd(g *globalOptions) *cobra.Command {
	var (
		checksum     string
		progress     bool
		skipExisting bool
	)

	cmd := &cobra.Command{
		Use:   "download URL DEST",
		Short: "Stream a response body to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.buildClient()
			if err != nil {
				return err
			}

			opts := []download.Option{
				download.WithLogger(slog.New(slog.NewTextHandler(g.stderr, nil))),
			}
			if checksum != "" {
				opts = append(opts, download.WithChecksum(sha256.New(), checksum))
			}
			if progress {
				opts = append(opts, download.WithProgress())
			}
			if skipExisting {
				opts = append(opts, download.WithSkipExisting())
			}

			if err := download.File(cmd.Context(), c, args[0], args[1], nil, opts...); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "saved", args[1])
			return err
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&checksum, "sha256", "", "expected hex-encoded SHA-256 of the body")
	fs.BoolVar(&progress, "progress", false, "log download progress")
	fs.BoolVar(&skipExisting, "skip-existing", false, "do nothing when DEST exists")

	return cmd
}
