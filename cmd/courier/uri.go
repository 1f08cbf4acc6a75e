package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newURICmd(g *globalOptions) *cobra.Command {
	var opts requestOptions

	cmd := &cobra.Command{
		Use:   "uri URL",
		Short: "Print the URL a request would be sent to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.buildClient()
			if err != nil {
				return err
			}

			cfg, err := opts.config("get", args[0])
			if err != nil {
				return err
			}

			uri, err := c.GetURI(cfg)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), uri)
			return err
		},
	}

	cmd.Flags().StringArrayVarP(&opts.params, "query", "q", nil, `query parameter as "key=value", repeatable`)

	return cmd
}
