package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/adamwoolhether/courier/client"
)

type requestOptions struct {
	headers      []string
	params       []string
	data         string
	json         bool
	user         string
	responseType string
	maxRedirects int
	include      bool
	output       string
}

func newRequestCmd(g *globalOptions) *cobra.Command {
	var opts requestOptions

	cmd := &cobra.Command{
		Use:   "request METHOD URL",
		Short: "Send a request and print the response",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.buildClient()
			if err != nil {
				return err
			}

			cfg, err := opts.config(args[0], args[1])
			if err != nil {
				return err
			}

			resp, err := c.Request(cmd.Context(), cfg)
			if err != nil {
				if r, ok := client.ResponseFromError(err); ok {
					err = errors.Join(err, printResponse(cmd.OutOrStdout(), r, opts))
				}
				return err
			}

			return printResponse(cmd.OutOrStdout(), resp, opts)
		},
	}

	fs := cmd.Flags()
	fs.StringArrayVarP(&opts.headers, "header", "H", nil, `request header as "Name: value", repeatable`)
	fs.StringArrayVarP(&opts.params, "query", "q", nil, `query parameter as "key=value", repeatable`)
	fs.StringVarP(&opts.data, "data", "d", "", "request body, @file reads it from a file")
	fs.BoolVar(&opts.json, "json", false, "parse --data as JSON and send it as an object")
	fs.StringVarP(&opts.user, "user", "u", "", `basic auth credentials as "user:password"`)
	fs.StringVar(&opts.responseType, "response-type", "", "json, text or arraybuffer")
	fs.IntVar(&opts.maxRedirects, "max-redirects", 0, "redirects to follow, negative disables them")
	fs.BoolVarP(&opts.include, "include", "i", false, "print the status line and response headers")
	fs.StringVarP(&opts.output, "output", "o", "json", "format for decoded bodies: json or yaml")

	return cmd
}

func (o requestOptions) config(method, rawURL string) (*client.Config, error) {
	switch o.output {
	case "", "json", "yaml":
	default:
		return nil, fmt.Errorf("unknown output format %q", o.output)
	}

	cfg := &client.Config{
		URL:          rawURL,
		Method:       method,
		Headers:      client.Header{},
		ResponseType: o.responseType,
		MaxRedirects: o.maxRedirects,
	}

	for _, h := range o.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid header %q, want \"Name: value\"", h)
		}
		cfg.Headers.Set(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	if len(o.params) > 0 {
		params := url.Values{}
		for _, p := range o.params {
			key, value, ok := strings.Cut(p, "=")
			if !ok || key == "" {
				return nil, fmt.Errorf("invalid query parameter %q, want \"key=value\"", p)
			}
			params.Add(key, value)
		}
		cfg.Params = params
	}

	if o.user != "" {
		username, password, _ := strings.Cut(o.user, ":")
		cfg.Auth = &client.BasicAuth{Username: username, Password: password}
	}

	data, err := o.body()
	if err != nil {
		return nil, err
	}
	cfg.Data = data

	return cfg, nil
}

func (o requestOptions) body() (any, error) {
	raw := o.data
	if name, ok := strings.CutPrefix(raw, "@"); ok {
		b, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading body file: %w", err)
		}
		raw = string(b)
	}

	switch {
	case raw == "":
		return nil, nil
	case o.json:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("parsing --data as JSON: %w", err)
		}
		return v, nil
	}

	return raw, nil
}

func printResponse(w io.Writer, resp *client.Response, opts requestOptions) error {
	if opts.include {
		fmt.Fprintf(w, "%d %s\n", resp.Status, resp.StatusText)

		names := make([]string, 0, len(resp.Headers))
		for name := range resp.Headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "%s: %s\n", name, resp.Headers[name])
		}
		fmt.Fprintln(w)
	}

	switch data := resp.Data.(type) {
	case nil:
		return nil
	case string:
		_, err := fmt.Fprintln(w, data)
		return err
	case []byte:
		_, err := w.Write(data)
		return err
	}

	if opts.output == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resp.Data); err != nil {
			_ = enc.Close()
			return err
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp.Data)
}
