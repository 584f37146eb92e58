// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codeberg.org/pixivfe/biliapi/config"
	"codeberg.org/pixivfe/biliapi/core"
	"codeberg.org/pixivfe/biliapi/core/apierror"
	"codeberg.org/pixivfe/biliapi/core/retry"
)

// Exit codes.
const (
	exitFailure = 1
	exitAPI     = 2
	exitAuth    = 3
)

// app holds what every subcommand needs.
type app struct {
	configPath string
	cookie     string
	format     string
	retries    uint64

	client *core.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "biliapi",
		Short:         "Call Bilibili web API endpoints",
		Version:       config.BuildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to config.yaml")
	flags.StringVar(&a.cookie, "cookie", "", "Cookie header of a logged-in session")
	flags.StringVarP(&a.format, "output", "o", formatJSON, "output format: json or yaml")
	flags.Uint64Var(&a.retries, "retries", 0, "retries after the first attempt of a read call on server and network errors")

	root.AddCommand(
		newNavCmd(a),
		newUserCmd(a),
		newVideoCmd(a),
		newSearchCmd(a),
		newSignCmd(a),
		newTicketCmd(a),
	)

	return root
}

func (a *app) setup() error {
	if a.format != formatJSON && a.format != formatYAML {
		return fmt.Errorf("%w: %q", errUnknownFormat, a.format)
	}

	cfg := &config.ClientConfig{}
	if err := cfg.LoadConfig(a.configPath); err != nil {
		return err
	}

	if a.cookie != "" {
		cfg.Basic.Cookie = a.cookie
	}

	client, err := core.NewClient(cfg)
	if err != nil {
		return err
	}

	a.client = client

	return nil
}

// retryPolicy is the default policy limited to the --retries flag.
func (a *app) retryPolicy() retry.Policy {
	policy := retry.DefaultPolicy()
	policy.MaxRetries = a.retries

	return policy
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	apiErr, ok := apierror.As(err)
	if !ok {
		return exitFailure
	}

	switch {
	case apiErr.Category.NeedsReauth():
		return exitAuth
	case apiErr.Kind == apierror.KindAPI:
		return exitAPI
	default:
		return exitFailure
	}
}
