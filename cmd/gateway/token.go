package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"aiproxy/internal/identity"
	"aiproxy/internal/platform/config"
)

var errTokenOutsideMockMode = errors.New("refusing to mint a development token outside mock mode")

func newTokenCmd(load func() (config.Config, error)) *cobra.Command {
	who := identity.MockIdentity

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a development access token (mock mode only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if !cfg.Identity.MockMode {
				return errTokenOutsideMockMode
			}
			codec, err := newCodec(cfg)
			if err != nil {
				return err
			}
			token, _, err := codec.Mint(who)
			if err != nil {
				return fmt.Errorf("mint token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&who.Subject, "subject", who.Subject, "token subject")
	cmd.Flags().StringVar(&who.Name, "name", who.Name, "display name claim")
	cmd.Flags().StringVar(&who.Email, "email", who.Email, "email claim")
	return cmd
}
