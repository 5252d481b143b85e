package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"restaurant-pos/config"
	"restaurant-pos/internal/core/domain"
	"restaurant-pos/internal/service"

	"github.com/spf13/cobra"
)

// errSignatureMismatch makes `verify` exit non-zero.
var errSignatureMismatch = errors.New("signature mismatch")

type rootOptions struct {
	passphrase    string
	hasPassphrase bool
	configFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "payfastctl",
		Short: "Inspect PayFast parameter signatures",
		Long: `Compute the canonical string and MD5 signature the payment API uses,
to compare against what the gateway or a storefront produced.

Parameters are given as key=value arguments or as one form-encoded string:
  payfastctl sign amount=149.99 "item_name=Table 4"
  payfastctl verify 'amount=149.99&item_name=Table+4&signature=...'`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.hasPassphrase = cmd.Flags().Changed("passphrase")
		},
	}

	root.PersistentFlags().StringVarP(&opts.passphrase, "passphrase", "p", "", "merchant passphrase (defaults to payfast.passphrase from config)")
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file path")

	root.AddCommand(canonicalCmd(opts))
	root.AddCommand(signCmd(opts))
	root.AddCommand(verifyCmd(opts))
	return root
}

func canonicalCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "canonical [params...]",
		Short: "Print the string that gets hashed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, passphrase, err := opts.resolve(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), service.NewMD5SignatureCodec().Canonicalize(params, passphrase))
			return nil
		},
	}
}

func signCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sign [params...]",
		Short: "Print the signature for the parameters",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, passphrase, err := opts.resolve(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), service.NewMD5SignatureCodec().Sign(params, passphrase))
			return nil
		},
	}
}

func verifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [params...]",
		Short: "Check the signature carried in the parameters",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, passphrase, err := opts.resolve(args)
			if err != nil {
				return err
			}

			codec := service.NewMD5SignatureCodec()
			ok, err := codec.Verify(params, passphrase)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "canonical: %s\n", codec.Canonicalize(params, passphrase))
			fmt.Fprintf(out, "received:  %s\n", params[domain.FieldSignature])
			fmt.Fprintf(out, "computed:  %s\n", codec.Sign(params, passphrase))
			if !ok {
				return errSignatureMismatch
			}
			fmt.Fprintln(out, "signature OK")
			return nil
		},
	}
}

// resolve parses the arguments and picks the passphrase: the flag when set,
// otherwise the configured one.
func (o *rootOptions) resolve(args []string) (domain.ParameterSet, string, error) {
	params, err := parseParams(args)
	if err != nil {
		return nil, "", err
	}
	if o.hasPassphrase {
		return params, o.passphrase, nil
	}

	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	return params, cfg.PayFast.Passphrase, nil
}

// parseParams accepts key=value arguments or a single form-encoded string.
// key=value arguments are taken literally, without percent-decoding.
func parseParams(args []string) (domain.ParameterSet, error) {
	if len(args) == 1 && strings.Contains(args[0], "&") {
		values, err := url.ParseQuery(args[0])
		if err != nil {
			return nil, fmt.Errorf("parse form-encoded parameters: %w", err)
		}
		return domain.ParameterSetFromValues(values), nil
	}

	params := make(domain.ParameterSet, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q: want key=value", arg)
		}
		params[key] = value
	}
	return params, nil
}
