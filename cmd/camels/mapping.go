package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/camels-de1h/internal/csvio"
	"github.com/couchcryptid/camels-de1h/internal/domain"
)

func newResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve IDENTIFIER",
		Short: "Print the NUTS ID of a NUTS ID or provider ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.maps.Resolve(args[0]); err != nil {
				return err
			}
			res := a.maps.Classify(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", res.NutsID, res.ProviderID, res.As)
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var region string
	cmd := &cobra.Command{
		Use:   "register PROVIDER_ID",
		Short: "Allocate a NUTS ID for a provider ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := domain.ParseRegion(region)
			if err != nil {
				return err
			}
			id, err := a.maps.Register(args[0], r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&region, "region", "", "NUTS level 1 region code, e.g. DE1")
	_ = cmd.MarkFlagRequired("region")
	return cmd
}

func newMappingCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Print the provider ID to NUTS ID mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch format {
			case "csv":
				return csvio.WriteMapping(cmd.OutOrStdout(), a.maps.Entries())
			case "json":
				entries, err := a.maps.ReadMirror()
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "    ")
				return enc.Encode(entries)
			default:
				return fmt.Errorf("format %q: must be csv or json: %w", format, domain.ErrInvalidArgument)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv or json")
	return cmd
}
