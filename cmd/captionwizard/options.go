package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/csheth/captionwizard/internal/caption"
)

func newOptionsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "options",
		Short: "List the tones, audiences and platforms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printOptions(cmd.OutOrStdout(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func printOptions(w io.Writer, asJSON bool) error {
	groups := []struct {
		Name    string           `json:"name"`
		Options []caption.Option `json:"options"`
	}{
		{"tones", caption.Tones},
		{"audiences", caption.Audiences},
		{"platforms", caption.Platforms},
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(groups)
	}
	for i, group := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s:\n", group.Name)
		for _, opt := range group.Options {
			fmt.Fprintf(w, "  %-20s %s\n", opt.Value, opt.Label)
		}
	}
	return nil
}
