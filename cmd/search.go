package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"orbitaledge/internal/clients"
	"orbitaledge/internal/geo"
)

func newSearchCmd(a *app) *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "search <aoi.geojson|->",
		Short: "Search the catalog with an uploaded area of interest",
		Long: `Reads a GeoJSON geometry, Feature or FeatureCollection, reduces it to a
single Polygon or MultiPolygon the same way the map UI does, and prints
the matching catalog entries.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			geometry, err := geo.ExtractAOI(raw)
			if err != nil {
				return err
			}

			base := a.cfg.Proxy.BackendURL
			if backend != "" {
				base = backend
			}
			client := clients.NewBackendClient(base, a.cfg.Proxy.Timeout)

			resp, err := client.SearchImages(cmd.Context(), geometry)
			if err != nil {
				return err
			}
			if !resp.OK() {
				return fmt.Errorf("search failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(resp.Body))
			}

			var out bytes.Buffer
			if err := json.Indent(&out, resp.Body, "", "  "); err != nil {
				out.Reset()
				out.Write(resp.Body)
			}
			out.WriteByte('\n')
			_, err = out.WriteTo(cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "API base URL (overrides BACKEND_URL)")

	return cmd
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
