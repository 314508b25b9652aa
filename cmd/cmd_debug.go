// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jcodagnone/geofacts/spatial"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugForwardCmd = &cobra.Command{
	Use:   "forward [location...]",
	Short: "Resolve locations to coordinates using the configured provider",
	Long: `Resolves each location given as argument, or one per line from stdin when
none is given, and prints the location followed by the result.

$ echo Paris | geofacts debug forward
Paris		{"latitude":48.85,"longitude":2.35}
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolveGoogleKey(runContext(cmd), cfg)

		geocoder, err := newGeocoder(cfg)
		if err != nil {
			return err
		}

		lookup := func(location string) {
			point, err := geocoder.Forward(runContext(cmd), location)
			printResult(cmd.OutOrStdout(), location, point, err)
		}

		if len(args) > 0 {
			for _, location := range args {
				lookup(location)
			}

			return nil
		}

		return eachLine(cmd.InOrStdin(), "Enter locations to resolve, one per line…", lookup)
	},
}

var debugReverseCmd = &cobra.Command{
	Use:   "reverse <latitude> <longitude>",
	Short: "Resolve coordinates to a place label using the configured provider",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolveGoogleKey(runContext(cmd), cfg)

		geocoder, err := newGeocoder(cfg)
		if err != nil {
			return err
		}

		coords := spatial.LatLng{Latitude: args[0], Longitude: args[1]}
		place, err := geocoder.Reverse(runContext(cmd), coords)
		printResult(cmd.OutOrStdout(), coords.Query(), place, err)

		return nil
	},
}

var debugFactoidCmd = &cobra.Command{
	Use:   "factoid <message>",
	Short: "Ask the chat provider for a factoid",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args, " ")

		factoid, err := newFactoids(cfg).Generate(runContext(cmd), message)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), factoid)

		return nil
	},
}

func printResult(w io.Writer, input string, result any, err error) {
	if err != nil {
		fmt.Fprintf(w, "%s\t%q\n", input, err)

		return
	}

	s, err := json.Marshal(result)
	if err != nil {
		fmt.Fprintf(w, "%s\t%q\n", input, err)

		return
	}

	fmt.Fprintf(w, "%s\t\t%s\n", input, s)
}

// eachLine calls fn for every non blank line of r.
func eachLine(r io.Reader, prompt string, fn func(string)) error {
	if f, ok := r.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fmt.Fprintln(os.Stderr, prompt)
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fn(line)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugForwardCmd)
	debugCmd.AddCommand(debugReverseCmd)
	debugCmd.AddCommand(debugFactoidCmd)
}
