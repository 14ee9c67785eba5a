// Command musigctl drives the three-round MuSig protocol from a shell, one
// subcommand per protocol call, so the full signing ceremony can be
// exercised and inspected without writing Go. It is an adapter layer over
// the core packages (curve, transcript, keyagg, musig, verifier, wire), not
// part of the protocol itself — see SPEC_FULL.md §6 and §13.
package main

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var verbose bool

func randReader() io.Reader {
	return rand.Reader
}

func newRootCmd() *cobra.Command {
	cfg := NewConfig()

	root := &cobra.Command{
		Use:   "musigctl",
		Short: "Drive an interactive n-of-n Schnorr MuSig ceremony over BabyJubJub",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
			log.Debug().Str("home", cfg.Home).Msg("musigctl starting")
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newKeygenCmd(),
		newAggregateCmd(),
		newInitCmd(),
		newPrecommitCmd(),
		newRevealCmd(),
		newAggregateNonceCmd(),
		newSignCmd(),
		newCombineCmd(),
		newVerifyCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
