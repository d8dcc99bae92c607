package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"bundleid/internal/hashing"
)

var hashCmd = &cobra.Command{
	Use:   "hash <input>",
	Short: "Print the digests bundleid derives ids from",
	Long: `Hash prints the hex digest of input, its short prefix and the bounded
integer a deterministic id would start from. Use it to reproduce
an id by hand: a deterministic module id is the bounded integer of
"<full name><salt><attempt>" with attempt counting from 0.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		length, err := cmd.Flags().GetInt("length")
		if err != nil {
			return err
		}
		digits, err := cmd.Flags().GetInt("digits")
		if err != nil {
			return err
		}
		if digits < 1 || digits > hashing.MaxDigits {
			return fmt.Errorf("--digits %d out of range [1, %d]", digits, hashing.MaxDigits)
		}
		return printHashes(cmd.OutOrStdout(), args[0], length, digits)
	},
}

func init() {
	hashCmd.Flags().Int("length", 4, "short hash length")
	hashCmd.Flags().Int("digits", 3, "bounded integer width in decimal digits")
}

func printHashes(out io.Writer, input string, length, digits int) error {
	_, err := fmt.Fprintf(out, "digest   %s\nshort    %s\nbounded  %d\n",
		hashing.Digest(input),
		hashing.ShortHash(input, length),
		hashing.BoundedInt(input, digits),
	)
	return err
}
