package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/sepia"
	"github.com/gogpu/sepia/pixel"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every strategy matches the scalar reference",
	RunE:  runVerify,
}

func init() {
	addInputFlags(verifyCmd)
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	src, desc, err := loadInput(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Input: %s, %d x %d\n", desc, src.Width, src.Height)

	ref, err := transformWith(cmd, sepia.Scalar, src)
	if err != nil {
		return err
	}

	worst := 0
	for _, k := range sepia.Kinds()[1:] {
		out, err := transformWith(cmd, k, src)
		if err != nil {
			return err
		}
		d, err := sepia.Compare(ref, out, false)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-8s max RGB diff vs scalar: %d\n", k, d)
		worst = max(worst, d)
	}

	if worst > sepia.Tolerance {
		return fmt.Errorf("max difference %d exceeds tolerance %d", worst, sepia.Tolerance)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "OK")
	return nil
}

func transformWith(cmd *cobra.Command, k sepia.Kind, src *pixel.Buffer) (*pixel.Buffer, error) {
	s, err := sepia.New(k)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.Close() }()

	r := sepia.Measure(cmd.Context(), s, src)
	if !r.OK() {
		return nil, fmt.Errorf("%s: %w", k, r.Err)
	}
	return r.Output, nil
}
