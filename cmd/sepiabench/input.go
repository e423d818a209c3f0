package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/sepia"
	"github.com/gogpu/sepia/internal/synth"
	"github.com/gogpu/sepia/pixel"
)

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "Input image (PNG, JPEG, GIF, BMP, TIFF, WebP)")
	cmd.Flags().String("synthetic", "", "Use a generated WxH noise image instead of a file")
	cmd.Flags().Uint64("seed", 1, "Seed for --synthetic")
	cmd.MarkFlagsMutuallyExclusive("input", "synthetic")
	cmd.MarkFlagsOneRequired("input", "synthetic")
}

// loadInput returns the source buffer and a short description of it.
func loadInput(cmd *cobra.Command) (*pixel.Buffer, string, error) {
	inputPath, _ := cmd.Flags().GetString("input")
	spec, _ := cmd.Flags().GetString("synthetic")
	seed, _ := cmd.Flags().GetUint64("seed")

	if spec != "" {
		w, h, err := parseSize(spec)
		if err != nil {
			return nil, "", err
		}
		return synth.Noise(w, h, seed), "synthetic " + spec, nil
	}

	buf, format, err := pixel.Load(inputPath)
	if err != nil {
		return nil, "", fmt.Errorf("loading input: %w", err)
	}
	return buf, inputPath + " (" + format + ")", nil
}

func parseSize(s string) (w, h int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q: want WxH", s)
	}
	if _, err := fmt.Sscan(ws, &w); err != nil {
		return 0, 0, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	if _, err := fmt.Sscan(hs, &h); err != nil {
		return 0, 0, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, pixel.ErrInvalidDimensions)
	}
	return w, h, nil
}

// parseKinds expands "all" or a comma-separated list of strategy names.
func parseKinds(s string) ([]sepia.Kind, error) {
	if s == "" || s == "all" {
		return sepia.Kinds(), nil
	}
	var kinds []sepia.Kind
	for name := range strings.SplitSeq(s, ",") {
		k, err := sepia.ParseKind(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	if len(kinds) == 0 {
		return nil, errors.New("no strategy selected")
	}
	return kinds, nil
}
