package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/sepia"
	"github.com/gogpu/sepia/internal/sheet"
	"github.com/gogpu/sepia/pixel"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Time each strategy on an image",
	RunE:  runRun,
}

func init() {
	addInputFlags(runCmd)
	runCmd.Flags().String("strategy", "all", "Strategies to run: all, or a comma-separated list of scalar, matrix, tensor")
	runCmd.Flags().Int("repeat", 1, "Runs per strategy; the table shows the fastest")
	runCmd.Flags().Int("workers", 1, "Goroutines for the scalar strategy")
	runCmd.Flags().String("alpha", "opaque", "Tensor output alpha (opaque, preserve)")
	runCmd.Flags().StringP("out", "o", "", "Directory for one PNG per strategy result")
	runCmd.Flags().String("sheet", "", "Write a side-by-side comparison PNG")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	strategyStr, _ := cmd.Flags().GetString("strategy")
	repeat, _ := cmd.Flags().GetInt("repeat")
	workers, _ := cmd.Flags().GetInt("workers")
	alphaStr, _ := cmd.Flags().GetString("alpha")
	outDir, _ := cmd.Flags().GetString("out")
	sheetPath, _ := cmd.Flags().GetString("sheet")

	kinds, err := parseKinds(strategyStr)
	if err != nil {
		return err
	}
	alpha, err := sepia.ParseAlphaPolicy(alphaStr)
	if err != nil {
		return err
	}
	repeat = max(repeat, 1)

	src, desc, err := loadInput(cmd)
	if err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(cmd.OutOrStdout(), "Input: %s, %d x %d, %d pixels\n\n", desc, src.Width, src.Height, src.Width*src.Height)

	var board sepia.Board
	failed := 0
	for _, k := range kinds {
		s, err := sepia.New(k, sepia.WithWorkers(workers), sepia.WithAlpha(alpha))
		if err != nil {
			return err
		}
		best, lastErr := bestOf(cmd, s, src, repeat)
		_ = s.Close()

		if lastErr != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", k, lastErr)
		}
		board.Record(best)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%-8s %12s\n", "STRATEGY", "TIME (ms)")
	for _, k := range kinds {
		fmt.Fprintf(cmd.OutOrStdout(), "%-8s %12s\n", k, board.Cell(k).Millis())
	}

	if outDir != "" {
		if err := writeOutputs(outDir, kinds, &board); err != nil {
			return err
		}
	}
	if sheetPath != "" {
		if err := writeSheet(sheetPath, src, kinds, &board); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d strategies failed", failed, len(kinds))
	}
	return nil
}

// bestOf measures s repeat times and returns the fastest successful report.
func bestOf(cmd *cobra.Command, s sepia.Strategy, src *pixel.Buffer, repeat int) (sepia.Report, error) {
	var best sepia.Report
	var lastErr error
	for range repeat {
		r := sepia.Measure(cmd.Context(), s, src)
		if !r.OK() {
			lastErr = r.Err
			continue
		}
		if !best.OK() || r.Elapsed < best.Elapsed {
			best = r
		}
	}
	if best.OK() {
		lastErr = nil
	}
	return best, lastErr
}

func writeOutputs(dir string, kinds []sepia.Kind, board *sepia.Board) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for _, k := range kinds {
		c := board.Cell(k)
		if c.Empty() {
			continue
		}
		if err := c.Output.SavePNG(filepath.Join(dir, k.String()+".png")); err != nil {
			return err
		}
	}
	return nil
}

func writeSheet(path string, src *pixel.Buffer, kinds []sepia.Kind, board *sepia.Board) error {
	entries := make([]sheet.Entry, len(kinds))
	for i, k := range kinds {
		c := board.Cell(k)
		entries[i] = sheet.Entry{Label: k.String(), Output: c.Output, Millis: c.Millis()}
	}

	img := sheet.Render(src, entries)
	out := pixel.FromImage(img)
	if out == nil {
		return fmt.Errorf("rendering sheet: %w", pixel.ErrInvalidDimensions)
	}
	start := time.Now()
	if err := out.SavePNG(path); err != nil {
		return err
	}
	sepia.Logger().Debug("sheet written", "path", path, "elapsed", time.Since(start))
	return nil
}
