package main

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Garsondee/Mine-Sense/internal/board"
	"github.com/Garsondee/Mine-Sense/internal/grid"
	"github.com/Garsondee/Mine-Sense/internal/host"
	"github.com/Garsondee/Mine-Sense/internal/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "headless-report",
		Short:         "Headless auto-play reports and screenshot classification",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newRunCmd(), newClassifyCmd())
	return root
}

type runFlags struct {
	runs     int
	maxTicks int
	seedBase int64
	seedStep int64
	profile  string
	mines    int
	workers  int
	verbose  bool
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play seeded games with every proposal approved and report the results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd.OutOrStdout(), f)
		},
	}
	cmd.Flags().IntVar(&f.runs, "runs", 5, "number of headless games")
	cmd.Flags().IntVar(&f.maxTicks, "max-ticks", 2000, "tick limit per game")
	cmd.Flags().Int64Var(&f.seedBase, "seed-base", 42, "seed for run 1")
	cmd.Flags().Int64Var(&f.seedStep, "seed-step", 1, "seed increment between runs")
	cmd.Flags().StringVar(&f.profile, "profile", "medium", "geometry profile ("+strings.Join(board.ProfileNames(), ", ")+")")
	cmd.Flags().IntVar(&f.mines, "mines", 40, "mines per game")
	cmd.Flags().IntVar(&f.workers, "workers", runtime.NumCPU(), "games played in parallel")
	cmd.Flags().BoolVar(&f.verbose, "verbose", false, "print every run's session log")
	return cmd
}

func runReport(w io.Writer, f runFlags) error {
	if f.runs <= 0 {
		return fmt.Errorf("--runs must be > 0")
	}
	if f.maxTicks <= 0 {
		return fmt.Errorf("--max-ticks must be > 0")
	}
	if _, err := board.ProfileByName(f.profile); err != nil {
		return err
	}

	fmt.Fprintf(w, "=== Headless Auto-Play Report ===\n")
	fmt.Fprintf(w, "profile=%s mines=%d runs=%d max_ticks=%d seed_base=%d seed_step=%d\n\n",
		f.profile, f.mines, f.runs, f.maxTicks, f.seedBase, f.seedStep)

	results := make([]session.RunResult, f.runs)
	logs := make([]string, f.runs)
	var eg errgroup.Group
	if f.workers > 0 {
		eg.SetLimit(f.workers)
	}
	for i := 0; i < f.runs; i++ {
		i := i
		eg.Go(func() error {
			sim, err := session.NewSim(
				session.WithSeed(f.seedBase+int64(i)*f.seedStep),
				session.WithProfile(f.profile),
				session.WithMines(f.mines),
				session.WithVerbose(f.verbose),
			)
			if err != nil {
				return fmt.Errorf("run %d: %w", i+1, err)
			}
			results[i] = sim.RunGame(f.maxTicks)
			if f.verbose {
				logs[i] = sim.Session.Log.Format()
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i, r := range results {
		fmt.Fprint(w, session.FormatRun(i+1, r))
		if f.verbose {
			fmt.Fprint(w, logs[i])
		}
		fmt.Fprintln(w)
	}
	fmt.Fprint(w, session.FormatAggregate(session.Summarize(results)))
	return nil
}

func newClassifyCmd() *cobra.Command {
	var imagePath, cell string
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Read a PNG screenshot of the board and print the inferred cell states",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return classify(cmd.OutOrStdout(), imagePath, cell)
		},
	}
	cmd.Flags().StringVar(&imagePath, "image", "", "PNG screenshot of the board canvas")
	cmd.Flags().StringVar(&cell, "cell", "", "also print the classifier working for r,c")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

func classify(w io.Writer, path, cell string) error {
	fh, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	img, err := png.Decode(fh)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return classifyImage(w, img, cell)
}

func classifyImage(w io.Writer, img image.Image, cell string) error {
	surface, geom, err := host.Locate(img)
	if err != nil {
		return err
	}
	reader := board.NewReader(geom, board.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	b := reader.Read(surface)

	fmt.Fprintf(w, "geometry: %s\n", geom)
	fmt.Fprintf(w, "unrevealed=%d revealed=%d flagged=%d unknown=%d\n",
		b.Count(grid.Unrevealed), b.Count(grid.Revealed), b.Count(grid.Flagged), b.Count(grid.Unknown))
	fmt.Fprint(w, b.String())

	if cell == "" {
		return nil
	}
	c, err := parseCell(cell)
	if err != nil {
		return err
	}
	if !b.InBounds(c) {
		return fmt.Errorf("cell %s outside %dx%d board", c, geom.Rows, geom.Cols)
	}
	in := reader.Inspect(surface, c)
	fmt.Fprintf(w, "cell %s sampled at (%d,%d) -> %s\n", c, in.X, in.Y, in.State.Tag())
	fmt.Fprintf(w, "votes: %+v\n", in.Votes)
	for _, s := range in.Samples {
		if !s.OK {
			fmt.Fprintf(w, "  %+3d,%+3d  unreadable\n", s.DX, s.DY)
			continue
		}
		fmt.Fprintf(w, "  %+3d,%+3d  rgb(%d,%d,%d)\n", s.DX, s.DY, s.Color.R, s.Color.G, s.Color.B)
	}
	return nil
}

// parseCell reads "row,col".
func parseCell(s string) (grid.Coord, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return grid.Coord{}, fmt.Errorf("cell %q: want row,col", s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return grid.Coord{}, fmt.Errorf("cell %q: %w", s, err)
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return grid.Coord{}, fmt.Errorf("cell %q: %w", s, err)
	}
	return grid.Coord{Row: row, Col: col}, nil
}
