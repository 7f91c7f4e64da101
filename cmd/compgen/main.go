package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	cli "github.com/urfave/cli/v3"

	"github.com/dgallion1/compgen/internal/archive"
	"github.com/dgallion1/compgen/internal/config"
	"github.com/dgallion1/compgen/internal/llm"
	"github.com/dgallion1/compgen/internal/parser"
	"github.com/dgallion1/compgen/internal/pipeline"
	"github.com/dgallion1/compgen/internal/record"
	"github.com/dgallion1/compgen/internal/synth"
)

func main() {
	app := &cli.Command{
		Name:  "compgen",
		Usage: "Parse, preview and generate React components from model markdown",
		Commands: []*cli.Command{
			parseCmd(),
			previewCmd(),
			showCmd(),
			generateCmd(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var fenceAwareFlag = &cli.BoolFlag{Name: "fence-aware", Usage: "Ignore --- lines inside fenced code when splitting"}

func parseCmd() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse a markdown response into components and analysis JSON",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			fenceAwareFlag,
			&cli.IntFlag{Name: "chunk-size", Usage: "Feed the text through the incremental parser N bytes at a time"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			text, err := readInput(cmd.Args().First())
			if err != nil {
				return err
			}
			p := parser.New(parser.Options{FenceAwareSplit: cmd.Bool("fence-aware")})

			size := cmd.Int("chunk-size")
			if size <= 0 {
				res, err := p.Parse(text)
				if err != nil {
					return err
				}
				return printJSON(os.Stdout, res)
			}

			stream := parser.NewStream(p)
			updates := 0
			for i := 0; i < len(text); i += size {
				if _, changed := stream.Feed(text[i:min(i+size, len(text))]); changed {
					updates++
				}
			}
			res, err := stream.Close()
			fmt.Fprintf(os.Stderr, "%d updates, %d parse failures, state %s\n", updates, stream.Failures(), stream.State())
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, res)
		},
	}
}

func previewCmd() *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "Synthesize a standalone preview definition from a code fragment",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "render", Usage: "Append the default render call"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			code, err := readInput(cmd.Args().First())
			if err != nil {
				return err
			}
			def := synth.Synthesize(code)
			out := def.String()
			if cmd.Bool("render") {
				out += "\n\n" + def.RenderCall()
			}
			fmt.Println(out)

			fmt.Fprintf(os.Stderr, "strategy: %s\n", def.Strategy)
			if def.Err != nil {
				fmt.Fprintf(os.Stderr, "fallback reason: %v\n", def.Err)
			}
			return nil
		},
	}
}

func showCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Render parsed component documentation in the terminal",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			fenceAwareFlag,
			&cli.IntFlag{Name: "width", Value: 100, Usage: "Word wrap width"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			text, err := readInput(cmd.Args().First())
			if err != nil {
				return err
			}
			res, err := parser.New(parser.Options{FenceAwareSplit: cmd.Bool("fence-aware")}).Parse(text)
			if err != nil {
				return err
			}
			if len(res.Components) == 0 {
				return parser.ErrNoComponents
			}

			r, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(cmd.Int("width")),
			)
			if err != nil {
				return fmt.Errorf("terminal renderer: %w", err)
			}
			out, err := r.Render(showMarkdown(res))
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}
			fmt.Print(out)
			return nil
		},
	}
}

// showMarkdown joins every component page and the analysis into one
// document.
func showMarkdown(res *record.Result) string {
	var pages []string
	for _, c := range res.Components {
		pages = append(pages, archive.Readme(c))
	}

	a := res.Analysis
	if !a.Empty() {
		var sb strings.Builder
		sb.WriteString("# Analysis\n\n")
		if a.Summary != "" {
			fmt.Fprintf(&sb, "%s\n\n", a.Summary)
		}
		if a.EstimatedComplexity != "" {
			fmt.Fprintf(&sb, "**Estimated complexity:** %s\n\n", a.EstimatedComplexity)
		}
		for _, sec := range []struct {
			title string
			items []string
		}{
			{"Technical requirements", a.TechnicalRequirements},
			{"Design patterns", a.DesignPatterns},
			{"Recommendations", a.Recommendations},
			{"Dependencies", a.Dependencies},
		} {
			if len(sec.items) == 0 {
				continue
			}
			fmt.Fprintf(&sb, "## %s\n\n", sec.title)
			for _, it := range sec.items {
				fmt.Fprintf(&sb, "- %s\n", it)
			}
			sb.WriteString("\n")
		}
		pages = append(pages, sb.String())
	}
	return strings.Join(pages, "\n---\n\n")
}

func generateCmd() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Stream components for a prompt from the configured model",
		ArgsUsage: "<prompt>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "zip", Usage: "Also write the components archive to this path"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			prompt := strings.Join(cmd.Args().Slice(), " ")
			if strings.TrimSpace(prompt) == "" {
				return fmt.Errorf("prompt argument is required")
			}

			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return err
			}
			backend, err := llm.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer backend.Close()

			log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			p := parser.New(parser.Options{FenceAwareSplit: cfg.SplitFenceAware})
			runner := pipeline.NewRunner(backend, p, pipeline.NewStore(1, time.Hour), log, 1, cfg.StreamTimeout)

			gen := pipeline.NewGeneration(prompt, backend.Model())
			var final *record.Result
			err = runner.Run(ctx, gen, func(e pipeline.Event) error {
				switch e.Type {
				case pipeline.EventChunk:
					fmt.Fprintf(os.Stderr, "\r%d component(s) so far", len(e.Data.Components))
				case pipeline.EventDone:
					fmt.Fprintln(os.Stderr)
					final = e.Data
				}
				return nil
			})
			if err != nil {
				return err
			}

			if path := cmd.String("zip"); path != "" {
				if err := writeArchive(path, final.Components); err != nil {
					return err
				}
			}
			return printJSON(os.Stdout, final)
		},
	}
}

func writeArchive(path string, comps []record.Component) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := archive.Write(f, comps); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// readInput reads the named file, or stdin when path is empty or "-".
func readInput(path string) (string, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
