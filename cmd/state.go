package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// State fetches and prints the current playback state over the REST API.
func (r *Runner) State(ctx context.Context, cmd *cli.Command) error {
	state, err := r.api.GetState(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch player state: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(state, cmd.Bool("pretty"))
	}

	r.writePlainln("Status: %s", state.Status)
	if state.Title != "" {
		r.writePlain("  %s - %s\n", state.Artist, state.Title)
		r.writePlain("  %.0fs / %.0fs (%s)\n", state.Position, state.Duration, state.Service)
	}
	return nil
}

// Playback issues a one-shot playback command over the REST API.
func (r *Runner) Playback(name string) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if err := r.api.Command(ctx, name); err != nil {
			return fmt.Errorf("command %q failed: %w", name, err)
		}
		r.logger.Info("command sent", "command", name)
		return nil
	}
}

// stateCommand prints current playback state.
func stateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "Show current playback state",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.State,
	}
}

// playbackCommand groups the transport controls.
func playbackCommand(r *Runner) *cli.Command {
	controls := []*cli.Command{}
	for _, name := range []string{"play", "pause", "stop", "next", "prev"} {
		controls = append(controls, &cli.Command{
			Name:   name,
			Usage:  fmt.Sprintf("Send the %s command to the player", name),
			Action: r.Playback(name),
		})
	}

	return &cli.Command{
		Name:     "playback",
		Aliases:  []string{"pb"},
		Usage:    "Playback transport controls",
		Commands: controls,
	}
}
