package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/aria/internal/library"
	"github.com/urfave/cli/v3"
)

// Generate runs the AI playlist workflow: name, create, fill.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	vibe := cmd.StringArg("vibe")
	if vibe == "" {
		return fmt.Errorf("a vibe description is required")
	}

	sess, err := r.openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer sess.close()

	// Generation verifies the new playlist against the listing, so sync first.
	if _, err := sess.library.SyncLibrary(ctx, nil); err != nil {
		r.logger.Warn("pre-generation sync failed", "err", err)
	}

	progress := make(chan library.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := sess.library.Generate(ctx, library.GenerateRequest{
		Vibe:              vibe,
		Name:              cmd.String("name"),
		NumSongs:          int(cmd.Int("num-songs")),
		MaxSongsPerArtist: int(cmd.Int("max-per-artist")),
		Artists:           cmd.String("artists"),
		Era:               cmd.String("era"),
		Instrument:        cmd.String("instrument"),
		Language:          cmd.String("language"),
	}, progress)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	r.writePlainln("✓ %s: added %d of %d tracks (%.0f%%)",
		result.PlaylistName, result.Added, result.Requested, result.Ratio()*100)
	return nil
}

// generateCommand runs the AI-assisted playlist generation workflow.
func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen"},
		Usage:   "Generate a playlist from a vibe description",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "vibe"},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "name",
				Usage: "Playlist name (generated when omitted)",
			},
			&cli.IntFlag{
				Name:    "num-songs",
				Aliases: []string{"n"},
				Usage:   "Number of tracks to add",
				Value:   10,
			},
			&cli.IntFlag{
				Name:  "max-per-artist",
				Usage: "Cap tracks per artist (forced to 1 for short playlists)",
			},
			&cli.StringFlag{
				Name:  "artists",
				Usage: "Preferred artists, comma separated",
			},
			&cli.StringFlag{
				Name:  "era",
				Usage: "Preferred era (e.g. 90s)",
			},
			&cli.StringFlag{
				Name:  "instrument",
				Usage: "Preferred instrument",
			},
			&cli.StringFlag{
				Name:  "language",
				Usage: "Preferred language",
			},
		},
		Action: r.Generate,
	}
}
