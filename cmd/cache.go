package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/aria/internal/repositories"
	"github.com/urfave/cli/v3"
)

// CachePlaylists prints the locally cached playlist rows without connecting
// to the player.
func (r *Runner) CachePlaylists(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := repositories.NewPlaylistCacheRepository(db).List()
	if err != nil {
		return fmt.Errorf("failed to list playlist cache: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	r.writePlainln("Cached playlists (%d):", len(rows))
	for _, row := range rows {
		marker := ""
		if row.IsEmpty {
			marker = " (empty)"
		}
		r.writePlain("  %s%s\n", row.Name, marker)
	}
	return nil
}

// CacheTracks prints the locally cached tracks, optionally scoped to one
// playlist.
func (r *Runner) CacheTracks(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewTrackCacheRepository(db)

	playlist := cmd.String("playlist")
	rows, err := repo.ListAll()
	if playlist != "" {
		rows, err = repo.ListByPlaylist(playlist)
	}
	if err != nil {
		return fmt.Errorf("failed to list track cache: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	r.writePlainln("Cached tracks (%d):", len(rows))
	for _, row := range rows {
		r.writePlain("  %s - %s [%s]\n", row.Artist, row.Title, row.PlaylistName)
	}
	return nil
}

// cacheCommand inspects the local cache tables.
func cacheCommand(r *Runner) *cli.Command {
	jsonFlags := []cli.Flag{
		configFlag(),
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}

	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the local playlist and track cache",
		Commands: []*cli.Command{
			{
				Name:   "playlists",
				Usage:  "List cached playlists",
				Flags:  jsonFlags,
				Action: r.CachePlaylists,
			},
			{
				Name:  "tracks",
				Usage: "List cached tracks",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "playlist",
						Usage: "Limit to one playlist",
					},
				}, jsonFlags...),
				Action: r.CacheTracks,
			},
		},
	}
}
