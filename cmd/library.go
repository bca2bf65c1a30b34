package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/aria/internal/library"
	"github.com/urfave/cli/v3"
)

// LibrarySync connects to the player, refreshes the playlist listing, and
// ingests tracks into the local cache up to the configured cap.
func (r *Runner) LibrarySync(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer sess.close()

	progress := make(chan library.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	count, err := sess.library.SyncLibrary(ctx, progress)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("library sync failed: %w", err)
	}

	r.writePlainln("✓ Synced %d tracks across %d playlists", count, len(sess.library.Playlists()))
	return nil
}

// LibraryList prints the synced playlists, newest first.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer sess.close()

	if _, err := sess.library.SyncLibrary(ctx, nil); err != nil {
		return fmt.Errorf("library sync failed: %w", err)
	}

	playlists := sess.library.Playlists()
	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlainln("Playlists (%d):", len(playlists))
	for _, p := range playlists {
		r.writePlain("  %s (%d tracks)\n", p.Name, len(p.Tracks))
	}
	return nil
}

// LibraryPlay starts playback of a named playlist.
func (r *Runner) LibraryPlay(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("playlist name is required")
	}

	sess, err := r.openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer sess.close()

	if err := sess.library.PlayPlaylist(name); err != nil {
		return fmt.Errorf("failed to start playlist: %w", err)
	}
	r.writePlainln("▶ Playing: %s", name)
	return nil
}

// LibraryDelete removes a playlist on the player.
func (r *Runner) LibraryDelete(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("playlist name is required")
	}

	sess, err := r.openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer sess.close()

	if err := sess.library.DeletePlaylist(name); err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	r.writePlainln("✓ Deleted: %s", name)
	return nil
}

// libraryCommand groups playlist library operations.
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Playlist library operations",
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Refresh the playlist listing and cache tracks",
				Flags:  []cli.Flag{configFlag()},
				Action: r.LibrarySync,
			},
			{
				Name:  "list",
				Usage: "List playlists, newest first",
				Flags: []cli.Flag{
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
				},
				Action: r.LibraryList,
			},
			{
				Name:  "play",
				Usage: "Start playback of a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.LibraryPlay,
			},
			{
				Name:  "delete",
				Usage: "Delete a playlist on the player",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.LibraryDelete,
			},
		},
	}
}
