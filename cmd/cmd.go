// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand initializes configuration and storage.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize configuration, database and migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// serveCommand runs the admin API and public site.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the admin API and public catalog pages",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind (overrides config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to bind (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// buildCommand renders the static site.
func buildCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Render the catalog as a static site",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (overrides config)",
			},
		},
		Action: r.Build,
	}
}

// artistsCommand handles artist CRUD operations.
func artistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "artists",
		Aliases: []string{"artist"},
		Usage:   "Manage the label's artists",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List artists",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ArtistsList,
			},
			{
				Name:  "add",
				Usage: "Add an artist",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Artist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "bio",
						Usage: "Short biography",
					},
				},
				Action: r.ArtistsAdd,
			},
			{
				Name:  "show",
				Usage: "Show one artist by slug or id",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "identifier"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.ArtistsShow,
			},
			{
				Name:    "rm",
				Aliases: []string{"remove"},
				Usage:   "Delete an artist (refused while they still have releases)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "identifier"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.ArtistsRemove,
			},
		},
	}
}

// releasesCommand handles release CRUD operations.
func releasesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "releases",
		Aliases: []string{"release"},
		Usage:   "Manage the catalog's releases",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List releases",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Only releases by this artist (slug or id)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ReleasesList,
			},
			{
				Name:  "add",
				Usage: "Add a release",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Release title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "artist",
						Usage:    "Owning artist (slug or id)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "year",
						Usage: "Release year",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Format (LP, EP, single, ...)",
					},
					&cli.StringFlag{
						Name:  "about",
						Usage: "Liner notes",
					},
				},
				Action: r.ReleasesAdd,
			},
			{
				Name:  "show",
				Usage: "Show one release by slug or id",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "identifier"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.ReleasesShow,
			},
			{
				Name:    "rm",
				Aliases: []string{"remove"},
				Usage:   "Delete a release",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "identifier"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.ReleasesRemove,
			},
		},
	}
}

// exportCommand writes the catalog to portable formats.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the catalog to CSV, Markdown or JSON",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format (csv, markdown, json)",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Base path for output files",
			},
		},
		Action: r.Export,
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch interactive TUI catalog browser",
		Flags:   []cli.Flag{configFlag()},
		Action:  r.TUI,
	}
}
