// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func outputFlags() []cli.Flag {
	return []cli.Flag{
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
}

func listFlags() []cli.Flag {
	return append(outputFlags(), &cli.BoolFlag{
		Name:  "refresh",
		Usage: "Fetch from the backend and overwrite the local mirror",
	})
}

func importFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "file",
			Aliases:  []string{"f"},
			Usage:    "JSON file holding the full collection",
			Required: true,
		},
	}
}

func idArg() []cli.Argument {
	return []cli.Argument{&cli.StringArg{Name: "id"}}
}

// setupCommand handles setup operations for the local mirror database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the local mirror and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
			{
				Name:   "status",
				Usage:  "Show the backend mode and applied migrations",
				Action: r.SetupStatus,
			},
		},
	}
}

// bannersCommand handles hero carousel banners
func bannersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "banners",
		Usage: "Manage hero carousel banners",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List banners in display order",
				Flags:  listFlags(),
				Action: r.BannersList,
			},
			{
				Name:  "add",
				Usage: "Append a banner; local image or video paths are uploaded first",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "image",
						Aliases:  []string{"i"},
						Usage:    "Image URL or local file (repeatable, up to 5)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "link",
						Usage: "Destination of the banner button",
					},
					&cli.StringFlag{
						Name:  "button-text",
						Usage: "Banner button label",
					},
				},
				Action: r.BannersAdd,
			},
			{
				Name:      "edit",
				Usage:     "Change fields of a banner; only the flags given are applied",
				Arguments: idArg(),
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "image",
						Aliases: []string{"i"},
						Usage:   "Replacement image URL or local file (repeatable, up to 5, replaces the list)",
					},
					&cli.StringFlag{
						Name:  "link",
						Usage: "Destination of the banner button",
					},
					&cli.StringFlag{
						Name:  "button-text",
						Usage: "Banner button label",
					},
				},
				Action: r.BannersEdit,
			},
			{
				Name:   "import",
				Usage:  "Replace all banners with the contents of a JSON file",
				Flags:  importFlags(),
				Action: r.BannersImport,
			},
			{
				Name:      "delete",
				Usage:     "Delete a banner and its stored media",
				Arguments: idArg(),
				Action:    r.BannersDelete,
			},
		},
	}
}

// videosCommand handles video cards
func videosCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "videos",
		Usage: "Manage video cards",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List video cards in display order",
				Flags:  listFlags(),
				Action: r.VideosList,
			},
			{
				Name:  "add",
				Usage: "Append a video card; local cover and preview paths are uploaded first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "cover",
						Usage:    "Cover image URL or local file",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "preview",
						Usage: "Preview video URL or local file (repeatable, up to 3)",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Card title",
					},
					&cli.StringFlag{
						Name:  "buy-link",
						Usage: "Destination of the buy button",
					},
					&cli.StringFlag{
						Name:  "telegram-link",
						Usage: "Destination of the Telegram button",
					},
				},
				Action: r.VideosAdd,
			},
			{
				Name:      "edit",
				Usage:     "Change fields of a video card; only the flags given are applied",
				Arguments: idArg(),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "cover",
						Usage: "Replacement cover image URL or local file",
					},
					&cli.StringSliceFlag{
						Name:  "preview",
						Usage: "Replacement preview URL or local file (repeatable, up to 3, replaces the list)",
					},
					&cli.StringFlag{Name: "title", Usage: "Card title"},
					&cli.StringFlag{Name: "buy-link", Usage: "Destination of the buy button"},
					&cli.StringFlag{Name: "buy-button-text", Usage: "Buy button label"},
					&cli.StringFlag{Name: "telegram-link", Usage: "Destination of the Telegram button"},
					&cli.StringFlag{Name: "telegram-button-text", Usage: "Telegram button label"},
				},
				Action: r.VideosEdit,
			},
			{
				Name:   "import",
				Usage:  "Replace all video cards with the contents of a JSON file",
				Flags:  importFlags(),
				Action: r.VideosImport,
			},
			{
				Name:      "delete",
				Usage:     "Delete a video card and its stored media",
				Arguments: idArg(),
				Action:    r.VideosDelete,
			},
		},
	}
}

// noticesCommand handles notices
func noticesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "notices",
		Usage: "Manage notices",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List notices in display order",
				Flags:  listFlags(),
				Action: r.NoticesList,
			},
			{
				Name:  "add",
				Usage: "Append a notice dated today",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Notice title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "content",
						Usage:    "Notice body",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "date",
						Usage: "Date shown on the notice (dd/mm/yyyy)",
					},
				},
				Action: r.NoticesAdd,
			},
			{
				Name:      "edit",
				Usage:     "Change fields of a notice; only the flags given are applied",
				Arguments: idArg(),
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Notice title"},
					&cli.StringFlag{Name: "content", Usage: "Notice body"},
					&cli.StringFlag{Name: "date", Usage: "Date shown on the notice (dd/mm/yyyy)"},
				},
				Action: r.NoticesEdit,
			},
			{
				Name:   "import",
				Usage:  "Replace all notices with the contents of a JSON file",
				Flags:  importFlags(),
				Action: r.NoticesImport,
			},
			{
				Name:      "delete",
				Usage:     "Delete a notice",
				Arguments: idArg(),
				Action:    r.NoticesDelete,
			},
		},
	}
}

// promoCommand handles the two promo card slots
func promoCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "promo",
		Aliases: []string{"promos"},
		Usage:   "Manage the top and bottom promo cards",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Show a promo card (top or bottom); all cards without a slot",
				Arguments: []cli.Argument{&cli.StringArg{Name: "slot"}},
				Flags:     outputFlags(),
				Action:    r.PromoGet,
			},
			{
				Name:      "save",
				Usage:     "Overwrite a promo card",
				Arguments: []cli.Argument{&cli.StringArg{Name: "slot"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "title",
						Usage: "Card title",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Card description",
					},
					&cli.StringFlag{
						Name:  "button-text",
						Usage: "Card button label",
					},
					&cli.StringFlag{
						Name:  "button-link",
						Usage: "Destination of the card button",
					},
					&cli.BoolFlag{
						Name:  "active",
						Usage: "Show the card on the storefront",
					},
				},
				Action: r.PromoSave,
			},
		},
	}
}

// mediaCommand handles object storage operations
func mediaCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "media",
		Usage: "Upload, check and delete stored media",
		Commands: []*cli.Command{
			{
				Name:      "upload",
				Usage:     "Upload a file to a storage bucket",
				Arguments: []cli.Argument{&cli.StringArg{Name: "file"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "bucket",
						Aliases: []string{"b"},
						Usage:   "Target bucket (banners, video-covers, video-previews)",
						Value:   "banners",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.MediaUpload,
			},
			{
				Name:      "delete",
				Usage:     "Delete an object by its public URL",
				Arguments: []cli.Argument{&cli.StringArg{Name: "url"}},
				Action:    r.MediaDelete,
			},
			{
				Name:      "check",
				Usage:     "Check that a local file is an accepted image or video",
				Arguments: []cli.Argument{&cli.StringArg{Name: "file"}},
				Action:    r.MediaCheck,
			},
			{
				Name:  "list",
				Usage: "List uploads recorded by this machine",
				Flags: append(outputFlags(),
					&cli.StringFlag{
						Name:    "bucket",
						Aliases: []string{"b"},
						Usage:   "Only list one bucket",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Include deleted objects",
					},
				),
				Action: r.MediaList,
			},
		},
	}
}

// authCommand handles admin authentication
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the admin session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with email, password and the emailed verification code",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "email",
						Aliases: []string{"e"},
						Usage:   "Admin email (prompted when omitted)",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the current admin session",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and forget the cached session",
				Action: r.AuthLogout,
			},
			{
				Name:      "reset",
				Usage:     "Send a password reset email",
				Arguments: []cli.Argument{&cli.StringArg{Name: "email"}},
				Action:    r.AuthReset,
			},
		},
	}
}

// watchCommand returns the live dashboard command.
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "watch",
		Aliases: []string{"tui", "ui"},
		Usage:   "Live dashboard of the catalog, refreshed on backend changes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where logs go while the dashboard owns the terminal",
				Value: "./tmp/watch.log",
			},
		},
		Action: r.Watch,
	}
}

// serveCommand returns the read-only catalog server command.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the catalog as read-only JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (defaults to server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (defaults to server.port)",
			},
			&cli.StringFlag{
				Name:  "cors-origin",
				Usage: "Allowed CORS origin",
				Value: "*",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Requests per second allowed across all clients",
				Value: 20,
			},
			&cli.IntFlag{
				Name:  "burst",
				Usage: "Request burst size",
				Value: 40,
			},
		},
		Action: r.Serve,
	}
}

// exportCommand returns the catalog export command.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the catalog to files (csv, markdown, text or json)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: csv, markdown, text or json",
				Value:   "markdown",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path (base name for csv, directory for markdown)",
			},
		},
		Action: r.Export,
	}
}
