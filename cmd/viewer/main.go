package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "product-viewer"
	app.Usage = "inspect a product model under studio or HDR lighting"
	app.Version = "0.1.0"
	app.Description = `
Load a model, its texture set and an optional equirectangular .hdr
environment, frame the model and render it with orbit controls.

Keys: [ and ] change exposure, - and = change metalness, b cycles the
background. Drag to orbit, scroll to zoom.`
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "TOML settings file",
		},
		cli.StringFlag{
			Name:  "model, m",
			Usage: "model path or URL (.glb, .gltf, .obj)",
		},
		cli.StringFlag{
			Name:  "textures, t",
			Usage: "texture directory or base URL",
		},
		cli.StringFlag{
			Name:  "hdr",
			Usage: "equirectangular .hdr environment path or URL",
		},
		cli.IntFlag{
			Name:  "width",
			Usage: "window width",
		},
		cli.IntFlag{
			Name:  "height",
			Usage: "window height",
		},
		cli.StringFlag{
			Name:  "controls",
			Usage: "TOML control file watched for exposure, metalness and background",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
