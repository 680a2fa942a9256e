// Command avrboard loads AVR firmware into the peripheral-board
// emulator and runs it, optionally rendering the LCD's current display
// to a PNG before exiting.
package main

import (
	"fmt"
	"image/png"
	"os"
	"sort"

	"gopkg.in/urfave/cli.v2"

	"github.com/mjkern/avrboard/board"
)

func main() {
	app := &cli.App{
		Name:    "avrboard",
		Usage:   "Run ATmega644 firmware against an emulated LED/button/LCD evaluation board",
		Version: "v0.0.1",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "firmware",
				Aliases: []string{"f"},
				Usage:   "path to an ELF firmware image built for the ATmega644",
			},
			&cli.Uint64Flag{
				Name:  "steps",
				Usage: "number of instructions to execute before exiting",
				Value: 100000,
			},
			&cli.StringFlag{
				Name:  "snapshot",
				Usage: "if set, write a PNG of the LCD's display to this path after running",
			},
			&cli.IntFlag{
				Name:  "scale",
				Usage: "pixel scale factor for --snapshot",
				Value: 8,
			},
		},
		Action: run,
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	firmware := c.String("firmware")
	if firmware == "" {
		cli.ShowAppHelp(c)
		return cli.Exit("", 86)
	}

	b, err := board.New(firmware, board.DefaultDef())
	if err != nil {
		return cli.Exit(fmt.Sprintf("avrboard: %v", err), 1)
	}
	defer b.Harness.Close()

	for i := uint64(0); i < c.Uint64("steps"); i++ {
		b.Harness.SingleStep()
	}

	if path := c.String("snapshot"); path != "" {
		if err := writeSnapshot(b, path, c.Int("scale")); err != nil {
			return cli.Exit(fmt.Sprintf("avrboard: %v", err), 1)
		}
	}
	return nil
}

func writeSnapshot(b *board.Board, path string, scale int) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("can't create %q: %w", path, err)
	}
	defer out.Close()

	rendered := scaleDisplay(renderDisplay(b.Display()), scale)
	return png.Encode(out, rendered)
}
