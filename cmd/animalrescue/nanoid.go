package main

import (
	"fmt"

	"animalrescue/internal/utils"

	"github.com/urfave/cli/v2"
)

var nanoidCommand = &cli.Command{
	Name:  "nanoid",
	Usage: "Generate report IDs, or bare IDs of a given size",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of IDs to generate",
			Value:   1,
		},
		&cli.IntFlag{
			Name:  "size",
			Usage: "Generate bare IDs of this length instead of report IDs",
		},
	},
	Action: func(c *cli.Context) error {
		for range c.Int("count") {
			if size := c.Int("size"); size > 0 {
				fmt.Println(utils.NanoIDSize(size))
				continue
			}
			fmt.Println(utils.ReportID())
		}
		return nil
	},
}
