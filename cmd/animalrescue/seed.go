package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"animalrescue/internal/capture"
	"animalrescue/internal/db"
	"animalrescue/internal/report"
	"animalrescue/internal/store"
	"animalrescue/pkg/types"

	"github.com/urfave/cli/v2"
)

type demoReport struct {
	description string
	coordinate  types.Coordinate
	colour      color.RGBA
}

var demoReports = []demoReport{
	{"Injured dog limping near the bus stop, left hind leg bleeding", types.Coordinate{Latitude: 12.9716, Longitude: 77.5946}, color.RGBA{R: 180, G: 120, B: 60, A: 255}},
	{"Kitten stuck in a storm drain, meowing loudly", types.Coordinate{Latitude: 12.9352, Longitude: 77.6245}, color.RGBA{R: 90, G: 90, B: 90, A: 255}},
	{"Cow with a wound on its neck wandering on the highway", types.Coordinate{Latitude: 13.0358, Longitude: 77.5970}, color.RGBA{R: 230, G: 230, B: 220, A: 255}},
	{"Pigeon with a broken wing on the footpath", types.Coordinate{Latitude: 12.9279, Longitude: 77.6271}, color.RGBA{R: 120, G: 130, B: 160, A: 255}},
}

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Submit demo reports through the regular submission path",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of demo reports to submit",
			Value:   len(demoReports),
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()
		logger := cliLogger()

		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return err
		}

		objects, err := newObjectStorage(cfg, awsConfig, logger)
		if err != nil {
			return err
		}

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		submitter := report.NewSubmitter(objects, store.NewReportRepository(pool), logger)

		for i := 0; i < c.Int("count"); i++ {
			demo := demoReports[i%len(demoReports)]

			img, err := demoImage(demo.colour)
			if err != nil {
				return err
			}

			coord := demo.coordinate
			created, err := submitter.Submit(ctx, report.Draft{
				Description: demo.description,
				Image:       img,
				Coordinate:  &coord,
			})
			if err != nil {
				return fmt.Errorf("failed to seed report %d: %w", i+1, err)
			}

			logger.WithField("report_id", created.ID).Info("seeded report")

			// object names are millisecond timestamps
			time.Sleep(2 * time.Millisecond)
		}

		return nil
	},
}

func demoImage(c color.RGBA) (*capture.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return capture.Encode(img)
}
