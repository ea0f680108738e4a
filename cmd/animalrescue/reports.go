package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"animalrescue/internal/db"
	"animalrescue/internal/identity"
	"animalrescue/internal/report"
	"animalrescue/internal/store"
	"animalrescue/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var reportsCommand = &cli.Command{
	Name:  "reports",
	Usage: "Review submitted reports",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "List every report, newest first",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "pretty", Usage: "Dump full records"},
				&cli.StringFlag{Name: "status", Usage: "Only show reports with this status"},
			},
			Action: listReports,
		},
		{
			Name:  "decide",
			Usage: "Accept or decline a pending report as a reviewer",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "id", Usage: "Report ID", Required: true},
				&cli.StringFlag{Name: "outcome", Usage: "accepted or declined", Required: true},
				&cli.StringFlag{Name: "email", Usage: "Reviewer email", EnvVars: []string{"REVIEWER_EMAIL"}, Required: true},
			},
			Description: "The reviewer password is read from REVIEWER_PASSWORD, or from the first line of stdin.",
			Action:      decideReport,
		},
		{
			Name:      "purge-object",
			Usage:     "Delete an uploaded photo that no report points at",
			ArgsUsage: "<object name>",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "force", Usage: "Delete even when a report still uses the photo"},
			},
			Action: purgeObjectCommand,
		},
	},
}

func listReports(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	reviews := report.NewReviewStore(store.NewReportRepository(pool), cliLogger())
	reports, err := reviews.List(ctx)
	if err != nil {
		return err
	}

	if status := c.String("status"); status != "" {
		want, err := types.ParseReportStatus(status)
		if err != nil {
			return err
		}
		filtered := reports[:0]
		for _, r := range reports {
			if r.Status == want {
				filtered = append(filtered, r)
			}
		}
		reports = filtered
	}

	if c.Bool("pretty") {
		_, err := pp.Println(reports)
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tCREATED\tLOCATION\tDESCRIPTION")
	for _, r := range reports {
		location := "unknown"
		if coord, ok := r.Coordinate(); ok {
			location = coord.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Status, r.CreatedAt.Format("2006-01-02 15:04"), location, r.Description)
	}
	return tw.Flush()
}

func decideReport(c *cli.Context) error {
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

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	jwkCache, _, err := identity.NewJWKSCache(ctx, cfg.CognitoIssuerURL)
	if err != nil {
		return err
	}

	provider := identity.NewCognitoProvider(
		cognitoidentityprovider.NewFromConfig(awsConfig),
		identity.NewJWKSVerifier(jwkCache, cfg.CognitoIssuerURL, cfg.CognitoClientID),
		cfg.CognitoClientID,
		logger,
	)

	gate := identity.NewGate(provider, logger)
	if err := gate.Start(ctx); err != nil {
		return err
	}
	defer gate.Close()

	password, err := reviewerPassword(os.LookupEnv, os.Stdin)
	if err != nil {
		return err
	}

	if _, err := provider.SignIn(ctx, c.String("email"), password); err != nil {
		return err
	}
	defer func() {
		if err := gate.SignOut(ctx); err != nil {
			logger.WithError(err).Warn("failed to sign out")
		}
	}()

	reports := store.NewReportRepository(pool)
	workflow := report.NewWorkflow(gate, reports, report.NewReviewStore(reports, logger), logger)

	if err := workflow.Decide(ctx, c.String("id"), types.ReportStatus(c.String("outcome"))); err != nil {
		return err
	}

	fmt.Printf("report %s %s\n", c.String("id"), c.String("outcome"))
	return nil
}

// reviewerPassword keeps the password off the command line, where it would
// show up in process listings and shell history.
func reviewerPassword(lookupEnv func(string) (string, bool), stdin io.Reader) (string, error) {
	if password, ok := lookupEnv("REVIEWER_PASSWORD"); ok && password != "" {
		return password, nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("set REVIEWER_PASSWORD or pipe the password on stdin")
	}

	return password, nil
}

func purgeObjectCommand(c *cli.Context) error {
	name := strings.TrimSpace(c.Args().First())
	if name == "" {
		return fmt.Errorf("object name is required")
	}

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

	if err := purgeObject(ctx, objects, store.NewReportRepository(pool), name, c.Bool("force")); err != nil {
		return err
	}

	logger.WithField("object_name", name).Info("deleted object")
	return nil
}

// purgeObject removes an upload left behind by a submission whose report
// insert failed. It refuses to delete a photo a stored report still links to.
func purgeObject(ctx context.Context, objects objectStore, reports report.ReportLister, name string, force bool) error {
	if !force {
		all, err := reports.ListReports(ctx)
		if err != nil {
			return fmt.Errorf("failed to check reports: %w", err)
		}

		url := objects.PublicURL(name)
		for _, r := range all {
			if r.ImageURL == url {
				return fmt.Errorf("object %s is used by report %s, pass --force to delete it anyway", name, r.ID)
			}
		}
	}

	return objects.Delete(ctx, name)
}
