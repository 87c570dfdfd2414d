package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"veritas/internal/app"
	"veritas/internal/config"
	"veritas/internal/domain"
	"veritas/internal/logging"

	"github.com/google/uuid"
)

func runSubmit(args []string) int {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	in := fs.String("in", "", "path to the evidence file")
	mediaKind := fs.String("media-kind", "", "image, audio, video or document")
	submitter := fs.String("submitter", "", "submitter identifier")
	id := fs.String("id", "", "submission id (generated when empty)")
	offline := fs.Bool("offline", false, "enqueue instead of processing now")
	queuePath := fs.String("queue", "", "offline queue db path (overrides QUEUE_DB_PATH)")
	location := fs.String("location", "", "capture location metadata")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *in == "" || *mediaKind == "" || *submitter == "" {
		fmt.Fprintln(os.Stderr, "submit requires --in, --media-kind and --submitter")
		return 1
	}

	payload, err := os.ReadFile(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		return 1
	}
	subID := *id
	if subID == "" {
		subID = uuid.NewString()
	}
	sub := domain.Submission{
		ID:          subID,
		Payload:     payload,
		MediaKind:   domain.MediaKind(*mediaKind),
		Submitter:   *submitter,
		SubmittedAt: time.Now().UTC(),
	}
	if *location != "" {
		sub.Metadata = &domain.EnrichmentMetadata{Location: *location}
	}

	a, cleanup, code := buildApp(*queuePath, !*offline)
	if code != 0 {
		return code
	}
	defer cleanup()

	ctx := context.Background()
	outcome, queued, err := a.Intake.Submit(ctx, sub)
	if err != nil {
		fmt.Fprintf(os.Stderr, "submit failed: %v\n", err)
		return 1
	}
	if queued {
		fmt.Printf("queued %s\n", sub.ID)
		return 0
	}
	return printOutcome(outcome)
}

func runDrain(args []string) int {
	fs := flag.NewFlagSet("drain", flag.ContinueOnError)
	queuePath := fs.String("queue", "", "offline queue db path (overrides QUEUE_DB_PATH)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	a, cleanup, code := buildApp(*queuePath, true)
	if code != 0 {
		return code
	}
	defer cleanup()

	outcomes, err := a.Intake.Drain(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "drain failed: %v\n", err)
		return 1
	}
	fmt.Printf("drained %d submission(s)\n", len(outcomes))
	for _, outcome := range outcomes {
		if printOutcome(outcome) != 0 {
			return 1
		}
	}
	return 0
}

func runPending(args []string) int {
	fs := flag.NewFlagSet("pending", flag.ContinueOnError)
	queuePath := fs.String("queue", "", "offline queue db path (overrides QUEUE_DB_PATH)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	a, cleanup, code := buildApp(*queuePath, false)
	if code != 0 {
		return code
	}
	defer cleanup()

	pending, err := a.Intake.Pending(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "pending failed: %v\n", err)
		return 1
	}
	fmt.Printf("%d\n", pending)
	return 0
}

func buildApp(queuePath string, online bool) (*app.App, func(), int) {
	cfg := config.FromEnv()
	if queuePath != "" {
		cfg.QueueDBPath = queuePath
	}
	log := logging.New(cfg.LogLevel, "console")
	a, err := app.New(context.Background(), cfg, log, app.Options{Online: online})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init pipeline: %v\n", err)
		return nil, nil, 1
	}
	return a, func() { _ = a.Close() }, 0
}
