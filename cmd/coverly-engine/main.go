package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/coverly/automation/pkg/cmd"
	"github.com/coverly/automation/pkg/crm"
	"github.com/coverly/automation/pkg/log"
	"github.com/coverly/automation/pkg/otelhelper"
	"github.com/coverly/automation/pkg/sources/renewals"
	"github.com/coverly/automation/pkg/workflow"
)

func main() {
	command := &cli.Command{
		Name:                  "coverly-engine",
		EnableShellCompletion: true,
		Usage:                 "Run the automation engine: dispatch workflows off CRM events and resume paused executions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Persistence URL (postgres://... or a file root)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (memory, kafka)",
				Value:   "memory",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "crm-data",
				Usage:   "Directory holding the JSON CRM collections",
				Value:   "./data/crm",
				Sources: cli.EnvVars("CRM_DATA_DIR"),
			},
			&cli.DurationFlag{
				Name:    "poll-interval",
				Usage:   "How often the scheduler scans for due jobs",
				Value:   workflow.DefaultPollInterval,
				Sources: cli.EnvVars("POLL_INTERVAL"),
			},
			&cli.StringFlag{
				Name:    "renewal-schedule",
				Usage:   "Cron schedule for the policy renewal scan",
				Value:   renewals.DefaultSchedule,
				Sources: cli.EnvVars("RENEWAL_SCHEDULE"),
			},
			&cli.DurationFlag{
				Name:    "renewal-window",
				Usage:   "How far ahead a policy renewal counts as due",
				Value:   renewals.DefaultWindow,
				Sources: cli.EnvVars("RENEWAL_WINDOW"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("coverly-engine")
	logger.InfoContext(ctx, "Initializing Coverly automation engine")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer, err := otelhelper.NewTracer(ctx, "coverly-engine")
	if err != nil {
		logger.WarnContext(ctx, "tracing disabled", "error", err)

		tracer = nil
	}

	store, err := crm.NewFileStore(command.String("crm-data"))
	if err != nil {
		return err
	}

	eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger)
	if err != nil {
		return err
	}

	defer func() {
		err := eventBus.Close()
		if err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		err := persistence.Close(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	registry := cmd.NewRegistry(logger, store, nil, nil, nil)

	executor := workflow.NewExecutor(registry, logger, tracer)
	dispatcher := workflow.NewDispatcher(persistence, store, executor, eventBus, logger)
	scheduler := workflow.NewScheduler(persistence, executor, eventBus, logger, command.Duration("poll-interval"))
	source := renewals.NewSource(store, eventBus, logger,
		command.String("renewal-schedule"), command.Duration("renewal-window"))

	err = dispatcher.RegisterHandlers(eventBus)
	if err != nil {
		return err
	}

	err = eventBus.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		err := scheduler.Start(ctx)
		if err != nil && ctx.Err() == nil {
			logger.ErrorContext(ctx, "scheduler stopped unexpectedly", "error", err)
		}
	}()

	go func() {
		err := source.Start(ctx)
		if err != nil && ctx.Err() == nil {
			logger.ErrorContext(ctx, "renewal source stopped unexpectedly", "error", err)
		}
	}()

	logger.InfoContext(ctx, "Engine running",
		"poll_interval", command.Duration("poll-interval"),
		"event_bus", command.String("event-bus"))

	<-ctx.Done()

	// Give in-flight handlers a moment to drain.
	time.Sleep(100 * time.Millisecond)

	logger.Info("Engine shut down")

	return nil
}
