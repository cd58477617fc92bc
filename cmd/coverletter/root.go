package main

import (
	"context"

	"github.com/fadilmartias/cover-letter-generator/internal/config"
	"github.com/fadilmartias/cover-letter-generator/internal/logging"
	"github.com/fadilmartias/cover-letter-generator/internal/service"
	"github.com/fadilmartias/cover-letter-generator/internal/workflow"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "coverletter",
		Short:         "Draft cover letters from a job posting and a résumé",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log provider calls to stderr")

	services := func(ctx context.Context) (*cliServices, error) {
		return newCLIServices(ctx, verbose)
	}
	root.AddCommand(newGenerateCmd(services), newTitleCmd(services))
	return root
}

type servicesFunc func(ctx context.Context) (*cliServices, error)

type cliServices struct {
	cfg       *config.GenerationConfig
	log       logging.Logger
	fetcher   service.JobFetcher
	extractor service.ResumeExtractor
	letters   workflow.LetterWriter
}

func newCLIServices(ctx context.Context, verbose bool) (*cliServices, error) {
	var log logging.Logger = logging.Discard()
	if verbose {
		log = logging.NewStderr()
	}
	cfg := config.LoadGenerationConfig()
	generator, err := service.NewTextGenerator(ctx, cfg.Provider, log)
	if err != nil {
		return nil, err
	}
	return &cliServices{
		cfg:       cfg,
		log:       log,
		fetcher:   service.NewJobFetchService(config.LoadFetchConfig(), log),
		extractor: service.NewResumeExtractService(log),
		letters:   service.NewCoverLetterService(generator, cfg, log),
	}, nil
}
