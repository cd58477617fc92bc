package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fadilmartias/cover-letter-generator/internal/service"
	"github.com/fadilmartias/cover-letter-generator/internal/workflow"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	url          string
	resumePath   string
	templatePath string
	outPath      string
	instruction  string
}

func newGenerateCmd(services servicesFunc) *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a cover letter for a job posting",
		Long: `Fetch the job posting at --url, read the résumé file (PDF or TXT, up to 5MB)
and draft a cover letter. Progress is shown on stderr, the letter goes to
stdout unless --out is set.

Example:
  coverletter generate --url https://example.com/jobs/123 --resume cv.pdf
  coverletter generate --url https://example.com/jobs/123 --resume cv.txt --instruction "make it shorter"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := services(cmd.Context())
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), svc, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.url, "url", "", "job posting URL")
	f.StringVar(&opts.resumePath, "resume", "", "résumé file (.pdf or .txt)")
	f.StringVar(&opts.templatePath, "template", "", "file with a prompt template using {cv} and {job}")
	f.StringVarP(&opts.outPath, "out", "o", "", "write the letter to this file")
	f.StringVar(&opts.instruction, "instruction", "", "refine the generated letter with this instruction")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}

func runGenerate(ctx context.Context, svc *cliServices, opts generateOptions, stdout, stderr io.Writer) error {
	paced := workflow.NewPacedReporter(func(s workflow.Status) {
		fmt.Fprintln(stderr, s.Message())
	}, svc.cfg.StatusDelay)

	ctrl := workflow.NewController(uuid.New(), workflow.Deps{
		Fetcher:   svc.fetcher,
		Extractor: svc.extractor,
		Letters:   svc.letters,
		Config:    svc.cfg,
		Log:       svc.log,
	}, paced)

	err := drive(ctx, ctrl, opts)
	paced.Close()
	if err != nil {
		return err
	}

	snap := ctrl.Snapshot()
	if snap.Letter == nil {
		return errors.New("no cover letter was generated")
	}
	return writeLetter(snap.Letter.BodyText, opts.outPath, stdout)
}

func drive(ctx context.Context, ctrl *workflow.Controller, opts generateOptions) error {
	if opts.templatePath != "" {
		tmpl, err := os.ReadFile(opts.templatePath)
		if err != nil {
			return fmt.Errorf("read template: %w", err)
		}
		if err := ctrl.SetTemplate(string(tmpl)); err != nil {
			return err
		}
	}

	if err := ctrl.LoadJob(ctx, opts.url); err != nil {
		return fmt.Errorf("load job posting: %w", err)
	}

	upload, err := service.ResumeUploadFromFile(opts.resumePath)
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}
	if err := ctrl.AttachResume(ctx, upload); err != nil {
		// with AutoGenerate the résumé may be in and only the letter failed
		if ctrl.Snapshot().Resume != nil {
			return fmt.Errorf("generate cover letter: %w", err)
		}
		return fmt.Errorf("read resume: %w", err)
	}

	// AutoGenerate may already have produced the letter.
	if ctrl.Snapshot().Stage != workflow.StageView {
		if err := ctrl.Generate(ctx); err != nil {
			return fmt.Errorf("generate cover letter: %w", err)
		}
	}

	if strings.TrimSpace(opts.instruction) != "" {
		if err := ctrl.Refine(ctx, opts.instruction); err != nil {
			return fmt.Errorf("refine cover letter: %w", err)
		}
	}
	return nil
}

func writeLetter(letter, outPath string, stdout io.Writer) error {
	if outPath == "" {
		_, err := fmt.Fprintln(stdout, letter)
		return err
	}
	if err := os.WriteFile(outPath, []byte(letter+"\n"), 0o644); err != nil {
		return fmt.Errorf("write letter: %w", err)
	}
	return nil
}
