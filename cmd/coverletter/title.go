package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTitleCmd(services servicesFunc) *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "title",
		Short: "Print the job title of a posting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := services(cmd.Context())
			if err != nil {
				return err
			}
			job, err := svc.fetcher.FetchJobPosting(cmd.Context(), url)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), svc.letters.ExtractJobTitle(cmd.Context(), job.CleanedText))
			return err
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "job posting URL")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}
