package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediasig/internal/analysis"
	"mediasig/internal/api"
	"mediasig/internal/config"
	"mediasig/internal/logging"
)

type analyzeFlags struct {
	kind        string
	language    string
	referenceDB string
	remote      bool
}

func (f analyzeFlags) payload(path string) api.AnalyzeRequest {
	return api.AnalyzeRequest{
		FilePath:          strings.TrimSpace(path),
		Kind:              strings.TrimSpace(f.kind),
		Language:          strings.TrimSpace(f.language),
		ReferenceDatabase: strings.TrimSpace(f.referenceDB),
	}
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var flags analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze <path>",
		Short: "Analyze a media file and print its signature envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			payload := flags.payload(path)

			if flags.remote {
				client, err := ctx.client()
				if err != nil {
					return err
				}
				raw, err := client.Analyze(cmd.Context(), payload)
				if err != nil {
					return err
				}
				return writeRawJSON(cmd, raw)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			kind, err := analysis.ParseKind(payload.Kind)
			if err != nil {
				return err
			}
			logger, err := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{"stderr"},
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			dispatcher, err := analysis.New(cfg, logger)
			if err != nil {
				return err
			}
			result, err := dispatcher.Dispatch(cmd.Context(), analysis.Request{
				FilePath:          payload.FilePath,
				Kind:              kind,
				Language:          payload.Language,
				ReferenceDatabase: payload.ReferenceDatabase,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd, result)
		},
	}

	cmd.Flags().StringVarP(&flags.kind, "kind", "k", "", "Analysis kind: audio, video, transcript or text")
	cmd.Flags().StringVarP(&flags.language, "language", "l", "", "Spoken language hint (BCP-47 or ISO 639)")
	cmd.Flags().StringVar(&flags.referenceDB, "reference-db", "", "audfprint database to match audio fingerprints against")
	cmd.Flags().BoolVar(&flags.remote, "remote", false, "Run the analysis on the daemon instead of in-process")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}
