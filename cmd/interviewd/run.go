package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandeep066/aceInterview/internal/domain"
	"github.com/sandeep066/aceInterview/internal/report"
)

// interviewFlags binds an InterviewConfig to command-line flags.
type interviewFlags struct {
	topic    string
	style    string
	level    string
	company  string
	duration int
}

func (f *interviewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.topic, "topic", "t", "", "interview topic (required)")
	cmd.Flags().StringVarP(&f.style, "style", "s", string(domain.StyleTechnical), "interview style")
	cmd.Flags().StringVarP(&f.level, "level", "l", string(domain.ExperienceMidLevel), "candidate experience level")
	cmd.Flags().StringVar(&f.company, "company", "", "company name")
	cmd.Flags().IntVarP(&f.duration, "duration", "d", 30, "interview length in minutes")
	_ = cmd.MarkFlagRequired("topic")
}

func (f *interviewFlags) config() (domain.InterviewConfig, error) {
	cfg := domain.InterviewConfig{
		Topic:           f.topic,
		Style:           domain.Style(f.style),
		ExperienceLevel: domain.ExperienceLevel(f.level),
		CompanyName:     f.company,
		Duration:        f.duration,
	}
	return cfg, cfg.Validate()
}

func newQuestionCmd(flags *rootFlags) *cobra.Command {
	var (
		iv       interviewFlags
		number   int
		previous []string
	)

	cmd := &cobra.Command{
		Use:   "question",
		Short: "Generate one interview question",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := iv.config()
			if err != nil {
				return err
			}
			if number < 1 {
				return fmt.Errorf("--number must be at least 1, got %d", number)
			}
			rootCfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), rootCfg, logger)
			if err != nil {
				return err
			}

			question, src := a.questions.GenerateQuestion(cmd.Context(), cfg, previous, nil, number)
			return writeJSON(cmd.OutOrStdout(), map[string]string{
				"question": question,
				"source":   string(src),
			})
		},
	}

	iv.register(cmd)
	cmd.Flags().IntVarP(&number, "number", "n", 1, "question number within the interview")
	cmd.Flags().StringArrayVar(&previous, "previous", nil, "a question already asked (repeatable)")
	return cmd
}

func newAnalyzeCmd(flags *rootFlags) *cobra.Command {
	var iv interviewFlags

	cmd := &cobra.Command{
		Use:   "analyze <responses.json>",
		Short: "Produce performance analytics for a recorded interview",
		Long:  "analyze reads a JSON array of responses ({question_id, question, response, timestamp, duration}) and prints the performance analytics.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, responses, err := loadAnalysisInput(cmd, flags, &iv, args[0])
			if err != nil {
				return err
			}
			result, src := a.performance.GenerateComprehensiveAnalytics(cmd.Context(), responses, cfg)
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"analytics": result,
				"source":    src,
			})
		},
	}

	iv.register(cmd)
	return cmd
}

func newReportCmd(flags *rootFlags) *cobra.Command {
	var (
		iv  interviewFlags
		out string
	)

	cmd := &cobra.Command{
		Use:   "report <responses.json>",
		Short: "Write performance analytics as an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, responses, err := loadAnalysisInput(cmd, flags, &iv, args[0])
			if err != nil {
				return err
			}
			result, _ := a.performance.GenerateComprehensiveAnalytics(cmd.Context(), responses, cfg)

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := report.WriteXLSX(f, result); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}

	iv.register(cmd)
	cmd.Flags().StringVarP(&out, "output", "o", "interview-report.xlsx", "output file")
	return cmd
}

func loadAnalysisInput(cmd *cobra.Command, flags *rootFlags, iv *interviewFlags, path string) (*app, domain.InterviewConfig, []domain.InterviewResponse, error) {
	cfg, err := iv.config()
	if err != nil {
		return nil, cfg, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("failed to read responses: %w", err)
	}
	var responses []domain.InterviewResponse
	if err := json.Unmarshal(data, &responses); err != nil {
		return nil, cfg, nil, fmt.Errorf("failed to parse responses in %s: %w", path, err)
	}

	rootCfg, logger, err := flags.load()
	if err != nil {
		return nil, cfg, nil, err
	}
	a, err := newApp(cmd.Context(), rootCfg, logger)
	if err != nil {
		return nil, cfg, nil, err
	}
	return a, cfg, responses, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
