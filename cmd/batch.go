package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spigell/candidate-matcher/internal/matching"
	"github.com/spigell/candidate-matcher/internal/payload"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	PromptPrint   = "Print result"
	PromptReport  = "Report by tier"
	PromptExplain = "Explain a candidate"
	PromptDump    = "Dump result to file"
	PromptExit    = "Exit"
	PromptBack    = "back"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptPrint, PromptReport, PromptExplain, PromptDump, PromptExit},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Score and rank many candidates against one job posting",
	Run: func(cmd *cobra.Command, _ []string) {
		batch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().String("candidates", "", "file with a candidates list (json or yaml)")
	batchCmd.Flags().String("job", "", "job posting file (json or yaml)")
	batchCmd.Flags().BoolP("auto-approve", "y", false, "print the ranked result and exit without the interactive menu")

	batchCmd.MarkFlagRequired("candidates")
	batchCmd.MarkFlagRequired("job")
}

type batchSession struct {
	ctx        context.Context
	logger     *zap.Logger
	engine     *matching.Engine
	job        *matching.Job
	candidates map[string]*matching.Candidate
	result     *matching.RankedBatchResult
}

func batch(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log, engine := setup(ctx)

	candidates, err := payload.LoadCandidates(cmd.Flag("candidates").Value.String())
	if err != nil {
		log.Fatal("loading candidates", zap.Error(err))
	}

	job, err := payload.LoadJob(cmd.Flag("job").Value.String())
	if err != nil {
		log.Fatal("loading job", zap.Error(err))
	}

	log.Info("scoring candidates", zap.Int("count", len(candidates)), zap.String("job_title", job.Title))

	result, err := engine.MatchBatch(ctx, candidates, job)
	if err != nil {
		log.Fatal("scoring candidates", zap.Error(err))
	}

	done, err := finishWithoutMenu(os.Stdout, result, cmd.Flag("auto-approve").Value.String() == "true")
	if err != nil {
		log.Fatal("printing result", zap.Error(err))
	}
	if done {
		if len(result.Matches) == 0 {
			log.Info("exiting", zap.String("reason", "no candidates above the minimum score"),
				zap.Int("filtered", result.Filtered))
		}
		return
	}

	byID := make(map[string]*matching.Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	s := &batchSession{
		ctx:        ctx,
		logger:     log,
		engine:     engine,
		job:        job,
		candidates: byID,
		result:     result,
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			log.Fatal("exiting", zap.Error(err))
		}

		if err := s.handleAction(action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			log.Fatal("exiting", zap.Error(err))
		}
	}
}

// finishWithoutMenu prints the result when autoApprove is set and reports
// whether the interactive menu should be skipped. An empty ranking skips it too.
func finishWithoutMenu(out io.Writer, result *matching.RankedBatchResult, autoApprove bool) (bool, error) {
	if autoApprove {
		return true, writeJSON(out, result)
	}
	return len(result.Matches) == 0, nil
}

func (s *batchSession) handleAction(action string) error {
	switch action {
	case PromptPrint:
		return printJSON(s.result)
	case PromptReport:
		pretty, _ := json.MarshalIndent(s.result.ReportByTier(), "", "  ")
		s.logger.Info(string(pretty),
			zap.Int("matches", len(s.result.Matches)),
			zap.Float64("average_score", s.result.AverageScore),
		)
		return nil
	case PromptExplain:
		return s.explainCandidate()
	case PromptDump:
		filename, err := s.result.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (s *batchSession) explainCandidate() error {
	candidatePrompt := promptui.Select{
		Label: "Choose a candidate and press ENTER",
		Items: append(s.result.Labels(), PromptBack),
	}

	idx, selected, err := candidatePrompt.Run()
	if err != nil {
		return err
	}

	if selected == PromptBack || idx >= len(s.result.Matches) {
		return nil
	}

	candidateID := s.result.Matches[idx].CandidateID
	candidate, ok := s.candidates[candidateID]
	if !ok {
		return fmt.Errorf("there is no such candidate id %s", candidateID)
	}

	explained, err := s.engine.Explain(s.ctx, candidate, s.job)
	if err != nil {
		return fmt.Errorf("explain candidate %s: %w", candidateID, err)
	}

	return printJSON(explained)
}
