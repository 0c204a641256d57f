package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spigell/candidate-matcher/internal/logger"
	"github.com/spigell/candidate-matcher/internal/payload"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var singleCmd = &cobra.Command{
	Use:   "single",
	Short: "Score one candidate against one job posting",
	Run: func(cmd *cobra.Command, _ []string) {
		single(cmd)
	},
}

func init() {
	rootCmd.AddCommand(singleCmd)

	singleCmd.Flags().StringP("candidate", "c", "", "candidate file (json or yaml)")
	singleCmd.Flags().String("job", "", "job posting file (json or yaml)")

	singleCmd.MarkFlagRequired("candidate")
	singleCmd.MarkFlagRequired("job")
}

func single(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log, engine := setup(ctx)

	candidate, err := payload.LoadCandidate(cmd.Flag("candidate").Value.String())
	if err != nil {
		log.Fatal("loading candidate", zap.Error(err))
	}

	job, err := payload.LoadJob(cmd.Flag("job").Value.String())
	if err != nil {
		log.Fatal("loading job", zap.Error(err))
	}

	result, err := engine.MatchSingle(ctx, candidate, job)
	if err != nil {
		log.Fatal("scoring candidate", zap.Error(err))
	}

	log.Info("candidate scored", append(logger.PairFields(candidate.ID, job.ID),
		zap.Int("percentage", result.Percentage),
		zap.String("tier", string(result.Tier)),
	)...)

	if err := printJSON(result); err != nil {
		log.Fatal("printing result", zap.Error(err))
	}
}
