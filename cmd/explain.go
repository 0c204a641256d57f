package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spigell/candidate-matcher/internal/payload"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Score one candidate against one job posting and explain the decision",
	Run: func(cmd *cobra.Command, _ []string) {
		explain(cmd)
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)

	explainCmd.Flags().StringP("candidate", "c", "", "candidate file (json or yaml)")
	explainCmd.Flags().String("job", "", "job posting file (json or yaml)")

	explainCmd.MarkFlagRequired("candidate")
	explainCmd.MarkFlagRequired("job")
}

func explain(cmd *cobra.Command) {
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

	result, err := engine.Explain(ctx, candidate, job)
	if err != nil {
		log.Fatal("explaining match", zap.Error(err))
	}

	if err := printJSON(result); err != nil {
		log.Fatal("printing result", zap.Error(err))
	}
}
