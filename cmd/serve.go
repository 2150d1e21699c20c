package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/quizscale/internal/contract"
	"github.com/huangsam/quizscale/internal/httpapi"
	"github.com/spf13/cobra"
)

// serveCmd starts the HTTP upload API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the quiz conversion HTTP API",
	Long: `Serve the conversion pipeline over HTTP.

Endpoints:
  POST /quiz/convert  multipart upload: file plus original_max, target_max, question_value,
                      use_weighted, weights, quiz_name, sheet, strict
  GET  /quiz/scale    derived scale values for the same parameters as query strings
  GET  /healthz       liveness probe

Scale flags given to serve become defaults that each request may override.
Invalid parameters answer 400. With strict=true, a conversion that does not
reconcile answers 422 with the result attached.

Examples:
  quizscale serve --addr :8080 --allowed-origins "https://grades.example.com"
  curl -F file=@week1.csv -F original_max=15 -F target_max=10 -F question_value=3 localhost:8080/quiz/convert`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := httpapi.Serve(ctx, cfg, storeManager); err != nil {
			contract.LogFatal("HTTP server failed", err)
		}
	},
}
