package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/jonboulle/clockwork"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	"go.uber.org/zap"

	"github.com/lox/raincheck/internal/config"
	"github.com/lox/raincheck/internal/logging"
)

type CLI struct {
	EnvFile kongdotenv.ENVFileConfig `kong:"optional,name=env-file,default='.env',help='Path to .env file'"`
	Logging config.Logging           `embed:""`

	Serve   ServeCmd   `cmd:"" default:"withargs" help:"Load the artifacts and serve the prediction form (default)."`
	Predict PredictCmd `cmd:"" help:"Predict tomorrow's rain for one observation and print the result."`
	Fetch   FetchCmd   `cmd:"" help:"Download the artifacts into the cache and check they decode."`
	Slots   SlotsCmd   `cmd:"" help:"Print the 114-slot feature layout."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("raincheck"),
		kong.Description("Predict whether it will rain tomorrow from today's weather observations."),
		kong.Vars(config.Vars()),
		kong.UsageOnError(),
	)

	logger, err := logging.New(cli.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "raincheck: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.Bind(logger)
	kctx.BindTo(clockwork.NewRealClock(), (*clockwork.Clock)(nil))

	if err := kctx.Run(); err != nil {
		logger.Error("command failed", zap.String("command", kctx.Command()), zap.Error(err))
		logger.Sync()
		cancel()
		os.Exit(1)
	}
}
