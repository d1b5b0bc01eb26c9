package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/iwvelando/finance-guard/internal/config"
	"github.com/iwvelando/finance-guard/internal/dispatch"
	"github.com/iwvelando/finance-guard/pkg/audit"
	"github.com/iwvelando/finance-guard/pkg/constants"
	"github.com/iwvelando/finance-guard/pkg/guard"
	"github.com/iwvelando/finance-guard/pkg/output"
	"github.com/iwvelando/finance-guard/pkg/rules"
	"github.com/iwvelando/finance-guard/pkg/validation"
)

// loadConfiguration reads the config file, falling back to defaults when the
// default file is absent.
func loadConfiguration(path string, explicit bool) (*config.Configuration, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) && !explicit {
		return config.Default(), nil
	}
	return config.LoadConfiguration(path)
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	claimsLocation := flag.String("claims", constants.DefaultClaimsFile, "path to the claims batch file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	explicitConfig := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicitConfig = true
		}
	})

	conf, err := loadConfiguration(*configLocation, explicitConfig)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := config.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	policy, err := conf.Policy()
	if err != nil {
		logger.Fatal("failed to build tolerance policy",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	rulebook, err := rules.New(logger, conf.Compliance, conf.Rules)
	if err != nil {
		logger.Fatal("failed to compile compliance rules",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	set, err := guard.NewSet(logger, policy, rulebook)
	if err != nil {
		logger.Fatal("failed to build guards",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	claims, err := dispatch.LoadClaims(*claimsLocation)
	if err != nil {
		logger.Fatal(fmt.Sprintf("failed to load claims at %s", *claimsLocation),
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	validator := validation.ClaimsValidator{Claims: claims}
	warnings, err := validator.ValidateAll()
	if err != nil {
		logger.Fatal("invalid claims file",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	for _, warning := range warnings {
		logger.Warn("Claims warning: "+warning,
			zap.String("op", "main"),
		)
	}

	trail := audit.NewTrail()
	dispatcher := dispatch.New(logger, set, trail)
	logger.Info("verifying claims",
		zap.String("op", "main"),
		zap.String("session_id", trail.SessionID()),
		zap.Int("claims", len(claims)),
		zap.Int("concurrency", conf.Concurrency),
	)

	outcomes, err := dispatcher.VerifyBatch(context.Background(), claims, conf.Concurrency)
	if err != nil {
		logger.Fatal("failed to verify claims",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if err := output.Write(os.Stdout, outputFormat, outcomes, trail.Summary()); err != nil {
		logger.Fatal("failed to write results",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
