package main

import (
	"context"
	"fmt"

	"github.com/Yamashou/jsoncoder/config"
	"github.com/Yamashou/jsoncoder/docgen"
)

func run(ctx context.Context, cfgFile string) error {
	if cfgFile == "" {
		found, err := config.FindConfigFile(".", config.DefaultFilenames)
		if err != nil {
			return fmt.Errorf("failed to find config file: %w", err)
		}
		cfgFile = found
	}

	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}

	if _, err := docgen.New(cfg).Generate(ctx); err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	return nil
}
