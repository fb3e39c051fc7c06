package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"sport-backend/internal/bootstrap"
	"sport-backend/internal/profile"
	"sport-backend/internal/shared/config"
	"sport-backend/internal/shared/telemetry"
)

type commandContext struct {
	configFlag *string
	logLevel   *string

	configOnce sync.Once
	config     config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevel *string) *commandContext {
	return &commandContext{configFlag: configFlag, logLevel: logLevel}
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, c.configErr = config.LoadWithFile(path)
		if c.logLevel != nil {
			telemetry.Configure(*c.logLevel)
		}
	})
	return c.config, c.configErr
}

// readProfile loads a profile from path, or stdin when path is "-".
func readProfile(path string, stdin io.Reader) (*profile.Profile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("--profile is required")
	}
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p profile.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return &p, nil
}

func buildApp(cmd *cobra.Command, cfg config.Config) (*bootstrap.App, error) {
	return bootstrap.Build(cmd.Context(), cfg)
}
