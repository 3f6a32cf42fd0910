//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"conference-clipper/cmd"
	"conference-clipper/infrastructure/config"

	"github.com/cucumber/godog"
)

type configContext struct {
	tempDir    string
	configPath string
	config     *config.Config
}

var SharedConfigContext = &configContext{}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedConfigContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config.yaml")
		testCtx.config = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a config file exists with initial data$`, testCtx.aConfigFileExistsWithInitialData)
	ctx.Step(`^room "([^"]*)" exists$`, testCtx.roomExists)

	ctx.Step(`^I run config add room "([^"]*)"$`, testCtx.iRunConfigAddRoom)
	ctx.Step(`^I run config list rooms$`, testCtx.iRunConfigListRooms)
	ctx.Step(`^I run config remove room "([^"]*)"$`, testCtx.iRunConfigRemoveRoom)
	ctx.Step(`^I run config add recipient with key "([^"]*)" name "([^"]*)" and email "([^"]*)"$`, testCtx.iRunConfigAddRecipient)

	ctx.Step(`^the config should contain room "([^"]*)"$`, testCtx.theConfigShouldContainRoom)
	ctx.Step(`^the config should not contain room "([^"]*)"$`, testCtx.theConfigShouldNotContainRoom)
	ctx.Step(`^the config should contain recipient "([^"]*)" with name "([^"]*)" and email "([^"]*)"$`, testCtx.theConfigShouldContainRecipient)
	ctx.Step(`^the config should not contain recipient "([^"]*)"$`, testCtx.theConfigShouldNotContainRecipient)
}

func (c *configContext) aConfigFileExistsWithInitialData() error {
	cfg := config.Default()
	cfg.Product = "BDX I/O"
	cfg.Year = 2017
	if err := config.Save(cfg, c.configPath); err != nil {
		return err
	}
	return c.reload()
}

func (c *configContext) reload() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	c.config = cfg
	return nil
}

// run executes a config command against the file and remembers its result
func (c *configContext) run(fn func(out cmd.OutputWriter) error) error {
	lastOutput = &bytes.Buffer{}
	lastErr = fn(lastOutput)
	return nil
}

func (c *configContext) roomExists(room string) error {
	return config.NewConfigManager(c.config, c.configPath).AddRoom(room)
}

func (c *configContext) iRunConfigAddRoom(room string) error {
	return c.run(func(out cmd.OutputWriter) error {
		return cmd.RunConfigAddWithDependencies(c.config, c.configPath, "room", "", room, "", out)
	})
}

func (c *configContext) iRunConfigListRooms() error {
	return c.run(func(out cmd.OutputWriter) error {
		return cmd.RunConfigListWithDependencies(c.config, c.configPath, "rooms", out)
	})
}

func (c *configContext) iRunConfigRemoveRoom(room string) error {
	return c.run(func(out cmd.OutputWriter) error {
		return cmd.RunConfigRemoveWithDependencies(c.config, c.configPath, "room", room, out)
	})
}

func (c *configContext) iRunConfigAddRecipient(key, name, email string) error {
	return c.run(func(out cmd.OutputWriter) error {
		return cmd.RunConfigAddWithDependencies(c.config, c.configPath, "recipient", key, name, email, out)
	})
}

func (c *configContext) theConfigShouldContainRoom(room string) error {
	if err := c.reload(); err != nil {
		return err
	}
	for _, r := range c.config.Rooms {
		if strings.EqualFold(r, room) {
			return nil
		}
	}
	return fmt.Errorf("room %q not in %v", room, c.config.Rooms)
}

func (c *configContext) theConfigShouldNotContainRoom(room string) error {
	if err := c.theConfigShouldContainRoom(room); err == nil {
		return fmt.Errorf("room %q still configured", room)
	}
	return nil
}

func (c *configContext) theConfigShouldContainRecipient(key, name, email string) error {
	if err := c.reload(); err != nil {
		return err
	}
	r, ok := c.config.Notification.Recipients[key]
	if !ok {
		return fmt.Errorf("recipient %q not found", key)
	}
	if r.Name != name || r.Address != email {
		return fmt.Errorf("recipient %q is %s <%s>, expected %s <%s>", key, r.Name, r.Address, name, email)
	}
	return nil
}

func (c *configContext) theConfigShouldNotContainRecipient(key string) error {
	if err := c.reload(); err != nil {
		return err
	}
	if _, ok := c.config.Notification.Recipients[key]; ok {
		return fmt.Errorf("recipient %q should not exist", key)
	}
	return nil
}
