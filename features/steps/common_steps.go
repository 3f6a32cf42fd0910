//go:build integration

package steps

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// lastOutput and lastErr hold what the most recent command printed and returned
var (
	lastOutput = &bytes.Buffer{}
	lastErr    error
)

func InitializeCommonScenario(ctx *godog.ScenarioContext) {
	ctx.Step(`^the output should contain "([^"]*)"$`, theOutputShouldContain)
	ctx.Step(`^the command should fail with "([^"]*)"$`, theCommandShouldFailWith)
}

func theOutputShouldContain(text string) error {
	if !strings.Contains(lastOutput.String(), text) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", text, lastOutput.String())
	}
	return nil
}

func theCommandShouldFailWith(text string) error {
	if lastErr == nil {
		return fmt.Errorf("expected an error containing %q, got none", text)
	}
	if !strings.Contains(lastErr.Error(), text) {
		return fmt.Errorf("expected error containing %q, got: %v", text, lastErr)
	}
	return nil
}
