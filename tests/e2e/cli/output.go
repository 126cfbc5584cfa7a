package cli

import (
	"fmt"
	"strings"

	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
)

func ValidateBootstrapConfigureOutput(output string) error {
	required := []string{
		"Host configured successfully",
	}
	for _, r := range required {
		if !strings.Contains(output, r) {
			return fmt.Errorf("bootstrap configure validation failed: missing '%s'", r)
		}
	}

	return nil
}

func ValidateBootstrapValidateOutput(output string) error {
	required := []string{
		"All validations passed",
	}
	for _, r := range required {
		if !strings.Contains(output, r) {
			return fmt.Errorf("bootstrap validate validation failed: missing '%s'", r)
		}
	}

	return nil
}

func ValidateBootstrapFullOutput(output string) error {
	required := []string{
		"Host configured successfully",
		"All validations passed",
		"Host bootstrapped successfully",
	}
	for _, r := range required {
		if !strings.Contains(output, r) {
			return fmt.Errorf("full bootstrap validation failed: missing '%s'", r)
		}
	}

	return nil
}

func ValidateCreateAppOutput(output, appName string) error {
	required := []string{
		fmt.Sprintf("Creating application '%s'", appName),
		fmt.Sprintf("Application '%s' deployed successfully", appName),
	}

	for _, r := range required {
		if !strings.Contains(output, r) {
			return fmt.Errorf("create-app validation failed: missing '%s'", r)
		}
	}

	return nil
}

func ValidateHelpCommandOutput(output string) error {
	required := []string{
		"A CLI tool that deploys MMA-accelerated AI demo stacks",
		"Use \"mma-ai [command] --help\" for more information about a command.",
	}
	for _, r := range required {
		if !strings.Contains(output, r) {
			return fmt.Errorf("help command validation failed: missing '%s'", r)
		}
	}

	return nil
}

func ValidateHelpRandomCommandOutput(command string, output string) error {
	normalize := func(s string) string {
		return strings.Join(strings.Fields(s), " ")
	}

	output = normalize(output)

	requiredOutputs := map[string][]string{
		"application": {
			"The application command helps you deploy and monitor the applications",
			"mma-ai application [command]",
		},
		"bootstrap": {
			"The bootstrap command configures and validates the host needed to run the AI demo stacks, ensuring prerequisites are met and initial configuration is completed.",
			"mma-ai bootstrap [flags]",
		},
		"completion": {
			"Generate the autocompletion script for mma-ai for the specified shell.",
			"mma-ai completion [command]",
		},
		"version": {
			"Print the version information",
			"mma-ai version [flags]",
		},
	}

	required, ok := requiredOutputs[command]
	if !ok {
		return fmt.Errorf("help random command validation failed: unknown command '%s'", command)
	}

	for _, r := range required {
		if !strings.Contains(output, normalize(r)) {
			return fmt.Errorf("help random command validation failed: missing '%s'", r)
		}
	}

	return nil
}

func ValidateApplicationPS(output string) error {
	if isNoPods(output) {
		return nil
	}

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if containsAll(line, "ApplicationName:", "PodId:", "PodName:", "Status:", "Exposed:") {
			return nil
		}
	}

	return fmt.Errorf("invalid application ps output format:\n%s", output)
}

func isNoPods(output string) bool {
	return strings.Contains(output, "No Pods found")
}

func containsAll(output string, fields ...string) bool {
	for _, field := range fields {
		if !strings.Contains(output, field) {
			return false
		}
	}

	return true
}

func ValidateImageListOutput(output, templateName string) error {
	required := []string{
		fmt.Sprintf("Images in application template %s:", templateName),
	}
	for _, r := range required {
		if !strings.Contains(output, r) {
			return fmt.Errorf("image list validation failed: missing '%s'", r)
		}
	}

	return nil
}

func ValidateStopAppOutput(output string) error {
	if !strings.Contains(output, "Proceeding to stop pods") {
		return fmt.Errorf("stop app validation failed")
	}

	return nil
}

func ValidatePodsExitedAfterStop(psOutput, appName string, stoppedPods []string) error {
	for _, pod := range stoppedPods {
		exited := false
		for _, line := range strings.Split(psOutput, "\n") {
			if !strings.Contains(line, "PodName: "+pod+",") {
				continue
			}
			if strings.Contains(line, "Status: Exited") {
				exited = true
			}

			break
		}
		if !exited {
			return fmt.Errorf(
				"pod %s not in Exited state for app %s",
				pod,
				appName,
			)
		}
	}

	logger.Infof("[TEST] Stopped pods are in Exited state")

	return nil
}

func ValidateDeleteAppOutput(output, appName string) error {
	for _, r := range []string{
		"Proceeding with deletion",
	} {
		if !strings.Contains(output, r) {
			return fmt.Errorf("delete app validation failed: missing '%s'", r)
		}
	}

	return nil
}

func ValidateNoPodsAfterDelete(psOutput string) error {
	for _, line := range strings.Split(psOutput, "\n") {
		if strings.Contains(line, "PodName:") {
			return fmt.Errorf("pods still exist after delete")
		}
	}
	logger.Infof("[TEST] No pods present after delete")

	return nil
}

func ValidateApplicationInfo(output, appName, templateName string) error {
	required := []string{
		fmt.Sprintf("Application Name: %s", appName),
		fmt.Sprintf("Application Template: %s", templateName),
		"Version:",
	}

	for _, r := range required {
		if !strings.Contains(output, r) {
			return fmt.Errorf("application info validation failed: missing '%s'", r)
		}
	}

	return nil
}

func ValidateModelListOutput(output string, templateName string) error {
	header := fmt.Sprintf("Models in application template %s:", templateName)
	if !strings.Contains(output, header) {
		return fmt.Errorf("model list validation failed: missing header '%s'", header)
	}

	// Expect at least one model line starting with '- '
	lines := strings.Split(strings.TrimSpace(output), "\n")
	found := false
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if strings.HasPrefix(l, "- ") {
			found = true

			break
		}
	}
	if !found {
		return fmt.Errorf("model list validation failed: no model entries found")
	}
	// Both bundled templates serve the same quantized Granite build.
	if templateName == "rag" || templateName == "sql-assistant" {
		expected := []string{
			"granite-3.3-2b-instruct-Q4_K_M.gguf",
		}
		for _, e := range expected {
			if !strings.Contains(output, e) {
				return fmt.Errorf("model list validation failed: expected model '%s' not found in output", e)
			}
		}
	}

	return nil
}

func ValidateModelFetchOutput(output string, templateName string) error {
	required := []string{
		fmt.Sprintf("Fetching models for application template %s:", templateName),
	}
	for _, r := range required {
		if !strings.Contains(output, r) {
			return fmt.Errorf("model fetch validation failed: missing '%s'", r)
		}
	}

	return nil
}

func ValidateApplicationsTemplateCommandOutput(output string) error {
	required := []string{
		"Template: rag",
		"Template: sql-assistant",
		"Retrieval-augmented generation demo.",
		"Text-to-SQL demo.",
		"llm.hostPort",
	}
	for _, r := range required {
		if !strings.Contains(output, r) {
			return fmt.Errorf("application templates validation failed: missing '%s'", r)
		}
	}

	return nil
}

func ValidateVerifyOutput(output, appName string) error {
	required := []string{
		fmt.Sprintf("Verifying application '%s'", appName),
		fmt.Sprintf("Application '%s' verified successfully", appName),
	}
	for _, r := range required {
		if !strings.Contains(output, r) {
			return fmt.Errorf("verify validation failed: missing '%s'", r)
		}
	}

	return nil
}

func ValidateVersionCommandOutput(output string) error {
	if !strings.Contains(output, "mma-ai version") {
		return fmt.Errorf("version command validation failed")
	}

	return nil
}

func ValidatePodsRunningAfterStart(psOutput, appName string, mainPods []string) error {
	for _, pod := range mainPods {
		running := false
		for _, line := range strings.Split(psOutput, "\n") {
			if !strings.Contains(line, "PodName: "+pod+",") {
				continue
			}
			if strings.Contains(line, "Status: Running") {
				running = true
			}

			break
		}
		if !running {
			return fmt.Errorf(
				"main pod %s not running after start for app %s",
				pod,
				appName,
			)
		}
	}

	logger.Infof("[TEST] Main pods are running after start")

	return nil
}

func ValidateStartAppOutput(output string) error {
	if !strings.Contains(output, "Proceeding to start pods") &&
		!strings.Contains(output, "Successfully started") {
		return fmt.Errorf("start app validation failed")
	}

	return nil
}
