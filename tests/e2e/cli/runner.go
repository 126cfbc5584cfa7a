package cli

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
	"github.com/DanielCasali/mma-ai/tests/e2e/bootstrap"
	"github.com/DanielCasali/mma-ai/tests/e2e/common"
	"github.com/DanielCasali/mma-ai/tests/e2e/config"
)

type CreateOptions struct {
	SkipModelDownload bool
	SkipValidation    string
	ImagePullPolicy   string
	ValuesFiles       []string
}

type StartOptions struct {
	Pod string
}

// Bootstrap runs the full bootstrap (configure + validate).
func Bootstrap(ctx context.Context) (string, error) {
	binPath, err := bootstrap.BuildOrVerifyCLIBinary(ctx)
	if err != nil {
		return "", err
	}
	logger.Infof("[CLI] Running: %s bootstrap", binPath)
	output, err := common.RunCommand(binPath, "bootstrap")
	if err != nil {
		return output, err
	}

	return output, nil
}

// BootstrapConfigure runs only the 'configure' step.
func BootstrapConfigure(ctx context.Context) (string, error) {
	binPath, err := bootstrap.BuildOrVerifyCLIBinary(ctx)
	if err != nil {
		return "", err
	}
	logger.Infof("[CLI] Running: %s bootstrap configure", binPath)
	output, err := common.RunCommand(binPath, "bootstrap", "configure")
	if err != nil {
		return output, err
	}

	return output, nil
}

// BootstrapValidate runs only the 'validate' step.
func BootstrapValidate(ctx context.Context) (string, error) {
	binPath, err := bootstrap.BuildOrVerifyCLIBinary(ctx)
	if err != nil {
		return "", err
	}
	logger.Infof("[CLI] Running: %s bootstrap validate", binPath)
	output, err := common.RunCommand(binPath, "bootstrap", "validate")
	if err != nil {
		return output, err
	}

	return output, nil
}

// CreateApp creates an application via the CLI.
func CreateApp(
	ctx context.Context,
	cfg *config.Config,
	appName string,
	template string,
	params string,
	opts CreateOptions,
) (string, error) {
	args := []string{
		"application", "create", appName,
		"-t", template,
	}
	if params != "" {
		args = append(args, "--params", params)
	}
	for _, vf := range opts.ValuesFiles {
		args = append(args, "--values", vf)
	}
	if opts.SkipModelDownload {
		args = append(args, "--skip-model-download")
	}
	if opts.SkipValidation != "" {
		args = append(args, "--skip-validation", opts.SkipValidation)
	}
	if opts.ImagePullPolicy != "" {
		args = append(args, "--image-pull-policy", opts.ImagePullPolicy)
	}
	logger.Infof("[CLI] Running: %s %s", cfg.MMAAIBin, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, cfg.MMAAIBin, args...)
	out, err := cmd.CombinedOutput()
	output := string(out)

	if err != nil {
		return output, fmt.Errorf("application create failed: %w\n%s", err, output)
	}

	return output, nil
}

// CreateAppAndWaitReady creates an application, validates the create output,
// and waits until every given endpoint answers HTTP 200 on localhost.
func CreateAppAndWaitReady(
	ctx context.Context,
	cfg *config.Config,
	appName string,
	template string,
	params string,
	opts CreateOptions,
	endpoints []string,
) (string, error) {
	const (
		maxRetries            = 20
		waitTime              = 15 * time.Second
		defaultRequestTimeout = 10 * time.Second
	)
	output, err := CreateApp(ctx, cfg, appName, template, params, opts)
	if err != nil {
		return output, err
	}
	if err := ValidateCreateAppOutput(output, appName); err != nil {
		return output, err
	}

	httpClient := &http.Client{
		Timeout: defaultRequestTimeout,
	}
	for _, ep := range endpoints {
		if err := waitForEndpointOK(httpClient, ep, maxRetries, waitTime); err != nil {
			return output, err
		}
	}

	return output, nil
}

// waitForEndpointOK polls the given endpoint until it returns HTTP 200 OK or exhausts retries.
func waitForEndpointOK(
	client *http.Client,
	endpoint string,
	maxRetries int,
	waitTime time.Duration,
) error {
	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		resp, err := client.Get(endpoint)
		if err == nil && resp.StatusCode == http.StatusOK {
			if cerr := resp.Body.Close(); cerr != nil {
				logger.Warningf("[WARNING] failed to close response body for %s: %v", endpoint, cerr)
			}
			logger.Infof("[HTTP] GET %s -> 200 OK", endpoint)

			return nil
		}
		if resp != nil {
			if cerr := resp.Body.Close(); cerr != nil {
				logger.Warningf("[WARNING] failed to close response body for %s: %v", endpoint, cerr)
			}
		}
		lastErr = err
		logger.Infof(
			"[HTTP] Waiting for %s (attempt %d/%d)",
			endpoint, i, maxRetries,
		)
		time.Sleep(waitTime)
	}

	return fmt.Errorf("endpoint %s failed after retries: %w", endpoint, lastErr)
}

// BaseURL builds a localhost base URL for a published host port.
func BaseURL(hostPort string) string {
	return fmt.Sprintf("http://127.0.0.1:%s", hostPort)
}

// HelpCommand runs the 'help' command with or without arguments.
func HelpCommand(ctx context.Context, cfg *config.Config, args []string) (string, error) {
	logger.Infof("[CLI] Running: %s %s", cfg.MMAAIBin, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, cfg.MMAAIBin, args...)
	out, err := cmd.CombinedOutput()
	output := string(out)
	if err != nil {
		return output, fmt.Errorf("help command run failed: %w\n%s", err, output)
	}

	return output, nil
}

// ApplicationPS runs the 'application ps' command to list application pods.
func ApplicationPS(
	ctx context.Context,
	cfg *config.Config,
	appName string,
) (string, error) {
	args := []string{"application", "ps"}

	if appName != "" {
		args = append(args, appName)
	}

	cmd := exec.CommandContext(ctx, cfg.MMAAIBin, args...)
	out, err := cmd.CombinedOutput()
	output := string(out)

	if err != nil {
		return output, fmt.Errorf("application ps failed: %w\n%s", err, output)
	}

	return output, nil
}

// ListImage lists the images of the given application template.
func ListImage(ctx context.Context, cfg *config.Config, templateName string) error {
	args := []string{"application", "image", "list", "-t", templateName}
	logger.Infof("[CLI] Running: %s %s", cfg.MMAAIBin, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, cfg.MMAAIBin, args...)
	out, err := cmd.CombinedOutput()
	output := string(out)
	if err != nil {
		return fmt.Errorf("list images failed: %w\n%s", err, output)
	}
	if err := ValidateImageListOutput(output, templateName); err != nil {
		return err
	}

	return nil
}

// PullImage pulls the images of the given application template.
func PullImage(ctx context.Context, cfg *config.Config, templateName string, policy string) error {
	args := []string{"application", "image", "pull", "-t", templateName}
	if policy != "" {
		args = append(args, "--policy", policy)
	}
	logger.Infof("[CLI] Running: %s %s", cfg.MMAAIBin, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, cfg.MMAAIBin, args...)
	out, err := cmd.CombinedOutput()
	output := string(out)
	if err != nil {
		return fmt.Errorf("pull images failed: %w\n%s", err, output)
	}

	return nil
}

// StopAppWithPods stops an application specifying pods to stop.
func StopAppWithPods(
	ctx context.Context,
	cfg *config.Config,
	appName string,
	pods []string,
) (string, error) {
	podArg := strings.Join(pods, ",")
	args := []string{
		"application", "stop", appName,
		"--pod", podArg,
		"--yes",
	}

	logger.Infof("[CLI] Running: %s %s", cfg.MMAAIBin, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, cfg.MMAAIBin, args...)

	out, err := cmd.CombinedOutput()
	output := string(out)
	if err != nil {
		return output, fmt.Errorf("application stop --pod failed: %w\n%s", err, output)
	}

	if err := ValidateStopAppOutput(output); err != nil {
		return output, err
	}

	psOutput, err := ApplicationPS(ctx, cfg, appName)
	if err != nil {
		return output, err
	}

	if err := ValidatePodsExitedAfterStop(psOutput, appName, pods); err != nil {
		return output, err
	}

	return output, nil
}

func StartApplication(
	ctx context.Context,
	cfg *config.Config,
	appName string,
	opts StartOptions,
) (string, error) {
	args := []string{"application", "start", appName, "--yes"}

	if opts.Pod != "" {
		args = append(args, "--pod="+opts.Pod)
	}

	logger.Infof("[CLI] Running: %s %s", cfg.MMAAIBin, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, cfg.MMAAIBin, args...)
	out, err := cmd.CombinedOutput()
	output := string(out)
	logger.Infof("[CLI] Output: %s", output)

	if err != nil {
		return output, fmt.Errorf("application start failed: %w\n%s", err, output)
	}

	if err := ValidateStartAppOutput(output); err != nil {
		return output, err
	}

	return output, nil
}

// DeleteAppSkipCleanup deletes an application with --skip-cleanup flag.
func DeleteAppSkipCleanup(
	ctx context.Context,
	cfg *config.Config,
	appName string,
) (string, error) {
	args := []string{
		"application", "delete", appName,
		"--skip-cleanup",
		"--yes",
	}

	logger.Infof("[CLI] Running: %s %s", cfg.MMAAIBin, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, cfg.MMAAIBin, args...)

	out, err := cmd.CombinedOutput()
	output := string(out)

	if err != nil {
		return output, fmt.Errorf("application delete --skip-cleanup failed: %w\n%s", err, output)
	}

	if err := ValidateDeleteAppOutput(output, appName); err != nil {
		return output, err
	}

	psOutput, err := ApplicationPS(ctx, cfg, appName)
	if err != nil {
		return output, err
	}
	if err := ValidateNoPodsAfterDelete(psOutput); err != nil {
		return output, err
	}

	return output, nil
}

// ApplicationInfo runs the 'application info' command.
func ApplicationInfo(
	ctx context.Context,
	cfg *config.Config,
	appName string,
) (string, error) {
	args := []string{"application", "info", appName}

	logger.Infof("[CLI] Running: %s %s", cfg.MMAAIBin, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, cfg.MMAAIBin, args...)

	out, err := cmd.CombinedOutput()
	output := string(out)

	if err != nil {
		return output, fmt.Errorf("application info failed: %w\n%s", err, output)
	}

	return output, nil
}

// VerifyApplication runs the 'application verify' command.
func VerifyApplication(
	ctx context.Context,
	cfg *config.Config,
	appName string,
) (string, error) {
	args := []string{"application", "verify", appName}

	logger.Infof("[CLI] Running: %s %s", cfg.MMAAIBin, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, cfg.MMAAIBin, args...)

	out, err := cmd.CombinedOutput()
	output := string(out)

	if err != nil {
		return output, fmt.Errorf("application verify failed: %w\n%s", err, output)
	}

	return output, nil
}

// ModelList lists models for a given application template.
func ModelList(ctx context.Context, cfg *config.Config, templateName string) (string, error) {
	args := []string{"application", "model", "list", "-t", templateName}
	logger.Infof("[CLI] Running: %s %s", cfg.MMAAIBin, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, cfg.MMAAIBin, args...)
	out, err := cmd.CombinedOutput()
	output := string(out)
	if err != nil {
		return output, fmt.Errorf("application model list failed: %w\n%s", err, output)
	}

	return output, nil
}

// ModelFetch fetches models for a given application template.
func ModelFetch(ctx context.Context, cfg *config.Config, templateName string, dir string) (string, error) {
	args := []string{"application", "model", "fetch", "-t", templateName}
	if dir != "" {
		args = append(args, "--dir", dir)
	}
	logger.Infof("[CLI] Running: %s %s", cfg.MMAAIBin, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, cfg.MMAAIBin, args...)
	out, err := cmd.CombinedOutput()
	output := string(out)
	if err != nil {
		return output, fmt.Errorf("application model fetch failed: %w\n%s", err, output)
	}

	return output, nil
}

// TemplatesCommand runs the 'application templates' command.
func TemplatesCommand(ctx context.Context, cfg *config.Config) (string, error) {
	logger.Infof("[CLI] Running: %s application templates", cfg.MMAAIBin)
	cmd := exec.CommandContext(ctx, cfg.MMAAIBin, "application", "templates")
	out, err := cmd.CombinedOutput()
	output := string(out)

	if err != nil {
		return output, fmt.Errorf("application templates command run failed: %w\n%s", err, output)
	}

	return output, nil
}

// VersionCommand runs the 'version' command.
func VersionCommand(ctx context.Context, cfg *config.Config) (string, error) {
	logger.Infof("[CLI] Running: %s version", cfg.MMAAIBin)
	cmd := exec.CommandContext(ctx, cfg.MMAAIBin, "version")
	out, err := cmd.CombinedOutput()
	output := string(out)

	if err != nil {
		return output, fmt.Errorf("version command run failed: %w\n%s", err, output)
	}

	return output, nil
}
