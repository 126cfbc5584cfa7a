package e2e

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	ginkgo "github.com/onsi/ginkgo/v2"
	gomega "github.com/onsi/gomega"

	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
	"github.com/DanielCasali/mma-ai/tests/e2e/bootstrap"
	"github.com/DanielCasali/mma-ai/tests/e2e/cleanup"
	"github.com/DanielCasali/mma-ai/tests/e2e/cli"
	"github.com/DanielCasali/mma-ai/tests/e2e/config"
	"github.com/DanielCasali/mma-ai/tests/e2e/ingestion"
	"github.com/DanielCasali/mma-ai/tests/e2e/podman"
	"github.com/DanielCasali/mma-ai/tests/e2e/rag"
)

var (
	cfg                *config.Config
	runID              string
	appName            string
	tempDir            string
	tempBinDir         string
	mmaAIBin           string
	binVersion         string
	ctx                context.Context
	podmanReady        bool
	templateName       string
	llamaPort          string
	uiPort             string
	milvusPort         string
	llamaBaseURL       string
	uiBaseURL          string
	mainPodsByTemplate map[string][]string
)

func TestE2E(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "MMA AI E2E Suite")
}

func getEnvWithDefault(key, defaultValue string) string {
	if envValue := os.Getenv(key); envValue != "" {
		return envValue
	}

	return defaultValue
}

var _ = ginkgo.BeforeSuite(func() {
	logger.Infoln("[SETUP] Starting MMA AI E2E setup")

	ctx = context.Background()

	ginkgo.By("Loading E2E configuration")
	cfg = &config.Config{}

	ginkgo.By("Generating unique run ID")
	runID = fmt.Sprintf("%d", time.Now().Unix())

	ginkgo.By("Preparing runtime environment")
	tempDir = bootstrap.PrepareRuntime(runID)
	gomega.Expect(tempDir).NotTo(gomega.BeEmpty())

	ginkgo.By("Preparing temp bin directory for test binaries")
	tempBinDir = filepath.Join(tempDir, "bin")
	bootstrap.SetTestBinDir(tempBinDir)
	logger.Infof("[SETUP] Test binary directory: %s", tempBinDir)

	ginkgo.By("Setting template name")
	templateName = "rag"

	ginkgo.By("Setting application name")
	appName = fmt.Sprintf("%s-app-%s", templateName, runID)

	ginkgo.By("Setting main pods by template")
	mainPodsByTemplate = map[string][]string{
		"rag": {
			"llama-server",
			"milvus",
			"rag-ui",
		},
		"sql-assistant": {
			"llama-server",
			"postgres",
			"sql-ui",
		},
	}

	ginkgo.By("Resolving application ports from environment")
	llamaPort = getEnvWithDefault("MMA_AI_LLAMA_PORT", "8080")
	uiPort = getEnvWithDefault("MMA_AI_UI_PORT", "8501")
	milvusPort = getEnvWithDefault("MMA_AI_MILVUS_PORT", "19530")
	llamaBaseURL = cli.BaseURL(llamaPort)
	uiBaseURL = cli.BaseURL(uiPort)
	logger.Infof("[SETUP] Ports: llama=%s ui=%s milvus=%s", llamaPort, uiPort, milvusPort)

	ginkgo.By("Building or verifying mma-ai CLI")
	var err error
	mmaAIBin, err = bootstrap.BuildOrVerifyCLIBinary(ctx)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	gomega.Expect(mmaAIBin).NotTo(gomega.BeEmpty())
	cfg.MMAAIBin = mmaAIBin

	ginkgo.By("Getting mma-ai version")
	binVersion, err = bootstrap.CheckBinaryVersion(mmaAIBin)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	logger.Infof("[SETUP] mma-ai version: %s", binVersion)

	ginkgo.By("Checking Podman environment (non-blocking)")
	err = bootstrap.CheckPodman()
	if err != nil {
		podmanReady = false
		logger.Warningf("[SETUP] [WARNING] Podman not available: %v - will be installed via bootstrap configure", err)
	} else {
		podmanReady = true
		logger.Infoln("[SETUP] Podman environment verified")
	}

	logger.Infoln("[SETUP] ================================================")
	logger.Infoln("[SETUP] E2E Environment Ready")
	logger.Infof("[SETUP] Binary:   %s", mmaAIBin)
	logger.Infof("[SETUP] Version:  %s", binVersion)
	logger.Infof("[SETUP] TempDir:  %s", tempDir)
	logger.Infof("[SETUP] RunID:    %s", runID)
	logger.Infof("[SETUP] Podman:   %v", podmanReady)
	logger.Infoln("[SETUP] ================================================")
})

// Teardown after all tests have run.
var _ = ginkgo.AfterSuite(func() {
	logger.Infoln("[TEARDOWN] MMA AI E2E teardown")
	ginkgo.By("Cleaning up E2E environment")
	if err := cleanup.CleanupTemp(tempDir); err != nil {
		logger.Errorf("[TEARDOWN] cleanup failed: %v", err)
	}
	ginkgo.By("Cleanup completed")
})

// mainPods returns the fully qualified pod names the current template deploys.
func mainPods() []string {
	suffixes, ok := mainPodsByTemplate[templateName]
	gomega.Expect(ok).To(gomega.BeTrue(), "unknown templateName")

	pods := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		pods = append(pods, fmt.Sprintf("%s-%s", appName, s))
	}

	return pods
}

var _ = ginkgo.Describe("MMA AI End-to-End Tests", ginkgo.Ordered, func() {
	ginkgo.Context("Environment & CLI Sanity Tests", func() {
		ginkgo.It("runs help command", ginkgo.Label("podman-independent"), func() {
			args := []string{"help"}
			output, err := cli.HelpCommand(ctx, cfg, args)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cli.ValidateHelpCommandOutput(output)).To(gomega.Succeed())
		})
		ginkgo.It("runs -h command", ginkgo.Label("podman-independent"), func() {
			args := []string{"-h"}
			output, err := cli.HelpCommand(ctx, cfg, args)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cli.ValidateHelpCommandOutput(output)).To(gomega.Succeed())
		})
		ginkgo.It("runs help for a given random command", ginkgo.Label("podman-independent"), func() {
			possibleCommands := []string{"application", "bootstrap", "completion", "version"}
			randomIndex := rand.Intn(len(possibleCommands))
			randomCommand := possibleCommands[randomIndex]
			args := []string{randomCommand, "-h"}
			output, err := cli.HelpCommand(ctx, cfg, args)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cli.ValidateHelpRandomCommandOutput(randomCommand, output)).To(gomega.Succeed())
		})
		ginkgo.It("runs version command", ginkgo.Label("podman-independent"), func() {
			output, err := cli.VersionCommand(ctx, cfg)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cli.ValidateVersionCommandOutput(output)).To(gomega.Succeed())
		})
		ginkgo.It("runs application templates command", ginkgo.Label("podman-independent"), func() {
			output, err := cli.TemplatesCommand(ctx, cfg)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cli.ValidateApplicationsTemplateCommandOutput(output)).To(gomega.Succeed())
		})
		ginkgo.It("verifies application model list command", ginkgo.Label("podman-independent"), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
			defer cancel()
			output, err := cli.ModelList(ctx, cfg, templateName)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cli.ValidateModelListOutput(output, templateName)).To(gomega.Succeed())
			logger.Infoln("[TEST] Application model list validated successfully!")
		})
		ginkgo.It("verifies application model fetch command", ginkgo.Label("network"), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()
			modelDir := filepath.Join(tempDir, "models")
			output, err := cli.ModelFetch(ctx, cfg, templateName, modelDir)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cli.ValidateModelFetchOutput(output, templateName)).To(gomega.Succeed())
			logger.Infoln("[TEST] Application model fetch validated successfully!")
		})
		ginkgo.It("skips re-fetch of an already present model", ginkgo.Label("network"), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			modelDir := filepath.Join(tempDir, "models")
			output, err := cli.ModelFetch(ctx, cfg, templateName, modelDir)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(output).To(gomega.ContainSubstring("already present"))
			logger.Infoln("[TEST] Model re-fetch idempotence validated!")
		})
	})
	ginkgo.Context("Bootstrap Steps", func() {
		ginkgo.It("runs bootstrap configure", ginkgo.Label("podman-dependent"), func() {
			output, err := cli.BootstrapConfigure(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cli.ValidateBootstrapConfigureOutput(output)).To(gomega.Succeed())
		})
		ginkgo.It("runs bootstrap validate", ginkgo.Label("podman-dependent"), func() {
			output, err := cli.BootstrapValidate(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cli.ValidateBootstrapValidateOutput(output)).To(gomega.Succeed())
		})
		ginkgo.It("runs full bootstrap", ginkgo.Label("podman-dependent"), func() {
			output, err := cli.Bootstrap(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cli.ValidateBootstrapFullOutput(output)).To(gomega.Succeed())
		})
	})
	ginkgo.Context("Application Image Command Tests", func() {
		ginkgo.It("lists images for rag template", ginkgo.Label("podman-independent"), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			err := cli.ListImage(ctx, cfg, templateName)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			logger.Infof("[TEST] Images listed successfully for %s template", templateName)
		})
		ginkgo.It("pulls images for rag template", ginkgo.Label("network"), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()
			err := cli.PullImage(ctx, cfg, templateName, "IfNotPresent")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			logger.Infof("[TEST] Images pulled successfully for %s template", templateName)
		})
	})
	ginkgo.Context("Application Creation", func() {
		ginkgo.It("creates rag application and waits for serving endpoints", ginkgo.Label("podman-dependent"), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 45*time.Minute)
			defer cancel()

			params := fmt.Sprintf(
				"llm.hostPort=%s,ui.hostPort=%s,milvus.hostPort=%s",
				llamaPort, uiPort, milvusPort,
			)

			endpoints := []string{
				llamaBaseURL + "/",
				uiBaseURL + "/",
			}

			_, err := cli.CreateAppAndWaitReady(
				ctx,
				cfg,
				appName,
				templateName,
				params,
				cli.CreateOptions{
					SkipModelDownload: false,
					ImagePullPolicy:   "IfNotPresent",
				},
				endpoints,
			)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			logger.Infof("[TEST] Application %s created and serving endpoints are up", appName)
		})
		ginkgo.It("answers a chat completion request", ginkgo.Label("podman-dependent"), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			answer, err := rag.QueryChat(ctx, llamaBaseURL, "Reply with the single word: ready")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(answer).NotTo(gomega.BeEmpty())
			logger.Infof("[TEST] Chat completion answered: %s", answer)
		})
	})
	ginkgo.Context("Application Observability", func() {
		ginkgo.It("verifies application ps output", ginkgo.Label("podman-dependent"), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			output, err := cli.ApplicationPS(ctx, cfg, appName)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cli.ValidateApplicationPS(output)).To(gomega.Succeed())
		})
		ginkgo.It("verifies application info output", ginkgo.Label("podman-dependent"), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			infoOutput, err := cli.ApplicationInfo(ctx, cfg, appName)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(cli.ValidateApplicationInfo(infoOutput, appName, templateName)).To(gomega.Succeed())
			logger.Infof("[TEST] Application info output validated successfully!")
		})
		ginkgo.It("runs application verify", ginkgo.Label("podman-dependent"), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
			defer cancel()

			output, err := cli.VerifyApplication(ctx, cfg, appName)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cli.ValidateVerifyOutput(output, appName)).To(gomega.Succeed())
			logger.Infof("[TEST] Application verify validated successfully!")
		})
		ginkgo.It("verifies pods existence, health status and restart count", ginkgo.Label("podman-dependent"), func() {
			if !podmanReady {
				ginkgo.Skip("Podman not available - will be installed via bootstrap configure")
			}
			err := podman.VerifyContainers(cfg, appName, mainPods())
			gomega.Expect(err).NotTo(gomega.HaveOccurred(), "verify containers failed")
			logger.Infof("[TEST] Containers verified")
		})
		ginkgo.It("verifies exposed ports of the application", ginkgo.Label("podman-dependent"), func() {
			if !podmanReady {
				ginkgo.Skip("Podman not available - will be installed via bootstrap configure")
			}
			expectedPorts := []string{llamaPort, uiPort, milvusPort}
			err := podman.VerifyExposedPorts(cfg, appName, expectedPorts)
			gomega.Expect(err).NotTo(gomega.HaveOccurred(), "verify exposed ports failed")
			logger.Infof("[TEST] Exposed ports verified")
		})
	})
	ginkgo.Context("Runtime Operations", func() {
		ginkgo.It("stops the application", ginkgo.Label("podman-dependent"), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			pods := mainPods()

			output, err := cli.StopAppWithPods(ctx, cfg, appName, pods)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(output).NotTo(gomega.BeEmpty())

			logger.Infof("[TEST] Application %s stopped successfully using --pod", appName)
		})
		ginkgo.It("starts application pods", ginkgo.Label("podman-dependent"), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			output, err := cli.StartApplication(
				ctx,
				cfg,
				appName,
				cli.StartOptions{},
			)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(output).NotTo(gomega.BeEmpty())

			psOutput, err := cli.ApplicationPS(ctx, cfg, appName)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cli.ValidatePodsRunningAfterStart(psOutput, appName, mainPods())).To(gomega.Succeed())

			logger.Infof("[TEST] Application %s started successfully", appName)
		})
		ginkgo.It("starts document ingestion pod and validates ingestion completion", ginkgo.Label("podman-dependent"), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 35*time.Minute)
			defer cancel()

			gomega.Expect(appName).NotTo(gomega.BeEmpty())

			gomega.Expect(ingestion.PrepareDocs(appName)).To(gomega.Succeed())

			gomega.Expect(ingestion.StartIngestion(ctx, cfg, appName, mainPods())).To(gomega.Succeed())

			logs, err := ingestion.WaitForIngestionLogs(ctx, cfg, appName)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(logs).To(gomega.ContainSubstring("Ingestion complete"))

			logger.Infof("[TEST] Ingestion completed successfully for application %s", appName)
		})
	})
	ginkgo.Context("Application Teardown", func() {
		ginkgo.It("deletes the application using --skip-cleanup", ginkgo.Label("podman-dependent"), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
			defer cancel()

			output, err := cli.DeleteAppSkipCleanup(ctx, cfg, appName)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(output).NotTo(gomega.BeEmpty())

			logger.Infof("[TEST] Application %s deleted successfully using --skip-cleanup", appName)
		})
	})
})
