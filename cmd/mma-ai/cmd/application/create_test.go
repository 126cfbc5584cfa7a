package application

import (
	"strings"
	"testing"

	"github.com/DanielCasali/mma-ai/internal/pkg/constants"
	"github.com/DanielCasali/mma-ai/internal/pkg/vars"
)

func resetCreateFlags(t *testing.T) {
	t.Helper()

	origTemplate := templateName
	origParams := rawArgParams
	origModelDir := vars.ModelDirectory
	t.Cleanup(func() {
		templateName = origTemplate
		rawArgParams = origParams
		argParams = nil
		vars.ModelDirectory = origModelDir
	})
}

func TestCreatePreRunEDerivesModelDirParam(t *testing.T) {
	resetCreateFlags(t)

	templateName = "rag"
	rawArgParams = nil
	argParams = nil
	vars.ModelDirectory = "/mnt/big/models"

	if err := createCmd.PreRunE(createCmd, []string{"demo"}); err != nil {
		t.Fatalf("unexpected precheck error: %v", err)
	}
	if got := argParams[modelDirParamKey]; got != "/mnt/big/models" {
		t.Fatalf("expected %s to follow the model directory, got %q", modelDirParamKey, got)
	}
	if got := values["global"].(map[string]any)["modelDir"]; got != "/mnt/big/models" {
		t.Fatalf("expected rendered values to mount the model directory, got %v", got)
	}
}

func TestCreatePreRunERejectsModelDirParamConflict(t *testing.T) {
	resetCreateFlags(t)

	templateName = "rag"
	rawArgParams = []string{modelDirParamKey + "=/somewhere/else"}
	argParams = nil

	err := createCmd.PreRunE(createCmd, []string{"demo"})
	if err == nil {
		t.Fatal("expected a conflict error for a params model directory override")
	}
	if !strings.Contains(err.Error(), "--model-dir") {
		t.Fatalf("expected the error to point at --model-dir, got: %v", err)
	}
}

func TestConstructPodDeployOptions(t *testing.T) {
	annotations := map[string]string{
		constants.PodPortsAnnotationKey: "8080:80,0:9091,3000",
		constants.PodStartAnnotationKey: constants.PodStartOff,
	}

	opts, err := constructPodDeployOptions(annotations)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := opts["start"]; got != constants.PodStartOff {
		t.Fatalf("expected start option %q, got %q", constants.PodStartOff, got)
	}
	// Suppressed ports are dropped and the rest come out ordered by
	// container port with no trailing separator.
	if got := opts["publish"]; got != "3000,8080:80" {
		t.Fatalf("expected publish option %q, got %q", "3000,8080:80", got)
	}
}

func TestConstructPodDeployOptionsRejectsBadPorts(t *testing.T) {
	annotations := map[string]string{
		constants.PodPortsAnnotationKey: "8080:notaport",
	}

	if _, err := constructPodDeployOptions(annotations); err == nil {
		t.Fatal("expected an error for a malformed ports annotation")
	}
}
