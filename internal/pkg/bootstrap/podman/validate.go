package podman

import (
	"context"
	"fmt"

	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
	"github.com/DanielCasali/mma-ai/internal/pkg/spinner"
	"github.com/DanielCasali/mma-ai/internal/pkg/validators"

	// Rules register themselves into the default registry.
	_ "github.com/DanielCasali/mma-ai/internal/pkg/validators/cpu"
	_ "github.com/DanielCasali/mma-ai/internal/pkg/validators/disk"
	_ "github.com/DanielCasali/mma-ai/internal/pkg/validators/memory"
	_ "github.com/DanielCasali/mma-ai/internal/pkg/validators/root"
)

// Validate runs all validation checks.
func (p *PodmanBootstrap) Validate(skip map[string]bool) error {
	var validationErrors []error
	ctx := context.Background()

	for _, rule := range validators.DefaultRegistry.Rules() {
		ruleName := rule.Name()
		if skip[ruleName] {
			logger.Warningf("%s check skipped; Proceeding without validation may result in deployment failure.", ruleName)

			continue
		}

		s := spinner.New("Validating " + ruleName + " ...")
		s.Start(ctx)
		err := rule.Verify()

		if err != nil {
			// exit right away if user is not root as other checks
			// require root privileges
			if ruleName == "root" {
				s.StopWithHint(err.Error(), rule.Hint())

				return fmt.Errorf("root privileges are required for validation")
			}

			switch rule.Level() {
			case validators.ValidationLevelError:
				s.StopWithHint(err.Error(), rule.Hint())
				validationErrors = append(validationErrors, fmt.Errorf("%s: %w", ruleName, err))
			case validators.ValidationLevelWarning:
				s.Stop("Warning: " + err.Error())
			}
		} else {
			s.Stop(rule.Message())
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("%d validation check(s) failed", len(validationErrors))
	}

	logger.Infoln("All validations passed")

	return nil
}
