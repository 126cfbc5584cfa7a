package validators

import (
	"fmt"
	"strings"

	"github.com/DanielCasali/mma-ai/internal/pkg/cli/templates"
)

// ValidateAppTemplateExist fails with the list of known templates when
// the requested application template is not embedded in the binary.
func ValidateAppTemplateExist(tp *templates.EmbedTemplateProvider, appTemplateName string) error {
	if tp.Exists(appTemplateName) {
		return nil
	}

	known, err := tp.ListAppTemplates()
	if err != nil {
		return fmt.Errorf("application template '%s' does not exist", appTemplateName)
	}

	return fmt.Errorf("application template '%s' does not exist, available templates: %s",
		appTemplateName, strings.Join(known, ", "))
}
