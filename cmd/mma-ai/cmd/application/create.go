package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/spf13/cobra"

	appBootstrap "github.com/DanielCasali/mma-ai/cmd/mma-ai/cmd/bootstrap"
	"github.com/DanielCasali/mma-ai/internal/pkg/bootstrap"
	"github.com/DanielCasali/mma-ai/internal/pkg/cli/helpers"
	"github.com/DanielCasali/mma-ai/internal/pkg/cli/templates"
	"github.com/DanielCasali/mma-ai/internal/pkg/constants"
	"github.com/DanielCasali/mma-ai/internal/pkg/fetch"
	"github.com/DanielCasali/mma-ai/internal/pkg/image"
	"github.com/DanielCasali/mma-ai/internal/pkg/logger"
	"github.com/DanielCasali/mma-ai/internal/pkg/models"
	"github.com/DanielCasali/mma-ai/internal/pkg/runtime"
	"github.com/DanielCasali/mma-ai/internal/pkg/runtime/podman"
	"github.com/DanielCasali/mma-ai/internal/pkg/runtime/types"
	"github.com/DanielCasali/mma-ai/internal/pkg/specs"
	"github.com/DanielCasali/mma-ai/internal/pkg/spinner"
	"github.com/DanielCasali/mma-ai/internal/pkg/utils"
	"github.com/DanielCasali/mma-ai/internal/pkg/validators"
	"github.com/DanielCasali/mma-ai/internal/pkg/vars"
)

var (
	extraContainerReadinessTimeout = 5 * time.Minute
	containerCreationTimeout       = 10 * time.Minute
)

// modelDirParamKey is the values key the pod templates mount models
// from; create keeps it in lockstep with --model-dir.
const modelDirParamKey = "global.modelDir"

// Variables for flags placeholder.
var (
	templateName          string
	skipModelDownload     bool
	skipImageDownload     bool
	skipChecks            []string
	rawArgParams          []string
	argParams             map[string]string
	valuesFiles           []string
	values                map[string]any
	rawArgImagePullPolicy string
	imagePullPolicy       image.ImagePullPolicy
)

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Deploys an application",
	Long: `Deploys an application with the provided application name based on the template
		Arguments
		- [name]: Application name (Required)
	`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		// validate params flag
		if len(rawArgParams) > 0 {
			argParams, err = utils.ParseKeyValues(rawArgParams)
			if err != nil {
				return fmt.Errorf("error validating params flag: %w", err)
			}
		}

		// validate values files
		for _, vf := range valuesFiles {
			if !utils.FileExists(vf) {
				return fmt.Errorf("values file '%s' does not exist", vf)
			}
		}

		// --model-dir decides where models are fetched; the rendered
		// pods must mount that same directory.
		if override, ok := argParams[modelDirParamKey]; ok && override != vars.ModelDirectory {
			return fmt.Errorf(
				"--params %s=%q conflicts with the model directory %q: use --model-dir instead",
				modelDirParamKey, override, vars.ModelDirectory,
			)
		}
		if argParams == nil {
			argParams = map[string]string{}
		}
		argParams[modelDirParamKey] = vars.ModelDirectory

		tp := templates.NewEmbedTemplateProvider(templates.EmbedOptions{})
		if err := validators.ValidateAppTemplateExist(tp, templateName); err != nil {
			return err
		}

		// load the values and verify params arg values passed
		values, err = tp.LoadValues(templateName, valuesFiles, argParams)
		if err != nil {
			return fmt.Errorf("failed to load params for application: %w", err)
		}

		// validate ImagePullPolicy
		imagePullPolicy = image.ImagePullPolicy(rawArgImagePullPolicy)
		if ok := imagePullPolicy.Valid(); !ok {
			return fmt.Errorf(
				"invalid --image-pull-policy %q: must be one of %q, %q, %q",
				imagePullPolicy, image.PullAlways, image.PullNever, image.PullIfNotPresent,
			)
		}

		appName := args[0]

		return utils.VerifyAppName(appName)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		appName := args[0]
		ctx := context.Background()

		// Once precheck passes, silence usage for any *later* internal errors.
		cmd.SilenceUsage = true

		skip := helpers.ParseSkipChecks(skipChecks)
		if len(skip) > 0 {
			logger.Warningf("Skipping validation checks (skipped: %v)\n", skipChecks)
		}

		// Validate the host before creating the application
		logger.Infof("Validating the host environment before creating application '%s'...\n", appName)

		runtimeType, err := cmd.Flags().GetString("runtime")
		if err != nil {
			return fmt.Errorf("failed to get runtime flag: %w", err)
		}
		rt := types.RuntimeType(runtimeType)

		// Create bootstrap instance based on runtime
		factory := bootstrap.NewBootstrapFactory(rt)
		bootstrapInstance, err := factory.Create()
		if err != nil {
			return fmt.Errorf("failed to create bootstrap instance: %w", err)
		}

		if err := bootstrapInstance.Validate(skip); err != nil {
			return fmt.Errorf("bootstrap validation failed: %w", err)
		}

		// podman connectivity
		runtime, err := podman.NewPodmanClient()
		if err != nil {
			return fmt.Errorf("failed to connect to podman: %w", err)
		}

		// Proceed to create application
		logger.Infof("Creating application '%s' using template '%s'\n", appName, templateName)

		tp := templates.NewEmbedTemplateProvider(templates.EmbedOptions{})

		tmpls, err := tp.LoadAllTemplates(templateName)
		if err != nil {
			return fmt.Errorf("failed to parse the templates: %w", err)
		}

		// load metadata.yaml to read the app metadata
		appMetadata, err := tp.LoadMetadata(templateName, true)
		if err != nil {
			return fmt.Errorf("failed to read the app metadata: %w", err)
		}

		if err := verifyPodTemplateExists(tmpls, appMetadata); err != nil {
			return fmt.Errorf("failed to verify pod template: %w", err)
		}

		/*
			Pod Execution Logic:
			1. Check if pods already exists with the given application name
			2. If doesn't exists, proceed to create all pods
			3. Else, skip existing pods, and create missing pods
		*/

		existingPods, err := helpers.CheckExistingPodsForApplication(runtime, appName)
		if err != nil {
			return fmt.Errorf("failed while checking existing pods for application: %w", err)
		}

		// if all the pods for given application are already deployed, just log and do not proceed further
		if len(existingPods) == len(tmpls) {
			logger.Infof("Pods for given app: %s are already deployed. Please use 'mma-ai application ps %s' to see the pods deployed\n", appName, appName)

			return nil
		}

		// ---- Download Container Images ----
		if err := downloadImagesForTemplate(runtime, tp, templateName, appName); err != nil {
			return err
		}

		// Fetch models unless skipped (default: fetch)
		modelRefs, err := helpers.ListStackModelRefs(tp, templateName, appName, valuesFiles, argParams)
		if err != nil {
			return fmt.Errorf("failed to list models: %w", err)
		}

		if !skipModelDownload {
			if err := fetchModels(ctx, modelRefs); err != nil {
				return err
			}
		} else if err := verifyModelsPresent(modelRefs); err != nil {
			return err
		}

		// Loop through all pod templates, render and run kube play
		logger.Infof("Total Pod Templates to be processed: %d\n", len(tmpls))

		s := spinner.New("Deploying application '" + appName + "'...")
		s.Start(ctx)
		// execute the pod Templates
		if err := executePodTemplates(runtime, tp, appName, appMetadata, tmpls, modelRefs, existingPods); err != nil {
			s.Fail("failed to deploy application '" + appName + "'")

			return err
		}
		s.Stop("Application '" + appName + "' deployed successfully")

		logger.Infoln("-------")

		// print the next steps to be performed at the end of create
		if err := helpers.PrintNextSteps(runtime, tp, appName, templateName, valuesFiles, argParams); err != nil {
			// do not want to fail the overall create if we cannot print next steps
			logger.Infof("failed to display next steps: %v\n", err)

			return nil
		}

		return nil
	},
}

func downloadImagesForTemplate(runtime runtime.Runtime, tp templates.Template, templateName, appName string) error {
	/// Deprecated: if skipImageDownload is passed, then consider it
	if skipImageDownload {
		// if skipImageDownload flag is set, then override the image pull policy to Never
		imagePullPolicy = image.PullNever
	}

	// create a new imagePull object based on imagePullPolicy
	imagePull := image.NewImagePull(runtime, imagePullPolicy, tp, appName, templateName, valuesFiles, argParams)

	// based on the imagePullPolicy set, download the images
	return imagePull.Run()
}

// fetchModels brings every model artifact the template references into
// the model directory. The fetch itself is idempotent; retries here
// cover transient network failures.
func fetchModels(ctx context.Context, refs []specs.ModelRef) error {
	if len(refs) == 0 {
		return nil
	}

	s := spinner.New("Fetching models as part of application creation...")
	s.Start(ctx)
	logger.Infoln("Fetching models required for application template " + templateName + ":")
	for _, ref := range refs {
		s.UpdateMessage("Fetching model: " + ref.Name + "...")
		dest := path.Join(vars.ModelDirectory, ref.Name)
		err := utils.Retry(vars.RetryCount, vars.RetryInterval, nil, func() error {
			result, err := fetch.Fetch(ctx, ref.URL, dest, nil)
			if err != nil {
				return err
			}
			if result.Skipped {
				logger.Infof("Model '%s' already present, skipping fetch\n", ref.Name, logger.VerbosityLevelDebug)
			}

			return nil
		})
		if err != nil {
			s.Fail("failed to fetch model: " + ref.Name)

			return fmt.Errorf("failed to fetch model: %w", err)
		}
	}
	s.Stop("Model fetch completed.")

	return nil
}

// verifyModelsPresent ensures every referenced artifact already exists
// when --skip-model-download is set, failing fast before any pod is
// deployed against a missing model.
func verifyModelsPresent(refs []specs.ModelRef) error {
	for _, ref := range refs {
		dest := path.Join(vars.ModelDirectory, ref.Name)
		ok, err := fetch.NonEmpty(dest)
		if err != nil {
			return fmt.Errorf("failed to check model '%s': %w", ref.Name, err)
		}
		if !ok {
			return fmt.Errorf("model '%s' not found at %s and --skip-model-download is set", ref.Name, dest)
		}
	}

	return nil
}

func init() {
	skipCheckDesc := appBootstrap.BuildSkipFlagDescription()
	createCmd.Flags().StringSliceVar(&skipChecks, "skip-validation", []string{}, skipCheckDesc)
	createCmd.Flags().StringVarP(&templateName, "template", "t", "", "Application template to use (required)")
	_ = createCmd.MarkFlagRequired("template")
	// Add a flag for skipping image download
	createCmd.Flags().BoolVar(
		&skipImageDownload,
		"skip-image-download",
		false,
		"Skip container image pull/download during application creation\n\n"+
			"Use this only if the required container images already exist locally\n"+
			"Recommended for air-gapped or pre-provisioned environments\n\n"+
			"Warning:\n"+
			"- If set to true and images are missing → command will fail\n"+
			"- If left false in air-gapped environments → pull/download attempt will fail\n",
	)
	createCmd.Flags().BoolVar(
		&skipModelDownload,
		"skip-model-download",
		false,
		"Skip model download during application creation\n\n"+
			"Use this if local models already exist at "+constants.ModelsPath+"\n"+
			"Recommended for air-gapped networks\n\n"+
			"Warning:\n"+
			"- If set to true and models are missing → command will fail\n"+
			"- If left false in air-gapped environments → download attempt will fail\n",
	)
	createCmd.Flags().StringArrayVarP(
		&valuesFiles,
		"values",
		"f",
		[]string{},
		"Specify values.yaml files to override default template values\n\n"+
			"Usage:\n"+
			"- Can be provided multiple times\n"+
			"- Example: --values custom1.yaml --values custom2.yaml\n"+
			"- Or shorthand: -f custom1.yaml -f custom2.yaml\n\n"+
			"Notes:\n"+
			"- Files are applied in the order provided\n"+
			"- Later files override earlier ones\n",
	)
	createCmd.Flags().StringSliceVar(
		&rawArgParams,
		"params",
		[]string{},
		"Inline parameters to configure the application.\n\n"+
			"Format:\n"+
			"- Comma-separated key=value pairs\n"+
			"- Example: --params key1=value1,key2=value2\n\n"+
			"- Use \"mma-ai application templates\" to view the list of supported parameters\n\n"+
			"Precedence:\n"+
			"- When both --values and --params are provided, --params overrides --values\n",
	)

	initializeImagePullPolicyFlag()

	// deprecated flags
	deprecatedFlags()
}

func initializeImagePullPolicyFlag() {
	createCmd.Flags().StringVar(
		&rawArgImagePullPolicy,
		"image-pull-policy",
		string(image.PullIfNotPresent),
		"Image pull policy for container images required for given application. Supported values: Always, Never, IfNotPresent.\n\n"+
			"Determines when the container runtime should pull the image from the registry:\n"+
			" - Always: pull the image every time from the registry before running\n"+
			" - Never: never pull; use only local images\n"+
			" - IfNotPresent: pull only if the image isn't already present locally \n\n"+
			"Defaults to 'IfNotPresent' if not specified\n\n"+
			"In air-gapped environments → specify 'Never'\n\n",
	)
}

func deprecatedFlags() {
	if err := createCmd.Flags().MarkDeprecated("skip-image-download", "use --image-pull-policy instead"); err != nil {
		panic(fmt.Sprintf("Failed to mark 'skip-image-download' flag deprecated. Err: %v", err))
	}
}

func verifyPodTemplateExists(tmpls map[string]*template.Template, appMetadata *templates.AppMetadata) error {
	flattenPodTemplateExecutions := utils.FlattenArray(appMetadata.PodTemplateExecutions)

	if len(flattenPodTemplateExecutions) != len(tmpls) {
		return errors.New("number of values specified in podTemplateExecutions under metadata.yaml is mismatched. Please ensure all the pod template file names are specified")
	}

	// Make sure the podTemplateExecution mentioned in metadata.yaml is valid (corresponding pod template is present)
	for _, podTemplate := range flattenPodTemplateExecutions {
		if _, ok := tmpls[podTemplate]; !ok {
			return fmt.Errorf("value: %s specified in podTemplateExecutions under metadata.yaml is invalid. Please ensure corresponding template file exists", podTemplate)
		}
	}

	return nil
}

func executePodTemplateLayer(runtime runtime.Runtime, tp templates.Template, tmpls map[string]*template.Template,
	globalParams map[string]any, modelRefs []specs.ModelRef, existingPods []string, podTemplateName, appName string) error {
	logger.Infof("'%s': Processing template...\n", podTemplateName)

	// Shallow Copy globalParams Map
	params := utils.CopyMap(globalParams)

	// fetch pod Spec
	podSpec, err := fetchPodSpec(tp, templateName, podTemplateName, appName)
	if err != nil {
		return err
	}

	if slices.Contains(existingPods, podSpec.Name) {
		logger.Infof("%s: Skipping pod deploy as '%s' it already exists", podTemplateName, podSpec.Name)

		return nil
	}

	// fetch annotations from pod Spec
	podAnnotations := specs.FetchPodAnnotations(podSpec)

	// get the env params for a given pod
	params["env"] = returnEnvParamsForPod(podSpec, modelRefs)

	podTemplate := tmpls[podTemplateName]

	var rendered bytes.Buffer
	if err := podTemplate.Execute(&rendered, params); err != nil {
		return fmt.Errorf("'%s': Failed to parse pod template: %w", podTemplateName, err)
	}

	// Wrap the bytes in a bytes.Reader
	reader := bytes.NewReader(rendered.Bytes())

	// Deploy the Pod and do Readiness check
	opts, err := constructPodDeployOptions(podAnnotations)
	if err != nil {
		return fmt.Errorf("'%s': Failed to construct deploy options: %w", podTemplateName, err)
	}

	if err := deployPodAndReadinessCheck(runtime, podSpec, podTemplateName, reader, opts); err != nil {
		return fmt.Errorf("'%s': Failed to deploy pod and do readiness check: %w", podTemplateName, err)
	}

	return nil
}

func executePodTemplates(runtime runtime.Runtime, tp templates.Template,
	appName string, appMetadata *templates.AppMetadata,
	tmpls map[string]*template.Template, modelRefs []specs.ModelRef, existingPods []string) error {
	globalParams := map[string]any{
		"AppName":         appName,
		"AppTemplateName": appMetadata.Name,
		"Version":         appMetadata.Version,
		"Values":          values,
		// Key -> container name
		// Value -> range of key-value env pairs
		"env": map[string]map[string]string{},
	}

	// looping over each layer of podTemplateExecutions
	for i, layer := range appMetadata.PodTemplateExecutions {
		logger.Infof("\n Executing Layer %d/%d: %v\n", i+1, len(appMetadata.PodTemplateExecutions), layer)
		logger.Infoln("-------")
		var wg sync.WaitGroup
		errCh := make(chan error, len(layer))

		// for each layer, fetch all the pod Template Names and do the pod deploy
		for _, podTemplateName := range layer {
			wg.Add(1)
			go func(t string) {
				defer wg.Done()
				if err := executePodTemplateLayer(runtime, tp, tmpls, globalParams, modelRefs, existingPods, t, appName); err != nil {
					errCh <- err
				}
			}(podTemplateName)
		}

		wg.Wait()
		close(errCh)

		// collect all errors for this layer
		var errs []error
		for e := range errCh {
			errs = append(errs, fmt.Errorf("layer %d: %w", i+1, e))
		}

		// If an error exist for a given layer, then return (do not process further layers)
		if len(errs) > 0 {
			return errors.Join(errs...)
		}

		logger.Infof("Layer %d completed\n", i+1)
	}

	return nil
}

func doContainersCreationCheck(runtime runtime.Runtime, podSpec *models.PodSpec, podTemplateName, podName, podID string) error {
	logger.Infof("'%s', '%s': Performing Containers Creation check for pod...\n", podTemplateName, podName)

	expectedContainerCount := len(specs.FetchContainerNames(podSpec))

	logger.Infof("'%s', '%s': Waiting for Containers Creation... Timeout set: %s\n", podTemplateName, podName, containerCreationTimeout)
	// wait for all containers for a given pod are created
	if err := helpers.WaitForContainersCreation(runtime, podID, expectedContainerCount, containerCreationTimeout); err != nil {
		return fmt.Errorf("containers creation check failed for pod: '%s' with error: %w", podName, err)
	}

	logger.Infof("'%s', '%s': Containers creation check for pod is completed\n", podTemplateName, podName)

	return nil
}

func doContainerReadinessCheck(runtime runtime.Runtime, podTemplateName, podName, containerID string) error {
	cInfo, err := runtime.InspectContainer(containerID)
	if err != nil {
		return fmt.Errorf("failed to do container inspect for containerID: '%s' with error: %w", containerID, err)
	}

	logger.Infof("'%s', '%s', '%s': Performing Container Readiness check...\n", podTemplateName, podName, cInfo.Name)

	// getting the Start Period set for a container
	startPeriod, err := helpers.FetchContainerStartPeriod(runtime, containerID)
	if err != nil {
		return fmt.Errorf("fetching container: '%s' start period failed: %w", cInfo.Name, err)
	}

	if startPeriod == -1 {
		logger.Infof("No container health check is set for '%s'. Hence skipping readiness check\n", cInfo.Name, logger.VerbosityLevelDebug)

		return nil
	}

	// configure readiness timeout by appending start period with additional extra timeout
	readinessTimeout := startPeriod + extraContainerReadinessTimeout

	logger.Infof("'%s', '%s', '%s': Waiting for Container Readiness... Timeout set: %s\n", podTemplateName, podName, cInfo.Name, readinessTimeout)

	if err := helpers.WaitForContainerReadiness(runtime, containerID, readinessTimeout); err != nil {
		return fmt.Errorf("readiness check failed for container: '%s'!: %w", cInfo.Name, err)
	}
	logger.Infof("'%s', '%s', '%s': Readiness Check for the container is completed!\n", podTemplateName, podName, cInfo.Name)

	return nil
}

func deployPodAndReadinessCheck(runtime runtime.Runtime, podSpec *models.PodSpec,
	podTemplateName string, body io.Reader, opts map[string]string) error {
	pods, err := podman.RunPodmanKubePlay(body, opts)
	if err != nil {
		return fmt.Errorf("failed pod creation: %w", err)
	}

	logger.Infof("'%s': Successfully ran podman kube play\n", podTemplateName, logger.VerbosityLevelDebug)

	// ---- Pod Readiness Checks ----
	/*
		Step1: Perform Containers Creation Check
		Step2: Perform Containers Readiness Check
	*/

	// pods created with start=false stay in Created state; readiness
	// checks only apply to pods that were actually started
	podAnnotations := specs.FetchPodAnnotations(podSpec)
	if checkForPodStartAnnotation(podAnnotations) == constants.PodStartOff {
		logger.Infof("'%s': Pod is created without start. Skipping readiness checks\n", podTemplateName)

		return nil
	}

	for _, pod := range pods {
		pInfo, err := runtime.InspectPod(pod.ID)
		if err != nil {
			return fmt.Errorf("failed to do pod inspect for podID: '%s' with error: %w", pod.ID, err)
		}

		podName := pInfo.Name

		logger.Infof("'%s', '%s': Starting Pod Readiness check...\n", podTemplateName, podName)

		// Step1: ---- Containers Creation Check ----
		if err := doContainersCreationCheck(runtime, podSpec, podTemplateName, pInfo.Name, pInfo.ID); err != nil {
			return err
		}

		// Step2: ---- Containers Readiness Check ----
		for _, container := range pInfo.Containers {
			if err := doContainerReadinessCheck(runtime, podTemplateName, pInfo.Name, container.ID); err != nil {
				return err
			}
			logger.Infoln("-------")
		}
		logger.Infof("'%s', '%s': Pod has been successfully deployed and ready!\n", podTemplateName, podName)
		logger.Infoln("-------")
	}

	logger.Infoln("-------\n-------")

	return nil
}

func fetchPodSpec(tp templates.Template, appTemplateName, podTemplateFileName, appName string) (*models.PodSpec, error) {
	podSpec, err := tp.LoadPodTemplateWithValues(appTemplateName, podTemplateFileName, appName, valuesFiles, argParams)
	if err != nil {
		return nil, fmt.Errorf("failed to load pod Template: '%s' for appTemplate: '%s' with error: %w", podTemplateFileName, appTemplateName, err)
	}

	return podSpec, nil
}

// returnEnvParamsForPod builds the per-container env map injected into
// the template render. Containers with a model annotation get the
// in-pod path of their artifact so the serving command can reference
// it without hardcoding the file name.
func returnEnvParamsForPod(podSpec *models.PodSpec, modelRefs []specs.ModelRef) map[string]map[string]string {
	env := map[string]map[string]string{}
	podContainerNames := specs.FetchContainerNames(podSpec)

	// populate env with empty map
	for _, containerName := range podContainerNames {
		env[containerName] = map[string]string{}
	}

	for _, ref := range modelRefs {
		if _, ok := env[ref.Container]; !ok {
			continue
		}
		env[ref.Container][constants.ModelPathEnvKey] = path.Join(constants.ContainerModelMount, ref.Name)
	}

	return env
}

func checkForPodStartAnnotation(podAnnotations map[string]string) string {
	if val, ok := podAnnotations[constants.PodStartAnnotationKey]; ok {
		if val == constants.PodStartOff || val == constants.PodStartOn {
			return val
		}
	}

	return ""
}

func constructPodDeployOptions(podAnnotations map[string]string) (map[string]string, error) {
	podStart := checkForPodStartAnnotation(podAnnotations)

	// construct start option
	podDeployOptions := map[string]string{}
	if podStart != "" {
		podDeployOptions["start"] = podStart
	}

	// construct publish option
	hostPortMappings, err := specs.FetchHostPortMapping(podAnnotations)
	if err != nil {
		return nil, err
	}
	podDeployOptions["publish"] = strings.Join(specs.PublishArgs(hostPortMappings), ",")

	return podDeployOptions, nil
}
