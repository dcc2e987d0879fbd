package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tyemirov/trustanchor/internal/anchors"
	"github.com/tyemirov/trustanchor/internal/trust"
	"github.com/tyemirov/trustanchor/pkg/logging"
)

const (
	logFieldAnchors     = "anchors"
	logFieldDiagnostics = "diagnostics"
	logFieldOutputPath  = "output_path"

	exportedBundleFilePermissions      = 0o644
	exportedBundleDirectoryPermissions = 0o755
)

func newListCommand(resources *applicationResources) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List discovered trust anchors",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd)
		},
	}
}

func newExportCommand(resources *applicationResources) *cobra.Command {
	exportCommand := &cobra.Command{
		Use:   "export",
		Short: "Export discovered trust anchors as a PEM bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd)
		},
	}
	exportCommand.Flags().String(flagNameOutputPath, resources.configurationManager.GetString(configKeyOutputPath), "Output path for the PEM bundle")
	_ = resources.configurationManager.BindPFlag(configKeyOutputPath, exportCommand.Flags().Lookup(flagNameOutputPath))
	return exportCommand
}

func runLoad(cmd *cobra.Command) error {
	resources, err := getApplicationResources(cmd)
	if err != nil {
		return err
	}
	result, loadErr := executeDiscovery(cmd, resources)
	if loadErr != nil {
		return loadErr
	}
	manager := trust.NewManager(result.Store)
	resources.loggingService.Info("trust manager ready",
		logging.Int(logFieldAnchors, manager.AnchorCount()),
		logging.Int(logFieldDiagnostics, len(result.Diagnostics)))
	return nil
}

func runList(cmd *cobra.Command) error {
	resources, err := getApplicationResources(cmd)
	if err != nil {
		return err
	}
	result, loadErr := executeDiscovery(cmd, resources)
	if loadErr != nil {
		return loadErr
	}
	writer := cmd.OutOrStdout()
	for _, alias := range result.Store.Aliases() {
		certificate := result.Store.Certificate(alias)
		fmt.Fprintf(writer, "%s\t%s\texpires %s\n", alias, certificate.Subject.String(), certificate.NotAfter.Format("2006-01-02"))
	}
	return nil
}

func runExport(cmd *cobra.Command) error {
	resources, err := getApplicationResources(cmd)
	if err != nil {
		return err
	}
	outputPath := strings.TrimSpace(resources.configurationManager.GetString(configKeyOutputPath))
	if outputPath == "" {
		return errors.New("output path is required")
	}
	result, loadErr := executeDiscovery(cmd, resources)
	if loadErr != nil {
		return loadErr
	}

	fileSystem := anchors.NewOperatingSystemFileSystem()
	if directoryErr := fileSystem.EnsureDirectory(filepath.Dir(outputPath), exportedBundleDirectoryPermissions); directoryErr != nil {
		return fmt.Errorf("ensure output directory: %w", directoryErr)
	}
	if writeErr := fileSystem.WriteFile(outputPath, result.Store.EncodePEM(), exportedBundleFilePermissions); writeErr != nil {
		return fmt.Errorf("write pem bundle: %w", writeErr)
	}
	resources.loggingService.Info("exported trust anchors",
		logging.Int(logFieldAnchors, result.Store.Len()),
		logging.String(logFieldOutputPath, outputPath))
	return nil
}

func executeDiscovery(cmd *cobra.Command, resources *applicationResources) (anchors.LoadResult, error) {
	discoveryConfig := buildDiscoveryConfig(resources.configurationManager)
	fileSystem := anchors.NewOperatingSystemFileSystem()
	parser := anchors.NewPEMFileParser(fileSystem)
	loader := anchors.NewLoader(fileSystem, parser, resources.loggingService)
	result, loadErr := loader.Load(cmd.Context(), discoveryConfig)
	if loadErr != nil {
		return anchors.LoadResult{}, fmt.Errorf("load trust anchors: %w", loadErr)
	}
	return result, nil
}

func buildDiscoveryConfig(configurationManager *viper.Viper) anchors.DiscoveryConfig {
	return anchors.DiscoveryConfig{
		StoreFormat:   strings.TrimSpace(configurationManager.GetString(configKeyStoreFormat)),
		StorePath:     strings.TrimSpace(configurationManager.GetString(configKeyStorePath)),
		StorePassword: configurationManager.GetString(configKeyStorePassword),
		RuntimeHome:   strings.TrimSpace(configurationManager.GetString(configKeyRuntimeHome)),
		PlatformRoot:  strings.TrimSpace(configurationManager.GetString(configKeyPlatformRoot)),
	}
}

func applyLoggingConfiguration(cmd *cobra.Command) error {
	resources, err := getApplicationResources(cmd)
	if err != nil {
		return err
	}
	return resources.updateLogger(resources.configurationManager.GetString(configKeyLoggingType))
}

func loadConfigurationFile(cmd *cobra.Command) error {
	resources, err := getApplicationResources(cmd)
	if err != nil {
		return err
	}
	configurationManager := resources.configurationManager
	configFilePath, flagErr := cmd.Flags().GetString(flagNameConfigFile)
	if flagErr != nil {
		return fmt.Errorf("read config flag: %w", flagErr)
	}
	if configFilePath != "" {
		configurationManager.SetConfigFile(configFilePath)
	} else {
		configurationManager.AddConfigPath(resources.defaultConfigDirPath)
		configurationManager.SetConfigName(defaultConfigFileName)
		configurationManager.SetConfigType(defaultConfigFileType)
	}
	if readErr := configurationManager.ReadInConfig(); readErr != nil {
		if _, notFound := readErr.(viper.ConfigFileNotFoundError); !notFound {
			return fmt.Errorf("read configuration: %w", readErr)
		}
	}
	return nil
}

func getApplicationResources(cmd *cobra.Command) (*applicationResources, error) {
	resourceValue := cmd.Context().Value(contextKeyApplicationResources)
	if resourceValue == nil {
		return nil, errors.New("application resources not configured")
	}
	resources, ok := resourceValue.(*applicationResources)
	if !ok {
		return nil, errors.New("invalid application resources type")
	}
	return resources, nil
}
