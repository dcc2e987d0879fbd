package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func newRootCommand(resources *applicationResources) *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           defaultApplicationName,
		Short:         "Discover platform trust anchors and hand them to a trust manager",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfigurationFile(cmd); err != nil {
				return err
			}
			return applyLoggingConfiguration(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd)
		},
	}

	discoveryFlags := pflag.NewFlagSet("discovery", pflag.ContinueOnError)
	configureDiscoveryFlags(discoveryFlags, resources.configurationManager)
	rootCommand.PersistentFlags().AddFlagSet(discoveryFlags)
	rootCommand.PersistentFlags().String(flagNameConfigFile, "", "Path to configuration file")

	rootCommand.AddCommand(newListCommand(resources))
	rootCommand.AddCommand(newExportCommand(resources))

	return rootCommand
}

func configureDiscoveryFlags(flagSet *pflag.FlagSet, configurationManager *viper.Viper) {
	flagSet.String(flagNameStoreFormat, configurationManager.GetString(configKeyStoreFormat), "Trust store format (pem or pkcs12)")
	flagSet.String(flagNameStorePath, configurationManager.GetString(configKeyStorePath), "Explicit trust store file, disables platform discovery")
	flagSet.String(flagNameStorePassword, configurationManager.GetString(configKeyStorePassword), "Password protecting the explicit trust store")
	flagSet.String(flagNameRuntimeHome, configurationManager.GetString(configKeyRuntimeHome), "Runtime installation root probed for anchor bundles")
	flagSet.String(flagNamePlatformRoot, configurationManager.GetString(configKeyPlatformRoot), "Operating system root holding the platform CA directory")
	flagSet.String(flagNameLoggingType, configurationManager.GetString(configKeyLoggingType), "Logging type (CONSOLE or JSON)")
	_ = configurationManager.BindPFlag(configKeyStoreFormat, flagSet.Lookup(flagNameStoreFormat))
	_ = configurationManager.BindPFlag(configKeyStorePath, flagSet.Lookup(flagNameStorePath))
	_ = configurationManager.BindPFlag(configKeyStorePassword, flagSet.Lookup(flagNameStorePassword))
	_ = configurationManager.BindPFlag(configKeyRuntimeHome, flagSet.Lookup(flagNameRuntimeHome))
	_ = configurationManager.BindPFlag(configKeyPlatformRoot, flagSet.Lookup(flagNamePlatformRoot))
	_ = configurationManager.BindPFlag(configKeyLoggingType, flagSet.Lookup(flagNameLoggingType))
}
