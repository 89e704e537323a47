package utils

import (
	"bytes"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorOldConstant              = "."
	environmentKeySeparatorNewConstant              = "_"
	configurationReadErrorTemplateConstant          = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant     = "failed to parse configuration: %w"
	embeddedConfigurationMergeErrorTemplateConstant = "failed to merge embedded configuration: %w"
	configurationDiscoveryErrorTemplateConstant     = "failed to discover configuration file: %w"
	fileModeParseErrorTemplateConstant              = "invalid file mode %q: %w"
	fileModeNumericBaseConstant                     = 8
	fileModeBitSizeConstant                         = 32
	sliceSeparatorConstant                          = ","
	fileModeOctalPrefixConstant                     = "0o"
)

// ConfigurationFileLocator finds the nearest directory containing a configuration marker file.
type ConfigurationFileLocator interface {
	FindClosestAncestorContainingFile(fileName string, startingDirectory string) (string, bool, error)
}

// ConfigurationLoader wraps Viper to load structured configuration files and environment overrides.
type ConfigurationLoader struct {
	configurationName         string
	configurationType         string
	environmentPrefix         string
	searchPaths               []string
	environmentKeyReplacer    *strings.Replacer
	embeddedConfiguration     []byte
	embeddedConfigurationType string
	markerFileName            string
	markerStartingDirectory   string
	markerLocator             ConfigurationFileLocator
}

// LoadedConfiguration surfaces metadata about the resolved configuration.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// NewConfigurationLoader creates a loader that searches known paths and respects an environment prefix.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	duplicatedSearchPaths := make([]string, len(searchPaths))
	copy(duplicatedSearchPaths, searchPaths)

	return &ConfigurationLoader{
		configurationName:      configurationName,
		configurationType:      configurationType,
		environmentPrefix:      environmentPrefix,
		searchPaths:            duplicatedSearchPaths,
		environmentKeyReplacer: strings.NewReplacer(environmentKeySeparatorOldConstant, environmentKeySeparatorNewConstant),
	}
}

// SetEmbeddedConfiguration stores embedded configuration data merged before user-provided configuration files.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	if loader == nil {
		return
	}

	loader.embeddedConfiguration = nil
	loader.embeddedConfigurationType = strings.TrimSpace(configurationType)

	if len(configurationData) == 0 {
		return
	}

	duplicatedData := make([]byte, len(configurationData))
	copy(duplicatedData, configurationData)
	loader.embeddedConfiguration = duplicatedData
}

// SetMarkerDiscovery enables lookup of markerFileName in startingDirectory and its ancestors.
// A discovered marker takes precedence over the search paths; an explicit file path takes precedence over both.
func (loader *ConfigurationLoader) SetMarkerDiscovery(markerFileName string, startingDirectory string, locator ConfigurationFileLocator) {
	if loader == nil {
		return
	}

	loader.markerFileName = strings.TrimSpace(markerFileName)
	loader.markerStartingDirectory = startingDirectory
	loader.markerLocator = locator
}

// LoadConfiguration populates targetConfiguration using configuration files, defaults, and environment variables.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.configurationName)
	viperInstance.SetConfigType(loader.configurationType)

	if len(loader.embeddedConfiguration) > 0 {
		configurationType := loader.configurationType
		if len(loader.embeddedConfigurationType) > 0 {
			configurationType = loader.embeddedConfigurationType
		}

		viperInstance.SetConfigType(configurationType)
		mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedConfiguration))
		if mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
		}

		viperInstance.SetConfigType(loader.configurationType)
	}

	for _, searchPath := range loader.searchPaths {
		viperInstance.AddConfigPath(searchPath)
	}

	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	if loader.environmentKeyReplacer != nil {
		viperInstance.SetEnvKeyReplacer(loader.environmentKeyReplacer)
	}
	viperInstance.AutomaticEnv()

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(configurationFilePath) == 0 {
		discoveredPath, discoveryError := loader.discoverMarkerFile()
		if discoveryError != nil {
			return LoadedConfiguration{}, fmt.Errorf(configurationDiscoveryErrorTemplateConstant, discoveryError)
		}
		configurationFilePath = discoveredPath
	}

	if len(configurationFilePath) > 0 {
		viperInstance.SetConfigFile(configurationFilePath)
	}

	readError := viperInstance.MergeInConfig()
	if readError != nil {
		if _, isNotFound := readError.(viper.ConfigFileNotFoundError); !isNotFound {
			return LoadedConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
		}
	}

	unmarshalError := viperInstance.Unmarshal(targetConfiguration, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		FileModeDecodeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(sliceSeparatorConstant),
	)))
	if unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	loadedConfiguration := LoadedConfiguration{
		ConfigFileUsed: viperInstance.ConfigFileUsed(),
	}

	return loadedConfiguration, nil
}

func (loader *ConfigurationLoader) discoverMarkerFile() (string, error) {
	if loader.markerLocator == nil || len(loader.markerFileName) == 0 {
		return "", nil
	}

	markerDirectory, markerFound, locateError := loader.markerLocator.FindClosestAncestorContainingFile(loader.markerFileName, loader.markerStartingDirectory)
	if locateError != nil {
		return "", locateError
	}
	if !markerFound {
		return "", nil
	}

	return filepath.Join(markerDirectory, loader.markerFileName), nil
}

// FileModeDecodeHook decodes octal permission strings such as "0644" or "0o755" into fs.FileMode values.
func FileModeDecodeHook() mapstructure.DecodeHookFuncType {
	fileModeType := reflect.TypeOf(fs.FileMode(0))
	return func(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
		if targetType != fileModeType || sourceType.Kind() != reflect.String {
			return data, nil
		}

		rawValue := strings.TrimSpace(reflect.ValueOf(data).String())
		if len(rawValue) == 0 {
			return fs.FileMode(0), nil
		}

		normalizedValue := strings.TrimPrefix(strings.ToLower(rawValue), fileModeOctalPrefixConstant)
		parsedValue, parseError := strconv.ParseUint(normalizedValue, fileModeNumericBaseConstant, fileModeBitSizeConstant)
		if parseError != nil {
			return nil, fmt.Errorf(fileModeParseErrorTemplateConstant, rawValue, parseError)
		}

		return fs.FileMode(parsedValue), nil
	}
}
