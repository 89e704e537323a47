package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/fskit/cmd/cli/files"
)

const (
	testMarkerConfigurationConstant   = "common:\n  log_level: error\ntools:\n  files:\n    list_pattern: \"*.txt\"\n    directory_permissions: \"0700\"\n"
	testExplicitConfigurationConstant = "common:\n  log_level: warn\n  log_format: console\n"
)

type embeddedConfigurationDocument struct {
	Common struct {
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
		LogFile   string `yaml:"log_file"`
	} `yaml:"common"`
	Tools struct {
		Files struct {
			FilePermissions      string `yaml:"file_permissions"`
			DirectoryPermissions string `yaml:"directory_permissions"`
			ListPattern          string `yaml:"list_pattern"`
			Marker               string `yaml:"marker"`
		} `yaml:"files"`
	} `yaml:"tools"`
}

func TestEmbeddedDefaultConfigurationMatchesCommandDefaults(testInstance *testing.T) {
	content, configurationType := EmbeddedDefaultConfiguration()
	require.Equal(testInstance, configurationTypeConstant, configurationType)

	document := embeddedConfigurationDocument{}
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	require.NoError(testInstance, decoder.Decode(&document))

	require.Equal(testInstance, "info", document.Common.LogLevel)
	require.Equal(testInstance, "structured", document.Common.LogFormat)
	require.Empty(testInstance, document.Common.LogFile)

	defaultValues := files.DefaultConfigurationValues(filesConfigurationKeyConstant)
	require.Equal(testInstance, defaultValues[filesConfigurationKeyConstant+".file_permissions"], document.Tools.Files.FilePermissions)
	require.Equal(testInstance, defaultValues[filesConfigurationKeyConstant+".directory_permissions"], document.Tools.Files.DirectoryPermissions)
	require.Equal(testInstance, defaultValues[filesConfigurationKeyConstant+".list_pattern"], document.Tools.Files.ListPattern)
	require.Equal(testInstance, defaultValues[filesConfigurationKeyConstant+".marker"], document.Tools.Files.Marker)
	require.Equal(testInstance, configurationMarkerFileNameConstant, document.Tools.Files.Marker)

	content[0] = '#'
	againContent, _ := EmbeddedDefaultConfiguration()
	require.NotEqual(testInstance, content[0], againContent[0])
}

func TestApplicationConfigurationPrecedence(testInstance *testing.T) {
	testCases := []struct {
		name                         string
		writeMarker                  bool
		writeExplicit                bool
		environment                  map[string]string
		arguments                    []string
		expectedLogLevel             string
		expectedLogFormat            string
		expectedListPattern          string
		expectedDirectoryPermissions os.FileMode
	}{
		{
			name:                         "embedded_defaults",
			arguments:                    []string{"exists", "."},
			expectedLogLevel:             "info",
			expectedLogFormat:            "structured",
			expectedDirectoryPermissions: 0o755,
		},
		{
			name:                         "marker_in_ancestor",
			writeMarker:                  true,
			arguments:                    []string{"exists", "."},
			expectedLogLevel:             "error",
			expectedLogFormat:            "structured",
			expectedListPattern:          "*.txt",
			expectedDirectoryPermissions: 0o700,
		},
		{
			name:                         "explicit_file_over_marker",
			writeMarker:                  true,
			writeExplicit:                true,
			arguments:                    []string{"exists", "."},
			expectedLogLevel:             "warn",
			expectedLogFormat:            "console",
			expectedDirectoryPermissions: 0o755,
		},
		{
			name:                         "environment_over_file",
			writeMarker:                  true,
			environment:                  map[string]string{"FSKIT_COMMON_LOG_LEVEL": "debug", "FSKIT_TOOLS_FILES_LIST_PATTERN": "*.log"},
			arguments:                    []string{"exists", "."},
			expectedLogLevel:             "debug",
			expectedLogFormat:            "structured",
			expectedListPattern:          "*.log",
			expectedDirectoryPermissions: 0o700,
		},
		{
			name:                         "flags_over_environment",
			writeMarker:                  true,
			environment:                  map[string]string{"FSKIT_COMMON_LOG_LEVEL": "debug"},
			arguments:                    []string{"--log-level", "WARN", "--log-format", "console", "exists", "."},
			expectedLogLevel:             "warn",
			expectedLogFormat:            "console",
			expectedListPattern:          "*.txt",
			expectedDirectoryPermissions: 0o700,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			homeDirectory := subTest.TempDir()
			subTest.Setenv("HOME", homeDirectory)
			subTest.Setenv("XDG_CONFIG_HOME", filepath.Join(homeDirectory, "config"))

			projectDirectory := subTest.TempDir()
			workingDirectory := filepath.Join(projectDirectory, "nested", "deeper")
			require.NoError(subTest, os.MkdirAll(workingDirectory, 0o755))
			if testCase.writeMarker {
				require.NoError(subTest, os.WriteFile(filepath.Join(projectDirectory, configurationMarkerFileNameConstant), []byte(testMarkerConfigurationConstant), 0o600))
			}
			subTest.Chdir(workingDirectory)

			for environmentName, environmentValue := range testCase.environment {
				subTest.Setenv(environmentName, environmentValue)
			}

			arguments := testCase.arguments
			if testCase.writeExplicit {
				explicitPath := filepath.Join(subTest.TempDir(), "explicit.yaml")
				require.NoError(subTest, os.WriteFile(explicitPath, []byte(testExplicitConfigurationConstant), 0o600))
				arguments = append([]string{"--config", explicitPath}, arguments...)
			}

			application := NewApplication()
			outputBuffer := &bytes.Buffer{}
			application.rootCommand.SetOut(outputBuffer)
			application.rootCommand.SetErr(&bytes.Buffer{})
			application.rootCommand.SetArgs(arguments)

			require.NoError(subTest, application.rootCommand.Execute())
			require.Equal(subTest, "true\n", outputBuffer.String())

			require.Equal(subTest, testCase.expectedLogLevel, application.configuration.Common.LogLevel)
			require.Equal(subTest, testCase.expectedLogFormat, application.configuration.Common.LogFormat)
			require.Equal(subTest, testCase.expectedListPattern, application.configuration.Tools.Files.ListPattern)
			require.Equal(subTest, testCase.expectedDirectoryPermissions, application.configuration.Tools.Files.DirectoryPermissions)
		})
	}
}

func TestApplicationWritesLogFile(testInstance *testing.T) {
	homeDirectory := testInstance.TempDir()
	testInstance.Setenv("HOME", homeDirectory)
	testInstance.Setenv("XDG_CONFIG_HOME", filepath.Join(homeDirectory, "config"))
	testInstance.Chdir(testInstance.TempDir())

	targetDirectory := filepath.Join(testInstance.TempDir(), "created")

	application := NewApplication()
	application.rootCommand.SetOut(&bytes.Buffer{})
	application.rootCommand.SetErr(&bytes.Buffer{})
	application.rootCommand.SetArgs([]string{"--log-level", "debug", "--log-file", "~/fskit.log", "mkdir", targetDirectory})

	require.NoError(testInstance, application.Execute())
	require.DirExists(testInstance, targetDirectory)

	logContents, readError := os.ReadFile(filepath.Join(homeDirectory, "fskit.log"))
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(logContents), "configuration initialized")
	require.Contains(testInstance, string(logContents), "created directory")
	require.Contains(testInstance, string(logContents), "file command completed")
}

func TestApplicationRejectsInvalidConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name          string
		content       string
		arguments     []string
		expectedError string
	}{
		{
			name:          "invalid_permissions",
			content:       "tools:\n  files:\n    file_permissions: \"rw-r--r--\"\n",
			arguments:     []string{"exists", "."},
			expectedError: "unable to load configuration",
		},
		{
			name:          "invalid_log_level",
			content:       "common:\n  log_level: verbose\n",
			arguments:     []string{"exists", "."},
			expectedError: "unable to create logger",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			homeDirectory := subTest.TempDir()
			subTest.Setenv("HOME", homeDirectory)
			subTest.Setenv("XDG_CONFIG_HOME", filepath.Join(homeDirectory, "config"))
			subTest.Chdir(subTest.TempDir())

			configurationPath := filepath.Join(subTest.TempDir(), "config.yaml")
			require.NoError(subTest, os.WriteFile(configurationPath, []byte(testCase.content), 0o600))

			application := NewApplication()
			application.rootCommand.SetOut(&bytes.Buffer{})
			application.rootCommand.SetErr(&bytes.Buffer{})
			application.rootCommand.SetArgs(append([]string{"--config", configurationPath}, testCase.arguments...))

			executionError := application.rootCommand.Execute()
			require.Error(subTest, executionError)
			require.True(subTest, strings.Contains(executionError.Error(), testCase.expectedError), executionError.Error())
		})
	}
}

func TestApplicationRootCommandPrintsHelp(testInstance *testing.T) {
	homeDirectory := testInstance.TempDir()
	testInstance.Setenv("HOME", homeDirectory)
	testInstance.Setenv("XDG_CONFIG_HOME", filepath.Join(homeDirectory, "config"))
	testInstance.Chdir(testInstance.TempDir())

	application := NewApplication()
	outputBuffer := &bytes.Buffer{}
	application.rootCommand.SetOut(outputBuffer)
	application.rootCommand.SetErr(&bytes.Buffer{})
	application.rootCommand.SetArgs([]string{})

	require.NoError(testInstance, application.rootCommand.Execute())
	for _, commandName := range []string{"locate", "open", "copy", "move", "delete", "mkdir", "list", "writable", "exists"} {
		require.Contains(testInstance, outputBuffer.String(), commandName)
	}
	require.Contains(testInstance, outputBuffer.String(), "<debug|INFO|warn|error>")
}
