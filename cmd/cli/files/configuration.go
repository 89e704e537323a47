package files

import (
	"io/fs"
	"strings"
)

const (
	defaultFilePermissionsConstant      = fs.FileMode(0o644)
	defaultDirectoryPermissionsConstant = fs.FileMode(0o755)
	defaultMarkerFileNameConstant       = ".fskit.yaml"
	filePermissionsKeyConstant          = "file_permissions"
	directoryPermissionsKeyConstant     = "directory_permissions"
	listPatternKeyConstant              = "list_pattern"
	markerKeyConstant                   = "marker"
	configurationKeySeparatorConstant   = "."
	filePermissionsDefaultValueConstant = "0644"
	directoryPermissionsDefaultConstant = "0755"
)

// Configuration captures the settings shared by the file commands.
type Configuration struct {
	FilePermissions      fs.FileMode `mapstructure:"file_permissions"`
	DirectoryPermissions fs.FileMode `mapstructure:"directory_permissions"`
	ListPattern          string      `mapstructure:"list_pattern"`
	Marker               string      `mapstructure:"marker"`
}

// DefaultConfiguration returns the baseline file command settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		FilePermissions:      defaultFilePermissionsConstant,
		DirectoryPermissions: defaultDirectoryPermissionsConstant,
		Marker:               defaultMarkerFileNameConstant,
	}
}

// DefaultConfigurationValues exposes the defaults as Viper keys nested under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	prefix := strings.TrimSpace(rootKey)
	if len(prefix) > 0 {
		prefix += configurationKeySeparatorConstant
	}

	return map[string]any{
		prefix + filePermissionsKeyConstant:      filePermissionsDefaultValueConstant,
		prefix + directoryPermissionsKeyConstant: directoryPermissionsDefaultConstant,
		prefix + listPatternKeyConstant:          "",
		prefix + markerKeyConstant:               defaultMarkerFileNameConstant,
	}
}

// Sanitize trims string settings and restores defaults for unset values.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.FilePermissions = configuration.FilePermissions.Perm()
	if sanitized.FilePermissions == 0 {
		sanitized.FilePermissions = defaultFilePermissionsConstant
	}

	sanitized.DirectoryPermissions = configuration.DirectoryPermissions.Perm()
	if sanitized.DirectoryPermissions == 0 {
		sanitized.DirectoryPermissions = defaultDirectoryPermissionsConstant
	}

	sanitized.ListPattern = strings.TrimSpace(configuration.ListPattern)
	sanitized.Marker = strings.TrimSpace(configuration.Marker)
	if len(sanitized.Marker) == 0 {
		sanitized.Marker = defaultMarkerFileNameConstant
	}

	return sanitized
}
