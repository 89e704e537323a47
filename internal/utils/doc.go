// Package utils exposes the ambient helpers shared by the fskit commands.
//
// ConfigurationLoader merges embedded defaults, a discovered or explicit
// configuration file, and environment overrides through Viper. LoggerFactory
// builds zap loggers that optionally tee into a rotated log file.
package utils
