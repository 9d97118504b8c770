package config

import "github.com/spf13/pflag"

// flagKeys maps config keys to the flag names RegisterFlags defines.
var flagKeys = map[string]string{
	"plugins_path":     "plugins-path",
	"log_level":        "log-level",
	"log_format":       "log-format",
	"healthcheck_port": "healthcheck-port",
	"relay_url":        "relay-url",
	"relay_namespace":  "relay-namespace",
	"max_depth":        "max-depth",
}

// RegisterFlags adds the host flags to fs, plus --config for the file path.
func RegisterFlags(fs *pflag.FlagSet) {
	def := Default()
	fs.String("config", "", "Path to a YAML configuration file.")
	fs.String("plugins-path", def.PluginsPath, "Directory scanned for plugin.hcl manifests.")
	fs.String("log-level", def.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	fs.String("log-format", def.LogFormat, "Log output format. Options: 'text' or 'json'.")
	fs.Int("healthcheck-port", def.HealthcheckPort, "Port for the HTTP health check server. 0 is disabled.")
	fs.String("relay-url", def.RelayURL, "socket.io endpoint that receives diagnostics. Empty disables the relay.")
	fs.String("relay-namespace", def.RelayNamespace, "socket.io namespace for the diagnostics relay.")
	fs.Int("max-depth", def.MaxDepth, "Maximum dependency chain depth before a plugin is rejected.")
}
