package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RegisterFlags adds the persistent flags shared by every command.
func RegisterFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "config file path")
	flags.StringP("username", "u", "", "account username")
	flags.StringP("password", "p", "", "account password")
	flags.StringP("output", "o", "", "download directory (default ~/vyoma/<username>)")
	flags.String("log-level", "", "log level (debug, verbose, info, warn, error)")
	flags.String("log-file", "", "also write logs to this file")
	flags.Bool("no-progress", false, "disable the progress bar")

	flags.String("proxy", "", "proxy URL (http, https, socks5, socks5h)")
	flags.Float64("rate-limit", 0, "maximum requests per second, 0 for no limit")
	flags.Int("timeout", 0, "request timeout in seconds, 0 for none")
	flags.String("base-url", "", "site base URL")
	flags.String("db-path", "", "run history database path")

	bindFlags(cmd)
}

func bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	viper.BindPFlag("username", flags.Lookup("username"))
	viper.BindPFlag("password", flags.Lookup("password"))
	viper.BindPFlag("download_dir", flags.Lookup("output"))
	viper.BindPFlag("log.level", flags.Lookup("log-level"))
	viper.BindPFlag("log.file", flags.Lookup("log-file"))

	viper.BindPFlag("http.proxy", flags.Lookup("proxy"))
	viper.BindPFlag("http.rate_limit", flags.Lookup("rate-limit"))
	viper.BindPFlag("http.timeout", flags.Lookup("timeout"))
	viper.BindPFlag("site.base_url", flags.Lookup("base-url"))
	viper.BindPFlag("db.path", flags.Lookup("db-path"))
}

func GetConfigFile(cmd *cobra.Command) string {
	configFile, _ := cmd.Flags().GetString("config")
	return configFile
}

// ProgressEnabled combines the progress config key with --no-progress.
func ProgressEnabled(cmd *cobra.Command) bool {
	if off, _ := cmd.Flags().GetBool("no-progress"); off {
		return false
	}
	return C().Progress
}
