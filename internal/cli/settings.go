package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Setting resolution order: an explicit flag wins, then a VOLLEY_* environment
// variable or config file key of the same name, then the flag default. Keys are
// looked up per command so two commands can share a flag name without
// clobbering each other through a global binding.

func resolveString(cmd *cobra.Command, name string) string {
	if !cmd.Flags().Changed(name) && viper.IsSet(name) {
		return viper.GetString(name)
	}
	v, _ := cmd.Flags().GetString(name)
	return v
}

func resolveInt(cmd *cobra.Command, name string) int {
	if !cmd.Flags().Changed(name) && viper.IsSet(name) {
		return viper.GetInt(name)
	}
	v, _ := cmd.Flags().GetInt(name)
	return v
}

func resolveInt64(cmd *cobra.Command, name string) int64 {
	if !cmd.Flags().Changed(name) && viper.IsSet(name) {
		return viper.GetInt64(name)
	}
	v, _ := cmd.Flags().GetInt64(name)
	return v
}

func resolveBool(cmd *cobra.Command, name string) bool {
	if !cmd.Flags().Changed(name) && viper.IsSet(name) {
		return viper.GetBool(name)
	}
	v, _ := cmd.Flags().GetBool(name)
	return v
}
