package hybridrag

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "hybridrag",
		Short: "HybridRAG: hybrid retrieval over a procedure knowledge graph",
		Long: `HybridRAG answers natural-language queries against a knowledge graph of
administrative procedures. It combines vector, full-text, fuzzy and keyword
matching, expands hits into the surrounding graph, and returns a short list of
relationship triples ready to ground an answer.`,
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./hybridrag.yaml, $HOME/.hybridrag/hybridrag.yaml or /etc/hybridrag/hybridrag.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("db-driver", "", "graph store driver (neo4j, memory)")
	rootCmd.PersistentFlags().String("fixture", "", "YAML fixture loaded by the memory driver")

	// Bind flags to viper
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("database.driver", rootCmd.PersistentFlags().Lookup("db-driver"))
	_ = viper.BindPFlag("database.fixture", rootCmd.PersistentFlags().Lookup("fixture"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".hybridrag"))
		}
		viper.AddConfigPath("/etc/hybridrag")
		viper.SetConfigType("yaml")
		viper.SetConfigName("hybridrag")
	}

	viper.SetEnvPrefix("HYBRIDRAG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
