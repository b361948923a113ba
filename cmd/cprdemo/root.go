/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package main

import (
	"fmt"
	"io/ioutil"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flowsim/cpr/diag"
)

var cfgFile string
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "cprdemo",
	Short: "Exercise the CPR preconditioner against a synthetic block system",
	Long: `cprdemo builds a synthetic block-sparse Jacobian, wires it through a
Constrained Pressure Residual preconditioner, and runs it inside a tiny
outer loop so the update-scheduling and two-stage apply paths can be
exercised end to end without a real reservoir simulator attached.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.cprdemo.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose diagnostic output")
}

func initConfig() {
	diag.Verbose = verbose

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigName(".cprdemo")
	}

	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		diag.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// loadDemoConfig reads a YAML problem-definition file the same way the
// teacher's cmd/2D.go reads its InputParameters: ghodss/yaml over raw file
// bytes rather than through viper, since the demo's physical parameters
// (cell count, block size, strategy) aren't CLI-overridable the way
// logging/config-path flags are.
func loadDemoConfig(path string) (*DemoConfig, error) {
	cfg := defaultDemoConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cprdemo: reading config %q: %w", path, err)
	}
	if err := cfg.Parse(data); err != nil {
		return nil, fmt.Errorf("cprdemo: parsing config %q: %w", path, err)
	}
	return cfg, nil
}
