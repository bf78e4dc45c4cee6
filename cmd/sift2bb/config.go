package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

type configInfo struct {
	ConfigPath    string `json:"config_path"`
	ConfigEnv     string `json:"config_env"`
	ConfigEnvSet  bool   `json:"config_env_set"`
	Members       int    `json:"members"`
	PriorityCodes int    `json:"priority_codes"`
	StatusCodes   int    `json:"status_codes"`
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display the resolved mapping configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		info := configInfo{
			ConfigPath:    cfg.Path,
			ConfigEnv:     os.Getenv("SIFT2BB_CONFIG"),
			ConfigEnvSet:  cfg.EnvVarSet,
			Members:       len(cfg.Members),
			PriorityCodes: len(cfg.Priorities),
			StatusCodes:   len(cfg.Statuses),
		}

		w.Success(info, formatConfigHuman(cfg.Path, info, rosterHandles(cfg.Members)))
		return nil
	},
}

func rosterHandles(members map[int]string) []string {
	handles := make([]string, 0, len(members))
	for _, h := range members {
		handles = append(handles, h)
	}
	sort.Strings(handles)
	return handles
}

func formatConfigHuman(path string, info configInfo, handles []string) string {
	source := path
	if source == "" {
		source = "(built-in defaults)"
	}

	lines := fmt.Sprintf("Config source:   %s\n", source)
	lines += fmt.Sprintf("Roster:          %d members (%s)\n", info.Members, strings.Join(handles, ", "))
	lines += fmt.Sprintf("Priority codes:  %d\n", info.PriorityCodes)
	lines += fmt.Sprintf("Status codes:    %d\n", info.StatusCodes)
	lines += fmt.Sprintf("SIFT2BB_CONFIG:  %s", formatEnvValue(info.ConfigEnv))

	return lines
}

func formatEnvValue(val string) string {
	if val == "" {
		return "(not set)"
	}
	return val
}

func init() {
	rootCmd.AddCommand(configCmd)
}
