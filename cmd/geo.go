package main

import "github.com/spf13/cobra"

var geoCmd = &cobra.Command{
	Use:   "geo",
	Short: "Fetch, import and inspect EPCI geometry",
}

func init() { rootCmd.AddCommand(geoCmd) }
