package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/diag360/territory-cli/internal/geocache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the local geometry cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the cached geometry entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		defer c.Close()

		st, err := c.Stat(cmd.Context())
		if err != nil {
			return err
		}
		if !st.Present {
			fmt.Println("Cache empty.")
			return nil
		}

		fmt.Printf("Stored:  %s\n", st.StoredAt.Format(time.RFC3339))
		fmt.Printf("Age:     %s\n", st.Age.Round(time.Minute))
		fmt.Printf("Size:    %d bytes\n", st.Bytes)
		if st.Expired {
			fmt.Println("Status:  expired (next load refetches)")
		} else {
			fmt.Println("Status:  valid")
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the cached geometry",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Cache cleared.")
		return nil
	},
}

func openCache() (*geocache.Cache, error) {
	c, err := geocache.Open(cfg.Cache.Path,
		geocache.WithTTL(time.Duration(cfg.Cache.TTLHours)*time.Hour))
	if err != nil {
		return nil, eris.Wrapf(err, "open cache at %s", cfg.Cache.Path)
	}
	return c, nil
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
