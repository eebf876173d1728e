package main

import (
	"fmt"
	"os"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/bobboyms/tablestore/pkg/catalog"
	"github.com/bobboyms/tablestore/pkg/log"
	"github.com/bobboyms/tablestore/pkg/objectstore"
	"github.com/bobboyms/tablestore/pkg/storage"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tablestore",
	Short: "Inspect a tablestore directory",
	Long: `Tablestore inspector for a store directory: decode the committed
log, reconstruct the catalog and dump table rows. The tool only ever opens
read transactions; it never writes to the store.`,
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().String("dir", "./tablestore_data", "Store directory")
	rootCmd.PersistentFlags().String("codec", "json", "Envelope codec (json, bson)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(scanCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

func openCodec() (catalog.Codec, error) {
	codecName, _ := rootCmd.PersistentFlags().GetString("codec")
	switch codecName {
	case "json":
		return catalog.NewJSONCodec(), nil
	case "bson":
		return catalog.NewBSONCodec(), nil
	default:
		return nil, fmt.Errorf("unknown codec %q", codecName)
	}
}

func openStore() (*objectstore.FileStorage, error) {
	dir, _ := rootCmd.PersistentFlags().GetString("dir")
	return objectstore.NewFileStorage(dir)
}

func openClient() (*storage.Client, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	codec, err := openCodec()
	if err != nil {
		return nil, err
	}

	opts := storage.DefaultOptions()
	opts.Codec = codec
	opts.Logger = log.WithComponent("tablestore")

	return storage.NewClient(store, opts), nil
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Print every committed log entry in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		codec, err := openCodec()
		if err != nil {
			return err
		}

		names, err := store.ListPrefix(catalog.LogPrefix)
		if err != nil {
			return err
		}
		sort.Strings(names)

		for _, name := range names {
			data, err := store.Read(name)
			if err != nil {
				return err
			}
			entry, err := codec.DecodeLogEntry(data)
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", name, err)
			}
			out, err := json.MarshalIndent(entry, "", "  ")
			if err != nil {
				return err
			}
			fmt.Printf("%s\n%s\n", name, out)
		}
		return nil
	},
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Print the catalog: table names and column lists",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := openClient()
		if err != nil {
			return err
		}
		if err := client.NewTx(); err != nil {
			return err
		}

		tables, err := client.Tables()
		if err != nil {
			return err
		}

		names := make([]string, 0, len(tables))
		for name := range tables {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			fmt.Printf("%s\t%v\n", name, tables[name])
		}
		return nil
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan <table>",
	Short: "Dump every visible row of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := openClient()
		if err != nil {
			return err
		}
		if err := client.NewTx(); err != nil {
			return err
		}

		scanner, err := client.Scan(args[0])
		if err != nil {
			return err
		}
		rows, err := scanner.Collect()
		if err != nil {
			return err
		}

		for _, row := range rows {
			out, err := json.Marshal(row)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
		}
		return nil
	},
}
