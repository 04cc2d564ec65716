package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath  string
	traceStdout bool

	importWorkspace   string
	importName        string
	importGenome      string
	importFillMissing bool
	importType        string
	importScale       string
	importDescription string

	outputPath    string
	clusterFormat string

	rootCmd = &cobra.Command{
		Use:          "featval",
		Short:        "Feature-by-condition matrix statistics, clustering and genome reconciliation",
		SilenceUsage: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP RPC server",
		Args:  cobra.NoArgs,
		RunE:  runServe, // Defined in cmd_serve.go
	}

	importTsvCmd = &cobra.Command{
		Use:   "import-tsv [file]",
		Short: "Import a TSV matrix into the object store",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportTsv, // Defined in cmd_data.go
	}

	exportTsvCmd = &cobra.Command{
		Use:   "export-tsv [ref]",
		Short: "Write a stored matrix as TSV",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportTsv, // Defined in cmd_data.go
	}

	exportClustersCmd = &cobra.Command{
		Use:   "export-clusters [ref]",
		Short: "Write a stored clustering as TSV or SIF",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportClusters, // Defined in cmd_data.go
	}

	statCmd = &cobra.Command{
		Use:   "stat [ref]",
		Short: "Print row and column statistics of a stored matrix as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runStat, // Defined in cmd_data.go
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE:  runConfig, // Defined in cmd_serve.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML configuration (defaults apply when empty)")
	rootCmd.PersistentFlags().BoolVar(&traceStdout, "trace-stdout", false, "export OpenTelemetry spans to stderr")

	importTsvCmd.Flags().StringVar(&importWorkspace, "ws", "", "output workspace")
	importTsvCmd.Flags().StringVar(&importName, "name", "", "output object name")
	importTsvCmd.Flags().StringVar(&importGenome, "genome", "", "genome reference to reconcile rows against")
	importTsvCmd.Flags().BoolVar(&importFillMissing, "fill-missing", false, "replace missing cells with the global mean")
	importTsvCmd.Flags().StringVar(&importType, "type", "", "data type (default \"unknown\")")
	importTsvCmd.Flags().StringVar(&importScale, "scale", "", "data scale (default \"1.0\")")
	importTsvCmd.Flags().StringVar(&importDescription, "description", "", "matrix description")
	_ = importTsvCmd.MarkFlagRequired("ws")
	_ = importTsvCmd.MarkFlagRequired("name")

	for _, c := range []*cobra.Command{exportTsvCmd, exportClustersCmd, statCmd} {
		c.Flags().StringVarP(&outputPath, "output", "o", "", "output file (stdout when empty)")
	}
	exportClustersCmd.Flags().StringVar(&clusterFormat, "format", "tsv", "output format: tsv or sif")

	rootCmd.AddCommand(serveCmd, importTsvCmd, exportTsvCmd, exportClustersCmd, statCmd, configCmd)
}
