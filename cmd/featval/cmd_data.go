package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/featval/service"
)

func runImportTsv(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := a.svc.TsvFileToMatrix(ctx, f, service.TsvFileToMatrixParams{
		GenomeRef:         importGenome,
		FillMissingValues: importFillMissing,
		DataType:          importType,
		DataScale:         importScale,
		Description:       importDescription,
		OutputWsName:      importWorkspace,
		OutputObjName:     importName,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), info.Ref)

	return nil
}

func runExportTsv(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	w, err := output(cmd)
	if err != nil {
		return err
	}
	if err = a.svc.MatrixToTsv(ctx, args[0], w); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}

func runExportClusters(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	w, err := output(cmd)
	if err != nil {
		return err
	}
	if err = a.svc.ClustersToFile(ctx, args[0], clusterFormat, w); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}

func runStat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	ms, err := a.svc.GetMatrixStat(ctx, args[0])
	if err != nil {
		return err
	}
	w, err := output(cmd)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err = enc.Encode(ms); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}
