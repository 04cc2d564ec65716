package cluster

import (
	"bufio"
	"fmt"
	"io"
)

// WriteTSV writes one "feature_id<TAB>cluster_index" line per clustered row,
// clusters in order, cluster indices 0-based. No header.
func WriteTSV(w io.Writer, clusters []LabeledCluster) error {
	return writeLines(w, clusters, func(bw *bufio.Writer, ci int, id string) error {
		_, err := fmt.Fprintf(bw, "%s\t%d\n", id, ci)
		return err
	})
}

// WriteSIF writes the clustering as a Simple Interaction Format graph: one
// "cluster_N pc feature_id" line per clustered row, N 0-based.
func WriteSIF(w io.Writer, clusters []LabeledCluster) error {
	return writeLines(w, clusters, func(bw *bufio.Writer, ci int, id string) error {
		_, err := fmt.Fprintf(bw, "cluster_%d pc %s\n", ci, id)
		return err
	})
}

func writeLines(w io.Writer, clusters []LabeledCluster, line func(*bufio.Writer, int, string) error) error {
	bw := bufio.NewWriter(w)
	for ci := range clusters {
		var err error
		clusters[ci].IDToPos.Range(func(id string, _ int) bool {
			err = line(bw, ci, id)
			return err == nil
		})
		if err != nil {
			return err
		}
	}

	return bw.Flush()
}
