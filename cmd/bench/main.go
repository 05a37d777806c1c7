// Command bench runs the OLTP/OLAP/Reporting workload mix (adapted from
// the teacher's main.go/benchmark.go/workload.go) against the tree index
// and a Pebble-backed comparison index, writing latency/memory CSV rows
// and a bar chart of the sweep.
package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"relidx/btree"
	benchpkg "relidx/internal/bench"
	"relidx/internal/bench/pebblebackend"
	"relidx/pagefile"
	"relidx/recordfile"
)

func main() {
	dir, err := os.MkdirTemp("", "relidx-bench")
	if err != nil {
		log.Fatalf("bench: temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	csvPath := "bench_results.csv"
	f, err := os.Create(csvPath)
	if err != nil {
		log.Fatalf("bench: create %s: %v", csvPath, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	w.Write([]string{"Backend", "Config", "Operation", "LatencyNs", "MemMB", "HeapObjects"})

	const n = 20000
	rng := rand.New(rand.NewSource(1))

	results := map[string][]benchpkg.BenchResult{}

	relidxResult, err := runSuite(w, "relidx", func() (benchpkg.Backend, error) {
		return newRelidxBackend(filepath.Join(dir, "relidx"))
	}, n, rng)
	if err != nil {
		log.Fatalf("bench: relidx suite: %v", err)
	}
	results["relidx"] = relidxResult

	pebbleResult, err := runSuite(w, "pebble", func() (benchpkg.Backend, error) {
		return pebblebackend.Open(filepath.Join(dir, "pebble"))
	}, n, rng)
	if err != nil {
		log.Fatalf("bench: pebble suite: %v", err)
	}
	results["pebble"] = pebbleResult

	w.Flush()
	fmt.Printf("wrote %s\n", csvPath)

	if err := renderChart("bench_latency.png", results); err != nil {
		log.Fatalf("bench: render chart: %v", err)
	}
	fmt.Println("wrote bench_latency.png")
}

func newRelidxBackend(base string) (benchpkg.Backend, error) {
	tree, err := btree.Open(base+".idx", pagefile.ReadWrite)
	if err != nil {
		return nil, err
	}
	rf, err := recordfile.Open(base+".tbl", pagefile.ReadWrite)
	if err != nil {
		return nil, err
	}
	return benchpkg.NewRelidxBackend(tree, rf), nil
}

func runSuite(w *csv.Writer, name string, open func() (benchpkg.Backend, error), n int, rng *rand.Rand) ([]benchpkg.BenchResult, error) {
	fmt.Printf("testing %s\n", name)
	b, err := open()
	if err != nil {
		return nil, err
	}
	defer b.Close()

	var rows []benchpkg.BenchResult
	record := func(op string, latencyNs int64) {
		mem := benchpkg.GetDetailedMem()
		res := benchpkg.BenchResult{Name: name, Operation: op, LatencyNs: latencyNs, MemMB: mem.AllocMB, Objects: mem.HeapObjects}
		benchpkg.Record(w, res)
		rows = append(rows, res)
	}

	start := time.Now()
	for k := 0; k < n; k++ {
		if err := b.Insert(int32(k+1), "v"); err != nil {
			return nil, err
		}
	}
	record("Insert", time.Since(start).Nanoseconds()/int64(n))

	start = time.Now()
	benchpkg.ExecuteWorkload(b, benchpkg.OLTP, n/2, rng)
	record("Workload_OLTP", time.Since(start).Nanoseconds()/int64(n/2))

	start = time.Now()
	benchpkg.ExecuteWorkload(b, benchpkg.OLAP, n/2, rng)
	record("Workload_OLAP", time.Since(start).Nanoseconds()/int64(n/2))

	start = time.Now()
	benchpkg.ExecuteWorkload(b, benchpkg.Reporting, 100, rng)
	record("Workload_Range", time.Since(start).Nanoseconds()/100)

	return rows, nil
}

func renderChart(path string, results map[string][]benchpkg.BenchResult) error {
	names := []string{"relidx", "pebble"}
	ops := []string{"Insert", "Workload_OLTP", "Workload_OLAP", "Workload_Range"}

	p := plot.New()
	p.Title.Text = "relidx vs pebble: latency by workload"
	p.Y.Label.Text = "ns/op"

	width := vg.Points(15)
	for i, name := range names {
		values := make(plotter.Values, len(ops))
		for j, op := range ops {
			values[j] = float64(latencyFor(results[name], op))
		}
		bar, err := plotter.NewBarChart(values, width)
		if err != nil {
			return err
		}
		bar.Offset = vg.Points(float64(i) * 20)
		p.Add(bar)
		p.Legend.Add(name, bar)
	}
	p.NominalX(ops...)

	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}

func latencyFor(rows []benchpkg.BenchResult, op string) int64 {
	for _, r := range rows {
		if r.Operation == op {
			return r.LatencyNs
		}
	}
	return 0
}
