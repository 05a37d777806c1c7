package bench

import (
	"encoding/csv"
	"math/rand"
	"runtime"
	"strconv"
)

// WorkloadType names a mixed-operation distribution, adapted from the
// teacher's workload.go.
type WorkloadType string

const (
	OLTP      WorkloadType = "OLTP (90/10)"
	OLAP      WorkloadType = "OLAP (10/90)"
	Reporting WorkloadType = "Reporting (Range)"
)

// ExecuteWorkload runs ops operations of the given mix against b. Since
// Backend has no point lookup, "read" here means a short range probe
// rather than a Get.
func ExecuteWorkload(b Backend, wType WorkloadType, ops int, rng *rand.Rand) {
	for i := 0; i < ops; i++ {
		choice := rng.Intn(100)
		key := int32(rng.Intn(ops) + 1)

		switch wType {
		case OLTP:
			if choice < 90 {
				drain(b, key, key)
			} else {
				_ = b.Insert(key, "x")
			}
		case OLAP:
			if choice < 10 {
				drain(b, key, key)
			} else {
				_ = b.Insert(key, "x")
			}
		case Reporting:
			drain(b, key, key+100)
		}
	}
}

func drain(b Backend, low, high int32) {
	it, err := b.Range(low, high)
	if err != nil || it == nil {
		return
	}
	for it.Next() {
	}
	it.Close()
}

// BenchResult is one row of the CSV sweep output.
type BenchResult struct {
	Name      string
	Config    string
	Operation string
	LatencyNs int64
	MemMB     uint64
	Objects   uint64
}

// MemoryStats is a snapshot of runtime.MemStats fields relevant to
// comparing backend memory footprints.
type MemoryStats struct {
	AllocMB      uint64
	TotalAllocMB uint64
	HeapObjects  uint64
}

// GetDetailedMem forces a GC so the sample reflects live data, not
// garbage awaiting collection.
func GetDetailedMem() MemoryStats {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	return MemoryStats{
		AllocMB:      m.Alloc / 1024 / 1024,
		TotalAllocMB: m.TotalAlloc / 1024 / 1024,
		HeapObjects:  m.HeapObjects,
	}
}

// Record writes one BenchResult row.
func Record(w *csv.Writer, res BenchResult) {
	w.Write([]string{
		res.Name,
		res.Config,
		res.Operation,
		strconv.FormatInt(res.LatencyNs, 10),
		strconv.FormatUint(res.MemMB, 10),
		strconv.FormatUint(res.Objects, 10),
	})
}
