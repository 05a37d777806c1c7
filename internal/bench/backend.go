// Package bench drives comparative workloads (OLTP/OLAP/reporting mixes)
// against interchangeable key/value backends, adapted from the teacher's
// workload.go and benchmark.go.
package bench

// Backend is the minimal surface a comparison target exposes: insert and
// an inclusive range scan. It deliberately omits point Get — every
// workload here is expressed as either an insert or a range probe, which
// is enough to compare the index's scan path against an LSM tree without
// reimplementing a second query layer per backend.
type Backend interface {
	Insert(key int32, value string) error
	Range(low, high int32) (Iterator, error)
	Close() error
}

// Iterator walks a Range result in ascending key order.
type Iterator interface {
	Next() bool
	Key() int32
	Value() string
	Close() error
}
