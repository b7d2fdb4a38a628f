// Package opmon records how long storage operations take
package opmon

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/xiaonanln/gwdatatype/engine/gwlog"
)

var (
	operationAllocPool = sync.Pool{
		New: func() interface{} {
			return &Operation{}
		},
	}

	monitor = newMonitor()
)

// OpStats is the summary of one operation name
type OpStats struct {
	Name          string
	Count         uint64
	TotalDuration time.Duration
	MaxDuration   time.Duration
}

// Avg returns the average duration
func (s OpStats) Avg() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.Count)
}

type _Monitor struct {
	sync.Mutex
	opInfos map[string]*OpStats
}

func newMonitor() *_Monitor {
	return &_Monitor{
		opInfos: map[string]*OpStats{},
	}
}

func (monitor *_Monitor) record(opname string, duration time.Duration) {
	monitor.Lock()
	info := monitor.opInfos[opname]
	if info == nil {
		info = &OpStats{Name: opname}
		monitor.opInfos[opname] = info
	}
	info.Count += 1
	info.TotalDuration += duration
	if duration > info.MaxDuration {
		info.MaxDuration = duration
	}
	monitor.Unlock()
}

// take returns recorded stats sorted by name and clears them
func (monitor *_Monitor) take() []OpStats {
	monitor.Lock()
	opInfos := monitor.opInfos
	monitor.opInfos = map[string]*OpStats{}
	monitor.Unlock()

	stats := make([]OpStats, 0, len(opInfos))
	for _, info := range opInfos {
		stats = append(stats, *info)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Name < stats[j].Name
	})
	return stats
}

// Take returns the stats recorded since the last Take or Dump, sorted by name
func Take() []OpStats {
	return monitor.take()
}

// Dump writes the stats recorded since the last Take or Dump to w
func Dump(w io.Writer) {
	fmt.Fprint(w, "=====================================================================================\n")
	for _, s := range monitor.take() {
		fmt.Fprintf(w, "%-30sx%-10d AVG %-10s MAX %-10s\n", s.Name, s.Count, s.Avg(), s.MaxDuration)
	}
}

// Operation is the type of operation to be monitored
type Operation struct {
	name      string
	startTime time.Time
}

// StartOperation creates a new operation
func StartOperation(operationName string) *Operation {
	op := operationAllocPool.Get().(*Operation)
	op.name = operationName
	op.startTime = time.Now()
	return op
}

// Finish finishes the operation and records the duration of operation
func (op *Operation) Finish(warnThreshold time.Duration) {
	takeTime := time.Since(op.startTime)
	monitor.record(op.name, takeTime)
	if takeTime >= warnThreshold {
		gwlog.Warnf("opmon: operation %s takes %s > %s", op.name, takeTime, warnThreshold)
	}
	operationAllocPool.Put(op)
}
