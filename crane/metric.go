package crane

import "sync/atomic"

// Metrics contains atomic counters for a Driver.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type Metrics struct {
	// CycleCount indicates the number of completed poll cycles.
	CycleCount atomic.Uint64
	// CommandCount indicates the number of dispatched commands.
	CommandCount atomic.Uint64
	// CommandErrCount indicates the number of commands that failed on the wire.
	CommandErrCount atomic.Uint64
	// EchoMismatchCount indicates the number of echo mismatches on any duty.
	EchoMismatchCount atomic.Uint64
	// PointRefreshCount indicates the number of completed point refreshes.
	PointRefreshCount atomic.Uint64
	// CorruptPointCount indicates the number of malformed point records seen.
	CorruptPointCount atomic.Uint64
	// PositionReadCount indicates the number of position replies stored.
	PositionReadCount atomic.Uint64
	// InputReadCount indicates the number of input replies stored.
	InputReadCount atomic.Uint64
	// TransportErrCount indicates the number of transport I/O errors.
	TransportErrCount atomic.Uint64
}

func (m *Metrics) incCycleCount() {
	m.CycleCount.Add(1)
}

func (m *Metrics) incCommandCount() {
	m.CommandCount.Add(1)
}

func (m *Metrics) incCommandErrCount() {
	m.CommandErrCount.Add(1)
}

func (m *Metrics) incEchoMismatchCount() {
	m.EchoMismatchCount.Add(1)
}

func (m *Metrics) incPointRefreshCount() {
	m.PointRefreshCount.Add(1)
}

func (m *Metrics) incPositionReadCount() {
	m.PositionReadCount.Add(1)
}

func (m *Metrics) incInputReadCount() {
	m.InputReadCount.Add(1)
}

func (m *Metrics) incTransportErrCount() {
	m.TransportErrCount.Add(1)
}

func (m *Metrics) addCorruptPointCount(n int) {
	m.CorruptPointCount.Add(uint64(n)) //nolint:gosec // n is a non-negative line count
}
