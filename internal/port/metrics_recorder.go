package port

type MetricsRecorder interface {
	// ObserveOperation counts one store operation and whether it failed.
	ObserveOperation(op string, err error)

	ObserveLoad(report LoadReport, err error)

	ObserveSave(err error)

	// ObserveInventory publishes the current summary figures.
	ObserveInventory(distinct, units int, value float64)
}
