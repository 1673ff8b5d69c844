package matrix

// DeviceMatrix is what a device stamps into. Indices are 1-based system
// indices; index 0 is the ground reference and stamps aimed at it are dropped.
type DeviceMatrix interface {
	AddElement(i, j int, value float64)
	AddRHS(i int, value float64)
}
