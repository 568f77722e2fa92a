package mathutil

// Physical unit conversions shared by the surface, projector and export code.
const (
	// CMToUnit maps physical centimetres to scene units: 1 unit = 10 cm.
	CMToUnit = 0.1

	// InchToCM is the number of centimetres per inch, used for DPI sizing.
	InchToCM = 2.54
)

// CMToScene converts a physical length in centimetres to scene units.
func CMToScene(cm float64) float64 {
	return cm * CMToUnit
}

// SceneToCM converts a scene-unit length back to centimetres.
func SceneToCM(u float64) float64 {
	return u / CMToUnit
}
