package layout

// Conversion constants between pt and mm.
// The renderer maps one layout pixel to one pt, so a canvas laid out in px is
// sized in mm by PtToMm and rasterized at MmToPt dots per mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// PxToMm converts a layout length in px to the renderer's mm.
func PxToMm(px float64) float64 { return px * PtToMm }

// MmToPx converts a renderer length in mm back to layout px.
func MmToPx(mm float64) float64 { return mm * MmToPt }
