package spectral

// breakpoint pairs an inclusive lower bound with its interpretation.
// Tables are evaluated top-down; values below every bound fall through to
// the per-index catch-all.
type breakpoint struct {
	atLeast float64
	label   string
}

var vegetationTable = []breakpoint{
	{0.6, "dense vegetation/healthy crops"},
	{0.3, "moderate vegetation"},
	{0.1, "sparse vegetation"},
	{-0.1, "bare soil/minimal vegetation"},
}

const vegetationFallback = "water/built-up/snow"

var builtUpTable = []breakpoint{
	{0.2, "dense urban development"},
	{0.1, "moderate development"},
	{0.0, "sparse development"},
	{-0.2, "low development"},
}

const builtUpFallback = "vegetated/water area"

var waterTable = []breakpoint{
	{0.3, "open water"},
	{0.1, "wet/flooded area"},
	{-0.1, "mixed/moist terrain"},
}

const waterFallback = "dry land"

var moistureTable = []breakpoint{
	{0.4, "high moisture content"},
	{0.2, "adequate moisture"},
	{0.0, "moderate moisture"},
	{-0.2, "low moisture/stressed"},
}

const moistureFallback = "very dry/arid"

func classify(v float64, table []breakpoint, fallback string) string {
	for _, b := range table {
		if v >= b.atLeast {
			return b.label
		}
	}
	return fallback
}

// ClassifyVegetation interprets an NDVI value.
func ClassifyVegetation(v float64) string {
	return classify(v, vegetationTable, vegetationFallback)
}

// ClassifyBuiltUp interprets an NDBI value.
func ClassifyBuiltUp(v float64) string {
	return classify(v, builtUpTable, builtUpFallback)
}

// ClassifyWater interprets an NDWI value.
func ClassifyWater(v float64) string {
	return classify(v, waterTable, waterFallback)
}

// ClassifyMoisture interprets an NDMI value.
func ClassifyMoisture(v float64) string {
	return classify(v, moistureTable, moistureFallback)
}
