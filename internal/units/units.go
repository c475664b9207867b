// Package units provides shared constants and conversion for lag units
package units

// Unit constants
const (
	Pixel  = "pixel"
	Arcsec = "arcsec"
	Parsec = "parsec"
)

// ValidUnits contains all valid lag unit values
var ValidUnits = []string{Pixel, Arcsec, Parsec}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// ValidUnitsString returns a comma-separated string of valid units for error messages
func ValidUnitsString() string {
	return "pixel, arcsec, parsec"
}

// Scale holds the plate scale of the instrument and the physical scale of the
// target, which together convert pixel lags to angular or physical lags.
type Scale struct {
	ArcsecPerPixel  float64
	ParsecPerArcsec float64
}

// DefaultScale returns the NIRSpec NGC 4696 plate scale: 0.1 arcsec pixels at
// 214 pc per arcsec.
func DefaultScale() Scale {
	return Scale{ArcsecPerPixel: 0.1, ParsecPerArcsec: 214}
}

// ConvertLag converts a lag measured in pixels to the target unit.
// Structure functions are computed on pixel grids, so pixels are the native unit.
func ConvertLag(pixels float64, targetUnit string, s Scale) float64 {
	switch targetUnit {
	case Arcsec:
		return pixels * s.ArcsecPerPixel
	case Parsec:
		return pixels * s.ArcsecPerPixel * s.ParsecPerArcsec
	case Pixel:
		return pixels // no conversion needed
	default:
		return pixels // default to pixels if unknown unit
	}
}
