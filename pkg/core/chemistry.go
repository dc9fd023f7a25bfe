package core

// Atomic masses (monoisotopic)
const (
	MassC   = 12.0000000000
	MassC13 = 13.00335483

	// IsotopeMassUnit is the mass difference between 13C and 12C, used to
	// correct precursor m/z values for isotope selection errors.
	IsotopeMassUnit = MassC13 - MassC

	// ProtonMass for charge calculations
	ProtonMass = 1.00727646688
)

// AdjustedExperimentalMz removes the isotope error from an experimental
// precursor m/z. A zero charge leaves the value unchanged.
func AdjustedExperimentalMz(experimentalMz float64, isotopeError, charge int) float64 {
	if charge == 0 {
		return experimentalMz
	}
	return experimentalMz - IsotopeMassUnit*float64(isotopeError)/float64(charge)
}

// PrecursorErrorPPM computes the isotope-adjusted precursor mass error in ppm
// relative to the calculated m/z.
func PrecursorErrorPPM(experimentalMz, calculatedMz float64, isotopeError, charge int) float64 {
	if calculatedMz == 0 {
		return 0
	}
	adj := AdjustedExperimentalMz(experimentalMz, isotopeError, charge)
	return (adj - calculatedMz) / calculatedMz * 1e6
}

// NeutralMass converts an m/z value at the given charge to the uncharged mass.
func NeutralMass(mz float64, charge int) float64 {
	return mz*float64(charge) - float64(charge)*ProtonMass
}
