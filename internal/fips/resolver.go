package fips

// Codes is the FIPS enrichment attached to a geocoding result.
type Codes struct {
	StateFIPS  string `json:"stateFips" yaml:"stateFips"`
	CountyFIPS string `json:"countyFips" yaml:"countyFips"`
}

// Resolve returns the state and county FIPS codes for the given region and
// subregion names. Unmatched input yields NotAvailable, never an error; a
// county is only looked up once its state has resolved.
func (t *Tables) Resolve(region, subRegion string) Codes {
	codes := Codes{StateFIPS: NotAvailable, CountyFIPS: NotAvailable}

	stateFIPS, ok := t.States[NormalizeState(region)]
	if !ok {
		return codes
	}
	codes.StateFIPS = stateFIPS

	// Indexing a missing inner map yields a nil map, which reads as empty.
	if countyFIPS, ok := t.Counties[stateFIPS][NormalizeCounty(subRegion)]; ok {
		codes.CountyFIPS = countyFIPS
	}
	return codes
}
