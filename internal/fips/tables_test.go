package fips

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sampleStateRows = [][]string{
		{"State", "FIPS"},
		{"California", "06"},
		{"New York", "36"},
	}
	sampleCountyRows = [][]string{
		{"County, State", "StateFIPS", "CountyFIPS"},
		{"Los Angeles County, California", "06", "037"},
		{"New York County, New York", "36", "061"},
	}
)

func sampleTables(t *testing.T) *Tables {
	t.Helper()
	states, err := BuildStateMap(sampleStateRows, false)
	require.NoError(t, err)
	counties, err := BuildCountyMap(sampleCountyRows, false)
	require.NoError(t, err)
	return &Tables{States: states, Counties: counties}
}

func TestBuildMaps_Sample(t *testing.T) {
	tables := sampleTables(t)

	assert.Equal(t, StateMap{"CALIFORNIA": "06", "NEW YORK": "36"}, tables.States)
	assert.Equal(t, CountyMap{
		"06": {"LOS ANGELES": "037"},
		"36": {"NEW YORK": "061"},
	}, tables.Counties)
	assert.Equal(t, Stats{States: 2, Counties: 2}, tables.Stats())
}

func TestBuildStateMap_HeaderAlwaysSkipped(t *testing.T) {
	// Row 0 is dropped even when it looks like data.
	states, err := BuildStateMap([][]string{{"Texas", "48"}, {"Ohio", "39"}}, false)
	require.NoError(t, err)
	assert.Equal(t, StateMap{"OHIO": "39"}, states)
}

func TestBuildStateMap_LastRowWins(t *testing.T) {
	states, err := BuildStateMap([][]string{
		{"State", "FIPS"},
		{"Georgia", "13"},
		{"GEORGIA", "99"},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "99", states["GEORGIA"])
	assert.Len(t, states, 1)
}

func TestBuildStateMap_Empty(t *testing.T) {
	states, err := BuildStateMap(nil, false)
	require.NoError(t, err)
	assert.Empty(t, states)

	states, err = BuildStateMap([][]string{{"State", "FIPS"}}, false)
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestBuildStateMap_WrongArity(t *testing.T) {
	_, err := BuildStateMap([][]string{
		{"State", "FIPS"},
		{"California"},
	}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state row 1: expected 2 columns, got 1")
}

func TestBuildStateMap_PadCodes(t *testing.T) {
	states, err := BuildStateMap([][]string{{"State", "FIPS"}, {"Alabama", "1"}}, true)
	require.NoError(t, err)
	assert.Equal(t, "01", states["ALABAMA"])
}

func TestBuildCountyMap_SuffixAndSegments(t *testing.T) {
	counties, err := BuildCountyMap([][]string{
		{"County, State", "StateFIPS", "CountyFIPS"},
		{"  Harris County ,  Texas ", "48", "201"},
		{"Orleans Parish, Louisiana", "22", "071"},
		{"Anchorage, Alaska", "02", "020"},
	}, false)
	require.NoError(t, err)

	assert.Equal(t, "201", counties["48"]["HARRIS"])
	assert.Equal(t, "071", counties["22"]["ORLEANS PARISH"])
	assert.Equal(t, "020", counties["02"]["ANCHORAGE"])
}

func TestBuildCountyMap_SkipsRowsWithoutCounty(t *testing.T) {
	counties, err := BuildCountyMap([][]string{
		{"County, State", "StateFIPS", "CountyFIPS"},
		{", Texas", "48", "999"},
		{"", "48", "998"},
		{"Travis County, Texas", "48", "453"},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, CountyMap{"48": {"TRAVIS": "453"}}, counties)
}

func TestBuildCountyMap_SameNameDifferentStates(t *testing.T) {
	counties, err := BuildCountyMap([][]string{
		{"County, State", "StateFIPS", "CountyFIPS"},
		{"Washington County, Alabama", "01", "129"},
		{"Washington County, Oregon", "41", "067"},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "129", counties["01"]["WASHINGTON"])
	assert.Equal(t, "067", counties["41"]["WASHINGTON"])
}

func TestBuildCountyMap_LastRowWins(t *testing.T) {
	counties, err := BuildCountyMap([][]string{
		{"County, State", "StateFIPS", "CountyFIPS"},
		{"Kent County, Delaware", "10", "001"},
		{"Kent, Delaware", "10", "002"},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "002", counties["10"]["KENT"])
}

func TestBuildCountyMap_WrongArity(t *testing.T) {
	_, err := BuildCountyMap([][]string{
		{"County, State", "StateFIPS", "CountyFIPS"},
		{"Kent County, Delaware", "10", "001"},
		{"Sussex County, Delaware", "10", "005", "extra"},
	}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "county row 2: expected 3 columns, got 4")
}

func TestBuildCountyMap_PadCodes(t *testing.T) {
	counties, err := BuildCountyMap([][]string{
		{"County, State", "StateFIPS", "CountyFIPS"},
		{"Autauga County, Alabama", "1", "1"},
	}, true)
	require.NoError(t, err)
	assert.Equal(t, "001", counties["01"]["AUTAUGA"])
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		fn     func(string) string
		input  string
		expect string
	}{
		{"state upper", NormalizeState, "new york", "NEW YORK"},
		{"state keeps county word", NormalizeState, "Harris County", "HARRIS COUNTY"},
		{"county suffix", NormalizeCounty, "Los Angeles County", "LOS ANGELES"},
		{"county lower suffix", NormalizeCounty, "los angeles county", "LOS ANGELES"},
		{"county suffix only at end", NormalizeCounty, "County Line", "COUNTY LINE"},
		{"county no suffix", NormalizeCounty, "Bexar", "BEXAR"},
		{"decomposed accent", NormalizeCounty, "Don\u0303a Ana County", "DO\u00d1A ANA"},
		{"composed accent", NormalizeCounty, "Do\u00f1a Ana County", "DO\u00d1A ANA"},
		{"empty", NormalizeCounty, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.fn(tt.input))
		})
	}
}

func TestPadCodes(t *testing.T) {
	assert.Equal(t, "06", PadStateCode("6"))
	assert.Equal(t, "36", PadStateCode("36"))
	assert.Equal(t, "", PadStateCode(""))
	assert.Equal(t, "037", PadCountyCode("37"))
	assert.Equal(t, "001", PadCountyCode(" 1 "))
	assert.Equal(t, "510", PadCountyCode("510"))
}
