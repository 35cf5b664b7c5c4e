package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseImportLine(t *testing.T) {
	line := parseImportLine("LOT-001\tStrip topsoil ch 0-250")
	if assert.NotNil(t, line) {
		assert.Equal(t, "LOT-001", line.lotNumber)
		assert.Equal(t, "Strip topsoil ch 0-250", line.description)
	}

	// Tab wins over comma, so a comma inside the description survives.
	line = parseImportLine("LOT-002\tCut to fill, zone 3")
	if assert.NotNil(t, line) {
		assert.Equal(t, "Cut to fill, zone 3", line.description)
	}

	line = parseImportLine("LOT-003,Drainage line A")
	if assert.NotNil(t, line) {
		assert.Equal(t, "LOT-003", line.lotNumber)
		assert.Equal(t, "Drainage line A", line.description)
	}

	line = parseImportLine("  LOT-004  ")
	if assert.NotNil(t, line) {
		assert.Equal(t, "LOT-004", line.lotNumber)
		assert.Empty(t, line.description)
	}

	assert.Nil(t, parseImportLine(""))
	assert.Nil(t, parseImportLine("   "))
	assert.Nil(t, parseImportLine(",description with no lot number"))
}
