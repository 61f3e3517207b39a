package pathglue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/datacode-lang/datacode/value"
)

func TestNewDetectsGlobMetacharacters(t *testing.T) {
	assert.IsType(t, value.PathPattern{}, New("reports/*.csv"))
	assert.IsType(t, value.PathPattern{}, New("report-[0-9].csv"))
	assert.IsType(t, value.Path{}, New("reports/january.csv"))
}

func TestIsRemoteParsesShareAndRest(t *testing.T) {
	share, rest, ok := IsRemote("lib://finance/reports/q1.csv")
	assert.True(t, ok)
	assert.Equal(t, "finance", share)
	assert.Equal(t, "reports/q1.csv", rest)

	share, rest, ok = IsRemote("lib://finance")
	assert.True(t, ok)
	assert.Equal(t, "finance", share)
	assert.Equal(t, "", rest)

	_, _, ok = IsRemote("reports/q1.csv")
	assert.False(t, ok)
}

func TestJoinUsesForwardSlashRegardlessOfHostOS(t *testing.T) {
	assert.Equal(t, "reports/q1.csv", Join("reports", "q1.csv"))
	assert.Equal(t, "reports/q1.csv", Join("reports/", "/q1.csv"))
	assert.Equal(t, "q1.csv", Join("", "q1.csv"))
}
