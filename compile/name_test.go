package compile

import (
	"testing"

	"github.com/stacs-cp/demystify-go/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTables() NameTables {
	return NameTables{
		Vars:    []string{"var1", "var2", "var3", "var3x"},
		Cons:    []string{"con1", "con2"},
		AuxVars: []string{"aux1", "aux2", "aux3"},
	}
}

func TestParseSavileRowNameWithIndices(t *testing.T) {
	v, err := ParseSavileRowName(testTables(), "var1_1_2_3")
	require.NoError(t, err)
	assert.Equal(t, model.NewVariable("var1", []int{1, 2, 3}), *v)
}

func TestParseSavileRowNameWithZeroPaddedIndices(t *testing.T) {
	v, err := ParseSavileRowName(testTables(), "var1_00001_00002_00010")
	require.NoError(t, err)
	assert.Equal(t, model.NewVariable("var1", []int{1, 2, 10}), *v)
}

func TestParseSavileRowNameWithNegativeIndices(t *testing.T) {
	v, err := ParseSavileRowName(testTables(), "var1_n00001_00002_n00010")
	require.NoError(t, err)
	assert.Equal(t, model.NewVariable("var1", []int{-1, 2, -10}), *v)
}

func TestParseSavileRowNameBareVariable(t *testing.T) {
	v, err := ParseSavileRowName(testTables(), "var1")
	require.NoError(t, err)
	assert.Equal(t, model.NewVariable("var1", nil), *v)
}

func TestParseSavileRowNameConstraint(t *testing.T) {
	v, err := ParseSavileRowName(testTables(), "con1")
	require.NoError(t, err)
	assert.Equal(t, model.NewVariable("con1", nil), *v)
}

func TestParseSavileRowNameAmbiguousPrefixErrors(t *testing.T) {
	_, err := ParseSavileRowName(testTables(), "var3x")
	assert.Error(t, err)
}

func TestParseSavileRowNameAuxReturnsNil(t *testing.T) {
	v, err := ParseSavileRowName(testTables(), "aux2_4_5_6")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestParseSavileRowNameUnknownErrors(t *testing.T) {
	_, err := ParseSavileRowName(testTables(), "not_found_7_8_9")
	assert.Error(t, err)
}

func TestParseSavileRowNameMultipleMatchesErrors(t *testing.T) {
	_, err := ParseSavileRowName(testTables(), "var1_var2_10_11_12")
	assert.Error(t, err)
}

func TestParseSavileRowNameTrailingUnderscore(t *testing.T) {
	v, err := ParseSavileRowName(testTables(), "var1_")
	require.NoError(t, err)
	assert.Equal(t, model.NewVariable("var1", nil), *v)
}
