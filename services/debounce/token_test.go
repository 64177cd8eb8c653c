package debounce

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var classifyTestCases = []struct {
	name     string
	input    string
	expected InputKind
}{
	{name: "Empty", input: "", expected: InputClear},
	{name: "Whitespace", input: " \t ", expected: InputClear},
	{name: "Text", input: "paracetamol", expected: InputText},
	{name: "HashInsideText", input: "obat #1", expected: InputText},
	{name: "TriggerOnly", input: "#", expected: InputPartialFilter},
	{name: "PartialColumn", input: "#name", expected: InputPartialFilter},
	{name: "CompleteColumn", input: "#name:", expected: InputColumnFilter},
	{name: "FullFilter", input: "#name:contains:para", expected: InputColumnFilter},
	{name: "LeadingSpace", input: "  #stock:", expected: InputColumnFilter},
}

func TestClassify(t *testing.T) {
	for _, testCase := range classifyTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			assert.Equal(testCase.expected, Classify(testCase.input, DefaultTrigger, DefaultSeparator))
		})
	}
}

func TestIsColumnFilter(t *testing.T) {
	assert := require.New(t)

	assert.True(IsColumnFilter("#na"))
	assert.True(IsColumnFilter("#name:equals:x"))
	assert.False(IsColumnFilter("name"))
	assert.False(IsColumnFilter(""))
}
