package searchdb

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/meghashyamc/apotek/db"
	"github.com/stretchr/testify/require"
)

var testDocuments = []Document{
	NewDocument(db.KindItems, db.Record{"id": "i1", "code": "AMX-500", "name": "Amoxicillin 500mg", "description": "antibiotic capsule"}),
	NewDocument(db.KindItems, db.Record{"id": "i2", "kode": "PCT-500", "name": "Paracetamol 500mg"}),
	NewDocument(db.KindSuppliers, db.Record{"id": "s1", "code": "SUP-01", "name": "PT Amox Distribusi"}),
	NewDocument(db.KindDoctors, db.Record{"id": "d1", "name": "dr. Paramita"}),
}

func newTestIndex(t *testing.T, assert *require.Assertions) *BleveDB {
	testLogger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	index, err := New(testLogger, filepath.Join(t.TempDir(), "lookup.bleve"))
	assert.NoError(err, "could not create index")
	t.Cleanup(func() {
		assert.NoError(index.Close())
	})
	assert.NoError(index.IndexDocuments(testDocuments))

	return index
}

func resultIDs(response *Response) []string {
	ids := make([]string, 0, len(response.Results))
	for _, result := range response.Results {
		ids = append(ids, result.ID)
	}
	return ids
}

var searchTestCases = []struct {
	name        string
	query       string
	kind        db.Kind
	expectedIDs []string
	firstID     string
}{
	{name: "CodePrefixRanksAboveFuzzyName", query: "amx", expectedIDs: []string{"i1", "s1"}, firstID: "i1"},
	{name: "CodeContains", query: "500", expectedIDs: []string{"i1", "i2"}},
	{name: "NamePrefix", query: "parac", expectedIDs: []string{"i2"}, firstID: "i2"},
	{name: "KindFilter", query: "amox", kind: db.KindSuppliers, expectedIDs: []string{"s1"}, firstID: "s1"},
	{name: "FuzzyName", query: "paramitta", expectedIDs: []string{"d1"}, firstID: "d1"},
	{name: "Description", query: "antibiotic", expectedIDs: []string{"i1"}, firstID: "i1"},
	{name: "EmptyQueryWithinKind", query: "", kind: db.KindItems, expectedIDs: []string{"i1", "i2"}},
}

func TestSearch(t *testing.T) {
	assert := require.New(t)
	index := newTestIndex(t, assert)

	for _, testCase := range searchTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)

			response, err := index.Search(testCase.query, testCase.kind, 10, 0)
			assert.NoError(err)

			ids := resultIDs(response)
			assert.ElementsMatch(testCase.expectedIDs, ids)
			assert.Equal(uint64(len(testCase.expectedIDs)), response.Total)
			if testCase.firstID != "" {
				assert.Equal(testCase.firstID, ids[0])
			}
		})
	}
}

func TestSearchReturnsStoredFields(t *testing.T) {
	assert := require.New(t)
	index := newTestIndex(t, assert)

	response, err := index.Search("amx", db.KindItems, 10, 0)
	assert.NoError(err)
	assert.Len(response.Results, 1)

	result := response.Results[0]
	assert.Equal("items", result.Kind)
	assert.Equal("AMX-500", result.Code)
	assert.Equal("Amoxicillin 500mg", result.Name)
}

func TestDeleteDocuments(t *testing.T) {
	assert := require.New(t)
	index := newTestIndex(t, assert)

	count, err := index.GetDocCount()
	assert.NoError(err)
	assert.Equal(uint64(len(testDocuments)), count)

	assert.NoError(index.DeleteDocuments([]string{"i1", "s1"}))

	count, err = index.GetDocCount()
	assert.NoError(err)
	assert.Equal(uint64(2), count)

	response, err := index.Search("amox", "", 10, 0)
	assert.NoError(err)
	assert.Empty(response.Results)
}

func TestStripWildcards(t *testing.T) {
	assert := require.New(t)
	assert.Equal("ab", stripWildcards(`a*?\b`))
}
