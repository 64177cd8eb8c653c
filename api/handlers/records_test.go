package handlers

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/meghashyamc/apotek/db"
	"github.com/stretchr/testify/require"
)

var createRecordHandlerTestCases = []struct {
	testCase
	kind string
}{
	{
		testCase: testCase{
			name:           "UnknownKind",
			requestHeaders: defaultTestRequestHeaders,
			requestBody:    map[string]any{"name": "Paracetamol"},
			expectedStatus: http.StatusNotAcceptable,
		},
		kind: "drugs",
	},
	{
		testCase: testCase{
			name:           "NoRequestBody",
			requestHeaders: defaultTestRequestHeaders,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		kind: "items",
	},
	{
		testCase: testCase{
			name:           "BlankName",
			requestHeaders: defaultTestRequestHeaders,
			requestBody:    map[string]any{"name": "   "},
			expectedStatus: http.StatusNotAcceptable,
		},
		kind: "items",
	},
	{
		testCase: testCase{
			name:           "Success",
			requestHeaders: defaultTestRequestHeaders,
			requestBody:    map[string]any{"name": "Dr. Sari", "specialization": "pediatrics"},
			expectedStatus: http.StatusCreated,
			expectedResponse: map[string]any{
				"data": map[string]any{"name": "Dr. Sari", "specialization": "pediatrics"},
			},
		},
		kind: "doctors",
	},
}

func TestHandleCreateRecord(t *testing.T) {
	assert := require.New(t)
	server := setupTestServer(t, assert)

	for _, testCase := range createRecordHandlerTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			w := makeTestHTTPRequest(server.router, assert, http.MethodPost, "/records/"+testCase.kind, testCase.requestHeaders, testCase.requestBody, testCase.queryParams)
			assert.Equal(testCase.expectedStatus, w.Code, fmt.Sprintf("response gotten was %s", w.Body.String()))

			if testCase.expectedResponse != nil {
				assertSubset(assert, testCase.expectedResponse, decodeResponse(assert, w))
			}
		})
	}
}

func TestRecordLifecycle(t *testing.T) {
	assert := require.New(t)
	server := setupTestServer(t, assert)

	w := makeTestHTTPRequest(server.router, assert, http.MethodPost, "/records/suppliers", defaultTestRequestHeaders, map[string]any{"name": "PT Enseval", "phone": "021-1234"}, nil)
	assert.Equal(http.StatusCreated, w.Code, w.Body.String())
	created := decodeResponse(assert, w)["data"].(map[string]any)
	id := created[db.FieldID].(string)
	assert.NotEmpty(id)
	assert.NotEmpty(created[db.FieldCreatedAt])

	endpoint := "/records/suppliers/" + id

	w = makeTestHTTPRequest(server.router, assert, http.MethodGet, endpoint, nil, nil, nil)
	assert.Equal(http.StatusOK, w.Code, w.Body.String())
	assertSubset(assert, map[string]any{"data": map[string]any{"id": id, "name": "PT Enseval"}}, decodeResponse(assert, w))

	w = makeTestHTTPRequest(server.router, assert, http.MethodPut, endpoint, defaultTestRequestHeaders, map[string]any{"phone": "021-9999", "id": "forged"}, nil)
	assert.Equal(http.StatusOK, w.Code, w.Body.String())
	assertSubset(assert, map[string]any{"data": map[string]any{
		"id":         id,
		"name":       "PT Enseval",
		"phone":      "021-9999",
		"created_at": created[db.FieldCreatedAt],
	}}, decodeResponse(assert, w))

	w = makeTestHTTPRequest(server.router, assert, http.MethodGet, "/records/doctors/"+id, nil, nil, nil)
	assert.Equal(http.StatusNotFound, w.Code, "records are scoped to their kind")

	w = makeTestHTTPRequest(server.router, assert, http.MethodDelete, endpoint, nil, nil, nil)
	assert.Equal(http.StatusNoContent, w.Code, w.Body.String())

	w = makeTestHTTPRequest(server.router, assert, http.MethodGet, endpoint, nil, nil, nil)
	assert.Equal(http.StatusNotFound, w.Code)

	w = makeTestHTTPRequest(server.router, assert, http.MethodDelete, endpoint, nil, nil, nil)
	assert.Equal(http.StatusNotFound, w.Code)
}

var listRecordsHandlerTestCases = []struct {
	testCase
	kind          string
	expectedNames []string
}{
	{
		testCase: testCase{
			name:           "UnknownKind",
			expectedStatus: http.StatusNotAcceptable,
		},
		kind: "drugs",
	},
	{
		testCase: testCase{
			name:           "ColumnFilterQuery",
			queryParams:    map[string]string{"query": url.QueryEscape("#name:")},
			expectedStatus: http.StatusNotAcceptable,
		},
		kind: "items",
	},
	{
		testCase: testCase{
			name:           "PerPageTooLarge",
			queryParams:    map[string]string{"per_page": "500"},
			expectedStatus: http.StatusNotAcceptable,
		},
		kind: "items",
	},
	{
		testCase: testCase{
			name:           "InvalidPage",
			queryParams:    map[string]string{"page": "-1"},
			expectedStatus: http.StatusNotAcceptable,
		},
		kind: "items",
	},
	{
		testCase: testCase{
			name:           "NoQueryKeepsStoreOrder",
			expectedStatus: http.StatusOK,
			expectedResponse: map[string]any{
				"data": map[string]any{
					"page_details": map[string]any{
						"current_page":  float64(1),
						"page_size":     float64(20),
						"total_pages":   float64(1),
						"has_next_page": false,
						"has_prev_page": false,
						"total_results": float64(3),
					},
				},
			},
		},
		kind:          "items",
		expectedNames: []string{"Paracetamol 500mg", "Amoxicillin 500mg", "Antasida Doen"},
	},
	{
		testCase: testCase{
			name:           "CodePrefixRanksFirst",
			queryParams:    map[string]string{"query": "amx"},
			expectedStatus: http.StatusOK,
		},
		kind:          "items",
		expectedNames: []string{"Amoxicillin 500mg"},
	},
	{
		testCase: testCase{
			name:           "CodeTiesBreakOnCode",
			queryParams:    map[string]string{"query": "500"},
			expectedStatus: http.StatusOK,
		},
		kind:          "items",
		expectedNames: []string{"Amoxicillin 500mg", "Paracetamol 500mg"},
	},
	{
		testCase: testCase{
			name:           "DescriptionMatchesAreKeptButRankLast",
			queryParams:    map[string]string{"query": "an"},
			expectedStatus: http.StatusOK,
		},
		kind:          "items",
		expectedNames: []string{"Antasida Doen", "Amoxicillin 500mg", "Paracetamol 500mg"},
	},
	{
		testCase: testCase{
			name:           "KindSpecificField",
			queryParams:    map[string]string{"query": "021"},
			expectedStatus: http.StatusOK,
		},
		kind:          "suppliers",
		expectedNames: []string{"PT Kimia Farma"},
	},
	{
		testCase: testCase{
			name:           "SecondPage",
			queryParams:    map[string]string{"per_page": "1", "page": "2"},
			expectedStatus: http.StatusOK,
			expectedResponse: map[string]any{
				"data": map[string]any{
					"page_details": map[string]any{
						"current_page":  float64(2),
						"page_size":     float64(1),
						"total_pages":   float64(3),
						"has_next_page": true,
						"has_prev_page": true,
						"total_results": float64(3),
					},
				},
			},
		},
		kind:          "items",
		expectedNames: []string{"Amoxicillin 500mg"},
	},
	{
		testCase: testCase{
			name:           "Unlimited",
			queryParams:    map[string]string{"per_page": "-1"},
			expectedStatus: http.StatusOK,
			expectedResponse: map[string]any{
				"data": map[string]any{
					"page_details": map[string]any{
						"page_size":     float64(-1),
						"total_pages":   float64(1),
						"has_next_page": false,
					},
				},
			},
		},
		kind:          "items",
		expectedNames: []string{"Paracetamol 500mg", "Amoxicillin 500mg", "Antasida Doen"},
	},
	{
		testCase: testCase{
			name:           "PageBeyondEnd",
			queryParams:    map[string]string{"page": "9"},
			expectedStatus: http.StatusOK,
		},
		kind:          "items",
		expectedNames: []string{},
	},
	{
		testCase: testCase{
			name:           "HugePage",
			queryParams:    map[string]string{"page": strconv.Itoa(math.MaxInt), "per_page": "2"},
			expectedStatus: http.StatusOK,
			expectedResponse: map[string]any{
				"data": map[string]any{
					"page_details": map[string]any{
						"total_pages":   float64(2),
						"total_results": float64(3),
						"has_next_page": false,
					},
				},
			},
		},
		kind:          "items",
		expectedNames: []string{},
	},
	{
		testCase: testCase{
			name:           "NoMatchSuggestsCreate",
			queryParams:    map[string]string{"query": "zinc"},
			expectedStatus: http.StatusOK,
			expectedResponse: map[string]any{
				"data": map[string]any{"create_suggestion": "zinc"},
			},
		},
		kind:          "items",
		expectedNames: []string{},
	},
	{
		testCase: testCase{
			name:           "EmptyKind",
			expectedStatus: http.StatusOK,
		},
		kind:          "patients",
		expectedNames: []string{},
	},
}

func TestHandleListRecords(t *testing.T) {
	assert := require.New(t)
	server := setupTestServer(t, assert)
	seedRecords(assert, server, db.KindItems, testItems)
	seedRecords(assert, server, db.KindSuppliers, testSuppliers)

	for _, testCase := range listRecordsHandlerTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			w := makeTestHTTPRequest(server.router, assert, http.MethodGet, "/records/"+testCase.kind, nil, nil, testCase.queryParams)
			assert.Equal(testCase.expectedStatus, w.Code, fmt.Sprintf("response gotten was %s", w.Body.String()))
			if w.Code != http.StatusOK {
				return
			}

			responseMap := decodeResponse(assert, w)
			if testCase.expectedResponse != nil {
				assertSubset(assert, testCase.expectedResponse, responseMap)
			}

			data := responseMap["data"].(map[string]any)
			assert.Equal(testCase.expectedNames, resultNames(assert, data, "records"))
			total := data["page_details"].(map[string]any)["total_results"].(float64)
			assert.Equal(fmt.Sprint(total), w.Header().Get(HeaderPaginationTotalCount))
		})
	}
}
