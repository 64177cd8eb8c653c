// Common test helpers
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/apotek/config"
	"github.com/meghashyamc/apotek/db"
	"github.com/meghashyamc/apotek/db/kvdb"
	"github.com/meghashyamc/apotek/db/searchdb"
	"github.com/meghashyamc/apotek/logger"
	"github.com/meghashyamc/apotek/realtime"
	"github.com/meghashyamc/apotek/services/debounce"
	"github.com/meghashyamc/apotek/services/livesearch"
	"github.com/meghashyamc/apotek/services/records"
	"github.com/meghashyamc/apotek/services/search"
	"github.com/meghashyamc/apotek/validation"
	"github.com/stretchr/testify/require"
)

var defaultTestRequestHeaders = map[string]string{"Content-Type": "application/json"}

var testItems = []db.Record{
	{"name": "Paracetamol 500mg", "code": "PCT-500", "description": "pain relief", "stock": 120},
	{"name": "Amoxicillin 500mg", "code": "AMX-500", "description": "antibiotic", "stock": 40},
	{"name": "Antasida Doen", "code": "ANT-01", "description": "antacid tablets", "stock": 0},
}

var testSuppliers = []db.Record{
	{"name": "PT Kimia Farma", "code": "SUP-KF", "phone": "021-555-0101"},
}

type testCase struct {
	name             string
	requestHeaders   map[string]string
	requestBody      map[string]any
	queryParams      map[string]string
	expectedStatus   int
	expectedResponse map[string]any
}

type testServer struct {
	router        *gin.Engine
	recordService *records.Service
	liveManager   *livesearch.Manager
	hub           realtime.Hub
	searchDB      *searchdb.BleveDB
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func setupTestServer(t *testing.T, assert *require.Assertions) *testServer {

	t.Setenv("ENV", "test")

	cfg, err := config.Load()
	assert.NoError(err, "could not load config")

	tempDir := t.TempDir()
	testLogger := newTestLogger()

	buckets := make([]string, 0, len(db.Kinds))
	for _, kind := range db.Kinds {
		buckets = append(buckets, string(kind))
	}
	kvDB, err := kvdb.New(testLogger, filepath.Join(tempDir, "records.db"), buckets)
	assert.NoError(err, "could not create kv database")

	searchDB, err := searchdb.New(testLogger, filepath.Join(tempDir, cfg.GetIndexPath()))
	assert.NoError(err, "could not create search database")

	validator, err := validation.New(testLogger, cfg.GetMaxPageSize())
	assert.NoError(err, "could not create validator")

	hub := realtime.NewLocalHub(testLogger)
	recordService := records.New(testLogger, kvDB, searchDB, hub)
	searchService := search.New(testLogger, recordService, search.NewRanker(cfg.GetCollationLanguage()))
	liveManager := livesearch.NewManager(testLogger, searchService, hub, debounce.Options{
		Delay:             cfg.GetDebounceDelay(),
		ColumnFilterDelay: cfg.GetColumnFilterDelay(),
	}, cfg.GetSessionTTL())

	gin.SetMode(gin.TestMode)
	router := gin.New()

	SetupRecords(router, testLogger, recordService, searchService, validator, cfg.GetDefaultPageSize())
	SetupSearch(router, testLogger, searchDB, validator)
	SetupLive(router, testLogger, liveManager, validator, cfg.GetDefaultPageSize())

	t.Cleanup(func() {
		liveManager.Shutdown()
		assert.NoError(hub.Close(), "could not close realtime hub")
		assert.NoError(searchDB.Close(), "could not close search database")
		assert.NoError(kvDB.Close(), "could not close kv database")
	})

	return &testServer{
		router:        router,
		recordService: recordService,
		liveManager:   liveManager,
		hub:           hub,
		searchDB:      searchDB,
	}
}

// seedRecords stores records of kind and returns them with their assigned ids.
func seedRecords(assert *require.Assertions, server *testServer, kind db.Kind, fixtures []db.Record) []db.Record {
	created := make([]db.Record, 0, len(fixtures))
	for _, fixture := range fixtures {
		record, err := server.recordService.Create(context.Background(), kind, fixture)
		assert.NoError(err, "could not seed record")
		created = append(created, record)
	}
	return created
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, headers map[string]string, requestBodyMap map[string]interface{}, queryParams map[string]string) *httptest.ResponseRecorder {

	var err error
	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		endpoint = endpoint + "?"
		for key, value := range queryParams {
			if endpoint[len(endpoint)-1] != '?' {
				endpoint = endpoint + "&"
			}
			endpoint = endpoint + key + "=" + value
		}
	}
	var jsonBody []byte
	var req *http.Request
	if requestBodyMap != nil {
		jsonBody, err = json.Marshal(requestBodyMap)
		assert.NoError(err)
	}

	slog.Info("Making test request", "method", method, "endpoint", endpoint, "headers", headers, "body", string(jsonBody))

	if len(jsonBody) > 0 {
		req, err = http.NewRequest(method, endpoint, bytes.NewBuffer(jsonBody))
	} else {
		req, err = http.NewRequest(method, endpoint, nil)
	}
	assert.NoError(err)

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	router.ServeHTTP(w, req)

	return w
}

func decodeResponse(assert *require.Assertions, w *httptest.ResponseRecorder) map[string]any {
	var responseMap map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &responseMap)
	assert.NoError(err, "could not unmarshal response %s", w.Body.String())
	return responseMap
}

// assertSubset checks that every key in expected is present in actual with
// the same value, descending into nested maps.
func assertSubset(assert *require.Assertions, expected map[string]any, actual map[string]any) {
	for key, expectedValue := range expected {
		actualValue, exists := actual[key]
		assert.True(exists, "expected field %s not found", key)

		if expectedMap, ok := expectedValue.(map[string]any); ok {
			actualMap, ok := actualValue.(map[string]any)
			assert.True(ok, "field %s is not an object", key)
			assertSubset(assert, expectedMap, actualMap)
			continue
		}
		assert.Equal(expectedValue, actualValue, "field %s mismatch", key)
	}
}

func resultNames(assert *require.Assertions, data map[string]any, field string) []string {
	items, ok := data[field].([]any)
	assert.True(ok, "expected %s to be a list", field)

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.(map[string]any)["name"].(string))
	}
	return names
}
