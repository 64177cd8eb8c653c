package searchdb

import (
	"fmt"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/meghashyamc/apotek/db"
	"github.com/meghashyamc/apotek/logger"
)

const indexingBatchSize = 100

const (
	indexFieldKind        = "kind"
	indexFieldCode        = "code"
	indexFieldName        = "name"
	indexFieldDescription = "description"

	codeAnalyzer = "code_keyword"
)

type BleveDB struct {
	indexPath string
	logger    logger.Logger
	index     bleve.Index
}

func New(logger logger.Logger, indexPath string) (*BleveDB, error) {
	indexMapping, err := createIndexMapping()
	if err != nil {
		logger.Error("could not create index mapping", "err", err.Error())
		return nil, err
	}
	index, err := bleve.New(indexPath, indexMapping)
	if err != nil {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Error("could not open index", "path", indexPath, "err", err.Error())
			return nil, err
		}
	}
	return &BleveDB{indexPath: indexPath, logger: logger, index: index}, nil
}

func (b *BleveDB) IndexDocuments(documents []Document) error {

	batch := b.index.NewBatch()

	for i, doc := range documents {

		err := batch.Index(doc.ID, doc)
		if err != nil {
			b.logger.Error("could not index document", "id", doc.ID, "err", err.Error())
			return err
		}

		// Execute batch when it reaches the batch size
		if (i+1)%indexingBatchSize == 0 {
			err = b.index.Batch(batch)
			if err != nil {
				return err
			}
			batch = b.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			b.logger.Error("could not index documents", "err", err.Error())
			return err
		}
	}

	return nil
}

func createIndexMapping() (mapping.IndexMapping, error) {

	indexMapping := bleve.NewIndexMapping()
	// Codes are matched as one lowercased token so prefixes span dashes.
	err := indexMapping.AddCustomAnalyzer(codeAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register code analyzer: %w", err)
	}

	docMapping := bleve.NewDocumentMapping()

	kindFieldMapping := bleve.NewTextFieldMapping()
	kindFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt(indexFieldKind, kindFieldMapping)

	codeFieldMapping := bleve.NewTextFieldMapping()
	codeFieldMapping.Analyzer = codeAnalyzer
	docMapping.AddFieldMappingsAt(indexFieldCode, codeFieldMapping)

	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt(indexFieldName, nameFieldMapping)

	descriptionFieldMapping := bleve.NewTextFieldMapping()
	descriptionFieldMapping.Analyzer = standard.Name
	descriptionFieldMapping.Store = false
	docMapping.AddFieldMappingsAt(indexFieldDescription, descriptionFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping, nil
}

// Search looks up records across kinds, or within kind when it is set.
func (b *BleveDB) Search(queryString string, kind db.Kind, limit int, offset int) (*Response, error) {
	start := time.Now()

	searchQuery := buildSearchQuery(queryString)
	if kind != "" {
		kindQuery := bleve.NewTermQuery(string(kind))
		kindQuery.SetField(indexFieldKind)
		searchQuery = bleve.NewConjunctionQuery(searchQuery, kindQuery)
	}

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, limit, offset, false)
	searchRequest.Fields = []string{indexFieldKind, indexFieldCode, indexFieldName}
	searchRequest.SortBy([]string{"-_score", "_id"})

	searchResult, err := b.index.Search(searchRequest)
	if err != nil {
		b.logger.Error("search failed", "err", err.Error())
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]Result, len(searchResult.Hits))
	for i, hit := range searchResult.Hits {
		result := Result{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if kind, ok := hit.Fields[indexFieldKind].(string); ok {
			result.Kind = kind
		}
		if code, ok := hit.Fields[indexFieldCode].(string); ok {
			result.Code = code
		}
		if name, ok := hit.Fields[indexFieldName].(string); ok {
			result.Name = name
		}

		results[i] = result
	}

	response := &Response{
		Results:    results,
		Total:      searchResult.Total,
		MaxScore:   searchResult.MaxScore,
		SearchTime: time.Since(start).String(),
	}

	return response, nil
}

// buildSearchQuery boosts clauses in the same order the list ranking uses:
// code prefix, code substring, name prefix, name match, fuzzy name.
func buildSearchQuery(queryString string) query.Query {

	const (
		boostForCodePrefix   = 5.0
		boostForCodeContains = 4.0
		boostForNamePrefix   = 3.0
		boostForNameMatch    = 2.0
		boostForFuzzyName    = 1.0
		boostForDescription  = 1.0
	)

	queryString = strings.ToLower(strings.TrimSpace(queryString))

	if queryString == "" {
		return bleve.NewMatchAllQuery()
	}

	disjunctQuery := bleve.NewDisjunctionQuery()

	codePrefixQuery := bleve.NewPrefixQuery(queryString)
	codePrefixQuery.SetField(indexFieldCode)
	codePrefixQuery.SetBoost(boostForCodePrefix)
	disjunctQuery.AddQuery(codePrefixQuery)

	if literal := stripWildcards(queryString); literal != "" {
		codeContainsQuery := bleve.NewWildcardQuery("*" + literal + "*")
		codeContainsQuery.SetField(indexFieldCode)
		codeContainsQuery.SetBoost(boostForCodeContains)
		disjunctQuery.AddQuery(codeContainsQuery)
	}

	namePrefixQuery := bleve.NewPrefixQuery(queryString)
	namePrefixQuery.SetField(indexFieldName)
	namePrefixQuery.SetBoost(boostForNamePrefix)
	disjunctQuery.AddQuery(namePrefixQuery)

	nameQuery := bleve.NewMatchQuery(queryString)
	nameQuery.SetField(indexFieldName)
	nameQuery.SetBoost(boostForNameMatch)
	disjunctQuery.AddQuery(nameQuery)

	fuzzyNameQuery := bleve.NewMatchQuery(queryString)
	fuzzyNameQuery.SetField(indexFieldName)
	fuzzyNameQuery.SetFuzziness(1)
	fuzzyNameQuery.SetBoost(boostForFuzzyName)
	disjunctQuery.AddQuery(fuzzyNameQuery)

	descriptionQuery := bleve.NewMatchQuery(queryString)
	descriptionQuery.SetField(indexFieldDescription)
	descriptionQuery.SetBoost(boostForDescription)
	disjunctQuery.AddQuery(descriptionQuery)

	return disjunctQuery
}

func stripWildcards(s string) string {
	return strings.NewReplacer("*", "", "?", "", `\`, "").Replace(s)
}

func (b *BleveDB) DeleteDocuments(documentIDs []string) error {
	batch := b.index.NewBatch()

	for i, docID := range documentIDs {
		batch.Delete(docID)

		// Execute batch when it reaches the batch size
		if (i+1)%indexingBatchSize == 0 {
			err := b.index.Batch(batch)
			if err != nil {
				return err
			}
			batch = b.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			b.logger.Error("could not delete documents", "err", err.Error())
			return err
		}
	}

	return nil
}

func (b *BleveDB) GetDocCount() (uint64, error) {
	return b.index.DocCount()
}

func (b *BleveDB) Close() error {

	if b.index != nil {
		if err := b.index.Close(); err != nil {
			b.logger.Error("could not close search index", "err", err.Error())
			return err
		}
	}
	return nil
}
