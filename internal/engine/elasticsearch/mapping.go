package elasticsearch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultIndexName is the default Elasticsearch index used for catalog documents.
const DefaultIndexName = "catalog_products"

// buildIndexMapping returns the JSON mapping for the catalog index. Title,
// brand and category are analyzed with an edge n-gram analyzer that applies
// the given synonym groups at index time, so a prefix of any synonym finds
// the product.
func buildIndexMapping(groups [][]string) string {
	rules := make([]string, 0, len(groups))
	for _, g := range groups {
		rules = append(rules, strings.Join(g, ","))
	}
	synonyms, _ := json.Marshal(rules)

	return fmt.Sprintf(`{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "normalizer": {
        "lowercase": { "type": "custom", "filter": ["lowercase", "asciifolding"] }
      },
      "filter": {
        "autocomplete_filter": { "type": "edge_ngram", "min_gram": 2, "max_gram": 20 },
        "catalog_synonyms": { "type": "synonym", "lenient": true, "synonyms": %s }
      },
      "analyzer": {
        "autocomplete": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "asciifolding", "autocomplete_filter"]
        },
        "autocomplete_with_synonyms": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "asciifolding", "catalog_synonyms", "autocomplete_filter"]
        },
        "folding": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "asciifolding"]
        }
      }
    }
  },
  "mappings": {
    "dynamic": false,
    "properties": {
      "id":            { "type": "keyword" },
      "title":         { "type": "text", "analyzer": "autocomplete_with_synonyms", "search_analyzer": "folding",
                         "fields": { "raw": { "type": "text", "analyzer": "autocomplete", "search_analyzer": "folding" },
                                     "lower": { "type": "keyword", "normalizer": "lowercase" } } },
      "brand":         { "type": "text", "analyzer": "autocomplete_with_synonyms", "search_analyzer": "folding",
                         "fields": { "keyword": { "type": "keyword" }, "lower": { "type": "keyword", "normalizer": "lowercase" } } },
      "category":      { "type": "text", "analyzer": "autocomplete_with_synonyms", "search_analyzer": "folding",
                         "fields": { "keyword": { "type": "keyword" }, "lower": { "type": "keyword", "normalizer": "lowercase" } } },
      "mainCategory":  { "type": "keyword" },
      "description":   { "type": "text", "analyzer": "folding" },
      "features":      { "type": "text", "analyzer": "folding" },
      "searchKeywords":{ "type": "text", "analyzer": "folding" },
      "tags":          { "type": "text", "analyzer": "folding" },
      "currentPrice":  { "type": "double" },
      "originalPrice": { "type": "double" },
      "discount":      { "type": "integer" },
      "rating":        { "type": "float" },
      "reviewCount":   { "type": "integer" },
      "popularity":    { "type": "integer" },
      "inStock":       { "type": "boolean" },
      "fastDelivery":  { "type": "boolean" },
      "bestseller":    { "type": "boolean" },
      "newArrival":    { "type": "boolean" },
      "anyCod":        { "type": "boolean" },
      "codLocations":  { "type": "keyword" },
      "position":      { "type": "integer" },
      "brandTerm":     { "type": "keyword" },
      "categoryTerms": { "type": "keyword" },
      "keywordTerms":  { "type": "keyword" }
    }
  }
}`, synonyms)
}
