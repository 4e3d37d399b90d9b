package elasticsearch

// DefaultIndexName is the default index used for catalog documents.
const DefaultIndexName = "catalog_products"

// maxResults caps the number of hits returned per search. This bounds the
// response on broad keywords; it is not a pagination mechanism.
const maxResults = 100

// buildIndexMapping returns the full JSON body sent on index creation:
// settings with the custom product analyzer plus the field mappings.
func buildIndexMapping() string {
	return `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "analyzer": {
        "product_analyzer": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "stop", "snowball"]
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "id":          { "type": "keyword" },
      "name":        { "type": "text", "analyzer": "product_analyzer", "fields": { "keyword": { "type": "keyword" } } },
      "description": { "type": "text", "analyzer": "product_analyzer" },
      "price":       { "type": "integer" },
      "tags":        { "type": "keyword" }
    }
  }
}`
}
