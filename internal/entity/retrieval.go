package entity

// VectorQueryRequest is the body of POST /api/test-query/
type VectorQueryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// VectorQueryMatch is a single scored document in the response, highest
// similarity first.
type VectorQueryMatch struct {
	Doc      string            `json:"doc"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// VectorQueryResponse is the full retrieval response.
type VectorQueryResponse struct {
	Query   string             `json:"query"`
	Elapsed string             `json:"elapsed"`
	Results []VectorQueryMatch `json:"results"`
}

// Neighbor is a nearest-neighbor hit from the vector index.
type Neighbor struct {
	DatapointID string
	Score       float64
}

// Wire types for the embedding service (:predict API shape).

type EmbedInstance struct {
	Content string `json:"content"`
}

type EmbedRequest struct {
	Instances []EmbedInstance `json:"instances"`
}

type EmbedValues struct {
	Values []float64 `json:"values"`
}

type EmbedPrediction struct {
	Embeddings EmbedValues `json:"embeddings"`
}

type EmbedResponse struct {
	Predictions []EmbedPrediction `json:"predictions"`
}

// Wire types for the vector index (:findNeighbors API shape).

type IndexDatapoint struct {
	DatapointID   string    `json:"datapointId,omitempty"`
	FeatureVector []float64 `json:"featureVector,omitempty"`
}

type FindNeighborsQuery struct {
	Datapoint     IndexDatapoint `json:"datapoint"`
	NeighborCount int            `json:"neighborCount"`
}

type FindNeighborsRequest struct {
	DeployedIndexID string               `json:"deployedIndexId"`
	Queries         []FindNeighborsQuery `json:"queries"`
}

type NeighborHit struct {
	Datapoint IndexDatapoint `json:"datapoint"`
	Distance  float64        `json:"distance"`
}

type NearestNeighbors struct {
	Neighbors []NeighborHit `json:"neighbors"`
}

type FindNeighborsResponse struct {
	NearestNeighbors []NearestNeighbors `json:"nearestNeighbors"`
}
