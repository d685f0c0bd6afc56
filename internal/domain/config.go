package domain

// VectorConfig holds the query vectorization defaults.
type VectorConfig struct {
	Provider         string
	Model            string
	Dimensions       int
	DistanceMetric   string
	QueryInstruction string
}

// DefaultVectorConfig returns the defaults tuned for multilingual-e5-large-instruct,
// which handles Korean queries and matches the cosine KNN index.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Provider:         "openai",
		Model:            "intfloat/multilingual-e5-large-instruct",
		Dimensions:       1024,
		DistanceMetric:   "cosine",
		QueryInstruction: "query: ",
	}
}
