package dto

type DiseasePrediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type DiseaseDetectionResponse struct {
	Disease     string              `json:"disease"`
	Confidence  float64             `json:"confidence"`
	Healthy     bool                `json:"healthy"`
	Advice      string              `json:"advice"`
	Predictions []DiseasePrediction `json:"predictions"`
}
