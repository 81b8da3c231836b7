package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kisansetu-be/internal/dto"
	"kisansetu-be/internal/pkg/logger"
	"kisansetu-be/pkg/advisory/format"
	"kisansetu-be/pkg/llm"
	"kisansetu-be/pkg/llm/huggingface"
)

const diseaseModule = "DISEASE"

const (
	diseaseApology  = "⚠️ Sorry, I could not analyse this image right now. Please try again with a clear photo of the affected leaf."
	healthyAdvice   = "✅ Direct Answer: The plant looks healthy. Keep watering regularly and check the leaves every few days."
	diseasePromptTm = "A farmer's crop photo was classified as %q (confidence %.0f%%). " +
		"Explain in simple English what this disease is, then give up to four short practical steps to treat it " +
		"and stop it spreading. Prefer low-cost and organic options first. Keep it under 120 words."
	maxPredictions = 5
)

// ImageClassifier scores an image against a classification model.
type ImageClassifier interface {
	ClassifyImage(ctx context.Context, model string, image []byte, contentType string) ([]huggingface.Classification, error)
}

type IDiseaseService interface {
	Detect(ctx context.Context, image []byte, contentType string) (*dto.DiseaseDetectionResponse, error)
}

type diseaseService struct {
	classifier ImageClassifier
	model      string
	llm        llm.LLMProvider
	logger     logger.ILogger
}

func NewDiseaseService(classifier ImageClassifier, model string, llmProvider llm.LLMProvider, log logger.ILogger) IDiseaseService {
	return &diseaseService{
		classifier: classifier,
		model:      model,
		llm:        llmProvider,
		logger:     log,
	}
}

// Detect never fails on an upstream error: an unreadable image or a failed model
// call produces the apology as advice.
func (s *diseaseService) Detect(ctx context.Context, image []byte, contentType string) (*dto.DiseaseDetectionResponse, error) {
	labels, err := s.classifier.ClassifyImage(ctx, s.model, image, contentType)
	if err == nil && len(labels) == 0 {
		err = errors.New("classifier returned no labels")
	}
	if err != nil {
		s.logger.Error(diseaseModule, "Classification failed", map[string]interface{}{
			"model": s.model,
			"error": err.Error(),
		})
		return &dto.DiseaseDetectionResponse{Advice: diseaseApology, Predictions: []dto.DiseasePrediction{}}, nil
	}

	top := labels[0]
	res := &dto.DiseaseDetectionResponse{
		Disease:     top.Label,
		Confidence:  top.Score,
		Healthy:     strings.Contains(strings.ToLower(top.Label), "healthy"),
		Predictions: make([]dto.DiseasePrediction, 0, maxPredictions),
	}
	for i, l := range labels {
		if i == maxPredictions {
			break
		}
		res.Predictions = append(res.Predictions, dto.DiseasePrediction{Label: l.Label, Score: l.Score})
	}

	if res.Healthy {
		res.Advice = healthyAdvice
	} else {
		res.Advice = s.advise(ctx, top)
	}

	s.logger.Info(diseaseModule, "Image classified", map[string]interface{}{
		"label":      top.Label,
		"confidence": top.Score,
		"healthy":    res.Healthy,
	})
	return res, nil
}

func (s *diseaseService) advise(ctx context.Context, top huggingface.Classification) string {
	if s.llm == nil {
		return diseaseApology
	}
	text, err := s.llm.Generate(ctx, fmt.Sprintf(diseasePromptTm, readableLabel(top.Label), top.Score*100), llm.WithTemperature(0.4))
	if err != nil {
		s.logger.Warn(diseaseModule, "Advice generation failed", map[string]interface{}{"error": err.Error()})
		return diseaseApology
	}
	return format.Format(text)
}

// readableLabel turns "Tomato___Late_blight" into "Tomato Late blight".
func readableLabel(label string) string {
	return strings.Join(strings.FieldsFunc(label, func(r rune) bool { return r == '_' }), " ")
}
