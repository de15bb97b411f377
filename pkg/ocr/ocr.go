package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type ItfOCR interface {
	Recognize(ctx context.Context, imageBytes []byte, language string) (string, error)
}

type geminiOCR struct {
	modelName string
	client    *genai.Client
}

func New() (ItfOCR, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	modelName := os.Getenv("GEMINI_MODEL_NAME")
	if modelName == "" {
		modelName = "gemini-pro-vision"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &geminiOCR{
		modelName: modelName,
		client:    client,
	}, nil
}

// Recognize returns every piece of text visible in the image, top to bottom.
// An empty string is a valid result for an unreadable image.
func (g *geminiOCR) Recognize(ctx context.Context, imageBytes []byte, language string) (string, error) {
	if language == "" {
		language = "spa"
	}

	prompt := fmt.Sprintf(
		"Transcribe todo el texto visible en esta imagen, línea por línea, en el idioma original (%s). "+
			"Responde ÚNICAMENTE con el texto transcrito, sin comentarios adicionales. "+
			"Si la imagen no contiene texto legible, responde con una cadena vacía.", language)

	model := g.client.GenerativeModel(g.modelName)

	img := genai.ImageData("image/jpeg", imageBytes)
	res, err := model.GenerateContent(ctx, genai.Text(prompt), img)
	if err != nil {
		return "", err
	}

	if len(res.Candidates) == 0 || len(res.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from Gemini API")
	}

	text, ok := res.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", errors.New("unexpected response format from Gemini API")
	}

	return string(text), nil
}

func (g *geminiOCR) Close() {
	if g.client != nil {
		g.client.Close()
	}
}
