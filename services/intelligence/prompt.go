package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"medibot/models"
)

// classificationPrompt instructs an LLM to answer with a single JSON object.
const classificationPrompt = `Eres el asistente de una clínica que agenda citas médicas.
Clasifica el mensaje del usuario en una de estas intenciones:
create (agendar una cita), view (ver sus citas), update (modificar una cita),
delete (cancelar una cita), search (buscar citas), help (ayuda), unknown.
Extrae los campos que el usuario mencione: paciente, especialidad (una de: %s),
fecha (YYYY-MM-DD), hora (HH:MM), doctor, notas.
Responde SOLO con JSON: {"intent": "...", "response": "respuesta breve en español", "data": {...}}

Mensaje: %q`

// BuildPrompt renders the classification prompt for text.
func BuildPrompt(text string) string {
	return fmt.Sprintf(classificationPrompt, strings.Join(models.Specialties, ", "), text)
}

type modelOutput struct {
	Intent   string                 `json:"intent"`
	Response string                 `json:"response"`
	Data     map[string]interface{} `json:"data"`
}

// ParseModelOutput decodes an LLM answer into a Classification. Code fences around
// the JSON are tolerated.
func ParseModelOutput(raw string) (*models.Classification, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var out modelOutput
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, &ClassificationError{Reason: "model answered with invalid JSON", Err: err}
	}
	if strings.TrimSpace(out.Response) == "" {
		return nil, &ClassificationError{Reason: "model answered without a response"}
	}

	data := make(map[string]string, len(out.Data))
	for k, v := range out.Data {
		if v == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(v))
		if s != "" {
			data[k] = s
		}
	}

	intent := NormalizeIntent(out.Intent)
	return &models.Classification{
		Success:  true,
		Response: out.Response,
		Intent:   intent,
		Action:   string(intent),
		Data:     data,
	}, nil
}

// NormalizeIntent maps anything outside the known set to unknown.
func NormalizeIntent(raw string) models.Intent {
	switch intent := models.Intent(strings.ToLower(strings.TrimSpace(raw))); intent {
	case models.IntentCreate, models.IntentView, models.IntentUpdate, models.IntentDelete,
		models.IntentSearch, models.IntentHelp:
		return intent
	default:
		return models.IntentUnknown
	}
}
