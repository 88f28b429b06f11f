package ai

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"medibot/models"

	"golang.org/x/text/unicode/norm"
)

var (
	datePattern = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	timePattern = regexp.MustCompile(`\b([01]?\d|2[0-3]):[0-5]\d\b`)
	// "Dr. García", "Dra. Soto"
	doctorPattern = regexp.MustCompile(`\bDra?\.\s+\p{Lu}[\p{L}]+`)
)

type keywordRule struct {
	intent  models.Intent
	words   []string
	phrases []string
}

// Order matters: "cancelar mi cita" must hit delete before the generic "cita", and
// "agendar una cita para ver al cardiólogo" is a booking, not a listing.
var keywordRules = []keywordRule{
	{intent: models.IntentDelete, words: []string{"cancelar", "eliminar", "borrar", "anular"}},
	{intent: models.IntentUpdate, words: []string{"cambiar", "modificar", "editar", "reprogramar", "mover"}},
	{intent: models.IntentCreate, words: []string{"agendar", "reservar", "apartar"}, phrases: []string{"pedir hora", "pedir una cita", "sacar una cita"}},
	{intent: models.IntentView, words: []string{"ver", "listar", "mostrar", "consultar"}, phrases: []string{"mis citas", "mis horas"}},
	{intent: models.IntentSearch, words: []string{"buscar", "filtrar", "encontrar"}},
	{intent: models.IntentCreate, words: []string{"cita", "hora", "turno"}},
	{intent: models.IntentHelp, words: []string{"ayuda", "help", "ayudar"}, phrases: []string{"que puedes"}},
}

var keywordReplies = map[models.Intent]string{
	models.IntentCreate:  "Perfecto, voy a ayudarte a agendar una cita. Completa el formulario con los datos de la consulta.",
	models.IntentView:    "Estas son tus citas registradas.",
	models.IntentUpdate:  "Puedes modificar una cita desde tu lista de citas. Pídeme verlas y usa la opción editar.",
	models.IntentDelete:  "Puedes cancelar una cita desde tu lista de citas. Pídeme verlas y usa la opción cancelar.",
	models.IntentSearch:  "Puedo buscar citas por doctor, especialidad, fecha o paciente. Pídeme ver tus citas para empezar.",
	models.IntentHelp:    "Puedo agendar, mostrar, modificar y cancelar tus citas médicas. ¿Qué necesitas?",
	models.IntentUnknown: "Gracias por tu mensaje. Para continuar con tu cita médica, ¿podrías contarme qué necesitas?",
}

// KeywordClassifier is a local, rule-based classifier used when no model is
// configured.
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(_ context.Context, text string) (*models.Classification, error) {
	intent := matchIntent(text)
	out := &models.Classification{
		Success:  true,
		Response: keywordReplies[intent],
		Intent:   intent,
		Action:   string(intent),
	}
	if data := extractFields(text); len(data) > 0 {
		out.Data = data
	}
	return out, nil
}

func matchIntent(text string) models.Intent {
	folded := fold(text)
	words := map[string]bool{}
	for _, w := range strings.FieldsFunc(folded, func(r rune) bool { return !unicode.IsLetter(r) }) {
		words[w] = true
	}

	for _, rule := range keywordRules {
		for _, w := range rule.words {
			if words[fold(w)] {
				return rule.intent
			}
		}
		for _, p := range rule.phrases {
			if strings.Contains(folded, fold(p)) {
				return rule.intent
			}
		}
	}
	return models.IntentUnknown
}

func extractFields(text string) map[string]string {
	data := map[string]string{}
	folded := fold(text)
	for _, s := range models.Specialties {
		if strings.Contains(folded, fold(s)) {
			data["especialidad"] = s
			break
		}
	}
	if d := datePattern.FindString(text); d != "" {
		data["fecha"] = d
	}
	if m := timePattern.FindString(text); m != "" {
		if len(m) == 4 {
			m = "0" + m
		}
		data["hora"] = m
	}
	if doc := doctorPattern.FindString(text); doc != "" {
		data["doctor"] = doc
	}
	return data
}

// fold lowercases s and strips accents so "Cardiología" matches "cardiologia".
func fold(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(s)) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
