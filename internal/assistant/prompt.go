// Package assistant suggests corrections for misspelled Italian municipality
// names using a chat model. OpenAI and Gemini backends share one prompt and
// both answer with a bare name or the NON_TROVATO sentinel.
package assistant

import (
	"fmt"
	"strings"

	"github.com/agentstation/rubrica/pkg/constants"
)

// systemInstruction constrains the model to a bare answer.
var systemInstruction = fmt.Sprintf(
	"Sei un esperto di geografia italiana. Rispondi SOLO con il nome corretto del comune o %q.",
	constants.NotFoundSentinel,
)

// buildPrompt asks for the corrected name of a municipality.
func buildPrompt(name, emailHint string) string {
	var b strings.Builder
	b.WriteString("Il seguente nome di comune italiano potrebbe avere errori di battitura, abbreviazioni o varianti.\n")
	b.WriteString("Fornisci SOLO il nome corretto del comune italiano, senza spiegazioni aggiuntive.\n")
	fmt.Fprintf(&b, "Se non è un comune italiano valido, rispondi solo con %q.\n\n", constants.NotFoundSentinel)
	fmt.Fprintf(&b, "Nome da correggere: %s", name)
	if emailHint != "" {
		fmt.Fprintf(&b, "\nEmail associata (potrebbe contenere il nome del comune): %s", emailHint)
	}
	b.WriteString(`

Esempi di correzioni:
- "S. Giovanni" → "San Giovanni"
- "Barzano'" → "Barzanò"
- "Male'" → "Malè"
- "Baselga Di Pine'" → "Baselga di Pinè"

Risposta:`)
	return b.String()
}

// cleanAnswer trims a model answer and maps the sentinel to no suggestion.
func cleanAnswer(answer string) string {
	answer = strings.Trim(strings.TrimSpace(answer), `"'`)
	if answer == constants.NotFoundSentinel {
		return ""
	}
	return answer
}
