package prompt

import (
	"fmt"

	"personachat/internal/models"
)

const (
	NativeClause         = "in its native script (e.g., Devanagari for Hindi)."
	TransliteratedClause = "transliterated into English letters (e.g., 'Namaste' instead of 'नमस्ते')."
)

const systemTemplate = `You are my %s. Your personality and character traits are: "%s". From now on, you must act and respond as this character. Your entire response must be in the %s language, written %s Do not break character. Keep your responses concise and in character. Crucially, do not include any English translations, explanations, or any text within parentheses. Your response should consist purely of the requested language.`

// Build returns the system instruction for a persona session. Any input
// is accepted; callers reject an empty character before getting here.
func Build(persona models.Persona, character string, language models.Language, mode models.ScriptMode) string {
	return fmt.Sprintf(systemTemplate, persona, character, language, ScriptClause(mode))
}

// ForSettings is Build over a settings value.
func ForSettings(s models.AppSettings) string {
	return Build(s.Persona, s.Character, s.Language, s.ScriptMode)
}

// ScriptClause picks the writing-system clause. Each clause contains its
// mode's value. Anything other than transliterated falls back to the
// native clause.
func ScriptClause(mode models.ScriptMode) string {
	if mode == models.ScriptTransliterated {
		return TransliteratedClause
	}
	return NativeClause
}
