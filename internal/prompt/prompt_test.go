package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personachat/internal/models"
)

func TestBuild_EmbedsAllValues(t *testing.T) {
	character := `A strict mother who values discipline. She wakes up at 6 AM.`

	for _, p := range models.Personas {
		for _, l := range models.Languages {
			for _, mode := range models.ScriptModes {
				out := Build(p, character, l, mode)

				require.Contains(t, out, string(p))
				require.Contains(t, out, character)
				require.Contains(t, out, string(l))
				require.Contains(t, out, string(mode))

				native := strings.Count(out, NativeClause)
				translit := strings.Count(out, TransliteratedClause)
				require.Equal(t, 1, native+translit, "exactly one script clause for %s/%s/%s", p, l, mode)
				if mode == models.ScriptNative {
					assert.Equal(t, 1, native)
				} else {
					assert.Equal(t, 1, translit)
				}
			}
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a := Build(models.PersonaAunt, "kind", models.LanguageTamil, models.ScriptTransliterated)
	b := Build(models.PersonaAunt, "kind", models.LanguageTamil, models.ScriptTransliterated)
	assert.Equal(t, a, b)
}

func TestBuild_EmptyCharacterAllowed(t *testing.T) {
	out := Build(models.PersonaFriend, "", models.LanguageHindi, models.ScriptNative)
	assert.Contains(t, out, `character traits are: ""`)
}

func TestForSettings(t *testing.T) {
	s := models.AppSettings{
		Persona:    models.PersonaGrandmother,
		Character:  "tells long stories",
		Language:   models.LanguageKannada,
		ScriptMode: models.ScriptNative,
	}
	assert.Equal(t, Build(s.Persona, s.Character, s.Language, s.ScriptMode), ForSettings(s))
}

func TestBuild_ExactWording(t *testing.T) {
	out := Build(models.PersonaFriend, "cheerful", models.LanguageHindi, models.ScriptTransliterated)

	want := `You are my Friend. Your personality and character traits are: "cheerful". From now on, you must act and respond as this character. Your entire response must be in the Hindi language, written transliterated into English letters (e.g., 'Namaste' instead of 'नमस्ते'). Do not break character. Keep your responses concise and in character. Crucially, do not include any English translations, explanations, or any text within parentheses. Your response should consist purely of the requested language.`
	assert.Equal(t, want, out)
	assert.NotContains(t, out, "Script mode")
}
