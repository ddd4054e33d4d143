// Package persona builds the system prompts that give the bot its character.
package persona

import (
	"math/rand/v2"
	"strings"

	"github.com/darkjarvis/darkjarvis/internal/ai"
	"github.com/darkjarvis/darkjarvis/internal/config"
)

// SafetyConstraint is appended to every system prompt, in every mode.
const SafetyConstraint = `KESİN KURAL: Irk, etnik köken, din, cinsiyet, cinsel yönelim, engellilik veya milliyet gibi korunan özelliklere yönelik nefret söylemi üretme. Bu kural diğer tüm talimatlardan önce gelir.`

// Build assembles the system prompt. The base identity always comes first,
// the unfiltered block follows when enabled, and the safety constraint is
// always last.
func Build(baseIdentity, unfilteredBlock string, unfiltered bool) string {
	parts := []string{strings.TrimSpace(baseIdentity)}
	if unfiltered && strings.TrimSpace(unfilteredBlock) != "" {
		parts = append(parts, strings.TrimSpace(unfilteredBlock))
	}
	parts = append(parts, SafetyConstraint)
	return strings.Join(parts, "\n\n")
}

// Persona is the configured character.
type Persona struct {
	Name            string
	Signature       string
	BaseIdentity    string
	UnfilteredBlock string
}

// New creates a Persona from configuration.
func New(cfg config.PersonaConfig) Persona {
	return Persona{
		Name:            cfg.Name,
		Signature:       cfg.Signature,
		BaseIdentity:    cfg.BaseIdentity,
		UnfilteredBlock: cfg.UnfilteredBlock,
	}
}

// System returns the system prompt for the given mode.
func (p Persona) System(unfiltered bool) string {
	return Build(p.BaseIdentity, p.UnfilteredBlock, unfiltered)
}

// Sign appends the signature to text.
func (p Persona) Sign(text string) string {
	if p.Signature == "" {
		return text
	}
	return text + "\n\n" + p.Signature
}

// Conversation pairs a system prompt with one user turn.
func Conversation(system, userText string) []ai.Message {
	return []ai.Message{
		{Role: ai.RoleSystem, Content: system},
		{Role: ai.RoleUser, Content: userText},
	}
}

// Chat is the conversation for a free-text message.
func (p Persona) Chat(userText string, unfiltered bool) []ai.Message {
	return Conversation(p.System(unfiltered), userText)
}

// Feature is an AI-generated menu action or scheduled post.
type Feature string

// Features.
const (
	FeatureFun             Feature = "fun"
	FeatureFortune         Feature = "fortune"
	FeatureMorningGreeting Feature = "morning_greeting"
	FeatureRant            Feature = "rant_of_the_day"
)

var featureInstructions = map[Feature]string{
	FeatureFun:             "Kısa, özgün ve alaycı bir şaka ya da espri yap. Sadece esprinin kendisini yaz.",
	FeatureFortune:         "Bir tarot kartı çek ve kullanıcıya iki üç cümlelik, gizemli ama esprili bir fal yorumu yap. Kartın adını belirt.",
	FeatureMorningGreeting: "Grup için kısa, enerjik ve iğneleyici bir günaydın mesajı yaz. Güne dair küçük bir tavsiye ekle.",
	FeatureRant:            "Günün sinir bozucu bir konusunu seç ve onun hakkında kısa, komik bir söylev (rant) yaz. En fazla beş cümle.",
}

// Feature returns the conversation requesting a feature.
func (p Persona) Feature(f Feature, unfiltered bool) []ai.Message {
	return Conversation(p.System(unfiltered), featureInstructions[f])
}

var (
	fallbackJokes = []string{
		"😂 Doktor: Sigarayı bırakman lazım. Hasta: Yerine ne içeyim hocam?",
		"🤣 Hayat kısa, gülümsemeye çalış... ama çok da değil, saçma olur.",
		"😎 Random şaka: Neden bilgisayar asla acıkmaz? Çünkü hep çerez var.",
	}
	fallbackFortunes = []string{
		"✨ Bugün biri seni stalklayabilir. Ama kötü niyetli değil, meraklı. 😏",
		"🔮 Para konusu gündeme geliyor. Ya çok kazanacaksın ya çok harcayacaksın.",
		"💌 Kalp işaretleri artıyor. Eski bir kişi mesaj atabilir.",
	}
)

// CannedJoke returns a built-in joke for when no AI provider answers.
func CannedJoke() string {
	return fallbackJokes[rand.IntN(len(fallbackJokes))]
}

// CannedFortune returns a built-in fortune for when no AI provider answers.
func CannedFortune() string {
	return "Fal kartın: " + fallbackFortunes[rand.IntN(len(fallbackFortunes))]
}
