package ai

import "fmt"

// Engine identifies a backing model provider. Each engine requires its own
// API credential before it may be resolved.
type Engine string

const (
	EngineOpenAI   Engine = "openai"
	EngineDeepSeek Engine = "deepseek"
	EngineGemini   Engine = "gemini"
	EngineGrok     Engine = "grok"
)

// DefaultEngine is used when a session does not select an engine.
const DefaultEngine = EngineDeepSeek

// Engines lists the supported engines in display order.
func Engines() []Engine {
	return []Engine{EngineOpenAI, EngineDeepSeek, EngineGemini, EngineGrok}
}

// ParseEngine converts a wire string into an Engine.
func ParseEngine(s string) (Engine, error) {
	switch Engine(s) {
	case EngineOpenAI, EngineDeepSeek, EngineGemini, EngineGrok:
		return Engine(s), nil
	}
	return "", fmt.Errorf("unknown engine: %q", s)
}

// Label returns the user-facing name of the engine.
func (e Engine) Label() string {
	switch e {
	case EngineOpenAI:
		return "Chat GPT 5.1 (OpenAI)"
	case EngineDeepSeek:
		return "Deepseek 3.1"
	case EngineGemini:
		return "Gemini 3.1"
	case EngineGrok:
		return "Grok 4.1"
	default:
		return string(e)
	}
}
