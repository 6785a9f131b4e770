package translator

import "embed"

//go:embed prompts/*.txt
var promptFS embed.FS

var (
	translateSystemPrompt   string
	translateUserPrompt     string
	validateSystemPrompt    string
	validateUserPrompt      string
	transcribeContextPrompt string
)

func init() {
	translateSystemPrompt = mustPrompt("prompts/translate_system.txt")
	translateUserPrompt = mustPrompt("prompts/translate_user.txt")
	validateSystemPrompt = mustPrompt("prompts/validate_system.txt")
	validateUserPrompt = mustPrompt("prompts/validate_user.txt")
	transcribeContextPrompt = mustPrompt("prompts/transcribe_context.txt")
}

func mustPrompt(name string) string {
	data, err := promptFS.ReadFile(name)
	if err != nil {
		panic("translator: missing embedded prompt " + name)
	}
	return string(data)
}
