package llm

const dummyPreviewLimit = 600

// DummyLLM answers without any model or network. It returns the prompt
// it was handed, truncated, so the ask pipeline stays runnable offline
// and in tests.
type DummyLLM struct{}

func NewDummyLLM() *DummyLLM {
	return &DummyLLM{}
}

func (d *DummyLLM) Generate(prompt string) (string, error) {
	preview := prompt
	if len(preview) > dummyPreviewLimit {
		preview = preview[:dummyPreviewLimit] + "..."
	}
	return "No language model configured; showing the assembled prompt instead.\n\n" + preview, nil
}

func (d *DummyLLM) GenerateWithSystem(systemPrompt, userPrompt string) (string, error) {
	return d.Generate(userPrompt)
}

func (d *DummyLLM) ModelName() string {
	return "dummy"
}
