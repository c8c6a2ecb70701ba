package transcript

// Step is a single named, total string rewrite.
type Step struct {
	Name  string
	Apply func(string) string
}

// Pipeline applies its steps in order, each one to the previous step's output.
type Pipeline []Step

// Run executes every step in order.
func (p Pipeline) Run(text string) string {
	for _, step := range p {
		text = step.Apply(text)
	}
	return text
}

// Names lists the step names in execution order.
func (p Pipeline) Names() []string {
	names := make([]string, len(p))
	for i, step := range p {
		names[i] = step.Name
	}
	return names
}
