package assistant

import (
	"sort"
	"strings"
)

// ToolSpec describes one assistant tool: which fields it collects and the
// fixed prompt template they are interpolated into. Placeholders use {field}.
type ToolSpec struct {
	Name     string
	Required string
	Optional []string
	Template string
}

// Fields returns the required field followed by the optional ones.
func (t ToolSpec) Fields() []string {
	return append([]string{t.Required}, t.Optional...)
}

// BuildPrompt interpolates the collected fields into the template. Absent
// optional fields render as empty strings.
func (t ToolSpec) BuildPrompt(fields map[string]string) string {
	prompt := t.Template
	for _, f := range t.Fields() {
		prompt = strings.ReplaceAll(prompt, "{"+f+"}", fields[f])
	}
	return prompt
}

// Registry holds the tool catalogue keyed by tool name (= URL path segment).
type Registry struct {
	tools map[string]ToolSpec
}

// NewRegistry returns the built-in catalogue.
func NewRegistry() *Registry {
	r := &Registry{tools: make(map[string]ToolSpec)}
	for _, t := range builtinTools {
		r.tools[t.Name] = t
	}
	return r
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (ToolSpec, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns all tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for n := range r.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var builtinTools = []ToolSpec{
	{
		Name:     "translator",
		Required: "text",
		Optional: []string{"targetLang"},
		Template: "You are a professional translator. Translate the following text to {targetLang}. Preserve numbers, dates, and proper nouns, and keep the tone of the original.\n\nText:\n{text}",
	},
	{
		Name:     "study-helper",
		Required: "topic",
		Optional: []string{"level"},
		Template: "You are a patient study helper. Explain the topic \"{topic}\" for a {level} student. Use short paragraphs and end with three practice questions.",
	},
	{
		Name:     "market-advisor",
		Required: "crop",
		Optional: []string{"quantity", "harvestDate"},
		Template: "You are an agricultural market advisor. A farmer plans to sell {quantity} of {crop} harvested around {harvestDate}. Advise on likely price trends, the best time to sell, and storage considerations.",
	},
	{
		Name:     "grammar-checker",
		Required: "text",
		Optional: nil,
		Template: "Correct the grammar and spelling of the following text. Return the corrected text first, then a short list of the fixes you made.\n\n{text}",
	},
	{
		Name:     "summarizer",
		Required: "text",
		Optional: []string{"length"},
		Template: "Summarize the following text in a {length} summary. Keep the key facts and figures.\n\n{text}",
	},
	{
		Name:     "email-writer",
		Required: "purpose",
		Optional: []string{"recipient", "tone"},
		Template: "Write a {tone} email to {recipient}. Purpose: {purpose}. Include a subject line.",
	},
	{
		Name:     "code-explainer",
		Required: "code",
		Optional: []string{"language"},
		Template: "Explain what the following {language} code does, step by step, for a junior developer.\n\n{code}",
	},
	{
		Name:     "recipe-generator",
		Required: "ingredients",
		Optional: []string{"cuisine"},
		Template: "Suggest a {cuisine} recipe using these ingredients: {ingredients}. List the steps and an estimated cooking time.",
	},
	{
		Name:     "travel-planner",
		Required: "destination",
		Optional: []string{"days", "budget"},
		Template: "Plan a {days}-day trip to {destination} on a {budget} budget. Include a day-by-day itinerary and local food to try.",
	},
	{
		Name:     "fitness-coach",
		Required: "goal",
		Optional: []string{"daysPerWeek"},
		Template: "You are a fitness coach. Build a weekly workout plan ({daysPerWeek} days per week) for this goal: {goal}. Include warm-ups and rest days.",
	},
	{
		Name:     "story-writer",
		Required: "premise",
		Optional: []string{"genre"},
		Template: "Write a short {genre} story based on this premise: {premise}. Around 500 words with a clear ending.",
	},
	{
		Name:     "math-solver",
		Required: "problem",
		Optional: nil,
		Template: "Solve the following math problem. Show every step of the working before giving the final answer.\n\n{problem}",
	},
	{
		Name:     "interview-coach",
		Required: "role",
		Optional: []string{"experience"},
		Template: "You are an interview coach. The candidate has {experience} of experience and is applying for a {role} position. List likely interview questions with strong sample answers.",
	},
	{
		Name:     "resume-reviewer",
		Required: "resume",
		Optional: []string{"targetRole"},
		Template: "Review the following resume for a {targetRole} application. Point out weaknesses and rewrite the three weakest bullet points.\n\n{resume}",
	},
	{
		Name:     "product-describer",
		Required: "product",
		Optional: []string{"audience"},
		Template: "Write a compelling product description for {product}, aimed at {audience}. Include a one-line tagline and three selling points.",
	},
	{
		Name:     "dream-interpreter",
		Required: "dream",
		Optional: nil,
		Template: "Offer a thoughtful, non-superstitious interpretation of this dream, mentioning common psychological readings of its symbols.\n\n{dream}",
	},
}
