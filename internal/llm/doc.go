// Package llm provides the AI damage assessment gateway. It supports Gemini,
// Anthropic and OpenAI providers plus an offline mock, with strict response
// parsing, rate limiting and caching of repair shop suggestions.
//
// The Gateway never surfaces provider failures to its caller: damage analysis
// degrades to a manual review result and shop search degrades to no
// suggestions.
package llm
