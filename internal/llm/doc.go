// Package llm provides the provider abstraction for tutorial generation.
//
// Four providers are supported: gemini (the default), anthropic, openai, and
// ollama/lmstudio for local models. Each speaks its vendor's HTTP API
// directly and retries rate-limited requests with exponential backoff.
// Credentials come from the conventional environment variables
// (GEMINI_API_KEY/GOOGLE_API_KEY, ANTHROPIC_API_KEY, OPENAI_API_KEY).
//
// CachedCaller layers the response cache and the call log over any provider;
// the pipeline always talks to a CachedCaller.
package llm
