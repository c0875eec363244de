// Package gemini provides AI service implementations backed by the Google
// Gemini API.
//
// This package implements the ai.AIProvider interface using the official
// google.golang.org/genai client. Unlike the openai package it authenticates
// with an API key rather than a host URL, and it tags embedding requests
// with retrieval task types (query vs document) for asymmetric retrieval.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithAPIKey(os.Getenv("GEMINI_API_KEY")),
//	    ai.WithGeneratorModel("gemini-2.5-flash"),
//	)
//
//	provider, err := gemini.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
package gemini
