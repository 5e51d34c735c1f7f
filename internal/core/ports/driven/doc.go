// Package driven holds the ports the core calls out through: storage,
// caches, model providers and text analysis.
//
// Always wired: Extractor, ExtractorRegistry, IndexStore, DocumentStore,
// UploadStore, ResultCache, ConversationStore, Analyzer and ConfigStore.
//
// May be nil:
//
//   - EmbeddingService: ranking falls back to lexical scores only.
//   - LLMService: query and extraction return ErrGenerationUnavailable.
//   - QueryLog: questions are not recorded for analytics.
//
// Adapters implement these; this package imports only domain.
package driven
