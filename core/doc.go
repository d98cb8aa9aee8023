// Package core contains the business logic for the content capture service.
// It is framework-agnostic and can be used without the HTTP layer.
//
// The core package is organized into several sub-packages:
//
//   - domain: extraction jobs, captured pages, chat sessions and selector settings
//   - markdown: HTML to Markdown conversion for tiptap editor content
//   - extraction: the job store and the scheduler that polls pending jobs
//   - capture: readable content extraction from page HTML
//   - chat: chat sessions backed by the remote assistant
//   - settings: persisted capture selector overrides
//   - errors: custom error types mapped to HTTP status codes by the API
//   - interfaces: contracts for storage, HTTP, logging and remote services
//
// # Usage Example
//
//	store := extraction.NewJobStore(remoteClient, storage, extraction.DefaultStoreConfig())
//	if err := store.Load(ctx); err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	id, err := store.Submit(ctx, "https://example.com/post", "Post", domain.PageSourceStandard)
package core
