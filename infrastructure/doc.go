// Package infrastructure provides concrete implementations of the interfaces
// defined in the core package.
//
// The infrastructure package is organized by technical concern:
//
//   - storage/memory: in-memory key-value storage for tests and the library default
//   - storage/sqlite: SQLite storage that survives restarts
//   - storage/redis: Redis storage shared between instances
//   - http/standard: net/http client with retries on GET
//   - remote: client for the extraction and chat service
//   - logger/structured: logrus-backed logger
//   - metrics: Prometheus polling metrics
//
// # Storage
//
//	storage, err := sqlite.NewStorage("capture.db", logger)
//	if err != nil {
//	    return err
//	}
//	defer storage.Close()
//
//	err = storage.Set(ctx, "extractions", data)
//	data, err = storage.Get(ctx, "extractions")
//
// # Remote Service
//
//	client := remote.NewClient(standard.NewStandardHTTPClient(30*time.Second), "http://localhost:8081/api", logger)
//	resp, err := client.Submit(ctx, interfaces.SubmitRequest{URL: pageURL})
package infrastructure
