// Package vecsearch provides an in-process vector similarity search engine.
//
// Records live in libraries; each library can carry two interchangeable
// index variants built from the same records: a flat index for exact
// brute-force search and an IVF index (k-means inverted file) for
// approximate search over large libraries. Everything runs in memory and
// in process.
//
// # Quick Start
//
//	ctx := context.Background()
//
//	st := store.New()
//	lib := model.NewLibrary("articles", nil)
//	_ = st.CreateLibrary(ctx, lib)
//	_ = st.UpsertRecord(ctx, lib.ID, model.NewVectorRecord(
//	    []float32{0.1, 0.9, 0.3},
//	    metadata.Document{"category": metadata.String("tech")},
//	))
//
//	engine, _ := vecsearch.New(st)
//	_, _ = engine.BuildIndexes(ctx, lib.ID)
//
//	resp, _ := engine.Search(lib.ID).
//	    Vector([]float32{0.1, 0.9, 0.3}).
//	    KNN(10).
//	    Execute(ctx)
//
// # Text Queries
//
// With an embedder configured, searches accept raw text. The query is
// embedded at execution time; outbound calls pass the engine's rate gate:
//
//	embedder, _ := embed.NewOpenAI(func(o *embed.Options) {
//	    o.Dimension = 1024
//	})
//	engine, _ := vecsearch.New(st, vecsearch.WithEmbedder(embedder))
//
//	resp, _ := engine.Search(lib.ID).
//	    Text("approximate nearest neighbor search").
//	    KNN(5).
//	    Execute(ctx)
//
// # Index Selection
//
// Choose the index per search with Using:
//
//   - Flat: exact cosine ranking, O(n) per query. The default.
//   - IVF: scans only the nearest clusters. Recall is tuned with Probe;
//     probing every cluster reproduces the flat ranking exactly.
//
//	resp, _ := engine.Search(lib.ID).
//	    Vector(query).
//	    Using(index.TypeIVF).
//	    Probe(4).
//	    Execute(ctx)
//
// # Filtering
//
// Searches restrict candidates by attribute equality before ranking.
// A record missing a filtered key never matches:
//
//	resp, _ := engine.Search(lib.ID).
//	    Vector(query).
//	    Filter(metadata.Filter{
//	        "category": metadata.String("tech"),
//	        "year":     metadata.Int(2024),
//	    }).
//	    Execute(ctx)
//
// # Concurrency
//
// Indexes publish immutable snapshots behind an atomic pointer. Searches
// are lock-free and never gated; a rebuild prepares the next snapshot on a
// private copy and swaps it in atomically, so concurrent searches always
// see either the complete old state or the complete new state. Builds are
// capped by a semaphore sized from MAX_CONCURRENT_OPERATIONS.
//
// # Key Features
//
//   - Exact (flat) and approximate (IVF k-means) search over shared records
//   - Deterministic ranking: ties resolve by insertion order, ranks are dense
//   - Attribute filtering via a Roaring Bitmap inverted index
//   - Text queries through an OpenAI-compatible embedder
//   - Copy-on-write snapshots, searches never block on builds
//   - Environment-driven configuration with .env support
package vecsearch
