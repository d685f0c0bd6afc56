// Package vecfuse embeds the vecfuse hybrid search engine in a Go program.
//
// The client runs the same pipeline as the HTTP service: Korean date/time
// interpretation, concurrent BM25 and KNN retrieval over Redis FT.SEARCH,
// score normalization, fusion (weighted, rrf or hybrid), a result cache
// and an in-process performance monitor.
//
//	client, _ := vecfuse.New(ctx,
//	    vecfuse.WithRedis("localhost:6379", ""),
//	    vecfuse.WithEmbedder(myEmbedder),
//	    vecfuse.WithIndex("idx:notes", "idx:notes", "note:"),
//	)
//	defer client.Close()
//
//	res, _ := client.Search(ctx, "오늘 오후 3시 회의", vecfuse.Filter{UserID: "u1"},
//	    vecfuse.SearchOptions{Strategy: vecfuse.StrategyRRF})
//	for _, r := range res.Results {
//	    fmt.Println(r.ID, r.Score)
//	}
//
//	stats, _ := client.Stats("hybrid_search", time.Hour)
package vecfuse
