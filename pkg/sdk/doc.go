// Package docintel embeds the docintel hybrid retrieval engine in a Go program.
//
// Records live in PostgreSQL; vectors live in Redis / Valkey (FT.SEARCH) or in
// the same database through pgvector. Queries run the semantic and keyword
// lanes and return one fused, explainable ranking.
//
//	client, _ := docintel.New(ctx,
//	    docintel.WithPostgres("postgres://localhost/docintel"),
//	    docintel.WithRedis("localhost:6379", ""),
//	    docintel.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	hits, err := client.Search(ctx, docintel.Query{Text: "water damage", Limit: 5, Why: true})
//	if docintel.IsVectorUnavailable(err) {
//	    hits, err = client.Search(ctx, docintel.Query{Text: "water damage", Mode: docintel.ModeLiteral})
//	}
package docintel
