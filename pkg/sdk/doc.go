// Package jobdex embeds the jobdex hybrid job search in a Go program.
//
// Postings live in PostgreSQL with pgvector, or in process for tests and demos.
// Queries are interpreted into a ranking keyword plus filters, then ranked by
// cosine distance among the postings that satisfy every filter.
//
//	client, _ := jobdex.New(ctx,
//	    jobdex.WithPostgres("postgres://localhost/jobdex"),
//	    jobdex.WithOpenAI(os.Getenv("OPENAI_API_KEY"), ""),
//	)
//	defer client.Close()
//
//	_, _, _ = client.Save(ctx, jobdex.Posting{Title: "Railsエンジニア", Description: "自社開発"})
//	res, _ := client.Search(ctx, "東京でRailsの仕事")
//	for _, h := range res.Hits {
//	    fmt.Println(h.Title, h.Distance)
//	}
package jobdex
