// Package mochow provides a Go client SDK for Mochow, a distributed
// vector database.
//
// The SDK covers database, table, index and row operations over the
// Mochow HTTP API, with request signing, retries and connection pooling.
//
// Basic usage:
//
//	client, err := mochow.New("127.0.0.1:5287", "root", "your-api-key")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Create a database
//	if err := client.CreateDatabase(ctx, "book"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Search the nearest rows
//	resp, err := client.Search(ctx, &mochow.SearchRequest{
//	    Database: "book",
//	    Table:    "book_segments",
//	    ANNS: &mochow.ANNSearchParams{
//	        VectorField:  "vector",
//	        VectorFloats: []float32{1, 0.21, 0.213, 0},
//	        Params:       mochow.NewHNSWSearchParams(200, 10),
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, r := range resp.Rows {
//	    fmt.Println(r.Row["id"], r.Distance)
//	}
package mochow
