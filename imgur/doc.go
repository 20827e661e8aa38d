// Package imgur provides a client for the Imgur v3 HTTP API.
//
// The package covers the request plumbing every endpoint needs: authenticated
// GET and POST calls, decoding of the JSON response envelope and, most
// importantly, turning failed responses into typed errors.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := imgur.NewClient("", "your-client-id", logger,
//		imgur.WithTimeout(10*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	api := imgur.NewAPI(client)
//	resp, err := api.Get(ctx, "/3/gallery/hot/viral/0", nil)
//
// # Error Handling
//
// Every 4xx response is passed to Classify, which returns exactly one of:
//
//   - RateLimitError: the user (ScopeUser) or application (ScopeClient)
//     credit pool is exhausted. Client scope errors carry the reset date.
//   - RequestError: the API returned {"data":{"request":...,"error":...}}.
//   - UnclassifiedError: anything else; the message is the raw body.
//
// Other failed statuses surface as StatusError. The typed errors wrap the
// sentinels ErrRateLimited, ErrRequestFailed and ErrUnclassified:
//
//	if rl, ok := imgur.AsRateLimit(err); ok {
//		fmt.Println("retry after", rl.ResetDate())
//	}
//
// Classification can be replaced with WithErrorHook.
package imgur
