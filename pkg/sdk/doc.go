// Package sdk provides a Go client for the shopassist HTTP API.
//
// The client sends a free-text shopper message to the assistant and returns
// the composed reply. Server error codes are mapped back to the exported
// sentinel errors, so callers can branch with errors.Is:
//
//	client := sdk.New("http://localhost:8080", sdk.WithAPIKey(os.Getenv("SHOPASSIST_API_KEY")))
//	reply, err := client.SendMessage(ctx, "show me lamps, prices in EUR")
//	if errors.Is(err, sdk.ErrRateUnavailable) {
//	    // the requested currency is not quoted by the rate provider
//	}
//
// Health reports the aggregated status of the catalog and the model:
//
//	status, _ := client.Health(ctx)
//	fmt.Println(status.Status, status.Checks)
package sdk
