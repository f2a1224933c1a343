// Package mealie is a client for the Mealie recipe server REST API.
//
// Every call goes through Client.Send, which resolves the path under the
// server's /api prefix, attaches the session credential unless the request
// opts out, makes exactly one attempt and turns the response into either a
// decoded Response or a typed error:
//
//	c, err := mealie.New("https://mealie.example.com", mealie.WithAPIKey(key))
//	if err != nil {
//		return err
//	}
//	info, err := c.About(ctx)
//
// Response bodies are decoded by media type. JSON object keys are converted
// from camelCase to snake_case before models are hydrated, so models use
// snake_case json tags throughout.
//
// Failures are *APIError values that match the Err* sentinels with
// errors.Is, *TransportError when no response arrived, and *ConfigError for
// an unusable base URL.
package mealie
