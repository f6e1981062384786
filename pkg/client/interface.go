package client

import "context"

// VisionClient is a text-in/text-out connection to a hosted
// vision-language model. The transcript comes back verbatim; any
// grounding tags embedded in it are the caller's business to extract.
type VisionClient interface {
	Query(ctx context.Context, model, prompt, imgB64 string) (string, error)
}
