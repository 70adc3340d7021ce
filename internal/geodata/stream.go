package geodata

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// StreamFeatures decodes the "features" array of a GeoJSON collection
// incrementally, sending each feature to a channel. National EPCI dumps
// run to tens of megabytes; streaming avoids holding every geometry in
// memory when only properties or counts are needed.
// Both channels are closed when processing completes.
func StreamFeatures(ctx context.Context, r io.Reader) (<-chan Feature, <-chan error) {
	outCh := make(chan Feature, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		decoder := json.NewDecoder(r)

		// Walk the top-level object until the features key.
		tok, err := decoder.Token()
		if err != nil {
			errCh <- eris.Wrap(err, "geodata: read opening token")
			return
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '{' {
			errCh <- eris.Errorf("geodata: expected '{', got %v", tok)
			return
		}

		for decoder.More() {
			keyTok, err := decoder.Token()
			if err != nil {
				errCh <- eris.Wrap(err, "geodata: read member key")
				return
			}
			key, _ := keyTok.(string)

			if key != "features" {
				// Skip the member value.
				var discard json.RawMessage
				if err := decoder.Decode(&discard); err != nil {
					errCh <- eris.Wrapf(err, "geodata: skip member %q", key)
					return
				}
				continue
			}

			// Expect the array opening.
			tok, err := decoder.Token()
			if err != nil {
				errCh <- eris.Wrap(err, "geodata: read features opening")
				return
			}
			if delim, ok := tok.(json.Delim); !ok || delim != '[' {
				errCh <- eris.Errorf("geodata: expected '[', got %v", tok)
				return
			}

			for decoder.More() {
				if ctx.Err() != nil {
					errCh <- eris.Wrap(ctx.Err(), "geodata: context cancelled")
					return
				}

				var f Feature
				if err := decoder.Decode(&f); err != nil {
					errCh <- eris.Wrap(err, "geodata: decode feature")
					return
				}

				select {
				case outCh <- f:
				case <-ctx.Done():
					errCh <- eris.Wrap(ctx.Err(), "geodata: context cancelled")
					return
				}
			}

			// Consume the array closing bracket.
			if _, err := decoder.Token(); err != nil {
				errCh <- eris.Wrap(err, "geodata: read features closing")
				return
			}
		}
	}()

	return outCh, errCh
}
