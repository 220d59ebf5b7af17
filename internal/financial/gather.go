// internal/financial/gather.go
package financial

import (
	"context"
	"fmt"
	"sync"
)

// Bundle holds one response per requested source. A source that failed or
// has no fetcher maps to an empty Response and gets an entry in Errors.
type Bundle struct {
	Responses map[Source]Response `json:"responses"`
	Errors    map[Source]string   `json:"errors,omitempty"`
}

func (b Bundle) Get(src Source) Response {
	if r, ok := b.Responses[src]; ok && r != nil {
		return r
	}
	return Response{}
}

// Gather fetches every source concurrently. With no sources given it asks
// for all of them.
func Gather(ctx context.Context, services Services, applicantID string, sources ...Source) Bundle {
	if len(sources) == 0 {
		sources = AllSources
	}

	bundle := Bundle{
		Responses: make(map[Source]Response, len(sources)),
		Errors:    make(map[Source]string),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	errChan := make(chan sourceError, len(sources))

	for _, src := range sources {
		fetcher, ok := services[src]
		if !ok || fetcher == nil {
			mu.Lock()
			bundle.Responses[src] = Response{}
			mu.Unlock()
			errChan <- sourceError{source: src, err: fmt.Errorf("no fetcher configured for %s", src)}
			continue
		}

		wg.Add(1)
		go func(src Source, fetcher Fetcher) {
			defer wg.Done()

			resp, err := fetcher.Fetch(ctx, applicantID)
			if err != nil {
				errChan <- sourceError{source: src, err: err}
				resp = Response{}
			}

			mu.Lock()
			bundle.Responses[src] = resp
			mu.Unlock()
		}(src, fetcher)
	}

	go func() {
		wg.Wait()
		close(errChan)
	}()

	for se := range errChan {
		bundle.Errors[se.source] = se.err.Error()
	}

	return bundle
}

type sourceError struct {
	source Source
	err    error
}
