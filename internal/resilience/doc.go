// Package resilience groups the fault tolerance helpers that guard calls to the
// remote text-generation service.
//
//   - circuitbreaker: stops calling a provider that keeps failing, so a run with
//     the "continue" failure policy does not hammer a dead endpoint once per document.
//   - ratelimit: paces requests to stay under provider quotas.
//
// Requests are never retried; a failed call fails its document.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.OpenAIAPIConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callProvider()
//	})
package resilience
