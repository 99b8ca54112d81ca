// Package fetch retrieves HTML documents over HTTP with bounded retries.
//
// Every attempt uses a fresh colly collector with the configured desktop
// User-Agent and Accept-Language headers. Failed attempts (connection errors,
// timeouts, non-2xx statuses) wait backoff^attempt seconds plus up to one second
// of jitter before the next try. Once the attempt budget is spent the last
// error is returned wrapped in a TransportError.
package fetch
